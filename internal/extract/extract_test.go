package extract_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Alpha-Sight/propellantBE/internal/extract"
)

func buildDocx(paragraphs ...string) []byte {
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}

	parts := []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`},
		{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`},
		{"word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`},
		{"word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body.String() + `</w:body></w:document>`},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range parts {
		w, err := zw.Create(part.name)
		Expect(err).NotTo(HaveOccurred())
		_, err = w.Write([]byte(part.content))
		Expect(err).NotTo(HaveOccurred())
	}
	Expect(zw.Close()).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("ResumeText", func() {
	It("returns plain text trimmed", func() {
		text, err := extract.ResumeText([]byte("\n  Worked at Acme as Engineer\nLed migrations\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Worked at Acme as Engineer\nLed migrations"))
	})

	It("detects plain text", func() {
		mime, err := extract.DetectType([]byte("Jane Doe\nSoftware Engineer"))
		Expect(err).NotTo(HaveOccurred())
		Expect(mime).To(Equal(extract.MIMEPlainText))
	})

	It("detects pdf by content", func() {
		mime, err := extract.DetectType([]byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(mime).To(Equal(extract.MIMEPDF))
	})

	It("rejects images", func() {
		png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
		_, err := extract.ResumeText(png)
		Expect(errors.Is(err, extract.ErrUnsupportedType)).To(BeTrue())
	})

	It("rejects whitespace-only documents", func() {
		_, err := extract.ResumeText([]byte("   \n\t "))
		Expect(errors.Is(err, extract.ErrEmptyDocument)).To(BeTrue())
	})

	It("extracts paragraphs from a docx", func() {
		doc := buildDocx("Worked at Acme &amp; Co", "Engineer")

		mime, err := extract.DetectType(doc)
		Expect(err).NotTo(HaveOccurred())
		Expect(mime).To(Equal(extract.MIMEDocx))

		text, err := extract.ResumeText(doc)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Worked at Acme & Co\nEngineer"))
	})

	It("reports a broken pdf as unreadable", func() {
		_, err := extract.ResumeTextAs(extract.MIMEPDF, []byte("%PDF-1.4\ngarbage"))
		Expect(errors.Is(err, extract.ErrUnreadable)).To(BeTrue())
	})

	It("reports a broken docx as unreadable", func() {
		_, err := extract.ResumeTextAs(extract.MIMEDocx, []byte("PK\x03\x04 not really a zip"))
		Expect(errors.Is(err, extract.ErrUnreadable)).To(BeTrue())
	})
})
