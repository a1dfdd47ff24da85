package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("documentXMLText", func() {
	It("keeps paragraphs on separate lines", func() {
		xml := `<w:document><w:body>` +
			`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t>Engineer</w:t><w:tab/><w:t>Acme &amp; Co</w:t></w:r></w:p>` +
			`</w:body></w:document>`

		Expect(documentXMLText(xml)).To(Equal("Jane Doe\nEngineer\tAcme & Co"))
	})
})
