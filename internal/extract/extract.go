// Package extract turns uploaded resume files into plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MIMEPlainText = "text/plain"
	MIMEPDF       = "application/pdf"
	MIMEDocx      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrUnreadable      = errors.New("file could not be read")
	ErrEmptyDocument   = errors.New("no text found in file")
)

// DetectType sniffs the content rather than trusting the client's Content-Type.
// It returns one of the MIME* constants or ErrUnsupportedType.
func DetectType(data []byte) (string, error) {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		switch {
		case m.Is(MIMEPDF):
			return MIMEPDF, nil
		case m.Is(MIMEDocx):
			return MIMEDocx, nil
		case m.Is(MIMEPlainText):
			return MIMEPlainText, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, detected.String())
}

// ResumeText detects the file type and extracts its text.
func ResumeText(data []byte) (string, error) {
	mime, err := DetectType(data)
	if err != nil {
		return "", err
	}
	return ResumeTextAs(mime, data)
}

func ResumeTextAs(mime string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch mime {
	case MIMEPlainText:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text is not valid UTF-8", ErrUnreadable)
		}
		text = string(data)
	case MIMEPDF:
		text, err = pdfText(data)
	case MIMEDocx:
		text, err = docxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func pdfText(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: malformed pdf: %v", ErrUnreadable, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: read pdf: %w", ErrUnreadable, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: pdf text: %w", ErrUnreadable, err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("%w: pdf text: %w", ErrUnreadable, err)
	}
	return string(out), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: parse docx: %w", ErrUnreadable, err)
	}
	defer doc.Close()

	return documentXMLText(doc.Editable().GetContent()), nil
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:cr\s*/>`)
	tabTag       = regexp.MustCompile(`<w:tab\s*/>`)
	anyTag       = regexp.MustCompile(`<[^>]+>`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// documentXMLText reduces WordprocessingML to text, one paragraph per line.
func documentXMLText(xml string) string {
	s := paragraphEnd.ReplaceAllString(xml, "\n")
	s = tabTag.ReplaceAllString(s, "\t")
	s = anyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
