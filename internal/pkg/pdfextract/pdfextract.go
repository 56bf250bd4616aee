package pdfextract

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	hyphenBreak = regexp.MustCompile(`-\s*\n\s*`)
	blankRuns   = regexp.MustCompile(`\n{2,}`)
	spaceRuns   = regexp.MustCompile(`[ \t]{2,}`)
)

// ExtractText extracts plain text from PDF bytes. Returns empty string and
// nil error if the PDF has no extractable text.
func ExtractText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	readerAt := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return "", err
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// NormalizeText cleans extraction artifacts before chunking: words split by
// hyphenated line breaks are rejoined, blank-line runs collapse to one
// newline, and space runs collapse to one space.
func NormalizeText(text string) string {
	if text == "" {
		return text
	}
	text = hyphenBreak.ReplaceAllString(text, "")
	text = blankRuns.ReplaceAllString(text, "\n")
	text = spaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Extractor adapts this package to the indexing pipeline's extraction
// capability.
type Extractor struct{}

func (Extractor) Extract(data []byte) (string, error) {
	text, err := ExtractText(data)
	if err != nil {
		return "", err
	}
	return NormalizeText(text), nil
}
