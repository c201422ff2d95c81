// Package pdftext extracts per-page plain text from PDF bytes.
package pdftext

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/lyh9003/stock-report/internal/ports"
)

// Extractor implements ports.TextExtractor on a pure-Go PDF reader.
type Extractor struct{}

var _ ports.TextExtractor = (*Extractor)(nil)

// New returns a stateless extractor.
func New() *Extractor {
	return &Extractor{}
}

// ExtractPages returns one text segment per page. A page whose text cannot
// be extracted yields an empty segment; only an unreadable document as a
// whole is an error.
func (e *Extractor) ExtractPages(data []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		pages = append(pages, pageText(reader.Page(i)))
	}
	return pages, nil
}

func pageText(page pdf.Page) (text string) {
	// The reader panics on some malformed content streams; such a page
	// degrades to an empty segment like any other extraction failure.
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
