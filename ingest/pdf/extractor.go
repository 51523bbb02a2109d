// Package pdf provides a per-page PDF text extractor for the ingest
// pipeline.
//
// It uses ledongthuc/pdf (BSD-3, pure Go, no CGO) for text extraction.
// This is a separate subpackage so that the dependency is only pulled in
// by users who need PDF support.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/lectern-ai/lectern"
	"github.com/lectern-ai/lectern/ingest"
)

// Extractor implements ingest.PageExtractor for PDF documents.
type Extractor struct{}

// NewExtractor creates a PDF page extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

var _ ingest.PageExtractor = (*Extractor)(nil)

// ExtractPages extracts text page-by-page. Pages the reader cannot
// decode are kept with empty text so page numbering and TotalPages stay
// faithful to the document.
func (e *Extractor) ExtractPages(sourceName string, content []byte) (ingest.Extraction, error) {
	if len(content) == 0 {
		return ingest.Extraction{}, fmt.Errorf("empty PDF content")
	}

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return ingest.Extraction{}, fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]ingest.Page, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := ingest.Page{Number: i}
		page := r.Page(i)
		if !page.V.IsNull() {
			if text, err := page.GetPlainText(nil); err == nil {
				p.Text = ingest.Normalize(strings.TrimSpace(text))
			}
		}
		pages = append(pages, p)
	}

	return ingest.Extraction{
		Doc: lectern.DocumentInfo{
			SourceName: sourceName,
			PageCount:  len(pages),
			SizeBytes:  int64(len(content)),
		},
		Pages: pages,
	}, nil
}
