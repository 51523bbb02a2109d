// Package ingest provides text extraction and the indexing pipeline:
// extract pages, chunk them, embed and upsert the resulting records.
package ingest

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/lectern-ai/lectern"
)

// Page is one page of extracted document text. Number is 1-based.
// Text may be empty for pages the extractor could not read; such pages
// are skipped by the pipeline but still count toward TotalPages.
type Page struct {
	Number int
	Text   string
}

// Extraction is the output of a PageExtractor: document-level info plus
// the ordered pages.
type Extraction struct {
	Doc   lectern.DocumentInfo
	Pages []Page
}

// PageExtractor converts raw document bytes into per-page text.
// sourceName is the logical document name carried into every record's
// metadata, typically the file base name.
type PageExtractor interface {
	ExtractPages(sourceName string, content []byte) (Extraction, error)
}

// Extractor converts raw content to a single plain-text body. Formats
// without a page structure (markdown, HTML, plain text) implement this;
// the pipeline treats the result as a one-page document.
type Extractor interface {
	Extract(content []byte) (string, error)
}

// ContentType identifies the MIME type of content for extraction.
type ContentType string

const (
	TypePlainText ContentType = "text/plain"
	TypeHTML      ContentType = "text/html"
	TypeMarkdown  ContentType = "text/markdown"
	TypePDF       ContentType = "application/pdf"
)

// ContentTypeFromExtension maps file extensions to content types.
func ContentTypeFromExtension(ext string) ContentType {
	switch strings.ToLower(ext) {
	case "md", "markdown":
		return TypeMarkdown
	case "html", "htm":
		return TypeHTML
	case "pdf":
		return TypePDF
	default:
		return TypePlainText
	}
}

// Normalize applies NFC normalization and strips carriage returns from
// extracted text. PDF extraction in particular produces decomposed
// accents and stray \r that would otherwise leak into chunk boundaries.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// SinglePage wraps a flat text body as a one-page Extraction.
func SinglePage(sourceName, text string) Extraction {
	return Extraction{
		Doc:   lectern.DocumentInfo{SourceName: sourceName, PageCount: 1},
		Pages: []Page{{Number: 1, Text: Normalize(text)}},
	}
}

// PlainTextExtractor returns content as-is.
type PlainTextExtractor struct{}

func (PlainTextExtractor) Extract(content []byte) (string, error) {
	return string(content), nil
}
