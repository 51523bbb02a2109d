package ingest

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// HTMLExtractor pulls the readable article body out of an HTML document,
// discarding navigation, scripts, and boilerplate.
type HTMLExtractor struct{}

var _ Extractor = HTMLExtractor{}

func (HTMLExtractor) Extract(content []byte) (string, error) {
	base, _ := url.Parse("file:///")
	article, err := readability.FromReader(bytes.NewReader(content), base)
	if err != nil {
		return "", fmt.Errorf("html extraction: %w", err)
	}
	return collapseBlankLines(article.TextContent), nil
}

// collapseBlankLines trims each line and caps runs of blank lines at
// one, so extracted bodies do not carry layout whitespace into chunks.
func collapseBlankLines(text string) string {
	var b strings.Builder
	blank := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			blank++
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
			if blank > 0 {
				b.WriteByte('\n')
			}
		}
		b.WriteString(trimmed)
		blank = 0
	}
	return b.String()
}
