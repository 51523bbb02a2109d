package ingest

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor strips markdown formatting by parsing the document
// and collecting its text content, so emphasis markers, link targets,
// and table syntax never reach the chunker.
type MarkdownExtractor struct{}

var _ Extractor = MarkdownExtractor{}

func (MarkdownExtractor) Extract(content []byte) (string, error) {
	gm := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := gm.Parser().Parse(text.NewReader(content))

	var b strings.Builder
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			switch n.(type) {
			case *ast.Paragraph, *ast.Heading, *ast.ListItem, *ast.Blockquote:
				b.WriteString("\n\n")
			}
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(content))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(content))
			}
			b.WriteString("\n\n")
		case *ast.AutoLink:
			b.Write(t.URL(content))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}
