package ingest

import (
	"fmt"
	"unicode/utf8"

	"github.com/lectern-ai/lectern"
	"github.com/lectern-ai/lectern/chunk"
)

// Chunker splits one page of text into chunk texts. chunk.Chunker
// satisfies this; anything with the same shape can be swapped in.
type Chunker interface {
	Chunk(pageText string) []string
}

// Pipeline turns extracted pages into records ready for embedding and
// storage. Embedding and storage are NOT handled here, the Indexer is
// responsible for those.
type Pipeline struct {
	chunker Chunker
	overlap int
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithChunker replaces the chunker built from the config. The overlap
// recorded in chunk metadata still comes from the config.
func WithChunker(c Chunker) PipelineOption {
	return func(p *Pipeline) { p.chunker = c }
}

// NewPipeline creates a pipeline chunking with the given config.
func NewPipeline(cfg chunk.Config, opts ...PipelineOption) (*Pipeline, error) {
	chunker, err := chunk.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	p := &Pipeline{chunker: chunker, overlap: cfg.OverlapChars}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Records chunks every page and assembles the records for one document.
// Chunk indices are global across the document in page order; pages that
// produce no chunks are skipped but still count toward total_pages.
// Record IDs are deterministic, so re-indexing the same document
// overwrites its previous records instead of duplicating them.
func (p *Pipeline) Records(doc lectern.DocumentInfo, pages []Page) []lectern.Record {
	var records []lectern.Record
	globalIdx := 0

	for _, page := range pages {
		chunks := p.chunker.Chunk(page.Text)
		if len(chunks) == 0 {
			continue
		}
		pageChars := utf8.RuneCountInString(page.Text)
		for i, text := range chunks {
			records = append(records, lectern.Record{
				ID:   lectern.ChunkID(doc.SourceName, page.Number, i+1),
				Text: text,
				Meta: lectern.ChunkMeta{
					SourceName:      doc.SourceName,
					PageNumber:      page.Number,
					PageCharCount:   pageChars,
					ChunkIndex:      globalIdx,
					PageChunkIndex:  i,
					PageTotalChunks: len(chunks),
					TotalPages:      doc.PageCount,
					ApproxChars:     utf8.RuneCountInString(text),
					OverlapChars:    p.overlap,
				},
			})
			globalIdx++
		}
	}
	return records
}
