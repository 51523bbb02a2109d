package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lectern-ai/lectern"
)

// Indexer provides end-to-end indexing: extract pages, chunk, embed,
// and upsert into the vector store.
type Indexer struct {
	store     lectern.VectorStore
	embedding lectern.EmbeddingProvider
	pipeline  *Pipeline

	pageExtractors map[ContentType]PageExtractor
	extractors     map[ContentType]Extractor

	embedBatch  int
	upsertBatch int
	logger      *slog.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithEmbedBatchSize sets the number of texts per Embed call (default 64).
func WithEmbedBatchSize(n int) IndexerOption {
	return func(ix *Indexer) { ix.embedBatch = n }
}

// WithUpsertBatchSize sets the number of records per Upsert call
// (default 5000).
func WithUpsertBatchSize(n int) IndexerOption {
	return func(ix *Indexer) { ix.upsertBatch = n }
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(l *slog.Logger) IndexerOption {
	return func(ix *Indexer) { ix.logger = l }
}

// WithExtractor registers an Extractor for a content type.
func WithExtractor(ct ContentType, e Extractor) IndexerOption {
	return func(ix *Indexer) { ix.extractors[ct] = e }
}

// WithPageExtractor registers a PageExtractor for a content type.
func WithPageExtractor(ct ContentType, e PageExtractor) IndexerOption {
	return func(ix *Indexer) { ix.pageExtractors[ct] = e }
}

// NewIndexer creates an Indexer with sensible defaults. Plain text,
// HTML, and markdown are handled out of the box; register a PDF
// extractor with WithPageExtractor (see the ingest/pdf subpackage).
func NewIndexer(store lectern.VectorStore, emb lectern.EmbeddingProvider, pipeline *Pipeline, opts ...IndexerOption) *Indexer {
	ix := &Indexer{
		store:          store,
		embedding:      emb,
		pipeline:       pipeline,
		pageExtractors: map[ContentType]PageExtractor{},
		extractors: map[ContentType]Extractor{
			TypePlainText: PlainTextExtractor{},
			TypeHTML:      HTMLExtractor{},
			TypeMarkdown:  MarkdownExtractor{},
		},
		embedBatch:  64,
		upsertBatch: 5000,
		logger:      nopLogger,
	}
	for _, o := range opts {
		o(ix)
	}
	return ix
}

// IndexResult holds the outcome of indexing one document.
type IndexResult struct {
	Doc         lectern.DocumentInfo
	RecordCount int
}

// IndexStats holds the outcome of indexing a directory.
type IndexStats struct {
	Documents int
	Skipped   int
	Records   int
}

// IndexFile extracts, chunks, embeds, and stores one file. The record
// source name is the file's base name.
func (ix *Indexer) IndexFile(ctx context.Context, path string) (IndexResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return IndexResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ix.IndexBytes(ctx, content, filepath.Base(path))
}

// IndexBytes indexes raw content, detecting the content type from the
// source name's extension.
func (ix *Indexer) IndexBytes(ctx context.Context, content []byte, sourceName string) (IndexResult, error) {
	ext := strings.TrimPrefix(filepath.Ext(sourceName), ".")
	ct := ContentTypeFromExtension(ext)

	extraction, err := ix.extract(ct, sourceName, content)
	if err != nil {
		return IndexResult{}, fmt.Errorf("extract %s: %w", sourceName, err)
	}

	records := ix.pipeline.Records(extraction.Doc, extraction.Pages)
	if len(records) == 0 {
		ix.logger.Warn("document produced no chunks", "source", sourceName)
		return IndexResult{Doc: extraction.Doc}, nil
	}

	if err := ix.embedRecords(ctx, records); err != nil {
		return IndexResult{}, err
	}
	if err := ix.upsertRecords(ctx, records); err != nil {
		return IndexResult{}, err
	}

	ix.logger.Info("indexed document",
		"source", sourceName,
		"pages", extraction.Doc.PageCount,
		"records", len(records))

	return IndexResult{Doc: extraction.Doc, RecordCount: len(records)}, nil
}

// IndexDir indexes every supported file in dir in sorted name order.
// Extraction failures are logged and skipped; embedding and store
// failures abort the run, since continuing would leave the index
// silently incomplete.
func (ix *Indexer) IndexDir(ctx context.Context, dir string) (IndexStats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return IndexStats{}, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var stats IndexStats
	for _, name := range names {
		path := filepath.Join(dir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			ix.logger.Warn("skipping document", "source", name, "error", err)
			stats.Skipped++
			continue
		}

		ext := strings.TrimPrefix(filepath.Ext(name), ".")
		extraction, err := ix.extract(ContentTypeFromExtension(ext), name, content)
		if err != nil {
			ix.logger.Warn("skipping document", "source", name, "error", err)
			stats.Skipped++
			continue
		}

		records := ix.pipeline.Records(extraction.Doc, extraction.Pages)
		if len(records) == 0 {
			ix.logger.Warn("document produced no chunks", "source", name)
			stats.Skipped++
			continue
		}

		if err := ix.embedRecords(ctx, records); err != nil {
			return stats, err
		}
		if err := ix.upsertRecords(ctx, records); err != nil {
			return stats, err
		}

		ix.logger.Info("indexed document",
			"source", name,
			"pages", extraction.Doc.PageCount,
			"records", len(records))
		stats.Documents++
		stats.Records += len(records)
	}
	return stats, nil
}

// nopLogger discards all output. Used when WithLogger is not set.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

func (ix *Indexer) extract(ct ContentType, sourceName string, content []byte) (Extraction, error) {
	if pe, ok := ix.pageExtractors[ct]; ok {
		return pe.ExtractPages(sourceName, content)
	}
	e, ok := ix.extractors[ct]
	if !ok {
		e = PlainTextExtractor{}
	}
	text, err := e.Extract(content)
	if err != nil {
		return Extraction{}, err
	}
	return SinglePage(sourceName, text), nil
}

// embedRecords fills in embeddings in batches of embedBatch.
func (ix *Indexer) embedRecords(ctx context.Context, records []lectern.Record) error {
	for i := 0; i < len(records); i += ix.embedBatch {
		end := i + ix.embedBatch
		if end > len(records) {
			end = len(records)
		}
		batch := records[i:end]
		texts := make([]string, len(batch))
		for j, r := range batch {
			texts[j] = r.Text
		}
		embeddings, err := ix.embedding.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch %d-%d: %w", i, end, err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embed batch %d-%d: got %d embeddings for %d texts", i, end, len(embeddings), len(batch))
		}
		for j := range batch {
			records[i+j].Embedding = embeddings[j]
		}
	}
	return nil
}

// upsertRecords writes records in batches of upsertBatch.
func (ix *Indexer) upsertRecords(ctx context.Context, records []lectern.Record) error {
	for i := 0; i < len(records); i += ix.upsertBatch {
		end := i + ix.upsertBatch
		if end > len(records) {
			end = len(records)
		}
		if err := ix.store.Upsert(ctx, records[i:end]); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}
