// Command lectern indexes a directory of documents into a vector store
// and answers questions grounded in the indexed passages.
//
// Usage:
//
//	lectern index [-dir documents] [-config lectern.toml]
//	lectern ask [-b] [-config lectern.toml] "question"
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lectern-ai/lectern"
	"github.com/lectern-ai/lectern/ingest"
	"github.com/lectern-ai/lectern/ingest/pdf"
	"github.com/lectern-ai/lectern/internal/config"
	"github.com/lectern-ai/lectern/observer"
	"github.com/lectern-ai/lectern/provider/ollama"
	"github.com/lectern-ai/lectern/store/postgres"
	"github.com/lectern-ai/lectern/store/sqlite"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "index":
		err = runIndex(os.Args[2:])
	case "ask":
		err = runAsk(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  lectern index [-dir documents] [-config lectern.toml]
  lectern ask [-b] [-config lectern.toml] "question"`)
}

// deps holds the wired runtime pieces shared by both subcommands.
type deps struct {
	cfg       config.Config
	logger    *slog.Logger
	store     lectern.VectorStore
	embedding lectern.EmbeddingProvider
	provider  lectern.Provider
	shutdown  func(context.Context) error
}

func setup(ctx context.Context, configPath string) (*deps, error) {
	cfg := config.Load(configPath)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Observability is optional; when disabled everything runs unwrapped.
	var inst *observer.Instruments
	shutdown := func(context.Context) error { return nil }
	if cfg.Observer.Enabled {
		var err error
		inst, shutdown, err = observer.Init(ctx)
		if err != nil {
			return nil, fmt.Errorf("init observer: %w", err)
		}
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	var embedding lectern.EmbeddingProvider = ollama.NewEmbedding(
		cfg.Embedding.BaseURL, cfg.Embedding.Model, cfg.Embedding.Dimensions)
	var provider lectern.Provider = ollama.New(cfg.LLM.BaseURL, cfg.LLM.Model)

	if inst != nil {
		store = observer.WrapStore(store, cfg.Database.Backend, inst)
		embedding = observer.WrapEmbedding(embedding, cfg.Embedding.Model, inst)
		provider = observer.WrapProvider(provider, cfg.LLM.Model, inst)
	}

	// Retries sit outside the instrumented layer so each attempt is traced.
	embedding = lectern.WithEmbeddingRetry(embedding, lectern.RetryLogger(logger))
	provider = lectern.WithRetry(provider, lectern.RetryLogger(logger))

	return &deps{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		embedding: embedding,
		provider:  provider,
		shutdown:  shutdown,
	}, nil
}

func openStore(ctx context.Context, cfg config.Config) (lectern.VectorStore, error) {
	switch cfg.Database.Backend {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return postgres.New(pool, postgres.WithEmbeddingDimension(cfg.Embedding.Dimensions)), nil
	default:
		return sqlite.New(cfg.Database.Path), nil
	}
}

func runIndex(args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	dir := fs.String("dir", "documents", "directory of documents to index")
	configPath := fs.String("config", "", "path to lectern.toml")
	fs.Parse(args)

	ctx := context.Background()
	d, err := setup(ctx, *configPath)
	if err != nil {
		return err
	}
	defer d.store.Close()
	defer d.shutdown(ctx) //nolint:errcheck

	ix, err := newIndexer(d)
	if err != nil {
		return err
	}

	stats, err := ix.IndexDir(ctx, *dir)
	if err != nil {
		return err
	}

	fmt.Printf("indexed %d documents (%d records, %d skipped)\n",
		stats.Documents, stats.Records, stats.Skipped)
	return nil
}

func runAsk(args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	rebuild := fs.Bool("b", false, "rebuild the index from -dir before answering")
	dir := fs.String("dir", "documents", "directory of documents to index")
	configPath := fs.String("config", "", "path to lectern.toml")
	fs.Parse(args)

	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		return fmt.Errorf("ask: question required")
	}

	ctx := context.Background()
	d, err := setup(ctx, *configPath)
	if err != nil {
		return err
	}
	defer d.store.Close()
	defer d.shutdown(ctx) //nolint:errcheck

	// Reuse the existing index unless asked to rebuild or it is empty.
	count, err := d.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count records: %w", err)
	}
	if *rebuild || count == 0 {
		ix, err := newIndexer(d)
		if err != nil {
			return err
		}
		stats, err := ix.IndexDir(ctx, *dir)
		if err != nil {
			return err
		}
		d.logger.Info("index rebuilt",
			"documents", stats.Documents, "records", stats.Records, "skipped", stats.Skipped)
	}

	retriever := lectern.NewRetriever(d.store, d.embedding)
	answerer := lectern.NewAnswerer(retriever, d.provider,
		lectern.WithTopK(d.cfg.Retrieval.TopK))

	ans, err := answerer.Answer(ctx, question)
	if err != nil {
		return err
	}

	for i, hit := range ans.Hits {
		snippet := hit.Text
		if r := []rune(snippet); len(r) > 120 {
			snippet = string(r[:120]) + "..."
		}
		fmt.Printf("[%d] %s p.%d (distance %.4f)\n    %s\n",
			i+1, hit.Meta.SourceName, hit.Meta.PageNumber, hit.Distance,
			strings.ReplaceAll(snippet, "\n", " "))
	}
	if len(ans.Hits) > 0 {
		fmt.Println()
	}
	fmt.Println(ans.Text)
	if ans.Usage.InputTokens > 0 || ans.Usage.OutputTokens > 0 {
		fmt.Printf("\n(%d input / %d output tokens)\n",
			ans.Usage.InputTokens, ans.Usage.OutputTokens)
	}
	return nil
}

func newIndexer(d *deps) (*ingest.Indexer, error) {
	pipeline, err := ingest.NewPipeline(d.cfg.ChunkConfig())
	if err != nil {
		return nil, err
	}
	return ingest.NewIndexer(d.store, d.embedding, pipeline,
		ingest.WithPageExtractor(ingest.TypePDF, pdf.NewExtractor()),
		ingest.WithLogger(d.logger),
	), nil
}
