package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lectern-ai/lectern"
	"github.com/lectern-ai/lectern/chunk"
)

type mockStore struct {
	upserts [][]lectern.Record
	err     error
}

func (m *mockStore) Upsert(ctx context.Context, records []lectern.Record) error {
	if m.err != nil {
		return m.err
	}
	batch := make([]lectern.Record, len(records))
	copy(batch, records)
	m.upserts = append(m.upserts, batch)
	return nil
}

func (m *mockStore) Query(ctx context.Context, embedding []float32, topK int) ([]lectern.Hit, error) {
	return nil, nil
}

func (m *mockStore) Count(ctx context.Context) (int, error) {
	n := 0
	for _, b := range m.upserts {
		n += len(b)
	}
	return n, nil
}

func (m *mockStore) Init(ctx context.Context) error { return nil }
func (m *mockStore) Close() error                   { return nil }

type mockEmbedding struct {
	calls [][]string
	err   error
}

func (m *mockEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.calls = append(m.calls, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 0, 0}
	}
	return out, nil
}

func (m *mockEmbedding) Dimensions() int { return 3 }
func (m *mockEmbedding) Name() string    { return "mock-embed" }

func newTestIndexer(t *testing.T, store *mockStore, emb *mockEmbedding, opts ...IndexerOption) *Indexer {
	t.Helper()
	p, err := NewPipeline(chunk.Config{MaxChars: 60, MinChars: 10, OverlapChars: 0, SentenceSplit: true})
	if err != nil {
		t.Fatal(err)
	}
	return NewIndexer(store, emb, p, opts...)
}

func TestIndexBytesPlainText(t *testing.T) {
	store := &mockStore{}
	emb := &mockEmbedding{}
	ix := newTestIndexer(t, store, emb)

	res, err := ix.IndexBytes(context.Background(), []byte("A short note about nothing much."), "note.txt")
	if err != nil {
		t.Fatal(err)
	}
	if res.RecordCount != 1 {
		t.Fatalf("RecordCount = %d", res.RecordCount)
	}
	if len(store.upserts) != 1 || len(store.upserts[0]) != 1 {
		t.Fatalf("upserts = %+v", store.upserts)
	}

	rec := store.upserts[0][0]
	if rec.ID != "note.txt#p1#c1" {
		t.Errorf("ID = %q", rec.ID)
	}
	if len(rec.Embedding) != 3 {
		t.Errorf("embedding not populated: %v", rec.Embedding)
	}
}

func TestIndexBytesEmptyDocument(t *testing.T) {
	store := &mockStore{}
	ix := newTestIndexer(t, store, &mockEmbedding{})

	res, err := ix.IndexBytes(context.Background(), []byte("   \n  "), "blank.txt")
	if err != nil {
		t.Fatal(err)
	}
	if res.RecordCount != 0 {
		t.Errorf("RecordCount = %d", res.RecordCount)
	}
	if len(store.upserts) != 0 {
		t.Errorf("unexpected upserts: %+v", store.upserts)
	}
}

func TestIndexerEmbedBatching(t *testing.T) {
	store := &mockStore{}
	emb := &mockEmbedding{}
	ix := newTestIndexer(t, store, emb, WithEmbedBatchSize(2))

	// Four sentences that each become their own chunk at MaxChars 60.
	text := "Alpha sentence padding out to length. Bravo sentence padding out to length. Charlie sentence padding out to length. Delta sentence padding out to length."
	res, err := ix.IndexBytes(context.Background(), []byte(text), "doc.txt")
	if err != nil {
		t.Fatal(err)
	}
	if res.RecordCount != 4 {
		t.Fatalf("RecordCount = %d", res.RecordCount)
	}
	if len(emb.calls) != 2 {
		t.Fatalf("embed calls = %d, want 2", len(emb.calls))
	}
	for i, call := range emb.calls {
		if len(call) != 2 {
			t.Errorf("call %d size = %d", i, len(call))
		}
	}
}

func TestIndexerUpsertBatching(t *testing.T) {
	store := &mockStore{}
	ix := newTestIndexer(t, store, &mockEmbedding{}, WithUpsertBatchSize(3))

	text := "Alpha sentence padding out to length. Bravo sentence padding out to length. Charlie sentence padding out to length. Delta sentence padding out to length."
	if _, err := ix.IndexBytes(context.Background(), []byte(text), "doc.txt"); err != nil {
		t.Fatal(err)
	}
	if len(store.upserts) != 2 {
		t.Fatalf("upsert batches = %d, want 2", len(store.upserts))
	}
	if len(store.upserts[0]) != 3 || len(store.upserts[1]) != 1 {
		t.Errorf("batch sizes = %d, %d", len(store.upserts[0]), len(store.upserts[1]))
	}
}

func TestIndexerStoreErrorAborts(t *testing.T) {
	store := &mockStore{err: errors.New("connection refused")}
	ix := newTestIndexer(t, store, &mockEmbedding{})

	_, err := ix.IndexBytes(context.Background(), []byte("Some content worth storing."), "doc.txt")
	if err == nil {
		t.Fatal("expected store error to propagate")
	}
}

func TestIndexDirSortedAndSkipsSubdirs(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("b.txt", "Content of document bee.")
	write("a.txt", "Content of document ay.")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	store := &mockStore{}
	ix := newTestIndexer(t, store, &mockEmbedding{})

	stats, err := ix.IndexDir(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Documents != 2 || stats.Records != 2 || stats.Skipped != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if store.upserts[0][0].Meta.SourceName != "a.txt" {
		t.Errorf("first indexed = %q, want a.txt", store.upserts[0][0].Meta.SourceName)
	}
}

func TestIndexDirEmbedErrorAborts(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("Some content."), 0o644); err != nil {
		t.Fatal(err)
	}
	ix := newTestIndexer(t, &mockStore{}, &mockEmbedding{err: errors.New("model not loaded")})

	if _, err := ix.IndexDir(context.Background(), dir); err == nil {
		t.Fatal("expected embed error to propagate")
	}
}

type failingExtractor struct{}

func (failingExtractor) Extract([]byte) (string, error) {
	return "", errors.New("corrupt stream")
}

func TestIndexDirSkipsFailedExtraction(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "good.md"), []byte("Fine content here."), 0o644); err != nil {
		t.Fatal(err)
	}

	store := &mockStore{}
	ix := newTestIndexer(t, store, &mockEmbedding{},
		WithExtractor(TypePlainText, failingExtractor{}))

	stats, err := ix.IndexDir(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Skipped != 1 || stats.Documents != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}
