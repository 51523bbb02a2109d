// Package sqlite implements lectern.VectorStore using pure-Go SQLite
// with in-process brute-force vector search. Zero CGO required.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/lectern-ai/lectern"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// StoreOption configures a SQLite Store.
type StoreOption func(*Store)

// WithLogger sets a structured logger for the store.
// When set, the store emits debug logs for every operation including
// timing, row counts, and key parameters. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// Store implements lectern.VectorStore backed by a local SQLite file.
// Embeddings are stored as JSON text and vector search is done
// in-process using brute-force cosine similarity, which is fine for
// indexes up to a few hundred thousand records.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ lectern.VectorStore = (*Store)(nil)

// nopLogger is a logger that discards all output.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// New creates a Store using a local SQLite file at dbPath.
// It opens a single shared connection pool with SetMaxOpenConns(1) so that
// all goroutines serialize through one connection, eliminating SQLITE_BUSY
// errors caused by concurrent writers opening independent connections.
func New(dbPath string, opts ...StoreOption) *Store {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		// sql.Open only fails when the driver is not registered; with the
		// blank import above that never happens.
		panic(fmt.Sprintf("sqlite: open driver: %v", err))
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db, logger: nopLogger}
	for _, o := range opts {
		o(s)
	}
	s.logger.Debug("sqlite: store opened", "path", dbPath)
	return s
}

// Init creates the records table.
func (s *Store) Init(ctx context.Context) error {
	start := time.Now()
	s.logger.Debug("sqlite: init started")

	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		meta TEXT NOT NULL,
		embedding TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_records_id ON records(id)`)

	s.logger.Info("sqlite: init completed", "duration", time.Since(start))
	return nil
}

// Upsert inserts or replaces records by ID in a single transaction.
func (s *Store) Upsert(ctx context.Context, records []lectern.Record) error {
	if len(records) == 0 {
		return nil
	}
	start := time.Now()
	s.logger.Debug("sqlite: upsert", "count", len(records))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO records (id, text, meta, embedding) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		metaJSON, err := json.Marshal(r.Meta)
		if err != nil {
			return fmt.Errorf("marshal meta %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, r.ID, r.Text, string(metaJSON), serializeEmbedding(r.Embedding)); err != nil {
			s.logger.Error("sqlite: upsert failed", "id", r.ID, "error", err, "duration", time.Since(start))
			return fmt.Errorf("upsert record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	s.logger.Debug("sqlite: upsert ok", "count", len(records), "duration", time.Since(start))
	return nil
}

// Query performs brute-force cosine similarity search over all records
// and returns the topK nearest, ordered by ascending distance.
func (s *Store) Query(ctx context.Context, embedding []float32, topK int) ([]lectern.Hit, error) {
	start := time.Now()
	s.logger.Debug("sqlite: query", "top_k", topK, "embedding_dim", len(embedding))

	rows, err := s.db.QueryContext(ctx, `SELECT id, text, meta, embedding FROM records`)
	if err != nil {
		s.logger.Error("sqlite: query failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var hits []lectern.Hit
	scanned := 0

	for rows.Next() {
		var rec lectern.Record
		var metaJSON, embJSON string
		if err := rows.Scan(&rec.ID, &rec.Text, &metaJSON, &embJSON); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		scanned++
		if err := json.Unmarshal([]byte(metaJSON), &rec.Meta); err != nil {
			continue
		}
		stored, err := deserializeEmbedding(embJSON)
		if err != nil {
			continue
		}
		hits = append(hits, lectern.Hit{
			Record:   rec,
			Distance: 1 - cosineSimilarity(embedding, stored),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}

	s.logger.Debug("sqlite: query ok", "scanned", scanned, "returned", len(hits), "duration", time.Since(start))
	return hits, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// cosineSimilarity computes cosine similarity between two vectors.
// Returns 0 for mismatched lengths or zero vectors.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return float32(dot / denom)
}

func serializeEmbedding(embedding []float32) string {
	data, _ := json.Marshal(embedding)
	return string(data)
}

func deserializeEmbedding(s string) ([]float32, error) {
	var v []float32
	err := json.Unmarshal([]byte(s), &v)
	return v, err
}
