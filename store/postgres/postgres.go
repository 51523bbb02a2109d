// Package postgres implements lectern.VectorStore using PostgreSQL with
// pgvector for native vector similarity search.
//
// The Store accepts an externally-owned *pgxpool.Pool via constructor
// injection. The caller creates and closes the pool; Close is a no-op.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lectern-ai/lectern"
)

// Store implements lectern.VectorStore backed by PostgreSQL with pgvector.
// Vector search uses an HNSW index with cosine distance.
type Store struct {
	pool *pgxpool.Pool
	cfg  pgConfig
}

// pgConfig holds store configuration set via Option functions.
type pgConfig struct {
	embeddingDimension int // 0 = untyped vector
	hnswM              int // 0 = pgvector default (16)
	hnswEFConstruction int // 0 = pgvector default (64)
	hnswEFSearch       int // 0 = pgvector default (40)
}

// Option configures a PostgreSQL Store.
type Option func(*pgConfig)

// WithEmbeddingDimension sets the vector column dimension (e.g. 768).
// When set, CREATE TABLE uses vector(N) instead of untyped vector, enabling
// better index optimization and catching dimension mismatches at insert time.
// Only affects new table creation (no ALTER on existing tables).
func WithEmbeddingDimension(dim int) Option {
	return func(c *pgConfig) { c.embeddingDimension = dim }
}

// WithHNSWM sets the HNSW m parameter (max connections per node).
// Higher values improve recall at the cost of memory. Default: pgvector's 16.
func WithHNSWM(m int) Option {
	return func(c *pgConfig) { c.hnswM = m }
}

// WithEFConstruction sets the HNSW ef_construction parameter (build-time
// candidate list size). Higher values improve index quality at the cost of
// slower builds. Default: pgvector's 64.
func WithEFConstruction(ef int) Option {
	return func(c *pgConfig) { c.hnswEFConstruction = ef }
}

// WithEFSearch sets the HNSW ef_search parameter (query-time candidate list
// size). Higher values improve recall at the cost of latency. Default:
// pgvector's 40. Applied during Init().
func WithEFSearch(ef int) Option {
	return func(c *pgConfig) { c.hnswEFSearch = ef }
}

var _ lectern.VectorStore = (*Store)(nil)

// New creates a Store using an existing pgxpool.Pool.
// The caller owns the pool and is responsible for closing it.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	var cfg pgConfig
	for _, o := range opts {
		o(&cfg)
	}
	return &Store{pool: pool, cfg: cfg}
}

// vectorType returns "vector" or "vector(N)" depending on config.
func (s *Store) vectorType() string {
	if s.cfg.embeddingDimension > 0 {
		return fmt.Sprintf("vector(%d)", s.cfg.embeddingDimension)
	}
	return "vector"
}

// hnswWithClause returns the WITH (...) clause for HNSW index creation,
// or an empty string if no tuning params are set.
func (s *Store) hnswWithClause() string {
	var parts []string
	if s.cfg.hnswM > 0 {
		parts = append(parts, fmt.Sprintf("m = %d", s.cfg.hnswM))
	}
	if s.cfg.hnswEFConstruction > 0 {
		parts = append(parts, fmt.Sprintf("ef_construction = %d", s.cfg.hnswEFConstruction))
	}
	if len(parts) == 0 {
		return ""
	}
	return " WITH (" + strings.Join(parts, ", ") + ")"
}

// Init creates the pgvector extension, the records table, and indexes.
// Safe to call multiple times (all statements are idempotent).
func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			meta JSONB NOT NULL,
			embedding %s NOT NULL
		)`, s.vectorType()),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS records_embedding_idx ON records USING hnsw (embedding vector_cosine_ops)%s`, s.hnswWithClause()),
		`CREATE INDEX IF NOT EXISTS records_source_idx ON records ((meta->>'source_name'))`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: init: %w", err)
		}
	}

	if s.cfg.hnswEFSearch > 0 {
		if _, err := s.pool.Exec(ctx, fmt.Sprintf("SET hnsw.ef_search = %d", s.cfg.hnswEFSearch)); err != nil {
			return fmt.Errorf("postgres: set ef_search: %w", err)
		}
	}

	return nil
}

// Upsert inserts or replaces records by ID in one transaction.
func (s *Store) Upsert(ctx context.Context, records []lectern.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, r := range records {
		metaJSON, err := json.Marshal(r.Meta)
		if err != nil {
			return fmt.Errorf("postgres: marshal meta %s: %w", r.ID, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO records (id, text, meta, embedding)
			 VALUES ($1, $2, $3, $4::vector)
			 ON CONFLICT (id) DO UPDATE SET
			   text = EXCLUDED.text,
			   meta = EXCLUDED.meta,
			   embedding = EXCLUDED.embedding`,
			r.ID, r.Text, metaJSON, serializeEmbedding(r.Embedding))
		if err != nil {
			return fmt.Errorf("postgres: upsert record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit upsert: %w", err)
	}
	return nil
}

// Query performs vector similarity search using pgvector's cosine
// distance operator with the HNSW index.
func (s *Store) Query(ctx context.Context, embedding []float32, topK int) ([]lectern.Hit, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, text, meta, embedding <=> $1::vector AS distance
		 FROM records
		 ORDER BY embedding <=> $1::vector
		 LIMIT $2`,
		serializeEmbedding(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("postgres: query records: %w", err)
	}
	defer rows.Close()

	var hits []lectern.Hit
	for rows.Next() {
		var h lectern.Hit
		var metaJSON []byte
		if err := rows.Scan(&h.ID, &h.Text, &metaJSON, &h.Distance); err != nil {
			return nil, fmt.Errorf("postgres: scan record: %w", err)
		}
		if err := json.Unmarshal(metaJSON, &h.Meta); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal meta %s: %w", h.ID, err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate records: %w", err)
	}
	return hits, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count records: %w", err)
	}
	return n, nil
}

// Close is a no-op; the pool is owned by the caller.
func (s *Store) Close() error { return nil }

// serializeEmbedding formats a vector as a pgvector literal: [0.1,0.2,...].
func serializeEmbedding(embedding []float32) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
