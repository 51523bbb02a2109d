package lectern

import "context"

// VectorStore abstracts persistence with nearest-neighbour search over
// chunk records. Implementations index by cosine distance.
type VectorStore interface {
	// Upsert inserts or replaces records by ID. Callers batch their own
	// input; a single call should stay within store-side batch limits.
	Upsert(ctx context.Context, records []Record) error
	// Query returns the topK records nearest to the embedding, ordered by
	// ascending cosine distance.
	Query(ctx context.Context, embedding []float32, topK int) ([]Hit, error)
	// Count returns the number of indexed records.
	Count(ctx context.Context) (int, error)

	// Lifecycle
	Init(ctx context.Context) error
	Close() error
}
