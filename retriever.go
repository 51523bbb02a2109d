package lectern

import (
	"context"
	"fmt"
)

// DefaultTopK is the number of hits Retrieve returns when topK <= 0.
const DefaultTopK = 5

// Retriever embeds a query and searches a vector store for the nearest
// chunks.
type Retriever struct {
	store     VectorStore
	embedding EmbeddingProvider
}

// NewRetriever creates a Retriever over the given store and embedding
// provider.
func NewRetriever(store VectorStore, embedding EmbeddingProvider) *Retriever {
	return &Retriever{store: store, embedding: embedding}
}

// Retrieve embeds query and returns up to topK hits ordered by ascending
// distance. topK <= 0 falls back to DefaultTopK.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	embs, err := r.embedding.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embs) == 0 {
		return nil, fmt.Errorf("embed query: no embedding returned")
	}
	hits, err := r.store.Query(ctx, embs[0], topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return hits, nil
}
