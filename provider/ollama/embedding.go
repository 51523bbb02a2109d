package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lectern-ai/lectern"
)

// EmbeddingProvider implements lectern.EmbeddingProvider using Ollama's
// /api/embed endpoint.
type EmbeddingProvider struct {
	baseURL string
	model   string
	dims    int
	client  *http.Client
	name    string
}

// NewEmbedding creates an Ollama embedding provider. dims must match the
// model's output size (e.g. 768 for nomic-embed-text). baseURL may be
// empty, in which case DefaultBaseURL is used.
func NewEmbedding(baseURL, model string, dims int, opts ...Option) *EmbeddingProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	s := applyOptions(opts)
	return &EmbeddingProvider{
		baseURL: baseURL,
		model:   model,
		dims:    dims,
		client:  s.client,
		name:    s.name,
	}
}

// Name returns the provider name (default "ollama").
func (p *EmbeddingProvider) Name() string { return p.name }

// Dimensions returns the configured embedding vector size.
func (p *EmbeddingProvider) Dimensions() int { return p.dims }

type embedBody struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResult struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns one embedding per input text, in input order.
func (p *EmbeddingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := postJSON(ctx, p.client, p.baseURL+"/api/embed", p.name, embedBody{
		Model: p.model,
		Input: texts,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpErr(resp)
	}

	var result embedResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &lectern.ErrLLM{Provider: p.name, Message: fmt.Sprintf("decode response: %v", err)}
	}

	if len(result.Embeddings) != len(texts) {
		return nil, &lectern.ErrLLM{
			Provider: p.name,
			Message:  fmt.Sprintf("got %d embeddings for %d inputs", len(result.Embeddings), len(texts)),
		}
	}
	for i, e := range result.Embeddings {
		if len(e) != p.dims {
			return nil, &lectern.ErrLLM{
				Provider: p.name,
				Message:  fmt.Sprintf("embedding %d has %d dimensions, want %d", i, len(e), p.dims),
			}
		}
	}
	return result.Embeddings, nil
}

// Compile-time interface check.
var _ lectern.EmbeddingProvider = (*EmbeddingProvider)(nil)
