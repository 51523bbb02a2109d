package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lectern-ai/lectern"
)

func TestEmbeddingProvider_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("expected path /api/embed, got %s", r.URL.Path)
		}

		var req embedBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "nomic-embed-text" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Input) != 2 {
			t.Errorf("input = %v", req.Input)
		}

		json.NewEncoder(w).Encode(embedResult{
			Embeddings: [][]float32{{1, 2, 3}, {4, 5, 6}},
		})
	}))
	defer srv.Close()

	p := NewEmbedding(srv.URL, "nomic-embed-text", 3)

	out, err := p.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d embeddings", len(out))
	}
	if out[0][0] != 1 || out[1][2] != 6 {
		t.Errorf("embeddings = %v", out)
	}
}

func TestEmbeddingProvider_EmbedEmptyInput(t *testing.T) {
	p := NewEmbedding("http://unused", "m", 3)
	out, err := p.Embed(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		t.Errorf("expected nil, got %v", out)
	}
}

func TestEmbeddingProvider_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResult{Embeddings: [][]float32{{1, 2, 3}}})
	}))
	defer srv.Close()

	p := NewEmbedding(srv.URL, "m", 3)
	_, err := p.Embed(context.Background(), []string{"a", "b"})

	var llmErr *lectern.ErrLLM
	if !errors.As(err, &llmErr) {
		t.Fatalf("expected ErrLLM, got %v", err)
	}
}

func TestEmbeddingProvider_DimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResult{Embeddings: [][]float32{{1, 2}}})
	}))
	defer srv.Close()

	p := NewEmbedding(srv.URL, "m", 3)
	if _, err := p.Embed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestEmbeddingProvider_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading model"))
	}))
	defer srv.Close()

	p := NewEmbedding(srv.URL, "m", 3)
	_, err := p.Embed(context.Background(), []string{"a"})

	var httpErr *lectern.ErrHTTP
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected ErrHTTP, got %v", err)
	}
	if httpErr.Status != 503 {
		t.Errorf("status = %d", httpErr.Status)
	}
}

func TestEmbeddingProvider_Metadata(t *testing.T) {
	p := NewEmbedding("", "nomic-embed-text", 768)
	if p.Dimensions() != 768 {
		t.Errorf("Dimensions() = %d", p.Dimensions())
	}
	if p.Name() != "ollama" {
		t.Errorf("Name() = %q", p.Name())
	}
}
