// Package ollama provides lectern.Provider and lectern.EmbeddingProvider
// implementations backed by a local Ollama server's native API
// (/api/chat and /api/embed).
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lectern-ai/lectern"
)

// DefaultBaseURL is the standard local Ollama endpoint.
const DefaultBaseURL = "http://localhost:11434"

// Provider implements lectern.Provider using Ollama's /api/chat endpoint.
type Provider struct {
	baseURL string
	model   string
	client  *http.Client
	name    string
	options map[string]any
}

// Option configures a Provider or EmbeddingProvider.
type Option func(*settings)

type settings struct {
	client  *http.Client
	name    string
	options map[string]any
}

// WithHTTPClient sets a custom HTTP client (e.g. for timeouts or proxies).
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.client = c }
}

// WithName sets the provider name returned by Name() (default "ollama").
// Use this to distinguish providers in logs and observability.
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithTemperature sets the sampling temperature for every request.
func WithTemperature(t float64) Option {
	return func(s *settings) { s.options["temperature"] = t }
}

// WithNumCtx sets the model context window size for every request.
func WithNumCtx(n int) Option {
	return func(s *settings) { s.options["num_ctx"] = n }
}

func applyOptions(opts []Option) settings {
	s := settings{
		client:  &http.Client{},
		name:    "ollama",
		options: map[string]any{},
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// New creates an Ollama chat provider. baseURL may be empty, in which
// case DefaultBaseURL is used.
func New(baseURL, model string, opts ...Option) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	s := applyOptions(opts)
	return &Provider{
		baseURL: baseURL,
		model:   model,
		client:  s.client,
		name:    s.name,
		options: s.options,
	}
}

// Name returns the provider name (default "ollama").
func (p *Provider) Name() string { return p.name }

// --- wire types ---

type chatBody struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResult struct {
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
}

// Chat sends a non-streaming chat request and returns the complete response.
func (p *Provider) Chat(ctx context.Context, req lectern.ChatRequest) (lectern.ChatResponse, error) {
	body := chatBody{
		Model:    p.model,
		Messages: make([]chatMessage, len(req.Messages)),
	}
	for i, m := range req.Messages {
		body.Messages[i] = chatMessage{Role: m.Role, Content: m.Content}
	}
	if len(p.options) > 0 {
		body.Options = p.options
	}

	resp, err := postJSON(ctx, p.client, p.baseURL+"/api/chat", p.name, body)
	if err != nil {
		return lectern.ChatResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return lectern.ChatResponse{}, httpErr(resp)
	}

	var result chatResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return lectern.ChatResponse{}, &lectern.ErrLLM{Provider: p.name, Message: fmt.Sprintf("decode response: %v", err)}
	}

	return lectern.ChatResponse{
		Content: result.Message.Content,
		Usage: lectern.Usage{
			InputTokens:  result.PromptEvalCount,
			OutputTokens: result.EvalCount,
		},
	}, nil
}

// postJSON marshals body and POSTs it to url.
func postJSON(ctx context.Context, client *http.Client, url, name string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &lectern.ErrLLM{Provider: name, Message: fmt.Sprintf("marshal request: %v", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &lectern.ErrLLM{Provider: name, Message: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	return client.Do(req)
}

// httpErr reads the response body and returns an ErrHTTP for retry middleware.
// Parses the Retry-After header when present (429/503 responses).
func httpErr(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return &lectern.ErrHTTP{
		Status:     resp.StatusCode,
		Body:       string(body),
		RetryAfter: lectern.ParseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

// Compile-time interface check.
var _ lectern.Provider = (*Provider)(nil)
