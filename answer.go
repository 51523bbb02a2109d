package lectern

import (
	"context"
	"fmt"
	"strings"
)

const defaultAnswerSystem = `You are a careful assistant that answers questions using only the provided context passages. Cite passages with bracketed numbers like [1] or [2]. If the context does not contain the answer, say so instead of guessing.`

// Answer is a generated answer plus the hits it was grounded on. Hits
// are in the order they were numbered in the prompt, so citation [1]
// refers to Hits[0].
type Answer struct {
	Text  string
	Hits  []Hit
	Usage Usage
}

// Answerer runs retrieval-augmented generation: retrieve the nearest
// chunks, assemble a grounded prompt, and ask the chat provider.
type Answerer struct {
	retriever *Retriever
	provider  Provider
	topK      int
	system    string
}

// AnswerOption configures an Answerer.
type AnswerOption func(*Answerer)

// WithTopK sets how many chunks are retrieved per question (default 5).
func WithTopK(k int) AnswerOption {
	return func(a *Answerer) { a.topK = k }
}

// WithSystemPrompt replaces the default grounding system prompt.
func WithSystemPrompt(s string) AnswerOption {
	return func(a *Answerer) { a.system = s }
}

// NewAnswerer creates an Answerer over the given retriever and provider.
func NewAnswerer(retriever *Retriever, provider Provider, opts ...AnswerOption) *Answerer {
	a := &Answerer{
		retriever: retriever,
		provider:  provider,
		topK:      DefaultTopK,
		system:    defaultAnswerSystem,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Answer retrieves context for question and generates a cited answer.
// Retrieval and generation failures both surface as errors; an empty
// index yields an Answer with no hits and no generation call.
func (a *Answerer) Answer(ctx context.Context, question string) (Answer, error) {
	hits, err := a.retriever.Retrieve(ctx, question, a.topK)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve: %w", err)
	}
	if len(hits) == 0 {
		return Answer{Text: "The index contains no matching passages for this question."}, nil
	}

	prompt := buildGroundedPrompt(question, hits)
	resp, err := a.provider.Chat(ctx, ChatRequest{
		Messages: []ChatMessage{
			SystemMessage(a.system),
			UserMessage(prompt),
		},
	})
	if err != nil {
		return Answer{}, fmt.Errorf("generate: %w", err)
	}

	return Answer{Text: resp.Content, Hits: hits, Usage: resp.Usage}, nil
}

// buildGroundedPrompt numbers each hit and labels it with its source
// document and page so the model can cite them.
func buildGroundedPrompt(question string, hits []Hit) string {
	var b strings.Builder
	b.WriteString("Context passages:\n\n")
	for i, h := range hits {
		fmt.Fprintf(&b, "[%d] %s, page %d:\n%s\n\n",
			i+1, h.Meta.SourceName, h.Meta.PageNumber, h.Text)
	}
	fmt.Fprintf(&b, "Question: %s", question)
	return b.String()
}
