package llm

import (
	"context"
)

// Client interface for LLM API interactions
type Client interface {
	// Generate sends a single-prompt completion request and returns the
	// generated text
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)

	// ChatCompletion sends a multi-message chat completion request
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
