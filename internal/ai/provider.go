package ai

import (
	"context"
	"fmt"
)

// Provider is a general-purpose LLM completion backend.
type Provider interface {
	// Name returns the provider name (e.g., "claude").
	Name() string

	// Complete sends a prompt and returns the complete response.
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// Request represents an AI completion request.
type Request struct {
	// Prompt is the user's input text.
	Prompt string

	// System is an optional system message to set context.
	System string

	// Model is an optional model override (if empty, uses provider default).
	Model string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// Response represents an AI completion response.
type Response struct {
	Content string
	Model   string
	Usage   Usage
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// NewRequest creates a request with sensible defaults.
func NewRequest(prompt string) *Request {
	return &Request{
		Prompt:      prompt,
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}

// ProviderError wraps a failure talking to an LLM provider.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }
