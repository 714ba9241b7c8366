// Package llm defines the completion provider contract the synthetic user
// and the judge are built on, plus test and throttling wrappers.
package llm

import "context"

// Message is one turn of a provider conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the input to a single completion call.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	Messages     []Message
	Temperature  float64
	MaxTokens    int
}

// CompletionResponse is the output of a single completion call.
type CompletionResponse struct {
	Content      string
	Model        string
	InputTokens  int
	OutputTokens int
	Cost         float64
	DurationMS   int64
}

// Provider is a chat completion backend.
type Provider interface {
	Name() string
	DefaultModel() string
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}
