// Package llm provides LLM provider clients and the resilience wrapper
// used by the chat pipeline.
package llm

import (
	"context"
)

// StreamCallback is called for each token during streaming.
type StreamCallback func(token string, index int) error

// Request represents a completion request.
type Request struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
}

// ChatMessage represents a chat message in provider wire form.
// Role is the lowercase provider role ("system", "user", "assistant").
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response represents a completion response.
type Response struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Provider is the interface for upstream text-generation providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *Request) (*Response, error)

	// CompleteStream sends a streaming completion request. The callback
	// receives each non-empty content delta in order.
	CompleteStream(ctx context.Context, req *Request, callback StreamCallback) (*Response, error)

	// Name returns the provider name.
	Name() string
}
