package ai

import (
	"context"
)

// MIMEJSON asks a provider to answer with JSON only.
const MIMEJSON = "application/json"

// CompletionRequest is one prompt sent to a model.
type CompletionRequest struct {
	Prompt           string
	System           string
	Temperature      float32
	MaxTokens        int
	ResponseMIMEType string
}

// CompletionResponse is the model's raw answer.
type CompletionResponse struct {
	Text  string
	Usage TokenUsage
	Model string
}

// TokenUsage tracks costs.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Provider is the interface for all AI backends.
type Provider interface {
	ID() string
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
