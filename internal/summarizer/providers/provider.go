// Package providers contains the adapters for the hosted models behind the
// summarization pipeline: an OpenAI-compatible chat completion endpoint and
// a sequence-to-sequence summarization endpoint.
package providers

import (
	"context"
	"time"
)

const (
	// Service names, recorded on remote call errors.
	ServiceChat          = "chat"
	ServiceSummarization = "summarization"
	ServiceEmbedding     = "embedding"

	// DefaultTimeout bounds every remote call.
	DefaultTimeout = 60 * time.Second
)

// ChatRequest is a single-turn instruction prompt.
type ChatRequest struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
	Stop        []string
}

// Completer produces a chat completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// SummarizationParams bound the length of a generated summary, in tokens.
type SummarizationParams struct {
	MinLength int `json:"min_length"`
	MaxLength int `json:"max_length"`
}

// Summarizer produces an abstractive summary of its input.
type Summarizer interface {
	Summarize(ctx context.Context, inputs string, params SummarizationParams) (string, error)
}

// Config holds common configuration for remote providers
type Config struct {
	APIKey  string
	BaseURL string
	ModelID string
	Timeout time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
