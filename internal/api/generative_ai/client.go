package generativeAI

import "context"

// Client is a text-in/text-out chat completion provider.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
	Provider() string
	Model() string
}

// CompletionRequest is a single-turn completion. An empty Model uses the client's default.
type CompletionRequest struct {
	System      string
	Prompt      string
	Model       string
	Temperature float64
	MaxTokens   int
}

type CompletionResult struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}
