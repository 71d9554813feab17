package ai

import "context"

// Completer sends a single prompt to a language model and returns its reply
type Completer interface {
	Complete(ctx context.Context, prompt string) (*Completion, error)
}

// Completion is a model reply
type Completion struct {
	Text  string
	Model string
	Usage *TokenUsage
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}
