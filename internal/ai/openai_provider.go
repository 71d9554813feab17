package ai

import (
	"context"
	"net/http"

	"resumatch/internal/config"
	"resumatch/internal/errors"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// OpenAIProvider talks to the chat completions API or any compatible endpoint
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

var _ Completer = (*OpenAIProvider)(nil)

func NewOpenAIProvider(cfg *config.AIConfig) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Complete sends prompt as the only user message.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
	ctx, span := otel.Tracer("resumatch.ai.openai").Start(ctx, "openai.chat_completion")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", config.ProviderOpenAI),
		attribute.String("ai.model", p.model),
		attribute.Int("ai.max_tokens", p.maxTokens),
	)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.NewAIError(errors.ErrCodeAIEmptyResponse, "model returned no choices", nil)
	}

	usage := &TokenUsage{
		InputTokens:  int64(resp.Usage.PromptTokens),
		OutputTokens: int64(resp.Usage.CompletionTokens),
		TotalTokens:  int64(resp.Usage.TotalTokens),
	}
	span.SetAttributes(attribute.Int64("ai.tokens.total", usage.TotalTokens))

	return &Completion{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: usage,
	}, nil
}
