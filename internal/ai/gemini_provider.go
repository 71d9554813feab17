package ai

import (
	"context"
	"net/http"

	"resumatch/internal/config"
	"resumatch/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

// GeminiProvider implements Completer for Google Gemini
type GeminiProvider struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float32
}

var _ Completer = (*GeminiProvider)(nil)

func NewGeminiProvider(ctx context.Context, cfg *config.AIConfig) (*GeminiProvider, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Complete asks for free text, no response schema.
func (g *GeminiProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
	ctx, span := otel.Tracer("resumatch.ai.gemini").Start(ctx, "gemini.generate_content")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", config.ProviderGemini),
		attribute.String("ai.model", g.model),
		attribute.Float64("ai.temperature", float64(g.temperature)),
	)

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: int32(g.maxTokens),
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if result == nil || len(result.Candidates) == 0 {
		return nil, errors.NewAIError(errors.ErrCodeAIEmptyResponse, "model returned no candidates", nil)
	}

	completion := &Completion{Text: result.Text(), Model: g.model}
	if md := result.UsageMetadata; md != nil {
		completion.Usage = &TokenUsage{
			InputTokens:  int64(md.PromptTokenCount),
			OutputTokens: int64(md.CandidatesTokenCount),
			TotalTokens:  int64(md.TotalTokenCount),
		}
		span.SetAttributes(attribute.Int64("ai.tokens.total", completion.Usage.TotalTokens))
	}
	return completion, nil
}
