package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resumatch/internal/config"
	"resumatch/internal/errors"
	"resumatch/internal/observability"
	"resumatch/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Service requests resume improvement suggestions
type Service struct {
	completer Completer
	breaker   *CircuitBreaker
	provider  string
	model     string
	template  string
	timeout   time.Duration
	logger    *errors.Logger
	metrics   *observability.Metrics
}

// NewService builds the configured provider. Without an API key the service
// is still returned; every Suggest call then fails with AI_NOT_CONFIGURED.
func NewService(ctx context.Context, cfg *config.AIConfig, logger *errors.Logger, metrics *observability.Metrics) (*Service, error) {
	if cfg.APIKey == "" {
		logger.Warn("No AI API key configured, suggestions are disabled", "provider", cfg.Provider)
		return newService(nil, cfg, logger, metrics), nil
	}

	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"max_tokens", cfg.MaxTokens,
		"temperature", cfg.Temperature,
		"timeout", cfg.Timeout)

	var completer Completer
	switch cfg.Provider {
	case config.ProviderOpenAI:
		completer = NewOpenAIProvider(cfg)
	case config.ProviderGemini:
		provider, err := NewGeminiProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
		completer = provider
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unsupported AI provider: %s", cfg.Provider), nil)
	}

	return newService(completer, cfg, logger, metrics), nil
}

// NewServiceWithCompleter wires an arbitrary Completer, typically a fake.
func NewServiceWithCompleter(completer Completer, cfg *config.AIConfig, logger *errors.Logger, metrics *observability.Metrics) *Service {
	return newService(completer, cfg, logger, metrics)
}

func newService(completer Completer, cfg *config.AIConfig, logger *errors.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		completer: completer,
		breaker:   NewCircuitBreaker("ai-"+cfg.Provider, cfg.CircuitBreaker, logger),
		provider:  cfg.Provider,
		model:     cfg.Model,
		template:  cfg.PromptTemplate(DefaultSuggestionPrompt),
		timeout:   cfg.Timeout,
		logger:    logger,
		metrics:   metrics,
	}
}

// Configured reports whether a provider is available.
func (s *Service) Configured() bool {
	return s.completer != nil
}

func (s *Service) Provider() string {
	return s.provider
}

// Suggest asks the model for three improvements to resumeText for role.
// It never retries; failures come back in the result, not as a panic or error.
func (s *Service) Suggest(ctx context.Context, resumeText, role string) types.SuggestionResult {
	ctx, span := otel.Tracer("resumatch.ai").Start(ctx, "ai.suggest")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", s.provider),
		attribute.String("job.role", role),
		attribute.Int("resume.length", len(resumeText)),
	)

	start := time.Now()
	text, err := s.complete(ctx, BuildPrompt(s.template, role, resumeText))
	elapsed := time.Since(start)

	if err != nil {
		appErr := classifyError(err)
		span.RecordError(appErr)
		span.SetAttributes(attribute.Bool("success", false))
		s.metrics.RecordSuggestion(ctx, s.provider, elapsed, appErr.Code)
		s.logger.LogError(appErr, "Suggestion request failed",
			"provider", s.provider, "role", role, "duration", elapsed)
		return types.SuggestionResult{Err: appErr}
	}

	span.SetAttributes(attribute.Bool("success", true))
	s.metrics.RecordSuggestion(ctx, s.provider, elapsed, "")
	s.logger.Debug("Suggestion request completed",
		"provider", s.provider, "role", role, "duration", elapsed)
	return types.SuggestionResult{Text: text}
}

// GetSuggestions is the fail-soft form of Suggest: it always returns display text.
func (s *Service) GetSuggestions(ctx context.Context, resumeText, role string) string {
	return s.Suggest(ctx, resumeText, role).Display()
}

func (s *Service) complete(ctx context.Context, prompt string) (string, error) {
	if s.completer == nil {
		return "", errors.NewAIError(errors.ErrCodeAINotConfigured,
			fmt.Sprintf("no API key configured for provider %s", s.provider), nil)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	completion, err := s.breaker.Execute(func() (*Completion, error) {
		return s.completer.Complete(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	if completion.Usage != nil {
		s.metrics.RecordTokens(ctx, s.provider,
			int(completion.Usage.InputTokens), int(completion.Usage.OutputTokens))
	}

	text := strings.TrimSpace(completion.Text)
	if text == "" {
		return "", errors.NewAIError(errors.ErrCodeAIEmptyResponse, "model returned an empty reply", nil)
	}
	return text, nil
}

// Stats exposes provider and breaker state.
func (s *Service) Stats() map[string]any {
	return map[string]any{
		"provider":       s.provider,
		"model":          s.model,
		"configured":     s.Configured(),
		"healthy":        s.breaker.IsHealthy(),
		"circuitBreaker": s.breaker.Stats(),
	}
}
