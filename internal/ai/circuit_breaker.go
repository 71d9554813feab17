package ai

import (
	"context"
	stderrors "errors"

	"resumatch/internal/config"
	"resumatch/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker guards a Completer. A nil breaker passes calls straight through.
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[*Completion]
}

// NewCircuitBreaker returns nil when the breaker is disabled.
func NewCircuitBreaker(name string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 || counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		// a caller hanging up says nothing about the provider
		IsSuccessful: func(err error) bool {
			return err == nil || stderrors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.Warn("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker[*Completion](settings)}
}

// Execute runs fn under the breaker.
func (b *CircuitBreaker) Execute(fn func() (*Completion, error)) (*Completion, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

// Stats reports breaker state for the /stats endpoint.
func (b *CircuitBreaker) Stats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{"enabled": false}
	}
	counts := b.cb.Counts()
	return map[string]any{
		"enabled": true,
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts": map[string]uint32{
			"requests":             counts.Requests,
			"totalSuccesses":       counts.TotalSuccesses,
			"totalFailures":        counts.TotalFailures,
			"consecutiveSuccesses": counts.ConsecutiveSuccesses,
			"consecutiveFailures":  counts.ConsecutiveFailures,
		},
	}
}

// IsHealthy is true unless the breaker is open or half-open.
func (b *CircuitBreaker) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}
