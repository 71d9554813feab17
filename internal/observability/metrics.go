package observability

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the application instruments. A nil *Metrics records nothing.
type Metrics struct {
	// matching
	MatchCount     metric.Int64Counter
	MatchScore     metric.Float64Histogram
	ExtractionTime metric.Float64Histogram
	ExtractedBytes metric.Int64Histogram
	ReportCount    metric.Int64Counter

	// suggestions
	SuggestionTime   metric.Float64Histogram
	SuggestionCount  metric.Int64Counter
	SuggestionErrors metric.Int64Counter
	TokenUsage       metric.Int64Histogram

	// http
	HTTPRequestCount metric.Int64Counter
	RateLimitHits    metric.Int64Counter
	CertReloadCount  metric.Int64Counter
}

// NewMetrics creates every instrument on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.MatchCount, err = meter.Int64Counter(
		"resumatch_matches_total",
		metric.WithDescription("Resumes matched against a role"),
	); err != nil {
		return nil, err
	}
	if m.MatchScore, err = meter.Float64Histogram(
		"resumatch_match_score",
		metric.WithDescription("Distribution of match scores"),
		metric.WithUnit("%"),
		metric.WithExplicitBucketBoundaries(0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100),
	); err != nil {
		return nil, err
	}
	if m.ExtractionTime, err = meter.Float64Histogram(
		"resumatch_extraction_duration_seconds",
		metric.WithDescription("Time spent extracting text from uploaded documents"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.ExtractedBytes, err = meter.Int64Histogram(
		"resumatch_extraction_input_bytes",
		metric.WithDescription("Size of documents handed to the extractor"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if m.ReportCount, err = meter.Int64Counter(
		"resumatch_reports_total",
		metric.WithDescription("Reports rendered"),
	); err != nil {
		return nil, err
	}
	if m.SuggestionTime, err = meter.Float64Histogram(
		"resumatch_suggestion_duration_seconds",
		metric.WithDescription("Time spent waiting for the language model"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.SuggestionCount, err = meter.Int64Counter(
		"resumatch_suggestion_requests_total",
		metric.WithDescription("Suggestion requests"),
	); err != nil {
		return nil, err
	}
	if m.SuggestionErrors, err = meter.Int64Counter(
		"resumatch_suggestion_errors_total",
		metric.WithDescription("Failed suggestion requests by error code"),
	); err != nil {
		return nil, err
	}
	if m.TokenUsage, err = meter.Int64Histogram(
		"resumatch_ai_token_usage",
		metric.WithDescription("Tokens consumed per suggestion request"),
		metric.WithUnit("{token}"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestCount, err = meter.Int64Counter(
		"resumatch_http_requests_total",
		metric.WithDescription("HTTP requests by route and status"),
	); err != nil {
		return nil, err
	}
	if m.RateLimitHits, err = meter.Int64Counter(
		"resumatch_rate_limit_hits_total",
		metric.WithDescription("Requests rejected by the rate limiter"),
	); err != nil {
		return nil, err
	}
	if m.CertReloadCount, err = meter.Int64Counter(
		"resumatch_cert_reloads_total",
		metric.WithDescription("TLS certificate reload attempts"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordMatch counts a match and records its score.
func (m *Metrics) RecordMatch(ctx context.Context, role string, score float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("role", role))
	m.MatchCount.Add(ctx, 1, attrs)
	m.MatchScore.Record(ctx, score, attrs)
}

func (m *Metrics) RecordExtraction(ctx context.Context, contentType string, size int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("content_type", contentType),
		attribute.Bool("success", err == nil),
	)
	m.ExtractionTime.Record(ctx, elapsed.Seconds(), attrs)
	m.ExtractedBytes.Record(ctx, int64(size), attrs)
}

func (m *Metrics) RecordReport(ctx context.Context, kind string, err error) {
	if m == nil {
		return
	}
	m.ReportCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", kind),
		attribute.Bool("success", err == nil),
	))
}

// RecordSuggestion records one suggestion request. An empty errorCode means success.
func (m *Metrics) RecordSuggestion(ctx context.Context, provider string, elapsed time.Duration, errorCode string) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.Bool("success", errorCode == ""),
	}
	m.SuggestionCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.SuggestionTime.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
	if errorCode != "" {
		m.SuggestionErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("error_code", errorCode),
		))
	}
}

func (m *Metrics) RecordTokens(ctx context.Context, provider string, prompt, completion int) {
	if m == nil {
		return
	}
	m.TokenUsage.Record(ctx, int64(prompt), metric.WithAttributes(
		attribute.String("provider", provider), attribute.String("kind", "prompt")))
	m.TokenUsage.Record(ctx, int64(completion), metric.WithAttributes(
		attribute.String("provider", provider), attribute.String("kind", "completion")))
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(status)),
	))
}

func (m *Metrics) RecordRateLimitHit(ctx context.Context, limitType string) {
	if m == nil {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("limit_type", limitType)))
}

func (m *Metrics) RecordCertReload(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	m.CertReloadCount.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}
