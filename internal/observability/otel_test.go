package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resumatch/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RecordMatch(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordMatch(ctx, "Data Analyst", 33.33)
	m.RecordMatch(ctx, "Data Analyst", 50)

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["resumatch_matches_total"]))

	hist, ok := got["resumatch_match_score"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.InDelta(t, 83.33, hist.DataPoints[0].Sum, 0.001)
}

func TestMetrics_RecordSuggestion(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordSuggestion(ctx, "openai", time.Second, "")
	m.RecordSuggestion(ctx, "openai", time.Second, "AI_TIMEOUT")
	m.RecordTokens(ctx, "openai", 120, 80)

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["resumatch_suggestion_requests_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["resumatch_suggestion_errors_total"]))

	tokens, ok := got["resumatch_ai_token_usage"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range tokens.DataPoints {
		total += dp.Sum
	}
	assert.Equal(t, int64(200), total)
}

func TestMetrics_Counters(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordExtraction(ctx, "application/pdf", 2048, 10*time.Millisecond, nil)
	m.RecordReport(ctx, "pdf", nil)
	m.RecordReport(ctx, "text", errors.New("boom"))
	m.RecordHTTPRequest(ctx, http.MethodPost, "/match", http.StatusOK)
	m.RecordRateLimitHit(ctx, "ip")
	m.RecordCertReload(ctx, true)

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["resumatch_reports_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["resumatch_http_requests_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["resumatch_rate_limit_hits_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["resumatch_cert_reloads_total"]))
	assert.Contains(t, got, "resumatch_extraction_duration_seconds")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordMatch(ctx, "x", 1)
		m.RecordExtraction(ctx, "text/plain", 1, time.Millisecond, nil)
		m.RecordReport(ctx, "text", nil)
		m.RecordSuggestion(ctx, "openai", time.Millisecond, "")
		m.RecordTokens(ctx, "openai", 1, 1)
		m.RecordHTTPRequest(ctx, "GET", "/health", 200)
		m.RecordRateLimitHit(ctx, "ip")
		m.RecordCertReload(ctx, false)
	})
}

func TestNewManager_Disabled(t *testing.T) {
	m, err := NewManager(config.ObservabilityConfig{Enabled: false}, "1.2.3")
	require.NoError(t, err)

	assert.False(t, m.Enabled())
	assert.NotNil(t, m.Metrics())
	assert.Nil(t, m.PrometheusMux())
	assert.NoError(t, m.Shutdown(context.Background()))

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	wrapped := m.HTTPMiddleware("test")(handler)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestNewManager_ManualReader(t *testing.T) {
	cfg := config.ObservabilityConfig{
		Enabled:     true,
		ServiceName: "resumatch-test",
		Tracing:     config.TracingConfig{Enabled: true, SampleRate: 1},
		Metrics:     config.MetricsConfig{Enabled: true},
	}

	m, err := NewManager(cfg, "dev")
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	assert.True(t, m.Enabled())
	require.NotNil(t, m.Metrics())
	m.Metrics().RecordMatch(context.Background(), "Software Engineer", 50)
}

func TestPrometheusExporter(t *testing.T) {
	reader, mux, err := NewPrometheusExporter("")
	require.NoError(t, err)
	require.NotNil(t, reader)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	srv := NewPrometheusServer(":0", mux)
	assert.Equal(t, ":0", srv.Addr)
	assert.Equal(t, 10*time.Second, srv.ReadHeaderTimeout)
}
