package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"resumatch/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const defaultCollectionInterval = 15 * time.Second

// Manager owns the tracer and meter providers and the application metrics
type Manager struct {
	config         config.ObservabilityConfig
	version        string
	resource       *resource.Resource
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	prometheusMux  *http.ServeMux
	shutdownFuncs  []func(context.Context) error
}

// NewManager sets up OpenTelemetry according to cfg. When observability is
// disabled the manager hands out metrics bound to the global (no-op) meter.
func NewManager(cfg config.ObservabilityConfig, version string) (*Manager, error) {
	m := &Manager{config: cfg, version: version}
	if m.config.ServiceVersion == "" {
		m.config.ServiceVersion = version
	}
	if m.config.ServiceName == "" {
		m.config.ServiceName = "resumatch"
	}

	if !cfg.Enabled {
		metrics, err := NewMetrics(otel.GetMeterProvider().Meter(m.config.ServiceName))
		if err != nil {
			return nil, err
		}
		m.metrics = metrics
		return m, nil
	}

	if err := m.initResource(); err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}
	if err := m.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	return m, nil
}

func (m *Manager) initResource() error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(m.config.ServiceName),
			semconv.ServiceVersion(m.config.ServiceVersion),
			attribute.String("service.instance.id", m.config.ServiceInstance),
		),
	)
	if err != nil {
		return err
	}
	m.resource = res
	return nil
}

func (m *Manager) initTracing() error {
	if !m.config.Tracing.Enabled {
		return nil
	}

	var exporter trace.SpanExporter
	var err error
	switch {
	case m.config.Console.Enabled:
		var opts []stdouttrace.Option
		if m.config.Console.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case m.config.OTLP.Enabled:
		exporter, err = m.createOTLPTraceExporter()
	default:
		exporter = noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(m.resource),
		trace.WithSampler(trace.TraceIDRatioBased(m.config.Tracing.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	m.tracerProvider = tp
	m.shutdownFuncs = append(m.shutdownFuncs, tp.Shutdown)
	return nil
}

func (m *Manager) initMetrics() error {
	if !m.config.Metrics.Enabled {
		metrics, err := NewMetrics(otel.GetMeterProvider().Meter(m.config.ServiceName))
		if err != nil {
			return err
		}
		m.metrics = metrics
		return nil
	}

	readers, err := m.metricReaders()
	if err != nil {
		return err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(m.resource)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	m.meterProvider = mp
	m.shutdownFuncs = append(m.shutdownFuncs, mp.Shutdown)

	metrics, err := NewMetrics(mp.Meter(m.config.ServiceName))
	if err != nil {
		return err
	}
	m.metrics = metrics
	return nil
}

func (m *Manager) metricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader
	interval := m.collectionInterval()

	if m.config.Console.Enabled {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	}

	if m.config.OTLP.Enabled {
		exporter, err := m.createOTLPMetricExporter()
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	}

	if m.config.Prometheus.Enabled {
		reader, mux, err := NewPrometheusExporter(m.config.Prometheus.Endpoint)
		if err != nil {
			return nil, err
		}
		readers = append(readers, reader)
		m.prometheusMux = mux
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}
	return readers, nil
}

func (m *Manager) createOTLPTraceExporter() (trace.SpanExporter, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(m.config.OTLP.Endpoint)}
	if m.config.OTLP.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(m.config.OTLP.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(m.config.OTLP.Headers))
	}
	return otlptracehttp.New(context.Background(), opts...)
}

func (m *Manager) createOTLPMetricExporter() (sdkmetric.Exporter, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(m.config.OTLP.Endpoint)}
	if m.config.OTLP.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(m.config.OTLP.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(m.config.OTLP.Headers))
	}
	return otlpmetrichttp.New(context.Background(), opts...)
}

func (m *Manager) collectionInterval() time.Duration {
	if m.config.Metrics.CollectionInterval > 0 {
		return m.config.Metrics.CollectionInterval
	}
	return defaultCollectionInterval
}

// Enabled reports whether OpenTelemetry was configured.
func (m *Manager) Enabled() bool {
	return m != nil && m.config.Enabled
}

// Metrics returns the application metrics. Never nil for a manager built by NewManager.
func (m *Manager) Metrics() *Metrics {
	if m == nil {
		return nil
	}
	return m.metrics
}

// PrometheusMux returns the scrape mux, or nil when the Prometheus exporter is off.
func (m *Manager) PrometheusMux() *http.ServeMux {
	if m == nil {
		return nil
	}
	return m.prometheusMux
}

// PrometheusAddr is the listen address of the scrape server.
func (m *Manager) PrometheusAddr() string {
	return ":" + m.config.Prometheus.Port
}

// HTTPMiddleware wraps handlers with otelhttp instrumentation when enabled.
func (m *Manager) HTTPMiddleware(operation string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !m.Enabled() {
			return next
		}
		return otelhttp.NewHandler(next, operation,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}

// Tracer returns a tracer from the global provider.
func Tracer(name string) oteltrace.Tracer {
	return otel.Tracer(name)
}

// Shutdown flushes and stops every provider.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, fn := range m.shutdownFuncs {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type noOpSpanExporter struct{}

func (noOpSpanExporter) ExportSpans(context.Context, []trace.ReadOnlySpan) error { return nil }
func (noOpSpanExporter) Shutdown(context.Context) error                          { return nil }
