package observability

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config controls logger, tracer and metrics construction.
type Config struct {
	ServiceName string
	Environment string
	Version     string
	LogLevel    string
	// Output defaults to os.Stdout.
	Output io.Writer
}

// Observability bundles the telemetry handles injected into modules.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry
	Metrics  *PrometheusMetrics
}

// Init builds the process-wide telemetry. Tracing goes through the global
// OpenTelemetry provider so an exporter configured by the environment is
// picked up without code changes.
func Init(ctx context.Context, cfg Config) (Observability, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	var handler slog.Handler
	if cfg.Environment == "development" || cfg.Environment == "test" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler).With(
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.String("version", cfg.Version),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := NewPrometheusMetrics(registry)
	if err != nil {
		return Observability{}, err
	}

	logger.InfoContext(ctx, "Observability initialized")

	return Observability{
		Logger:   logger,
		Tracer:   otel.GetTracerProvider().Tracer(cfg.ServiceName),
		Registry: registry,
		Metrics:  metrics,
	}, nil
}

// NewNoop returns telemetry that discards everything. Used by tests.
func NewNoop() Observability {
	return Observability{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer:  noop.NewTracerProvider().Tracer("noop"),
		Metrics: nil,
	}
}

// MetricsHandler exposes the registry over HTTP.
func (o Observability) MetricsHandler() http.Handler {
	if o.Registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(o.Registry, promhttp.HandlerOpts{})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
