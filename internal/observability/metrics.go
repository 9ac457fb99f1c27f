package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ServiceMetrics is the operation-level metrics contract every service uses.
type ServiceMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// ScenarioMetrics adds registration outcome counters.
type ScenarioMetrics interface {
	ServiceMetrics
	RecordRegistration(ctx context.Context, outcome string)
	RecordVersionConflict(ctx context.Context)
}

// HandlerMetrics observes event handler executions.
type HandlerMetrics interface {
	RecordHandlerAttempt(ctx context.Context, handlerName string)
	RecordHandlerSuccess(ctx context.Context, handlerName string)
	RecordHandlerFailure(ctx context.Context, handlerName string)
	RecordHandlerDuration(ctx context.Context, handlerName string, duration time.Duration)
}

// Registration outcomes.
const (
	OutcomeCredited  = "credited"
	OutcomeDuplicate = "duplicate"
	OutcomeQuota     = "quota_exhausted"
)

// PrometheusMetrics implements ScenarioMetrics on a prometheus registry.
type PrometheusMetrics struct {
	attempts      *prometheus.CounterVec
	successes     *prometheus.CounterVec
	failures      *prometheus.CounterVec
	durations     *prometheus.HistogramVec
	registrations *prometheus.CounterVec
	conflicts     prometheus.Counter
	handlers      *prometheus.CounterVec
	handlerTimes  *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the envsim collectors on registry.
func NewPrometheusMetrics(registry prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "envsim",
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"operation", "service"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "envsim",
			Name:      "operation_success_total",
			Help:      "Service operations completed without infrastructure error.",
		}, []string{"operation", "service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "envsim",
			Name:      "operation_failure_total",
			Help:      "Service operations that returned an infrastructure error.",
		}, []string{"operation", "service"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "envsim",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "envsim",
			Name:      "scenario_registrations_total",
			Help:      "Scenario registrations by outcome.",
		}, []string{"outcome"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "envsim",
			Name:      "scenario_history_version_conflicts_total",
			Help:      "Concurrent history writes rejected by the version check.",
		}),
		handlers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "envsim",
			Name:      "event_handler_total",
			Help:      "Event handler executions by result.",
		}, []string{"handler", "result"}),
		handlerTimes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "envsim",
			Name:      "event_handler_duration_seconds",
			Help:      "Event handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler"}),
	}

	for _, c := range []prometheus.Collector{m.attempts, m.successes, m.failures, m.durations, m.registrations, m.conflicts, m.handlers, m.handlerTimes} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.durations.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordRegistration(_ context.Context, outcome string) {
	m.registrations.WithLabelValues(outcome).Inc()
}

func (m *PrometheusMetrics) RecordVersionConflict(_ context.Context) {
	m.conflicts.Inc()
}

func (m *PrometheusMetrics) RecordHandlerAttempt(_ context.Context, handlerName string) {
	m.handlers.WithLabelValues(handlerName, "attempt").Inc()
}

func (m *PrometheusMetrics) RecordHandlerSuccess(_ context.Context, handlerName string) {
	m.handlers.WithLabelValues(handlerName, "success").Inc()
}

func (m *PrometheusMetrics) RecordHandlerFailure(_ context.Context, handlerName string) {
	m.handlers.WithLabelValues(handlerName, "failure").Inc()
}

func (m *PrometheusMetrics) RecordHandlerDuration(_ context.Context, handlerName string, duration time.Duration) {
	m.handlerTimes.WithLabelValues(handlerName).Observe(duration.Seconds())
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

// NewNoopMetrics returns a ScenarioMetrics that records nothing.
func NewNoopMetrics() ScenarioMetrics { return NoopMetrics{} }

func (NoopMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoopMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoopMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoopMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoopMetrics) RecordRegistration(context.Context, string)                             {}
func (NoopMetrics) RecordVersionConflict(context.Context)                                  {}
func (NoopMetrics) RecordHandlerAttempt(context.Context, string)                           {}
func (NoopMetrics) RecordHandlerSuccess(context.Context, string)                           {}
func (NoopMetrics) RecordHandlerFailure(context.Context, string)                           {}
func (NoopMetrics) RecordHandlerDuration(context.Context, string, time.Duration)           {}

// ServiceMetrics returns the registry-backed metrics, or a noop when none
// were configured.
func (o Observability) ServiceMetrics() ScenarioMetrics {
	if o.Metrics == nil {
		return NoopMetrics{}
	}
	return o.Metrics
}

// HandlerMetrics returns the handler metrics, or a noop when none were
// configured.
func (o Observability) HandlerMetrics() HandlerMetrics {
	if o.Metrics == nil {
		return NoopMetrics{}
	}
	return o.Metrics
}
