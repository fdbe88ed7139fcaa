// Package metrics exposes Prometheus instrumentation for validations and the
// HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/archlint/core/internal/models"
)

const namespace = "archlint"

// Validation outcomes.
const (
	OutcomePassed           = "passed"
	OutcomeFailed           = "failed"
	OutcomeCompilationError = "compilation_error"
	OutcomeInvalidPlan      = "invalid_plan"
	OutcomeFault            = "fault"
)

type Metrics struct {
	registry *prometheus.Registry

	validations         *prometheus.CounterVec
	violations          *prometheus.CounterVec
	compilationFailures *prometheus.CounterVec
	validationDuration  prometheus.Histogram
	cacheLookups        *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, along with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Plan validations by outcome",
		}, []string{"outcome"}),
		violations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violations_total",
			Help:      "Rule violations reported, by rule",
		}, []string{"rule_id"}),
		compilationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compilation_failures_total",
			Help:      "Plans rejected by the compiler, by code",
		}, []string{"code"}),
		validationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Time to compile and evaluate a plan",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
		}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Report cache lookups by result",
		}, []string{"result"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) ObserveValidation(outcome string, d time.Duration) {
	m.validations.WithLabelValues(outcome).Inc()
	m.validationDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveViolations(vs []models.Violation) {
	for _, v := range vs {
		m.violations.WithLabelValues(v.RuleID).Inc()
	}
}

func (m *Metrics) CompilationFailure(code string) {
	m.compilationFailures.WithLabelValues(code).Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
