// Package metrics provides Prometheus collectors for the performance tracking service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every collector and the registry they live in.
type Manager struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	ratingsRecorded  prometheus.Counter
	reviewsGenerated *prometheus.CounterVec
	reviewTransition *prometheus.CounterVec
	webhookEvents    *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
}

// Option configures a Manager.
type Option func(*Manager)

// WithRegistry uses a caller supplied registry, mostly for tests.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) { m.registry = r }
}

// NewManager registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	f := promauto.With(m.registry)
	const ns = "teamperf"

	m.httpRequests = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "http", Name: "requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})
	m.httpRequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns, Subsystem: "http", Name: "request_duration_seconds",
		Help: "HTTP request latency.", Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	m.ratingsRecorded = f.NewCounter(prometheus.CounterOpts{
		Namespace: ns, Name: "ratings_recorded_total",
		Help: "Ratings appended.",
	})
	m.reviewsGenerated = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "review", Name: "generations_total",
		Help: "Review generation attempts by outcome.",
	}, []string{"outcome"})
	m.reviewTransition = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "review", Name: "transitions_total",
		Help: "Review status transitions by target status.",
	}, []string{"to"})
	m.webhookEvents = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "webhook", Name: "events_total",
		Help: "Identity webhook events by type and outcome.",
	}, []string{"type", "outcome"})
	m.cacheLookups = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "cache", Name: "lookups_total",
		Help: "Dashboard cache lookups by result.",
	}, []string{"result"})

	return m
}

// Registry exposes the underlying registry.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished request.
func (m *Manager) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (m *Manager) RatingRecorded() {
	if m == nil {
		return
	}
	m.ratingsRecorded.Inc()
}

// ReviewGenerated records a generation attempt: generated, insufficient_data, rate_limited or error.
func (m *Manager) ReviewGenerated(outcome string) {
	if m == nil {
		return
	}
	m.reviewsGenerated.WithLabelValues(outcome).Inc()
}

func (m *Manager) ReviewTransitioned(to string) {
	if m == nil {
		return
	}
	m.reviewTransition.WithLabelValues(to).Inc()
}

func (m *Manager) WebhookEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// CacheLookup records hit, miss or error.
func (m *Manager) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
