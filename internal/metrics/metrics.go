// Package metrics exposes Prometheus collectors for the search cascade, the
// API and entitlement decisions.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amishk599/jobradius/internal/model"
)

const namespace = "jobradius"

// Metrics holds every collector on its own registry. It satisfies the
// observer interfaces of the strategy, search and entitlement packages.
type Metrics struct {
	registry *prometheus.Registry

	strategyAttempts  *prometheus.CounterVec
	strategyDuration  *prometheus.HistogramVec
	searchRequests    *prometheus.CounterVec
	searchDuration    prometheus.Histogram
	localSubmissions  prometheus.Counter
	entitlementChecks *prometheus.CounterVec
}

// New registers the collectors, plus Go runtime and process collectors, on
// a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		strategyAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "strategy",
			Name:      "attempts_total",
			Help:      "Provider calls made by the search cascade, by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		strategyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "strategy",
			Name:      "duration_seconds",
			Help:      "Duration of a single strategy attempt.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"strategy"}),
		searchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Searches served, by outcome.",
		}, []string{"outcome"}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "End-to-end search latency including every attempted strategy.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		localSubmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "local_jobs",
			Name:      "submitted_total",
			Help:      "Local job postings accepted.",
		}),
		entitlementChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "entitlement",
			Name:      "decisions_total",
			Help:      "Entitlement decisions, by action and result.",
		}, []string{"action", "allowed"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.strategyAttempts,
		m.strategyDuration,
		m.searchRequests,
		m.searchDuration,
		m.localSubmissions,
		m.entitlementChecks,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveAttempt(strategy, outcome string, d time.Duration) {
	m.strategyAttempts.WithLabelValues(strategy, outcome).Inc()
	m.strategyDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

func (m *Metrics) ObserveSearch(outcome string, d time.Duration) {
	m.searchRequests.WithLabelValues(outcome).Inc()
	m.searchDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveLocalSubmission() {
	m.localSubmissions.Inc()
}

func (m *Metrics) ObserveDecision(action model.ActionKind, allowed bool) {
	m.entitlementChecks.WithLabelValues(string(action), strconv.FormatBool(allowed)).Inc()
}
