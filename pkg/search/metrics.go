package search

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/0xmhha/explorer-search/pkg/types"
)

// Network request outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeCached  = "cached"
)

// Kind settlement outcomes
const (
	SettledOK      = "ok"
	SettledPartial = "partial"
	SettledFailed  = "failed"
)

// Metrics holds all Prometheus metrics for the search engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Gauges
	ActiveSessions prometheus.Gauge
	InflightCalls  *prometheus.GaugeVec

	// Counters
	SearchesTotal       *prometheus.CounterVec
	NetworkRequests     *prometheus.CounterVec
	StaleResponsesTotal *prometheus.CounterVec
	SettledTotal        *prometheus.CounterVec
	RedirectsTotal      prometheus.Counter

	// Histograms
	NetworkRequestDuration *prometheus.HistogramVec
	SettleDuration         *prometheus.HistogramVec
}

// NewMetrics creates the search metrics and registers them with reg.
// A nil registerer uses the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "explorer"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	const subsystem = "search"
	factory := promauto.With(reg)

	return &Metrics{
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_sessions",
			Help:      "Current number of live search sessions",
		}),
		InflightCalls: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "inflight_calls",
			Help:      "Entity client calls currently in flight",
		}, []string{"kind"}),
		SearchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dispatches_total",
			Help:      "Total number of per-kind searches dispatched",
		}, []string{"kind"}),
		NetworkRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "network_requests_total",
			Help:      "Total number of per-network requests by outcome",
		}, []string{"kind", "network", "outcome"}),
		StaleResponsesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "stale_responses_total",
			Help:      "Responses discarded because a newer search superseded them",
		}, []string{"kind"}),
		SettledTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "settled_total",
			Help:      "Total number of settled per-kind searches by outcome",
		}, []string{"kind", "outcome"}),
		RedirectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "redirects_total",
			Help:      "Total number of searches resolved to a single match",
		}),
		NetworkRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "network_request_duration_seconds",
			Help:      "Entity client call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "network"}),
		SettleDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "settle_duration_seconds",
			Help:      "Time from dispatch until every network answered",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}

// RecordSearch increments the dispatch counter
func (m *Metrics) RecordSearch(kind types.Kind) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(string(kind)).Inc()
}

// RecordNetworkRequest records the outcome of one network call
func (m *Metrics) RecordNetworkRequest(kind types.Kind, network, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.NetworkRequests.WithLabelValues(string(kind), network, outcome).Inc()
	if outcome != OutcomeCached {
		m.NetworkRequestDuration.WithLabelValues(string(kind), network).Observe(duration.Seconds())
	}
}

// RecordStale increments the stale response counter
func (m *Metrics) RecordStale(kind types.Kind) {
	if m == nil {
		return
	}
	m.StaleResponsesTotal.WithLabelValues(string(kind)).Inc()
}

// RecordSettled records a settled kind
func (m *Metrics) RecordSettled(kind types.Kind, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.SettledTotal.WithLabelValues(string(kind), outcome).Inc()
	m.SettleDuration.WithLabelValues(string(kind)).Observe(duration.Seconds())
}

// RecordRedirect increments the redirect counter
func (m *Metrics) RecordRedirect() {
	if m == nil {
		return
	}
	m.RedirectsTotal.Inc()
}

// AddInflight adjusts the in-flight gauge
func (m *Metrics) AddInflight(kind types.Kind, delta int) {
	if m == nil {
		return
	}
	m.InflightCalls.WithLabelValues(string(kind)).Add(float64(delta))
}

// UpdateActiveSessions sets the live session gauge
func (m *Metrics) UpdateActiveSessions(count int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(count))
}
