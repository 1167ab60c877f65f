// Package metrics provides Prometheus metrics for the booking client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the client.
// A nil *Metrics or one built by Nop is a valid no-op recorder.
type Metrics struct {
	enabled bool

	// Request executor metrics
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	// Query cache metrics
	cacheHitsTotal    prometheus.Counter
	cacheMissesTotal  prometheus.Counter
	cacheFetchesTotal *prometheus.CounterVec
	cacheEntries      prometheus.Gauge
	cacheEvictions    *prometheus.CounterVec

	// Session metrics
	sessionTransitions *prometheus.CounterVec
}

// New creates Metrics registered against reg.
// If reg is nil, returns a no-op Metrics instance.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return Nop()
	}
	factory := promauto.With(reg)
	m := &Metrics{enabled: true}

	m.requestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_client_requests_total",
		Help: "Total API requests by method and outcome",
	}, []string{"method", "outcome"})

	m.requestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booking_client_request_duration_seconds",
		Help:    "API request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	m.cacheHitsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "booking_client_cache_hits_total",
		Help: "Reads served from a fresh cache entry",
	})

	m.cacheMissesTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "booking_client_cache_misses_total",
		Help: "Reads that required a fetch",
	})

	m.cacheFetchesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_client_cache_fetches_total",
		Help: "Underlying fetches by result",
	}, []string{"result"})

	m.cacheEntries = factory.NewGauge(prometheus.GaugeOpts{
		Name: "booking_client_cache_entries",
		Help: "Current number of query cache entries",
	})

	m.cacheEvictions = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_client_cache_evictions_total",
		Help: "Evicted query cache entries by reason",
	}, []string{"reason"})

	m.sessionTransitions = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_client_session_transitions_total",
		Help: "Session state transitions by target state",
	}, []string{"state"})

	return m
}

// Nop returns a Metrics that records nothing.
func Nop() *Metrics {
	return &Metrics{}
}

func (m *Metrics) on() bool {
	return m != nil && m.enabled
}

// RecordRequest records a completed API request.
func (m *Metrics) RecordRequest(method, outcome string, durationSeconds float64) {
	if !m.on() {
		return
	}
	m.requestsTotal.WithLabelValues(method, outcome).Inc()
	m.requestDuration.WithLabelValues(method).Observe(durationSeconds)
}

// RecordCacheHit records a read served without a fetch.
func (m *Metrics) RecordCacheHit() {
	if !m.on() {
		return
	}
	m.cacheHitsTotal.Inc()
}

// RecordCacheMiss records a read that scheduled or joined a fetch.
func (m *Metrics) RecordCacheMiss() {
	if !m.on() {
		return
	}
	m.cacheMissesTotal.Inc()
}

// RecordFetch records the result ("success" or "error") of an underlying fetch.
func (m *Metrics) RecordFetch(result string) {
	if !m.on() {
		return
	}
	m.cacheFetchesTotal.WithLabelValues(result).Inc()
}

// RecordEviction records entries removed from the cache.
func (m *Metrics) RecordEviction(reason string, n int) {
	if !m.on() || n == 0 {
		return
	}
	m.cacheEvictions.WithLabelValues(reason).Add(float64(n))
}

// SetCacheSize sets the current cache size.
func (m *Metrics) SetCacheSize(size int) {
	if !m.on() {
		return
	}
	m.cacheEntries.Set(float64(size))
}

// RecordSessionTransition records the session entering state.
func (m *Metrics) RecordSessionTransition(state string) {
	if !m.on() {
		return
	}
	m.sessionTransitions.WithLabelValues(state).Inc()
}
