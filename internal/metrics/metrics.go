// Package metrics exposes prometheus collectors for the ruleset view server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rulesetview"

// Metrics holds the collectors on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	rulesets       prometheus.Gauge
	reloads        *prometheus.CounterVec
	events         *prometheus.CounterVec
	requests       *prometheus.CounterVec
	requestSeconds *prometheus.HistogramVec
	sessions       prometheus.Gauge
	reimported     prometheus.Counter
}

// New creates the collectors and registers them together with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rulesets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rulesets_loaded",
			Help:      "Number of rulesets currently served.",
		}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ruleset_loads_total",
			Help:      "Ruleset load attempts by result.",
		}, []string{"result"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Domain events dispatched by type.",
		}, []string{"type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		requestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "editing_sessions",
			Help:      "Open live editing sessions.",
		}),
		reimported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reimported_entries_total",
			Help:      "Metadata entries gained through reimport.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rulesets, m.reloads, m.events, m.requests, m.requestSeconds, m.sessions, m.reimported,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetRulesets records how many rulesets are served.
func (m *Metrics) SetRulesets(n int) {
	if m == nil {
		return
	}
	m.rulesets.Set(float64(n))
}

// ObserveLoad counts a load attempt.
func (m *Metrics) ObserveLoad(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reloads.WithLabelValues(result).Inc()
}

// ObserveEvent counts a dispatched domain event.
func (m *Metrics) ObserveEvent(eventType string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType).Inc()
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, code).Inc()
	m.requestSeconds.WithLabelValues(route).Observe(elapsed.Seconds())
}

// SessionOpened and SessionClosed track live editing sessions.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}

// AddReimported counts entries gained by a reimport. Losses are not counted.
func (m *Metrics) AddReimported(delta int) {
	if m == nil || delta <= 0 {
		return
	}
	m.reimported.Add(float64(delta))
}
