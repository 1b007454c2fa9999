// Package metrics exposes business and HTTP counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rewards"

// Metrics holds the collectors of one service instance. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	redemptions    *prometheus.CounterVec
	participations *prometheus.CounterVec
	points         *prometheus.CounterVec
	notifications  *prometheus.CounterVec
	requests       *prometheus.CounterVec
	durations      *prometheus.HistogramVec
}

// New creates a Metrics backed by its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redemptions_total",
			Help:      "Reward redemptions segmented by outcome.",
		}, []string{"outcome"}),
		participations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raffle_participations_total",
			Help:      "Raffle participations segmented by outcome.",
		}, []string{"outcome"}),
		points: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_total",
			Help:      "Points moved through the ledger segmented by transaction type.",
		}, []string{"type"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries segmented by gateway and status.",
		}, []string{"gateway", "status"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests segmented by route, method and status.",
		}, []string{"route", "method", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	m.registry.MustRegister(
		m.redemptions,
		m.participations,
		m.points,
		m.notifications,
		m.requests,
		m.durations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Redemption records a redemption attempt
func (m *Metrics) Redemption(outcome string) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(outcome).Inc()
}

// Participation records a raffle participation attempt
func (m *Metrics) Participation(outcome string) {
	if m == nil {
		return
	}
	m.participations.WithLabelValues(outcome).Inc()
}

// Points records points moved by a ledger operation
func (m *Metrics) Points(txType string, amount int64) {
	if m == nil {
		return
	}
	m.points.WithLabelValues(txType).Add(float64(amount))
}

// Notification records a delivery attempt
func (m *Metrics) Notification(gateway, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(gateway, status).Inc()
}

// ObserveRequest records a served HTTP request
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.durations.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
