// Package metrics counts and times the client's calls to the remote API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "moneymate"

// Recorder records API call outcomes. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveRequest(endpoint, method string, status int, d time.Duration)
}

// Metrics holds the client-side collectors for API calls.
type Metrics struct {
	registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	TransportErrors *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API requests by endpoint, method and status code.",
		}, []string{"endpoint", "method", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "method"}),
		TransportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "transport_errors_total",
			Help:      "API requests that never produced an HTTP response.",
		}, []string{"endpoint", "method"}),
	}
	m.registry.MustRegister(m.RequestsTotal, m.RequestDuration, m.TransportErrors)
	return m
}

// Registry exposes the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one call. A status of 0 marks a transport failure.
func (m *Metrics) ObserveRequest(endpoint, method string, status int, d time.Duration) {
	m.RequestDuration.WithLabelValues(endpoint, method).Observe(d.Seconds())
	if status == 0 {
		m.TransportErrors.WithLabelValues(endpoint, method).Inc()
		return
	}
	m.RequestsTotal.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
}

// WriteFile writes the current values in the node-exporter textfile format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ObserveRequest(string, string, int, time.Duration) {}
