package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bridge's Prometheus metrics on a private registry so
// tests can run several servers side by side.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scim_bridge_http_requests_total",
				Help: "Total number of inbound SCIM requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scim_bridge_http_request_duration_seconds",
				Help:    "Inbound SCIM request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	m.Registry.MustRegister(m.RequestsTotal, m.RequestDuration)

	return m
}
