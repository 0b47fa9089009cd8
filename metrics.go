package adbridge

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the gateway's request lifecycle as Prometheus collectors.
// Attach one with WithMetrics; a nil *Metrics disables collection. Safe for
// concurrent use.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retriesTotal    *prometheus.CounterVec
}

// NewMetrics registers the gateway collectors on the default registerer.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry registers the gateway collectors on registry.
func NewMetricsWithRegistry(registry prometheus.Registerer) *Metrics {
	return &Metrics{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "adbridge_requests_total",
				Help: "Total number of provider requests made",
			},
			[]string{"provider", "operation", "status"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "adbridge_request_duration_seconds",
				Help:    "Duration of provider requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "operation"},
		),
		retriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "adbridge_retries_total",
				Help: "Total number of retry attempts after transient network errors",
			},
			[]string{"provider", "operation"},
		),
	}
}

func (m *Metrics) observe(provider ProviderID, operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.requestsTotal.WithLabelValues(string(provider), operation, status).Inc()
	m.requestDuration.WithLabelValues(string(provider), operation).Observe(elapsed.Seconds())
}

func (m *Metrics) observeRetry(provider ProviderID, operation string) {
	if m == nil {
		return
	}
	m.retriesTotal.WithLabelValues(string(provider), operation).Inc()
}
