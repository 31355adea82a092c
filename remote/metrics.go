package remote

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels that are not error codes.
const (
	LabelOK       = "ok"
	LabelCanceled = "canceled"
)

// Metrics records classified remote calls on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	// CallsTotal counts calls by operation and result code ("ok" on success,
	// "canceled" when the caller gave up on the call).
	CallsTotal *prometheus.CounterVec

	// CallDuration measures how long each call took, offline short circuits
	// included.
	CallDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sfnews",
				Name:      "remote_calls_total",
				Help:      "Total number of remote calls by result code",
			},
			[]string{"operation", "code"},
		),
		CallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sfnews",
				Name:      "remote_call_duration_seconds",
				Help:      "Duration of remote calls in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// Observe records one classified call.
func (m *Metrics) Observe(operation, code string, d time.Duration) {
	m.CallsTotal.WithLabelValues(operation, code).Inc()
	m.CallDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collected metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
