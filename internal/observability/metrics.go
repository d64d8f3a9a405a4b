// Package observability holds the Prometheus instruments for the redaction
// service.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	Requests     *prometheus.CounterVec
	URLsRedacted *prometheus.CounterVec
	InputBytes   prometheus.Histogram
}

// NewMetrics registers the instruments on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Redaction requests by route and status code.",
		}, []string{"route", "code"}),
		URLsRedacted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "urls_redacted_total",
			Help:      "URLs replaced by the placeholder, by scheme.",
		}, []string{"scheme"}),
		InputBytes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "input_bytes",
			Help:      "Size of redaction request bodies in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		}),
	}
}

// ObserveURLs adds n redacted URLs of the given scheme.
func (m *Metrics) ObserveURLs(scheme string, n int) {
	if n <= 0 {
		return
	}
	m.URLsRedacted.WithLabelValues(scheme).Add(float64(n))
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
