// Package obs holds the server's observability sidecar: prometheus metrics
// and the /metrics+/healthz HTTP listener.
package obs

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the server's prometheus instruments.
type Metrics struct {
	mRequests    *prometheus.CounterVec
	mDuration    prometheus.Histogram
	mResolutions *prometheus.CounterVec
}

// NewMetrics registers the instruments with the given registerer. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		mRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shelfmark_http_requests_total", Help: "HTTP requests by method and status",
		}, []string{"method", "status"}),
		mDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "shelfmark_http_request_duration_seconds", Help: "HTTP request latency",
		}),
		mResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shelfmark_link_resolutions_total", Help: "Shared-link resolution attempts by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveRequest records one handled HTTP request.
func (m *Metrics) ObserveRequest(method string, status int, duration time.Duration) {
	m.mRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.mDuration.Observe(duration.Seconds())
}

// ObserveResolution records one shared-link resolution attempt.
func (m *Metrics) ObserveResolution(outcome string) {
	m.mResolutions.WithLabelValues(outcome).Inc()
}
