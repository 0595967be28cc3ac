package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request counts and latency per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	streams  prometheus.Gauge
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Handled HTTP requests by route, method, and status.",
	}, []string{"route", "method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	streams := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "live_snapshot_streams",
		Help: "Open snapshot stream connections.",
	})
	reg.MustRegister(requests, duration, streams)
	return &HTTPMetrics{
		requests: requests,
		duration: duration,
		streams:  streams,
	}
}

// ObserveRequest records one handled request.
func (h *HTTPMetrics) ObserveRequest(route, method, status string, elapsed time.Duration) {
	if h == nil || h.requests == nil {
		return
	}
	route = normalizeLabel(route)
	h.requests.WithLabelValues(route, method, status).Inc()
	h.duration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// StreamOpened increments the open stream gauge.
func (h *HTTPMetrics) StreamOpened() {
	if h == nil || h.streams == nil {
		return
	}
	h.streams.Inc()
}

// StreamClosed decrements the open stream gauge.
func (h *HTTPMetrics) StreamClosed() {
	if h == nil || h.streams == nil {
		return
	}
	h.streams.Dec()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
