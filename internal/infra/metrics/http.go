package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		httpRequests,
		httpLatencyMs,
		sseEvents,
	)
}

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status class.",
		},
		[]string{"route", "status"},
	)

	httpLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_latency_ms",
			Help:    "Request latency in milliseconds by route.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000, 30000, 120000},
		},
		[]string{"route"},
	)

	sseEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sse_events_total",
			Help: "Server-sent events emitted by type.",
		},
		[]string{"type"},
	)
)

func ObserveHTTP(route, status string, start time.Time) {
	httpRequests.WithLabelValues(route, status).Inc()
	httpLatencyMs.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
}

func IncSSEEvent(eventType string) { sseEvents.WithLabelValues(norm(eventType)).Inc() }
