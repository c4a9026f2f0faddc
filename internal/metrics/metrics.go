// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// GenerationAttempts counts individual backend completion attempts
	// by outcome: ok, retryable_error, permanent_error.
	GenerationAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "motiongen",
		Name:      "generation_attempts_total",
		Help:      "Text-generation backend attempts by outcome",
	}, []string{"outcome"})

	// RequestDuration observes end-to-end motion request latency.
	RequestDuration = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: "motiongen",
		Name:      "request_duration_seconds",
		Help:      "End-to-end motion generation latency",
	}, []string{"status"})

	// RequestsTotal counts inbound requests by result kind ("ok" or the
	// error kind).
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "motiongen",
		Name:      "requests_total",
		Help:      "Inbound motion requests by result",
	}, []string{"result"})
)

var registerOnce sync.Once

// MustRegister registers all collectors with the default registry.
// Safe to call more than once.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(GenerationAttempts, RequestDuration, RequestsTotal)
	})
}

// Handler returns the Prometheus exposition endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
