// Package metrics provides Prometheus metrics for the prediction engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gridlock"

// Metrics holds all Prometheus collectors for the service
type Metrics struct {
	registry *prometheus.Registry

	// Core business metrics
	predictionsSubmitted prometheus.Counter
	settlements          prometheus.Counter
	predictionsSettled   prometheus.Counter
	ratingDelta          prometheus.Histogram

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates a Metrics instance backed by its own registry, so tests
// can build as many as they like without collector name collisions
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		predictionsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_submitted_total",
			Help:      "Total number of predictions submitted",
		}),
		settlements: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Total number of events settled",
		}),
		predictionsSettled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_settled_total",
			Help:      "Total number of predictions scored by settlements",
		}),
		ratingDelta: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rating_delta",
			Help:      "Distribution of rating deltas applied by settlements",
			Buckets:   []float64{-80, -40, -20, -10, 0, 10, 20, 40, 80},
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and path",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// PredictionSubmitted counts one accepted prediction
func (m *Metrics) PredictionSubmitted() {
	m.predictionsSubmitted.Inc()
}

// EventSettled counts one settlement and the predictions it scored
func (m *Metrics) EventSettled(predictions int) {
	m.settlements.Inc()
	m.predictionsSettled.Add(float64(predictions))
}

// ObserveRatingDelta records one applied rating delta
func (m *Metrics) ObserveRatingDelta(delta int) {
	m.ratingDelta.Observe(float64(delta))
}

// ObserveHTTPRequest records one served HTTP request
func (m *Metrics) ObserveHTTPRequest(method, path, status string, seconds float64) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}
