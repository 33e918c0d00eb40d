// Package metrics exposes Prometheus collectors for the labeling daemon.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the daemon's collectors on a dedicated registry so tests
// can instantiate independent sets without collisions.
type Metrics struct {
	registry *prometheus.Registry

	AllocationsGranted prometheus.Counter
	AllocationsEmpty   prometheus.Counter
	LabelsSubmitted    prometheus.Counter
	ImagesImported     prometheus.Counter
	BatchFailures      prometheus.Counter
	MalformedPayloads  prometheus.Counter

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New builds a collector set on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		AllocationsGranted: factory.NewCounter(prometheus.CounterOpts{
			Name: "labeld_allocations_granted_total",
			Help: "Leases handed out to labeling clients",
		}),
		AllocationsEmpty: factory.NewCounter(prometheus.CounterOpts{
			Name: "labeld_allocations_empty_total",
			Help: "Allocation requests that found no eligible image",
		}),
		LabelsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "labeld_labels_submitted_total",
			Help: "Label documents persisted",
		}),
		ImagesImported: factory.NewCounter(prometheus.CounterOpts{
			Name: "labeld_images_imported_total",
			Help: "Images created through batch imports and stubs",
		}),
		BatchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "labeld_batch_failures_total",
			Help: "Batch elements that failed to import",
		}),
		MalformedPayloads: factory.NewCounter(prometheus.CounterOpts{
			Name: "labeld_malformed_payloads_total",
			Help: "Requests rejected because a label document failed to parse",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "labeld_http_requests_total",
			Help: "HTTP requests served by the API",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "labeld_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
