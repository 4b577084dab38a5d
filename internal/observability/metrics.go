// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	// Event pipeline
	EventsEnqueued   *prometheus.CounterVec
	EventsApplied    *prometheus.CounterVec
	EventsDuplicate  *prometheus.CounterVec
	EventsFailed     *prometheus.CounterVec
	EventsUnresolved *prometheus.CounterVec
	EventsPending    prometheus.Gauge

	// Ingestion
	StreamMessagesReceived prometheus.Counter
	StreamDecodeErrors     prometheus.Counter
	StreamReconnects       prometheus.Counter

	// Alerts
	AlertsEmitted   *prometheus.CounterVec
	AlertsPublished prometheus.Counter

	// Persistence
	PersistenceRetries  *prometheus.CounterVec
	PersistenceFailures *prometheus.CounterVec

	// Scores
	TokensTracked prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "beanbee_engine"
	}

	return &Metrics{
		EventsEnqueued: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "enqueued_total",
			Help:      "Total number of events routed to a worker",
		}, []string{"kind"}),
		EventsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "applied_total",
			Help:      "Total number of events applied",
		}, []string{"kind"}),
		EventsDuplicate: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "duplicate_total",
			Help:      "Total number of duplicate events skipped",
		}, []string{"kind"}),
		EventsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "failed_total",
			Help:      "Total number of events that failed application",
		}, []string{"kind"}),
		EventsUnresolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "unresolved_total",
			Help:      "Total number of events dropped after the unresolved-reference retry budget",
		}, []string{"kind"}),
		EventsPending: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "pending",
			Help:      "Number of events parked on unresolved references",
		}),

		StreamMessagesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "messages_received_total",
			Help:      "Total number of stream messages received",
		}),
		StreamDecodeErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "decode_errors_total",
			Help:      "Total number of stream messages that failed to decode",
		}),
		StreamReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "reconnects_total",
			Help:      "Total number of stream reconnections",
		}),

		AlertsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "emitted_total",
			Help:      "Total number of alerts emitted",
		}, []string{"type"}),
		AlertsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "published_total",
			Help:      "Total number of alerts published to the hot path",
		}),

		PersistenceRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "persistence",
			Name:      "retries_total",
			Help:      "Total number of retried store calls",
		}, []string{"op"}),
		PersistenceFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "persistence",
			Name:      "failures_total",
			Help:      "Total number of store calls that exhausted their retry budget",
		}, []string{"op"}),

		TokensTracked: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "tokens_tracked",
			Help:      "Number of tokens currently tracked",
		}),
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
