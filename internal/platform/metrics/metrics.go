package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	WebhooksReceived     prometheus.Counter
	Reconciliations      *prometheus.CounterVec
	NotificationFailures prometheus.Counter
	ReconcileDuration    prometheus.Histogram
	CacheLookups         *prometheus.CounterVec
}

// Reconciliation outcome labels.
const (
	OutcomeClean    = "clean"
	OutcomeMismatch = "mismatch"
	OutcomeDegraded = "degraded"
)

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return newWith(prometheus.DefaultRegisterer)
}

// NewForTest creates metrics against a private registry so parallel tests
// don't trip duplicate registration panics.
func NewForTest() *Metrics {
	return newWith(prometheus.NewRegistry())
}

func newWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		WebhooksReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "vatwatch_webhooks_received_total",
			Help: "Total number of webhook deliveries accepted",
		}),
		Reconciliations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vatwatch_reconciliations_total",
			Help: "Total number of reconciliation runs by outcome",
		}, []string{"outcome"}),
		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "vatwatch_notification_failures_total",
			Help: "Total number of notification deliveries that failed after retry",
		}),
		ReconcileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vatwatch_reconcile_duration_seconds",
			Help:    "End-to-end latency of reconciliation runs",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vatwatch_registry_cache_lookups_total",
			Help: "Registry cache lookups by backend and result",
		}, []string{"backend", "result"}),
	}
}

// RecordCacheLookup counts one registry cache lookup. result is "hit" or
// "miss".
func (m *Metrics) RecordCacheLookup(backend, result string) {
	m.CacheLookups.WithLabelValues(backend, result).Inc()
}

// ObserveReconciliation records one finished run.
func (m *Metrics) ObserveReconciliation(outcome string, seconds float64) {
	m.Reconciliations.WithLabelValues(outcome).Inc()
	m.ReconcileDuration.Observe(seconds)
}
