package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/modhub/review-queue/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	SubmissionsTotal *prometheus.CounterVec
	DecisionsTotal   *prometheus.CounterVec
	DecideLatency    *prometheus.HistogramVec
	EditsProposed    *prometheus.CounterVec
	CascadeFailures  prometheus.Counter
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queue_submissions_total",
			Help: "Total number of submissions that entered the review queue.",
		}, []string{"kind"}),

		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queue_decisions_total",
			Help: "Total number of committed terminal decisions.",
		}, []string{"outcome"}),

		DecideLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "queue_decision_seconds",
			Help:    "Decision latency from request to committed state (including publish).",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),

		EditsProposed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queue_edits_proposed_total",
			Help: "Total number of persisted moderator edit proposals.",
		}, []string{"kind"}),

		CascadeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queue_cascade_failures_total",
			Help: "Total number of submitter purges that failed after a committed rejection.",
		}),
	}

	reg.MustRegister(
		m.SubmissionsTotal,
		m.DecisionsTotal,
		m.DecideLatency,
		m.EditsProposed,
		m.CascadeFailures,
	)

	return m
}

// ServiceHooks returns the metric callback functions expected by
// service.MetricHooks. Centralises the prometheus observation calls so the
// service stays free of metrics imports.
func (m *Metrics) ServiceHooks() (
	onSubmitted func(domain.ItemKind),
	onDecided func(domain.ItemState, time.Duration),
	onEditProposed func(domain.ItemKind),
	onCascadeFailed func(),
) {
	onSubmitted = func(kind domain.ItemKind) {
		m.SubmissionsTotal.WithLabelValues(string(kind)).Inc()
	}
	onDecided = func(outcome domain.ItemState, latency time.Duration) {
		m.DecisionsTotal.WithLabelValues(string(outcome)).Inc()
		m.DecideLatency.WithLabelValues(string(outcome)).Observe(latency.Seconds())
	}
	onEditProposed = func(kind domain.ItemKind) {
		m.EditsProposed.WithLabelValues(string(kind)).Inc()
	}
	onCascadeFailed = func() {
		m.CascadeFailures.Inc()
	}
	return
}
