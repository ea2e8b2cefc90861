package optimistic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mutation outcomes
const (
	OutcomeReconciled = "reconciled"
	OutcomeRolledBack = "rolled_back"
	OutcomeRejected   = "rejected"
	OutcomeFailed     = "failed"
)

type metrics struct {
	mutations *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	inflight  prometheus.Gauge
	clobber   *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campusfeed",
			Subsystem: "mutator",
			Name:      "mutations_total",
			Help:      "Optimistic mutations by operation and outcome",
		}, []string{"op", "outcome"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campusfeed",
			Subsystem: "mutator",
			Name:      "network_duration_seconds",
			Help:      "Time from tentative write to reconcile or rollback",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),

		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "campusfeed",
			Subsystem: "mutator",
			Name:      "inflight",
			Help:      "Mutations waiting for the network",
		}),

		clobber: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campusfeed",
			Subsystem: "mutator",
			Name:      "rollback_skipped_total",
			Help:      "Rollbacks skipped because the entity changed after the tentative write",
		}, []string{"op"}),
	}
}
