// Package metrics holds the Prometheus collectors for the metrics derivation
// engine. Collectors register with the default registry, which cmd/api serves
// on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pkordes/sailing-logbook/internal/domain"
)

// Stage labels for ComputationFailures.
const (
	StageSegment   = "segment"
	StageVoyage    = "voyage"
	StageEndpoints = "endpoints"
)

var (
	// ComputationFailures counts derivations that produced a non-finite value
	// and were skipped, keeping the previously stored values.
	ComputationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logbook_metrics_computation_failures_total",
		Help: "Total number of segment or voyage metric computations that failed and were skipped",
	}, []string{"stage"})

	// Recalculations counts voyage aggregate rewrites by the path that produced them.
	Recalculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logbook_voyage_recalculations_total",
		Help: "Total number of voyage aggregate recalculations by source",
	}, []string{"source"})

	// RecalculationDuration measures one voyage recalculation, load to write.
	RecalculationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "logbook_voyage_recalculation_duration_seconds",
		Help:    "Voyage aggregate recalculation latency in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

// RecordComputationFailure increments the failure counter for a stage.
func RecordComputationFailure(stage string) {
	ComputationFailures.WithLabelValues(stage).Inc()
}

// RecordRecalculation counts a finished recalculation and observes its latency.
func RecordRecalculation(source domain.RecalcSource, started time.Time) {
	Recalculations.WithLabelValues(string(source)).Inc()
	RecalculationDuration.Observe(time.Since(started).Seconds())
}
