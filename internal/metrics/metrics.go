// Package metrics provides Prometheus metrics for extraction runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PipelineRuns counts finished runs.
	// Labels: outcome (completed, not_recipe, failed)
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recipepdf",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of extraction runs by outcome",
		},
		[]string{"outcome"},
	)

	// StageDuration tracks how long each pipeline stage takes.
	// Labels: stage
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "recipepdf",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	// BranchFailures counts extraction branches that yielded no value because of an error.
	// Labels: branch (recipe, cooking_time)
	BranchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recipepdf",
			Subsystem: "pipeline",
			Name:      "branch_failures_total",
			Help:      "Total number of failed extraction branches",
		},
		[]string{"branch"},
	)

	// ValidationFallbacks counts validations that failed open.
	ValidationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "recipepdf",
			Name:      "validation_fallbacks_total",
			Help:      "Total number of validations that fell back to treating the document as a recipe",
		},
	)
)

// Outcome labels
const (
	OutcomeCompleted = "completed"
	OutcomeNotRecipe = "not_recipe"
	OutcomeFailed    = "failed"
)

// ObserveStage records the time elapsed since start for stage
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
