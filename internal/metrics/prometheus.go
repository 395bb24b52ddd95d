// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the invitation code tracker.
var (
	// Counters.
	CodesGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codes_generated_total",
			Help: "Total number of invitation code issuance attempts",
		},
		[]string{"status"},
	)

	CodeGenerationCollisionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "code_generation_collisions_total",
			Help: "Total number of candidate codes discarded due to collisions",
		},
	)

	RedemptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redemptions_total",
			Help: "Total number of redemption attempts by outcome",
		},
		[]string{"status"},
	)

	RankUpdateFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redemption_rank_update_failures_total",
			Help: "Total incremental ranking updates that failed after a successful redemption",
		},
	)

	// Gauges.
	RankingLastComputeTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ranking_last_compute_timestamp",
			Help: "Unix timestamp of the last monthly ranking computation",
		},
	)

	RankedEmployeesCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ranked_employees_count",
			Help: "Number of employees in the last computed monthly ranking",
		},
		[]string{"month"},
	)

	// Histograms.
	RankingComputeDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_compute_duration_seconds",
			Help:    "Time taken to compute and persist a monthly ranking",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
	)

	SchedulerJobDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Time taken to execute the monthly scheduler job",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8), // 1s to ~128s
		},
	)

	SchedulerJobsRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_run_total",
			Help: "Total scheduler job executions",
		},
		[]string{"status"},
	)
)

// RecordCodeGenerated records a code issuance attempt outcome.
func RecordCodeGenerated(status string) {
	CodesGeneratedTotal.WithLabelValues(status).Inc()
}

// RecordGenerationCollision records a discarded candidate code.
func RecordGenerationCollision() {
	CodeGenerationCollisionsTotal.Inc()
}

// RecordRedemption records a redemption attempt outcome.
func RecordRedemption(status string) {
	RedemptionsTotal.WithLabelValues(status).Inc()
}

// RecordRankUpdateFailure records a failed incremental ranking update.
func RecordRankUpdateFailure() {
	RankUpdateFailuresTotal.Inc()
}

// SetRankingLastCompute sets the timestamp of the last monthly computation.
func SetRankingLastCompute() {
	RankingLastComputeTimestamp.SetToCurrentTime()
}

// SetRankedEmployees sets the cohort size of the last computed ranking.
func SetRankedEmployees(month string, count int) {
	RankedEmployeesCount.WithLabelValues(month).Set(float64(count))
}

// ObserveRankingComputeDuration observes the duration of a ranking computation.
func ObserveRankingComputeDuration(seconds float64) {
	RankingComputeDurationSeconds.Observe(seconds)
}

// ObserveSchedulerJobDuration observes the duration of a scheduler job.
func ObserveSchedulerJobDuration(seconds float64) {
	SchedulerJobDurationSeconds.Observe(seconds)
}

// RecordSchedulerJobRun records a scheduler job execution.
func RecordSchedulerJobRun(status string) {
	SchedulerJobsRunTotal.WithLabelValues(status).Inc()
}
