// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	OracleCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_oracle_calls_total",
			Help: "Oracle calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	OracleFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_oracle_fallbacks_total",
			Help: "Deterministic fallbacks taken instead of an oracle answer",
		},
		[]string{"operation", "reason"},
	)

	// OracleDroppedIDs counts IDs the oracle returned that were not offered.
	OracleDroppedIDs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_oracle_dropped_ids_total",
			Help: "Oracle-returned IDs dropped by the whitelist",
		},
		[]string{"category"},
	)

	ShortlistSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planner_shortlist_size",
			Help:    "Shortlist size per category",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 10},
		},
		[]string{"category"},
	)

	FilteredPoolSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planner_filtered_pool_size",
			Help:    "Listings per category that passed the filter, before the shortlist bound",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"category"},
	)

	Swipes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_swipes_total",
			Help: "Recorded swipes by category and action",
		},
		[]string{"category", "action"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_http_requests_total",
			Help: "API requests by route and status",
		},
		[]string{"route", "status"},
	)
)
