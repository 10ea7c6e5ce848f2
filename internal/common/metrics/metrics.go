// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docgen_worker_jobs_completed_total",
			Help: "Jobs completed, by task type",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docgen_worker_jobs_failed_total",
			Help: "Jobs failed or thrown as BPMN errors, by task type and error code",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docgen_worker_job_duration_seconds",
			Help:    "Job handling time in seconds",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "docgen_worker_jobs_active",
			Help: "Jobs currently being handled",
		},
		[]string{"task_type"},
	)

	ModelTokensUsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docgen_model_tokens_used_total",
			Help: "Total tokens reported by the vision model across parsed drafts",
		},
	)

	TemplateCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docgen_template_cache_lookups_total",
			Help: "Prompt template cache lookups, by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)
