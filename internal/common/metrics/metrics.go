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

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gematria_analyses_total",
			Help: "Analyses run, by entry point and outcome",
		},
		[]string{"origin", "outcome"},
	)

	AnalysisTokens = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gematria_analysis_tokens",
			Help:    "Distinct input tokens per analysis",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	AnalysisMatches = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gematria_analysis_matches",
			Help:    "Match candidates returned per analysis",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	CorpusEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gematria_corpus_entries",
			Help: "Words in the loaded corpus",
		},
		[]string{"source"},
	)

	ValueCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gematria_value_cache_lookups_total",
			Help: "Value cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gematria_http_requests_total",
			Help: "HTTP API requests by route and status code",
		},
		[]string{"route", "code"},
	)
)

// ObserveAnalysis records one analysis outcome for origin (api, worker, cli).
func ObserveAnalysis(origin string, tokens, matches int, err error) {
	if err != nil {
		AnalysesTotal.WithLabelValues(origin, "error").Inc()
		return
	}
	AnalysesTotal.WithLabelValues(origin, "ok").Inc()
	AnalysisTokens.Observe(float64(tokens))
	AnalysisMatches.Observe(float64(matches))
}
