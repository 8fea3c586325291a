/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package metrics registers the Prometheus collectors exported on /metrics
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline stages timed by ObserveStage
const (
	StageRetrieve   = "retrieve"
	StageSynthesize = "synthesize"
	StageExecute    = "execute"
	StageSummarize  = "summarize"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nl2sql_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nl2sql_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	generationOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nl2sql_generation_outcomes_total",
			Help: "Total number of SQL generation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	stageDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nl2sql_stage_duration_seconds",
			Help:    "Pipeline stage latency in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	retrievedTables = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nl2sql_retrieved_tables",
			Help:    "Number of table metadata records retrieved per question.",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 10, 20},
		},
	)

	summaryFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nl2sql_summary_fallbacks_total",
			Help: "Total number of result summaries replaced by the row count message.",
		},
	)

	executionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nl2sql_execution_errors_total",
			Help: "Total number of SQL execution errors by target database.",
		},
		[]string{"database"},
	)

	executedRows = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nl2sql_executed_rows",
			Help:    "Number of rows returned per executed query.",
			Buckets: []float64{0, 1, 10, 100, 500, 1000, 5000},
		},
		[]string{"database"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		generationOutcomesTotal,
		stageDurationSeconds,
		retrievedTables,
		summaryFallbacksTotal,
		executionErrorsTotal,
		executedRows,
	)
}

// ObserveHTTPRequest counts and times one served request
func ObserveHTTPRequest(method, path, status string, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
}

// ObserveOutcome counts a generation outcome by reason
func ObserveOutcome(outcome string) {
	generationOutcomesTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records the latency of one pipeline stage
func ObserveStage(stage string, elapsed time.Duration) {
	stageDurationSeconds.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObserveRetrieved records how many tables a question retrieved
func ObserveRetrieved(tables int) {
	retrievedTables.Observe(float64(tables))
}

// IncrementSummaryFallback counts a summary replaced by the row count message
func IncrementSummaryFallback() {
	summaryFallbacksTotal.Inc()
}

// ObserveExecution records the rows returned by a statement, or counts
// its failure
func ObserveExecution(database string, rows int, err error) {
	if err != nil {
		executionErrorsTotal.WithLabelValues(database).Inc()
		return
	}
	executedRows.WithLabelValues(database).Observe(float64(rows))
}
