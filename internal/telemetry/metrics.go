package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NodeExecutions counts node visits by kind and outcome
	// (executed, pruned, failed).
	NodeExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dagjudge_node_executions_total",
		Help: "Total node executions by kind and outcome",
	}, []string{"kind", "outcome"})

	// NodeDuration tracks how long node bodies take, judge latency included.
	NodeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dagjudge_node_duration_seconds",
		Help:    "Node execution duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
	}, []string{"kind"})

	// JudgeCalls counts judge invocations by judge, call mode and result.
	JudgeCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dagjudge_judge_calls_total",
		Help: "Total judge invocations by judge, mode and result",
	}, []string{"judge", "mode", "result"})

	// JudgeFallbacks counts schema-less retries after a judge rejected a schema.
	JudgeFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dagjudge_judge_schema_fallbacks_total",
		Help: "Total schema fallbacks by judge",
	}, []string{"judge"})

	// JudgeCost accumulates the reported cost of native judge calls.
	JudgeCost = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dagjudge_judge_cost_total",
		Help: "Accumulated judge cost as reported by native judges",
	}, []string{"judge"})

	// Evaluations counts metric passes by metric and result (success, failure, error).
	Evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dagjudge_evaluations_total",
		Help: "Total metric evaluations by metric and result",
	}, []string{"metric", "result"})

	// EvaluationScore records the final score of each metric pass.
	EvaluationScore = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dagjudge_evaluation_score",
		Help:    "Final score per metric pass",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	}, []string{"metric"})
)
