// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Analysis metrics.
	MetricGamesAnalyzed    = "gamereview_games_analyzed_total"
	MetricGamesFailed      = "gamereview_games_failed_total"
	MetricPliesEvaluated   = "gamereview_plies_evaluated_total"
	MetricPliesUnevaluated = "gamereview_plies_unevaluated_total"

	// Engine metrics.
	MetricEngineRestarts = "gamereview_engine_restarts_total"
	MetricEngineFailures = "gamereview_engine_failures_total"
	MetricEvalSeconds    = "gamereview_evaluation_seconds"

	// Evaluation cache metrics.
	MetricEvalCacheHits   = "gamereview_eval_cache_hits_total"
	MetricEvalCacheMisses = "gamereview_eval_cache_misses_total"

	// Batch metrics.
	MetricBatchWorkers = "gamereview_batch_workers"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
