// Package prometheus provides a Prometheus-based stats collector.
package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/discochess/gamereview/internal/stats"
)

// Collector implements stats.Collector using Prometheus metrics.
//
// All library metrics are registered up front at construction time.
// Metric names outside the known set are dropped rather than lazily
// registered, so a typo in a call site cannot pollute the registry.
type Collector struct {
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

var (
	counterNames = []string{
		stats.MetricGamesAnalyzed,
		stats.MetricGamesFailed,
		stats.MetricPliesEvaluated,
		stats.MetricPliesUnevaluated,
		stats.MetricEngineRestarts,
		stats.MetricEngineFailures,
		stats.MetricEvalCacheHits,
		stats.MetricEvalCacheMisses,
	}
	gaugeNames = []string{
		stats.MetricBatchWorkers,
	}
	histogramNames = []string{
		stats.MetricEvalSeconds,
	}
)

// New creates a new Prometheus collector and registers all library metrics.
// If registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer) (*Collector, error) {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	c := &Collector{
		counters:   make(map[string]prometheus.Counter, len(counterNames)),
		gauges:     make(map[string]prometheus.Gauge, len(gaugeNames)),
		histograms: make(map[string]prometheus.Histogram, len(histogramNames)),
	}

	for _, name := range counterNames {
		counter := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: name})
		registered, err := register(registry, counter, name)
		if err != nil {
			return nil, err
		}
		if existing, ok := registered.(prometheus.Counter); ok {
			counter = existing
		}
		c.counters[name] = counter
	}
	for _, name := range gaugeNames {
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: name})
		registered, err := register(registry, gauge, name)
		if err != nil {
			return nil, err
		}
		if existing, ok := registered.(prometheus.Gauge); ok {
			gauge = existing
		}
		c.gauges[name] = gauge
	}
	for _, name := range histogramNames {
		histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    name,
			Help:    name,
			Buckets: prometheus.DefBuckets,
		})
		registered, err := register(registry, histogram, name)
		if err != nil {
			return nil, err
		}
		if existing, ok := registered.(prometheus.Histogram); ok {
			histogram = existing
		}
		c.histograms[name] = histogram
	}

	return c, nil
}

// register registers col, returning the already-registered collector when one
// exists so multiple analyzers can share a registry.
func register(registry prometheus.Registerer, col prometheus.Collector, name string) (prometheus.Collector, error) {
	if err := registry.Register(col); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector, nil
		}
		return nil, fmt.Errorf("registering %s: %w", name, err)
	}
	return nil, nil
}

// IncCounter increments a counter metric.
func (c *Collector) IncCounter(name string, delta int64) {
	if counter, ok := c.counters[name]; ok {
		counter.Add(float64(delta))
	}
}

// SetGauge sets a gauge metric.
func (c *Collector) SetGauge(name string, value int64) {
	if gauge, ok := c.gauges[name]; ok {
		gauge.Set(float64(value))
	}
}

// ObserveHistogram records a value in a histogram.
func (c *Collector) ObserveHistogram(name string, value float64) {
	if histogram, ok := c.histograms[name]; ok {
		histogram.Observe(value)
	}
}
