package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/discochess/gamereview/internal/stats"
)

func TestCollector_KnownMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	c, err := New(registry)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	c.IncCounter(stats.MetricGamesAnalyzed, 3)
	c.SetGauge(stats.MetricBatchWorkers, 4)
	c.ObserveHistogram(stats.MetricEvalSeconds, 0.25)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := make(map[string]bool)
	for _, fam := range families {
		found[fam.GetName()] = true
	}

	for _, want := range []string{
		stats.MetricGamesAnalyzed,
		stats.MetricBatchWorkers,
		stats.MetricEvalSeconds,
	} {
		if !found[want] {
			t.Errorf("metric %s not gathered", want)
		}
	}
}

func TestCollector_UnknownMetricDropped(t *testing.T) {
	registry := prometheus.NewRegistry()
	c, err := New(registry)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Must not panic or register anything new.
	c.IncCounter("gamereview_no_such_metric_total", 1)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, fam := range families {
		if fam.GetName() == "gamereview_no_such_metric_total" {
			t.Error("unknown metric was registered")
		}
	}
}

func TestNew_SharedRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	if _, err := New(registry); err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	if _, err := New(registry); err != nil {
		t.Fatalf("second New() on same registry error = %v", err)
	}
}
