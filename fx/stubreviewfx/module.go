// Package stubreviewfx provides an fx module for an analyzer backed by a
// scripted engine. Useful for testing.
package stubreviewfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/gamereview"
	"github.com/discochess/gamereview/internal/engine/stubengine"
	"github.com/discochess/gamereview/internal/stats"
	"github.com/discochess/gamereview/internal/stats/logger"
)

// Module provides an analyzer driving a scripted engine for testing.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("stubreview",
	fx.Provide(
		newStatsCollector,
		newStubEngine,
		newAnalyzer,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("gamereview.stats"))
}

func newStubEngine() *stubengine.Engine {
	return stubengine.New()
}

// Params holds dependencies for creating the analyzer.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Engine    *stubengine.Engine
	Lifecycle fx.Lifecycle
}

// Result holds the provided analyzer. The *stubengine.Engine is available
// from the graph directly for test scripting.
type Result struct {
	fx.Out

	Analyzer *gamereview.Analyzer
}

func newAnalyzer(p Params) (Result, error) {
	analyzer, err := gamereview.New(p.Engine,
		gamereview.WithStats(p.Collector),
		gamereview.WithLogger(p.Logger.Named("gamereview")),
	)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return analyzer.Close()
		},
	})

	return Result{Analyzer: analyzer}, nil
}
