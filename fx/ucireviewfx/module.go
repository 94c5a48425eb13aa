// Package ucireviewfx provides an fx module for a UCI-engine backed analyzer.
package ucireviewfx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/gamereview"
	"github.com/discochess/gamereview/internal/stats"
	"github.com/discochess/gamereview/internal/stats/logger"
)

// Config holds configuration for the UCI-backed analyzer.
type Config struct {
	// EnginePath is the UCI engine binary.
	EnginePath string

	// EngineArgs are extra command-line arguments for the engine.
	EngineArgs []string

	// Depth is the search depth per position. Default is 15.
	Depth int

	// MoveTime bounds the search wall time per position, when positive.
	MoveTime time.Duration

	// EngineOptions are UCI options applied at startup.
	EngineOptions map[string]string

	// BookFile is an optional opening book position file.
	BookFile string

	// CacheSize is the evaluation cache size. Zero disables caching.
	CacheSize int

	// Workers is how many games a batch analyzes concurrently.
	// Default is the CPU count.
	Workers int
}

// Module provides a UCI-engine backed analyzer.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("ucireview",
	fx.Provide(
		newStatsCollector,
		newAnalyzer,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("gamereview.stats"))
}

// Params holds dependencies for creating the analyzer.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided analyzer.
type Result struct {
	fx.Out

	Analyzer *gamereview.Analyzer
}

func newAnalyzer(p Params) (Result, error) {
	opts := []gamereview.Option{
		gamereview.WithLogger(p.Logger.Named("gamereview")),
		gamereview.WithStats(p.Collector),
	}
	if p.Config.BookFile != "" {
		bookOpt, err := gamereview.WithBookFile(p.Config.BookFile)
		if err != nil {
			return Result{}, err
		}
		opts = append(opts, bookOpt)
	}
	if p.Config.CacheSize > 0 {
		opts = append(opts, gamereview.WithEvalCache(p.Config.CacheSize))
	}
	if p.Config.Workers > 0 {
		opts = append(opts, gamereview.WithWorkers(p.Config.Workers))
	}

	analyzer, err := gamereview.NewUCI(gamereview.EngineConfig{
		Path:     p.Config.EnginePath,
		Args:     p.Config.EngineArgs,
		Depth:    p.Config.Depth,
		MoveTime: p.Config.MoveTime,
		Options:  p.Config.EngineOptions,
	}, opts...)
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
