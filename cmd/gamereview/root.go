package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/gamereview"
	"github.com/discochess/gamereview/internal/stats/logger"
)

var (
	// Global flags.
	configFile string
	enginePath string
	depth      int
	moveTime   time.Duration
	bookFile   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "gamereview",
	Short: "Grade chess games with a UCI engine",
	Long: `Gamereview replays recorded chess games past a UCI engine and grades
every move by centipawn loss: blunders, mistakes and inaccuracies per
player, phase segmentation, and an accuracy score.

Examples:
  # Analyze one game
  gamereview analyze --engine /usr/bin/stockfish game.pgn

  # Analyze a compressed archive of games, four engines in parallel
  gamereview batch --engine /usr/bin/stockfish --workers 4 games.pgn.zst

  # Use a config file instead of flags
  gamereview analyze --config review.yaml game.pgn`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&enginePath, "engine", "e", "", "path to the UCI engine binary")
	rootCmd.PersistentFlags().IntVar(&depth, "depth", 0, "search depth per position (default 15)")
	rootCmd.PersistentFlags().DurationVar(&moveTime, "movetime", 0, "search time bound per position")
	rootCmd.PersistentFlags().StringVar(&bookFile, "book", "", "opening book position file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// newAnalyzer builds an analyzer from the config file merged with flags.
func newAnalyzer(extra ...gamereview.Option) (*gamereview.Analyzer, error) {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return nil, err
	}
	cfg.mergeFlags()

	if cfg.Engine.Path == "" {
		return nil, fmt.Errorf("no engine configured; use --engine or a config file")
	}

	log := zap.NewNop()
	if verbose {
		log, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	}

	opts := []gamereview.Option{
		gamereview.WithLogger(log),
	}
	if verbose {
		opts = append(opts, gamereview.WithStats(logger.New(log.Named("stats"))))
	}
	if cfg.Book != "" {
		bookOpt, err := gamereview.WithBookFile(cfg.Book)
		if err != nil {
			return nil, err
		}
		opts = append(opts, bookOpt)
	}
	if cfg.CacheSize > 0 {
		opts = append(opts, gamereview.WithEvalCache(cfg.CacheSize))
	}
	if cfg.Workers > 0 {
		opts = append(opts, gamereview.WithWorkers(cfg.Workers))
	}
	if t := cfg.Thresholds; t != nil {
		opts = append(opts, gamereview.WithThresholds(t.Inaccuracy, t.Mistake, t.Blunder))
	}
	opts = append(opts, extra...)

	return gamereview.NewUCI(gamereview.EngineConfig{
		Path:     cfg.Engine.Path,
		Args:     cfg.Engine.Args,
		Depth:    cfg.Engine.Depth,
		MoveTime: cfg.Engine.MoveTime,
		Options:  cfg.Engine.Options,
	}, opts...)
}
