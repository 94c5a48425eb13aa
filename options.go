package gamereview

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/discochess/gamereview/internal/book"
	"github.com/discochess/gamereview/internal/book/filebook"
	"github.com/discochess/gamereview/internal/classify"
	"github.com/discochess/gamereview/internal/phase"
	"github.com/discochess/gamereview/internal/stats"
)

// Option configures an Analyzer.
type Option interface {
	apply(*options)
}

// options holds the analyzer configuration.
type options struct {
	logger        *zap.Logger
	stats         stats.Collector
	book          book.Book
	thresholds    classify.Thresholds
	openingDepth  int
	endgamePieces int
	mateCeiling   int
	strict        bool
	cacheSize     int
	workers       int
	progress      ProgressFunc
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		logger:        zap.NewNop(),
		stats:         stats.NewNoop(),
		thresholds:    classify.DefaultThresholds,
		openingDepth:  phase.DefaultOpeningDepth,
		endgamePieces: phase.DefaultEndgamePieces,
		workers:       runtime.NumCPU(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithBook sets the opening book used to mark theory moves. Book moves
// are labeled rather than engine-graded. If not set, no move is treated
// as theory and the opening phase is bounded by depth alone.
func WithBook(b book.Book) Option {
	return optionFunc(func(o *options) {
		o.book = b
	})
}

// WithBookFile loads an opening book from a position file. Compressed
// files are detected by extension.
func WithBookFile(path string) (Option, error) {
	b, err := filebook.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading opening book: %w", err)
	}
	return WithBook(b), nil
}

// WithThresholds sets the centipawn-loss cut lines between judgments.
// Bounds are inclusive: a loss exactly at a line takes the harsher
// judgment. Values must be positive and strictly increasing.
func WithThresholds(inaccuracy, mistake, blunder int) Option {
	return optionFunc(func(o *options) {
		o.thresholds = classify.Thresholds{
			Inaccuracy: inaccuracy,
			Mistake:    mistake,
			Blunder:    blunder,
		}
	})
}

// WithOpeningDepth caps how many plies the opening phase may last.
// Default is 15.
func WithOpeningDepth(plies int) Option {
	return optionFunc(func(o *options) {
		o.openingDepth = plies
	})
}

// WithEndgamePieces sets the non-king piece count at or below which a
// position counts as an endgame. Default is 6.
func WithEndgamePieces(n int) Option {
	return optionFunc(func(o *options) {
		o.endgamePieces = n
	})
}

// WithMateCeiling sets the centipawn magnitude assigned to an immediate
// checkmate. Default is 10000.
func WithMateCeiling(cp int) Option {
	return optionFunc(func(o *options) {
		o.mateCeiling = cp
	})
}

// WithStrictNotation makes decoding fail on games containing variations
// instead of skipping them.
func WithStrictNotation() Option {
	return optionFunc(func(o *options) {
		o.strict = true
	})
}

// WithEvalCache caches position evaluations in an LRU of the given size,
// shared across games. Useful for batches with repeated openings.
func WithEvalCache(size int) Option {
	return optionFunc(func(o *options) {
		o.cacheSize = size
	})
}

// WithWorkers sets how many games a batch analyzes concurrently. Each
// worker drives its own engine session. Default is the CPU count.
func WithWorkers(n int) Option {
	return optionFunc(func(o *options) {
		o.workers = n
	})
}

// WithProgress registers a callback invoked after each game of a batch
// completes. It may be called from multiple goroutines.
func WithProgress(fn ProgressFunc) Option {
	return optionFunc(func(o *options) {
		o.progress = fn
	})
}
