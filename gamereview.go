// Package gamereview analyzes chess games for move quality.
//
// An Analyzer decodes recorded games, replays every move past a UCI
// engine, and grades each move by how much evaluation it gave up. Moves
// are judged against centipawn-loss thresholds, games are segmented into
// opening, middlegame and endgame, and per-player accuracy is summarized.
// Batches of games run concurrently, one engine session per worker.
package gamereview

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/gamereview/internal/engine"
	"github.com/discochess/gamereview/internal/engine/evalcache"
	"github.com/discochess/gamereview/internal/engine/uci"
	"github.com/discochess/gamereview/internal/evaluate"
	"github.com/discochess/gamereview/internal/pgn"
	"github.com/discochess/gamereview/internal/phase"
	"github.com/discochess/gamereview/internal/stats"
)

// DefaultDepth is the engine search depth used when none is configured.
const DefaultDepth = 15

// Engine evaluates chess positions. Implementations must allow Close
// concurrently with an in-flight Evaluate.
type Engine = engine.Evaluator

// Evaluation is an engine's verdict on a single position.
type Evaluation = engine.Evaluation

// EngineScore is a signed engine score, centipawns or forced mate.
type EngineScore = engine.Score

// EngineConfig describes how to run a UCI engine subprocess.
type EngineConfig struct {
	// Path is the engine binary.
	Path string

	// Args are extra command-line arguments.
	Args []string

	// Depth is the search depth per position. Defaults to DefaultDepth.
	Depth int

	// MoveTime bounds the search wall time per position, when positive.
	MoveTime time.Duration

	// Options are UCI options applied during the handshake, for example
	// Threads or Hash. An option the engine rejects fails the session.
	Options map[string]string
}

// Analyzer grades games. Safe for concurrent use.
type Analyzer struct {
	opts    options
	factory func() (engine.Evaluator, error)

	evaluator evaluate.Evaluator
	segmenter phase.Segmenter
	decoder   pgn.Decoder

	// cache is shared by every session this analyzer creates, so batch
	// workers reuse each other's evaluations.
	cache *evalcache.Cache

	mu      sync.Mutex
	primary engine.Evaluator

	closed atomic.Bool
}

// New creates an analyzer driving the given engine. The engine is owned
// by the analyzer: Close closes it. Batches run single-worker since only
// one session exists; use NewUCI for concurrent batches.
func New(eng Engine, opts ...Option) (*Analyzer, error) {
	if eng == nil {
		return nil, errors.New("gamereview: no engine given")
	}
	a, err := newAnalyzer(opts)
	if err != nil {
		return nil, err
	}
	a.primary = a.wrapCache(eng)
	a.opts.workers = 1
	return a, nil
}

// NewUCI creates an analyzer that runs the configured UCI engine. Engine
// processes start lazily on first use, one per batch worker.
func NewUCI(cfg EngineConfig, opts ...Option) (*Analyzer, error) {
	a, err := newAnalyzer(opts)
	if err != nil {
		return nil, err
	}

	depth := cfg.Depth
	if depth == 0 {
		depth = DefaultDepth
	}
	sessionCfg := uci.Config{
		Path:     cfg.Path,
		Args:     cfg.Args,
		Depth:    depth,
		MoveTime: cfg.MoveTime,
		Options:  cfg.Options,
	}

	a.factory = func() (engine.Evaluator, error) {
		s, err := uci.NewSession(sessionCfg, a.opts.logger, a.opts.stats)
		if err != nil {
			return nil, err
		}
		return a.wrapCache(s), nil
	}

	// Validate eagerly; a bad depth or empty path should not wait for
	// the first game.
	probe, err := a.factory()
	if err != nil {
		return nil, publicErr(err)
	}
	a.primary = probe

	return a, nil
}

func newAnalyzer(opts []Option) (*Analyzer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}

	if !o.thresholds.Valid() {
		return nil, errors.New("gamereview: thresholds must be positive and strictly increasing")
	}
	if o.openingDepth < 0 {
		return nil, errors.New("gamereview: opening depth must not be negative")
	}
	if o.workers < 1 {
		return nil, errors.New("gamereview: workers must be at least 1")
	}

	a := &Analyzer{
		opts:      o,
		evaluator: evaluate.Evaluator{MateCeiling: o.mateCeiling},
		segmenter: phase.Segmenter{OpeningDepth: o.openingDepth, EndgamePieces: o.endgamePieces},
		decoder:   pgn.Decoder{RejectVariations: o.strict},
	}
	if o.cacheSize > 0 {
		cache, err := evalcache.NewCache(o.cacheSize, o.stats)
		if err != nil {
			return nil, err
		}
		a.cache = cache
	}
	return a, nil
}

// wrapCache decorates an evaluator with the shared LRU when configured.
func (a *Analyzer) wrapCache(eng engine.Evaluator) engine.Evaluator {
	if a.cache == nil {
		return eng
	}
	return a.cache.Wrap(eng)
}

// AnalyzeGame grades a decoded game. The returned analysis has exactly
// one move entry per ply. If the engine becomes unavailable mid-game the
// remaining moves are left unevaluated and the analysis is marked
// degraded rather than failing.
func (a *Analyzer) AnalyzeGame(ctx context.Context, g *Game) (*GameAnalysis, error) {
	if a.closed.Load() {
		return nil, ErrClosed
	}
	eng, err := a.session()
	if err != nil {
		return nil, publicErr(err)
	}
	analysis, err := a.analyze(ctx, eng, g)
	if err != nil {
		return nil, publicErr(err)
	}
	return analysis, nil
}

// AnalyzePGN decodes a single game from r and grades it.
func (a *Analyzer) AnalyzePGN(ctx context.Context, r io.Reader) (*GameAnalysis, error) {
	g, err := decodeGame(r, a.decoder)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeGame(ctx, g)
}

// Close shuts down the analyzer and any engine process it owns. Safe to
// call more than once and concurrently with in-flight analysis.
func (a *Analyzer) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.primary == nil {
		return nil
	}
	err := a.primary.Close()
	a.primary = nil
	return err
}

// session returns the shared engine session, starting one if needed.
func (a *Analyzer) session() (engine.Evaluator, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed.Load() {
		return nil, ErrClosed
	}
	if a.primary != nil {
		return a.primary, nil
	}
	eng, err := a.factory()
	if err != nil {
		return nil, err
	}
	a.primary = eng
	return eng, nil
}

// analyze grades one game against one engine session.
func (a *Analyzer) analyze(ctx context.Context, eng engine.Evaluator, g *Game) (*GameAnalysis, error) {
	logger := a.opts.logger.With(zap.String("game", gameLabel(g)))

	inBook := make([]bool, len(g.Plies))
	segInput := make([]phase.Ply, len(g.Plies))
	for i, p := range g.Plies {
		if a.opts.book != nil {
			inBook[i] = a.opts.book.Contains(p.FENBefore, p.UCI)
		}
		// Without a book the theory exit is unknowable and the opening
		// falls back to the depth cap alone.
		segInput[i] = phase.Ply{FEN: p.FENBefore, InBook: inBook[i] || a.opts.book == nil}
	}
	phases := a.segmenter.Segment(segInput)
	public := Phases{
		OpeningEnd:   phases.OpeningEnd,
		EndgameStart: phases.EndgameStart,
		PlyCount:     phases.PlyCount,
	}

	analysis := &GameAnalysis{
		Game:   g,
		Moves:  make([]MoveAnalysis, len(g.Plies)),
		Phases: public,
	}

	// prevAfter caches the evaluation of the current position when the
	// previous ply already had the engine look at it.
	var prevAfter *engine.Evaluation

	for i, p := range g.Plies {
		move := &analysis.Moves[i]
		move.Ply = p
		move.Phase = public.Of(i)

		// Book labels apply only inside the opening range; a theory move
		// played deep into the game is graded like any other.
		if inBook[i] && i < phases.OpeningEnd {
			move.Judgment = JudgmentBook
			prevAfter = nil
			continue
		}
		if analysis.Degraded {
			move.Judgment = JudgmentUnevaluated
			a.opts.stats.IncCounter(stats.MetricPliesUnevaluated, 1)
			continue
		}

		before := prevAfter
		if before == nil {
			var err error
			before, err = eng.Evaluate(ctx, p.FENBefore)
			if err != nil {
				if fatal := a.plyFailure(analysis, move, logger, i, err); fatal != nil {
					return nil, fatal
				}
				prevAfter = nil
				continue
			}
		}

		after, err := eng.Evaluate(ctx, p.FENAfter)
		if err != nil {
			if fatal := a.plyFailure(analysis, move, logger, i, err); fatal != nil {
				return nil, fatal
			}
			prevAfter = nil
			continue
		}
		prevAfter = after

		assessed := a.evaluator.Assess(*before, *after, p.UCI)
		move.Evaluated = true
		move.EvalBefore = assessed.Before
		move.EvalAfter = assessed.After
		move.Loss = assessed.Loss
		move.BestMove = assessed.BestMove
		move.IsBest = assessed.IsBest
		move.MissedTactic = !assessed.IsBest && assessed.Loss >= missedTacticThreshold
		move.Judgment = Judgment(a.opts.thresholds.Judge(assessed.Loss))
		move.Depth = minDepth(before.Depth, after.Depth)
		a.opts.stats.IncCounter(stats.MetricPliesEvaluated, 1)
	}

	analysis.White = summarize(analysis.Moves, White)
	analysis.Black = summarize(analysis.Moves, Black)
	analysis.UnevaluatedFraction = unevaluatedFraction(analysis.Moves)
	a.opts.stats.IncCounter(stats.MetricGamesAnalyzed, 1)

	logger.Debug("game analyzed",
		zap.Int("plies", len(g.Plies)),
		zap.Float64("white_acpl", analysis.White.ACPL),
		zap.Float64("black_acpl", analysis.Black.ACPL),
		zap.Bool("degraded", analysis.Degraded),
	)
	return analysis, nil
}

// plyFailure handles an evaluation error for one ply. It returns a
// non-nil error only for failures that must abort the whole game.
func (a *Analyzer) plyFailure(analysis *GameAnalysis, move *MoveAnalysis, logger *zap.Logger, ply int, err error) error {
	var config *engine.ConfigError
	if errors.As(err, &config) {
		return err
	}
	if errors.Is(err, engine.ErrClosed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	move.Judgment = JudgmentUnevaluated
	a.opts.stats.IncCounter(stats.MetricPliesUnevaluated, 1)

	var unavailable *engine.UnavailableError
	if errors.As(err, &unavailable) {
		// The session could not be recovered. Finish the game without
		// the engine instead of losing the work done so far.
		analysis.Degraded = true
		logger.Warn("engine unavailable, remaining moves unevaluated",
			zap.Int("ply", ply), zap.Error(err))
		return nil
	}

	logger.Warn("move left unevaluated", zap.Int("ply", ply), zap.Error(err))
	return nil
}

// unevaluatedFraction is the share of gradeable plies left without a
// verdict. Book moves are skipped on purpose and do not count.
func unevaluatedFraction(moves []MoveAnalysis) float64 {
	gradeable, unevaluated := 0, 0
	for _, m := range moves {
		if m.Judgment == JudgmentBook {
			continue
		}
		gradeable++
		if m.Judgment == JudgmentUnevaluated {
			unevaluated++
		}
	}
	if gradeable == 0 {
		return 0
	}
	return float64(unevaluated) / float64(gradeable)
}

func minDepth(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// gameLabel names a game for logs.
func gameLabel(g *Game) string {
	if g.ID != "" {
		return g.ID
	}
	var b strings.Builder
	b.WriteString(g.White)
	b.WriteString(" vs ")
	b.WriteString(g.Black)
	return b.String()
}
