package gamereview

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/discochess/gamereview/internal/engine"
	"github.com/discochess/gamereview/internal/pgn"
	"github.com/discochess/gamereview/internal/stats"
)

// ProgressFunc reports batch progress after each game finishes. It may be
// called from multiple goroutines.
type ProgressFunc func(completed, total int)

// GameResult is the outcome for one game of a batch. Exactly one of
// Analysis and Err is set.
type GameResult struct {
	// Index is the game's position in the input.
	Index int

	Analysis *GameAnalysis
	Err      error
}

// BatchSummary aggregates a batch.
type BatchSummary struct {
	// Games is the input size, Analyzed and Failed partition it.
	Games    int
	Analyzed int
	Failed   int

	// Degraded counts analyzed games with unevaluated tails from engine
	// trouble.
	Degraded int

	// MeanACPL and MeanAccuracy average the per-player values across all
	// analyzed games, weighting each player equally. StdDevACPL and
	// MedianACPL describe the spread of the same per-player values.
	MeanACPL     float64
	MeanAccuracy float64
	StdDevACPL   float64
	MedianACPL   float64

	// Judgments sums move judgments across all analyzed games.
	Judgments map[Judgment]int

	// MissedTactics sums missed tactics across all analyzed games.
	MissedTactics int
}

// BatchResult is the outcome of a whole batch run.
type BatchResult struct {
	// ID uniquely identifies the run.
	ID string

	// Results holds one entry per input game, in input order.
	Results []GameResult

	Summary BatchSummary

	Elapsed time.Duration
}

// batchJob carries either a decoded game or raw notation to decode in the
// worker.
type batchJob struct {
	index int
	game  *Game
	text  string
}

// AnalyzeBatch grades a set of games concurrently. Individual game
// failures are recorded per game; the batch only fails as a whole on
// engine misconfiguration, cancellation, or a closed analyzer. On
// cancellation in-flight games finish, undispatched games carry the
// cancellation error in their results, and the partial result is returned
// alongside the error.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, games []*Game) (*BatchResult, error) {
	jobs := make([]batchJob, len(games))
	for i, g := range games {
		jobs[i] = batchJob{index: i, game: g}
	}
	return a.runBatch(ctx, jobs)
}

// AnalyzeBatchPGN reads a multi-game stream and grades every game in it.
// Games that fail to decode are recorded as failures without stopping the
// rest.
func (a *Analyzer) AnalyzeBatchPGN(ctx context.Context, r io.Reader) (*BatchResult, error) {
	texts, err := pgn.Split(r)
	if err != nil {
		return nil, err
	}
	jobs := make([]batchJob, len(texts))
	for i, text := range texts {
		jobs[i] = batchJob{index: i, text: text}
	}
	return a.runBatch(ctx, jobs)
}

func (a *Analyzer) runBatch(ctx context.Context, jobs []batchJob) (*BatchResult, error) {
	if a.closed.Load() {
		return nil, ErrClosed
	}

	result := &BatchResult{
		ID:      uuid.NewString(),
		Results: make([]GameResult, len(jobs)),
	}
	for i := range result.Results {
		result.Results[i].Index = i
	}

	workers := a.opts.workers
	if workers > len(jobs) && len(jobs) > 0 {
		workers = len(jobs)
	}
	a.opts.stats.SetGauge(stats.MetricBatchWorkers, int64(workers))

	logger := a.opts.logger.With(zap.String("batch", result.ID))
	start := time.Now()

	var completed atomic.Int64
	queue := make(chan batchJob)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(queue)
		for i, job := range jobs {
			select {
			case queue <- job:
			case <-gctx.Done():
				// Stop dispatching; undispatched games are recorded as
				// canceled rather than silently dropped.
				for _, rest := range jobs[i:] {
					result.Results[rest.index].Err = gctx.Err()
				}
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			return a.batchWorker(gctx, queue, result, &completed, len(jobs))
		})
	}

	err := g.Wait()

	result.Elapsed = time.Since(start)
	result.Summary = summarizeBatch(result.Results)
	logger.Debug("batch finished",
		zap.Int("analyzed", result.Summary.Analyzed),
		zap.Int("failed", result.Summary.Failed),
		zap.Duration("elapsed", result.Elapsed),
	)
	if err != nil {
		return result, publicErr(err)
	}
	return result, nil
}

// batchWorker drives one engine session through queued games. A session
// that died mid-game is replaced before the next one. Cancellation is
// checked between games only: an in-flight game finishes so its engine
// session never stops in an inconsistent protocol state.
func (a *Analyzer) batchWorker(ctx context.Context, queue <-chan batchJob, result *BatchResult, completed *atomic.Int64, total int) error {
	eng, owned, err := a.workerSession()
	if err != nil {
		return err
	}
	defer func() {
		if owned && eng != nil {
			eng.Close()
		}
	}()

	gameCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		job, ok := <-queue
		if !ok {
			return nil
		}

		analysis, err := a.analyzeJob(gameCtx, eng, job)
		switch {
		case err == nil:
			result.Results[job.index].Analysis = analysis
			if analysis.Degraded && owned {
				// The session is dead; give the next game a fresh one.
				eng.Close()
				eng, err = a.factory()
				if err != nil {
					return err
				}
			}
		case isBatchFatal(err):
			return err
		default:
			result.Results[job.index].Err = publicErr(err)
			a.opts.stats.IncCounter(stats.MetricGamesFailed, 1)
		}

		done := int(completed.Add(1))
		if a.opts.progress != nil {
			a.opts.progress(done, total)
		}
	}
}

func (a *Analyzer) analyzeJob(ctx context.Context, eng engine.Evaluator, job batchJob) (*GameAnalysis, error) {
	g := job.game
	if g == nil {
		var err error
		g, err = decodeGame(strings.NewReader(job.text), a.decoder)
		if err != nil {
			return nil, err
		}
	}
	return a.analyze(ctx, eng, g)
}

// workerSession hands each worker its own engine session when a factory
// exists, else the shared one. The bool reports session ownership.
func (a *Analyzer) workerSession() (engine.Evaluator, bool, error) {
	if a.factory == nil {
		eng, err := a.session()
		return eng, false, err
	}
	eng, err := a.factory()
	return eng, true, err
}

// isBatchFatal reports whether an error should abort the whole batch.
// Misconfiguration cannot succeed on any game; cancellation and closure
// are caller-initiated.
func isBatchFatal(err error) bool {
	var config *engine.ConfigError
	if errors.As(err, &config) {
		return true
	}
	return errors.Is(err, engine.ErrClosed) ||
		errors.Is(err, ErrClosed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// summarizeBatch aggregates per-game analyses.
func summarizeBatch(results []GameResult) BatchSummary {
	s := BatchSummary{
		Games:     len(results),
		Judgments: make(map[Judgment]int),
	}

	var acpls, accuracies []float64
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			continue
		}
		if r.Analysis == nil {
			continue
		}
		s.Analyzed++
		if r.Analysis.Degraded {
			s.Degraded++
		}
		for _, side := range []PlayerSummary{r.Analysis.White, r.Analysis.Black} {
			for judgment, n := range side.Judgments {
				s.Judgments[judgment] += n
			}
			s.MissedTactics += side.MissedTactics
			if side.EvaluatedMoves > 0 {
				acpls = append(acpls, side.ACPL)
				accuracies = append(accuracies, side.Accuracy)
			}
		}
	}

	if len(acpls) > 0 {
		s.MeanACPL = stat.Mean(acpls, nil)
		s.MeanAccuracy = stat.Mean(accuracies, nil)
		if len(acpls) > 1 {
			s.StdDevACPL = stat.StdDev(acpls, nil)
		}
		sort.Float64s(acpls)
		s.MedianACPL = stat.Quantile(0.5, stat.Empirical, acpls, nil)
	}
	return s
}
