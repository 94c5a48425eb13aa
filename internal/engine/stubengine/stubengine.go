// Package stubengine provides a deterministic in-memory engine
// implementation for testing. It answers from a scripted table instead of
// searching, so analyses built on it are exactly reproducible.
package stubengine

import (
	"context"
	"sync"

	"github.com/discochess/gamereview/internal/engine"
	"github.com/discochess/gamereview/internal/fen"
)

// Compile-time check that Engine implements engine.Evaluator.
var _ engine.Evaluator = (*Engine)(nil)

// Engine is a scripted evaluator for tests.
type Engine struct {
	mu       sync.Mutex
	evals    map[string]engine.Evaluation
	errs     map[string]error
	fallback engine.Evaluation
	failNext int
	failErr  error
	calls    int
	closed   bool
}

// New creates a stub engine whose fallback answer is a dead-equal position
// at depth 1 with no preferred move.
func New() *Engine {
	return &Engine{
		evals:    make(map[string]engine.Evaluation),
		errs:     make(map[string]error),
		fallback: engine.Evaluation{Score: engine.Cp(0), Depth: 1},
	}
}

// SetEval scripts the answer for a position (for test setup).
func (e *Engine) SetEval(fenStr string, ev engine.Evaluation) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.evals[key(fenStr)] = ev
}

// SetErr scripts a failure for a position (for test setup).
func (e *Engine) SetErr(fenStr string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs[key(fenStr)] = err
}

// SetFallback sets the answer returned for unscripted positions.
func (e *Engine) SetFallback(ev engine.Evaluation) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fallback = ev
}

// FailNext makes the next n Evaluate calls return err regardless of
// position. Useful for simulating a dead engine.
func (e *Engine) FailNext(n int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failNext = n
	e.failErr = err
}

// Calls returns the number of Evaluate calls made so far.
func (e *Engine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Evaluate answers from the scripted table.
func (e *Engine) Evaluate(ctx context.Context, fenStr string) (*engine.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, engine.ErrClosed
	}
	e.calls++

	if e.failNext > 0 {
		e.failNext--
		return nil, e.failErr
	}

	k := key(fenStr)
	if err, ok := e.errs[k]; ok {
		return nil, err
	}
	if ev, ok := e.evals[k]; ok {
		return &ev, nil
	}
	ev := e.fallback
	return &ev, nil
}

// Close marks the engine closed; subsequent Evaluate calls fail.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func key(fenStr string) string {
	if normalized, err := fen.Normalize(fenStr); err == nil {
		return normalized
	}
	return fenStr
}
