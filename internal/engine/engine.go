// Package engine defines the position-evaluator capability used by game
// analysis. A concrete implementation drives a UCI engine subprocess; tests
// use a scripted stub. The analyzer only depends on this interface.
package engine

import (
	"context"
	"errors"
	"strconv"
)

// ErrClosed indicates the evaluator has been closed.
var ErrClosed = errors.New("engine: evaluator closed")

// Evaluator evaluates chess positions. A single Evaluator is driven by one
// goroutine at a time unless the implementation documents otherwise.
type Evaluator interface {
	// Evaluate returns the evaluation of the position given as a FEN
	// string. It blocks until the engine reports a result at the
	// configured depth or the configured time budget elapses.
	Evaluate(ctx context.Context, fen string) (*Evaluation, error)

	// Close releases the evaluator and any process it owns. Safe to call
	// more than once and concurrently with an in-flight Evaluate.
	Close() error
}

// Evaluation is the engine's verdict on a single position. It is transient:
// produced per request, never mutated by the engine afterwards.
type Evaluation struct {
	// Score is the evaluation from the perspective of the side to move.
	Score Score

	// BestMove is the engine's preferred move in UCI notation,
	// e.g. "e2e4". Empty when the position has no legal moves.
	BestMove string

	// Depth is the search depth actually reached.
	Depth int
}

// Score is a signed engine score: either centipawns or a forced mate.
// Exactly one of Centipawns and Mate is set.
type Score struct {
	// Centipawns is the evaluation in centipawns from the side to move's
	// perspective. Nil if the position has a forced mate.
	Centipawns *int

	// Mate is the number of moves until checkmate, positive when the side
	// to move delivers it, negative when it receives it. Nil if there is
	// no forced mate.
	Mate *int
}

// Cp returns a centipawn score.
func Cp(v int) Score {
	return Score{Centipawns: &v}
}

// MateIn returns a forced-mate score. Positive n means the side to move
// mates in n, negative means it is mated in -n.
func MateIn(n int) Score {
	return Score{Mate: &n}
}

// IsMate reports whether the score is a forced mate.
func (s Score) IsMate() bool {
	return s.Mate != nil
}

// Negate returns the score seen from the opponent's perspective.
func (s Score) Negate() Score {
	if s.Mate != nil {
		return MateIn(-*s.Mate)
	}
	if s.Centipawns != nil {
		return Cp(-*s.Centipawns)
	}
	return Score{}
}

// String returns a human-readable score.
// Examples: "+1.25", "-0.50", "#3", "#-5"
func (s Score) String() string {
	if s.Mate != nil {
		return "#" + strconv.Itoa(*s.Mate)
	}
	if s.Centipawns == nil {
		return "?"
	}
	cp := *s.Centipawns
	sign := "+"
	if cp < 0 {
		sign = "-"
		cp = -cp
	}
	whole := cp / 100
	frac := cp % 100
	if frac < 10 {
		return sign + strconv.Itoa(whole) + ".0" + strconv.Itoa(frac)
	}
	return sign + strconv.Itoa(whole) + "." + strconv.Itoa(frac)
}
