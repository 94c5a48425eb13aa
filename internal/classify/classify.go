// Package classify buckets per-move centipawn losses into judgments.
package classify

// Judgment grades a single played move.
type Judgment string

const (
	// Book marks a move still inside known opening theory. Book moves are
	// not graded against the engine.
	Book Judgment = "book"

	// Good is any graded move below the inaccuracy threshold.
	Good Judgment = "good"

	Inaccuracy Judgment = "inaccuracy"
	Mistake    Judgment = "mistake"
	Blunder    Judgment = "blunder"

	// Unevaluated marks a move the engine produced no verdict for.
	Unevaluated Judgment = "unevaluated"
)

// Thresholds are the centipawn-loss cut lines between judgments. Bounds
// are inclusive: a loss exactly at a line takes the harsher judgment.
type Thresholds struct {
	Inaccuracy int
	Mistake    int
	Blunder    int
}

// DefaultThresholds are the standard cut lines.
var DefaultThresholds = Thresholds{
	Inaccuracy: 50,
	Mistake:    100,
	Blunder:    200,
}

// Valid reports whether the thresholds are positive and strictly ordered.
func (t Thresholds) Valid() bool {
	return t.Inaccuracy > 0 && t.Inaccuracy < t.Mistake && t.Mistake < t.Blunder
}

// Judge grades a centipawn loss.
func (t Thresholds) Judge(loss int) Judgment {
	switch {
	case loss >= t.Blunder:
		return Blunder
	case loss >= t.Mistake:
		return Mistake
	case loss >= t.Inaccuracy:
		return Inaccuracy
	default:
		return Good
	}
}
