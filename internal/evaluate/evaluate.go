// Package evaluate turns raw engine scores into per-move centipawn losses.
//
// Engine scores are reported from the side to move's perspective. For a
// played move the package compares the score of the position the mover
// faced against the negated score of the position they left behind, both
// normalized onto a single centipawn scale with forced mates mapped near
// a fixed ceiling.
package evaluate

import (
	"github.com/discochess/gamereview/internal/engine"
)

// DefaultMateCeiling is the centipawn magnitude assigned to an immediate
// checkmate. A mate in n plies maps to ceiling minus n, so faster mates
// stay ordered above slower ones and all mates outrank any material edge.
const DefaultMateCeiling = 10000

// Assessment is the evaluation of one played move, all values from the
// mover's perspective.
type Assessment struct {
	// Before is the normalized score of the position the mover faced.
	Before int

	// After is the normalized score after the played move.
	After int

	// Loss is how much the played move gave up, in centipawns.
	// Never negative; moves that gain on the engine's line count as zero.
	Loss int

	// BestMove is the engine's preferred move in the before position,
	// in coordinate notation. May be empty when the engine gave none.
	BestMove string

	// IsBest reports whether the played move matches BestMove.
	IsBest bool
}

// Evaluator normalizes scores and computes move losses. The zero value
// uses DefaultMateCeiling.
type Evaluator struct {
	// MateCeiling overrides the mate-to-centipawn ceiling when positive.
	MateCeiling int
}

func (e Evaluator) ceiling() int {
	if e.MateCeiling > 0 {
		return e.MateCeiling
	}
	return DefaultMateCeiling
}

// mateBand is how many plies of mate distance the scale reserves at the
// top, keeping every mate strictly above every centipawn score.
func (e Evaluator) mateBand() int {
	band := e.ceiling() / 10
	if band < 1 {
		band = 1
	}
	return band
}

// Centipawns maps a score onto the normalized centipawn scale, from the
// perspective of the side the engine scored for. Mate distances clamp to
// the band width and centipawn scores clamp strictly below the band, so
// even the slowest mate outranks any material edge.
func (e Evaluator) Centipawns(s engine.Score) int {
	ceiling := e.ceiling()
	band := e.mateBand()

	if s.Mate != nil {
		n := *s.Mate
		switch {
		case n > 0:
			if n > band {
				n = band
			}
			return ceiling - n
		case n < 0:
			if -n > band {
				n = -band
			}
			return -ceiling - n
		default:
			// Mate in zero: the scored side is checkmated.
			return -ceiling
		}
	}

	var cp int
	if s.Centipawns != nil {
		cp = *s.Centipawns
	}
	limit := ceiling - band - 1
	if cp > limit {
		return limit
	}
	if cp < -limit {
		return -limit
	}
	return cp
}

// Assess evaluates a played move given the engine's verdicts on the
// positions before and after it. The after score is negated onto the
// mover's perspective, since the opponent is to move there.
func (e Evaluator) Assess(before, after engine.Evaluation, played string) Assessment {
	beforeCp := e.Centipawns(before.Score)

	var afterCp int
	if after.Score.Mate != nil && *after.Score.Mate == 0 {
		// The side to move after the played move is already checkmated,
		// so the mover delivered mate. Negation cannot express this
		// since mate in zero carries no sign.
		afterCp = e.ceiling()
	} else {
		afterCp = e.Centipawns(after.Score.Negate())
	}

	loss := beforeCp - afterCp
	if loss < 0 {
		loss = 0
	}

	return Assessment{
		Before:   beforeCp,
		After:    afterCp,
		Loss:     loss,
		BestMove: before.BestMove,
		IsBest:   before.BestMove != "" && played == before.BestMove,
	}
}
