package gamereview

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Judgment grades a single played move.
type Judgment string

const (
	// JudgmentBook marks a move inside known opening theory. Book moves
	// are not graded against the engine.
	JudgmentBook Judgment = "book"

	// JudgmentGood is any graded move below the inaccuracy threshold.
	JudgmentGood Judgment = "good"

	JudgmentInaccuracy Judgment = "inaccuracy"
	JudgmentMistake    Judgment = "mistake"
	JudgmentBlunder    Judgment = "blunder"

	// JudgmentUnevaluated marks a move the engine gave no verdict for.
	JudgmentUnevaluated Judgment = "unevaluated"
)

// Phase names a game stage.
type Phase string

const (
	PhaseOpening    Phase = "opening"
	PhaseMiddlegame Phase = "middlegame"
	PhaseEndgame    Phase = "endgame"
)

// accuracyHalfLife shapes the centipawn-loss to accuracy curve. An average
// loss of about 190 centipawns maps to 50 percent.
const accuracyHalfLife = 275.0

// missedTacticThreshold is the centipawn loss past which a non-best move
// counts as a missed tactic: the engine's continuation was at least a full
// pawn better than the played move's outcome.
const missedTacticThreshold = 100

// MoveAnalysis is the verdict on one played move.
type MoveAnalysis struct {
	// Ply is the move as decoded from the game.
	Ply Ply

	Judgment Judgment
	Phase    Phase

	// Evaluated reports whether the engine graded this move. Book and
	// unevaluated moves carry no scores.
	Evaluated bool

	// EvalBefore and EvalAfter are normalized centipawn scores around the
	// move, from the mover's perspective.
	EvalBefore int
	EvalAfter  int

	// Loss is the centipawn loss of the played move. Never negative.
	Loss int

	// BestMove is the engine's preferred move in coordinate notation.
	BestMove string

	// IsBest reports whether the played move matches BestMove.
	IsBest bool

	// MissedTactic is set when the move was not the engine's choice and
	// the engine's continuation was better by at least a full pawn.
	MissedTactic bool

	// Depth is the search depth the verdict was produced at.
	Depth int
}

// Phases is a game's phase boundaries. Plies [0, OpeningEnd) are the
// opening, [OpeningEnd, EndgameStart) the middlegame, and
// [EndgameStart, PlyCount) the endgame.
type Phases struct {
	OpeningEnd   int
	EndgameStart int
	PlyCount     int
}

// Of returns the phase of the given ply index.
func (p Phases) Of(ply int) Phase {
	switch {
	case ply < p.OpeningEnd:
		return PhaseOpening
	case ply >= p.EndgameStart:
		return PhaseEndgame
	default:
		return PhaseMiddlegame
	}
}

// PlayerSummary aggregates one side's graded moves.
type PlayerSummary struct {
	// ACPL is the average centipawn loss over evaluated moves.
	ACPL float64

	// Accuracy maps ACPL onto a 0 to 100 scale, 100 meaning every
	// evaluated move matched the engine.
	Accuracy float64

	// Judgments counts moves per judgment, including book and
	// unevaluated moves.
	Judgments map[Judgment]int

	// EvaluatedMoves is how many of the side's moves the engine graded.
	EvaluatedMoves int

	// BestMoves is how many evaluated moves matched the engine's choice.
	BestMoves int

	// MissedTactics is how many evaluated moves missed a significantly
	// better engine continuation.
	MissedTactics int
}

// GameAnalysis is the full quality report for one game.
type GameAnalysis struct {
	Game *Game

	// Moves has exactly one entry per ply of the game, in order.
	Moves []MoveAnalysis

	Phases Phases

	White PlayerSummary
	Black PlayerSummary

	// UnevaluatedFraction is the share of plies with no engine verdict,
	// excluding book moves which are deliberately skipped. A consumer can
	// use it to judge how much to trust the summaries.
	UnevaluatedFraction float64

	// Degraded is set when the engine became unavailable mid-game and
	// the remaining moves were left unevaluated.
	Degraded bool
}

// summarize builds one side's summary from the graded moves.
func summarize(moves []MoveAnalysis, color Color) PlayerSummary {
	s := PlayerSummary{Judgments: make(map[Judgment]int)}

	var losses []float64
	for _, m := range moves {
		if m.Ply.Color != color {
			continue
		}
		s.Judgments[m.Judgment]++
		if !m.Evaluated {
			continue
		}
		s.EvaluatedMoves++
		if m.IsBest {
			s.BestMoves++
		}
		if m.MissedTactic {
			s.MissedTactics++
		}
		losses = append(losses, float64(m.Loss))
	}

	if len(losses) > 0 {
		s.ACPL = stat.Mean(losses, nil)
	}
	s.Accuracy = accuracyFromACPL(s.ACPL, s.EvaluatedMoves)
	return s
}

// accuracyFromACPL maps average centipawn loss onto 0..100. A side with
// no evaluated moves gets no score rather than a perfect one.
func accuracyFromACPL(acpl float64, evaluated int) float64 {
	if evaluated == 0 {
		return 0
	}
	return 100 * math.Exp(-acpl/accuracyHalfLife)
}
