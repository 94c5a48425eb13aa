// Package phase segments a game's plies into opening, middlegame and
// endgame.
//
// The opening runs until the game leaves known theory or a fixed ply
// depth, whichever comes first. The endgame begins at the first position
// with few enough non-king pieces on the board. The three spans always
// partition the game exactly, so short games may have empty phases.
package phase

import (
	"github.com/discochess/gamereview/internal/fen"
)

// Phase names a game stage.
type Phase string

const (
	Opening    Phase = "opening"
	Middlegame Phase = "middlegame"
	Endgame    Phase = "endgame"
)

const (
	// DefaultOpeningDepth is how many plies the opening may last at most.
	DefaultOpeningDepth = 15

	// DefaultEndgamePieces is the non-king piece count at or below which
	// a position counts as an endgame.
	DefaultEndgamePieces = 6
)

// Ply is the per-move input to segmentation.
type Ply struct {
	// FEN is the position the move was played from.
	FEN string

	// InBook reports whether the move is known opening theory.
	InBook bool
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
		return Opening
	case ply >= p.EndgameStart:
		return Endgame
	default:
		return Middlegame
	}
}

// Segmenter computes phase boundaries. The zero value uses the defaults.
type Segmenter struct {
	// OpeningDepth caps the opening length in plies.
	OpeningDepth int

	// EndgamePieces is the non-king piece threshold for the endgame.
	EndgamePieces int
}

func (s Segmenter) openingDepth() int {
	if s.OpeningDepth > 0 {
		return s.OpeningDepth
	}
	return DefaultOpeningDepth
}

func (s Segmenter) endgamePieces() int {
	if s.EndgamePieces > 0 {
		return s.EndgamePieces
	}
	return DefaultEndgamePieces
}

// Segment computes the phase boundaries for a game. Positions that fail
// to parse never trigger the endgame.
func (s Segmenter) Segment(plies []Ply) Phases {
	n := len(plies)

	openingEnd := s.openingDepth()
	if openingEnd > n {
		openingEnd = n
	}
	for i, ply := range plies {
		if i >= openingEnd {
			break
		}
		if !ply.InBook {
			openingEnd = i
			break
		}
	}

	endgameStart := n
	for i, ply := range plies {
		material, err := fen.ParseMaterial(ply.FEN)
		if err != nil {
			continue
		}
		if material.NonKingTotal() <= s.endgamePieces() {
			endgameStart = i
			break
		}
	}
	// Phases never overlap; a sparse opening position still counts as
	// opening until theory runs out.
	if endgameStart < openingEnd {
		endgameStart = openingEnd
	}

	return Phases{OpeningEnd: openingEnd, EndgameStart: endgameStart, PlyCount: n}
}
