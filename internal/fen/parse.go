// Package fen provides FEN (Forsyth-Edwards Notation) parsing utilities
// used for material counting and position normalization.
package fen

import (
	"errors"
	"strings"
)

// ErrInvalidFEN indicates the FEN string is malformed.
var ErrInvalidFEN = errors.New("invalid FEN notation")

// Material holds per-side piece counts for a position. Kings are not
// counted: they are always on the board and phase heuristics work on
// removable material only.
type Material struct {
	WhitePawns   int
	WhiteKnights int
	WhiteBishops int
	WhiteRooks   int
	WhiteQueens  int

	BlackPawns   int
	BlackKnights int
	BlackBishops int
	BlackRooks   int
	BlackQueens  int
}

// NonKingTotal returns the total number of non-king pieces on the board,
// pawns included. This is the quantity endgame detection thresholds on.
func (m Material) NonKingTotal() int {
	return m.WhiteTotal() + m.BlackTotal()
}

// WhiteTotal returns the number of white non-king pieces.
func (m Material) WhiteTotal() int {
	return m.WhitePawns + m.WhiteKnights + m.WhiteBishops + m.WhiteRooks + m.WhiteQueens
}

// BlackTotal returns the number of black non-king pieces.
func (m Material) BlackTotal() int {
	return m.BlackPawns + m.BlackKnights + m.BlackBishops + m.BlackRooks + m.BlackQueens
}

// Normalize returns a normalized FEN string suitable for use as a cache key.
// It keeps the position, side to move, castling rights, and en passant square,
// dropping the halfmove clock and fullmove number: two positions that differ
// only in move counters evaluate identically.
func Normalize(fen string) (string, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return "", ErrInvalidFEN
	}

	if !isValidPiecePlacement(parts[0]) {
		return "", ErrInvalidFEN
	}

	if parts[1] != "w" && parts[1] != "b" {
		return "", ErrInvalidFEN
	}

	return strings.Join(parts[:4], " "), nil
}

// ParseMaterial extracts material counts from a FEN string.
func ParseMaterial(fen string) (Material, error) {
	parts := strings.Fields(fen)
	if len(parts) == 0 {
		return Material{}, ErrInvalidFEN
	}

	var m Material
	for _, ch := range parts[0] {
		switch ch {
		case 'P':
			m.WhitePawns++
		case 'N':
			m.WhiteKnights++
		case 'B':
			m.WhiteBishops++
		case 'R':
			m.WhiteRooks++
		case 'Q':
			m.WhiteQueens++
		case 'p':
			m.BlackPawns++
		case 'n':
			m.BlackKnights++
		case 'b':
			m.BlackBishops++
		case 'r':
			m.BlackRooks++
		case 'q':
			m.BlackQueens++
		case 'K', 'k':
			// Kings are always present, don't count.
		case '/', '1', '2', '3', '4', '5', '6', '7', '8':
			// Valid FEN characters, ignore.
		default:
			return Material{}, ErrInvalidFEN
		}
	}

	return m, nil
}


// isValidPiecePlacement validates the piece placement part of a FEN.
func isValidPiecePlacement(placement string) bool {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return false
	}

	for _, rank := range ranks {
		squares := 0
		for _, ch := range rank {
			switch {
			case ch >= '1' && ch <= '8':
				squares += int(ch - '0')
			case ch == 'P', ch == 'N', ch == 'B', ch == 'R', ch == 'Q', ch == 'K',
				ch == 'p', ch == 'n', ch == 'b', ch == 'r', ch == 'q', ch == 'k':
				squares++
			default:
				return false
			}
		}
		if squares != 8 {
			return false
		}
	}

	return true
}
