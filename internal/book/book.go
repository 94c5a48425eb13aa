// Package book defines the opening-book capability consumed by analysis.
//
// The analyzer only needs membership tests: is this move, in this position,
// a known opening continuation. Where the data comes from (a bundled file,
// an external database, nothing at all) is the caller's concern.
package book

// Book answers whether a move in a position is known opening theory.
// Implementations must be safe for concurrent use.
type Book interface {
	// Contains reports whether the move (UCI, e.g. "e2e4") is a known
	// book continuation from the position. The FEN may carry move
	// counters; implementations normalize as needed.
	Contains(fen, uciMove string) bool
}
