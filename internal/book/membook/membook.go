// Package membook provides an in-memory opening book. Useful for testing
// and for small curated repertoires.
package membook

import (
	"sync"

	"github.com/discochess/gamereview/internal/book"
	"github.com/discochess/gamereview/internal/fen"
)

// Compile-time check that Book implements book.Book.
var _ book.Book = (*Book)(nil)

// Book is an in-memory opening book keyed by normalized FEN.
type Book struct {
	mu    sync.RWMutex
	moves map[string]map[string]struct{}
}

// New creates an empty in-memory book.
func New() *Book {
	return &Book{
		moves: make(map[string]map[string]struct{}),
	}
}

// Add records uciMove as a book continuation from the position.
// Invalid FENs are silently ignored so book files with stray lines
// don't poison lookups.
func (b *Book) Add(fenStr, uciMove string) {
	key, err := fen.Normalize(fenStr)
	if err != nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.moves[key]
	if !ok {
		set = make(map[string]struct{})
		b.moves[key] = set
	}
	set[uciMove] = struct{}{}
}

// Contains reports whether uciMove is a known continuation from the position.
func (b *Book) Contains(fenStr, uciMove string) bool {
	key, err := fen.Normalize(fenStr)
	if err != nil {
		return false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	set, ok := b.moves[key]
	if !ok {
		return false
	}
	_, ok = set[uciMove]
	return ok
}

// Len returns the number of positions in the book.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.moves)
}
