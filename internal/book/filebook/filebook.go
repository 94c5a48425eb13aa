// Package filebook loads an opening book from a tab-separated text file.
//
// Each line holds a position and its known continuations:
//
//	<FEN>\t<uci> <uci> <uci>...
//
// Blank lines and lines starting with '#' are skipped. Files ending in
// .zst or .gz are decompressed transparently.
package filebook

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/discochess/gamereview/internal/book"
	"github.com/discochess/gamereview/internal/book/membook"
	"github.com/discochess/gamereview/internal/codec"
)

// Load reads a book file into memory. The returned book is safe for
// concurrent use.
func Load(path string) (book.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening book file: %w", err)
	}
	defer f.Close()

	r, err := codec.NewReader(path, f)
	if err != nil {
		return nil, fmt.Errorf("decompressing book file: %w", err)
	}
	defer r.Close()

	b := membook.New()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fenStr, movesField, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		for _, mv := range strings.Fields(movesField) {
			b.Add(fenStr, mv)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading book file: %w", err)
	}

	return b, nil
}
