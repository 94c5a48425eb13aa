package pgn

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Split separates a multi-game stream into per-game texts, boundaries
// detected at [Event ...] tags. Games come back in source order, verbatim.
func Split(r io.Reader) ([]string, error) {
	var games []string

	scanner := bufio.NewScanner(r)
	// Increase buffer size for long lines.
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var gameText strings.Builder
	inGame := false

	flush := func() {
		if text := strings.TrimSpace(gameText.String()); text != "" {
			games = append(games, text)
		}
		gameText.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "[Event ") {
			if inGame {
				flush()
			}
			inGame = true
		}

		gameText.WriteString(line)
		gameText.WriteString("\n")
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading games: %w", err)
	}

	return games, nil
}

// DecodeAll decodes every game in a multi-game stream. A malformed game
// aborts the whole decode; use Split with per-game Decode calls to keep
// going past bad games.
func (d Decoder) DecodeAll(r io.Reader) ([]*Game, error) {
	texts, err := Split(r)
	if err != nil {
		return nil, err
	}

	games := make([]*Game, 0, len(texts))
	for i, text := range texts {
		g, err := d.Decode(strings.NewReader(text))
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", i, err)
		}
		games = append(games, g)
	}
	return games, nil
}
