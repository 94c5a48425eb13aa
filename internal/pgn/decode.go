// Package pgn decodes Portable Game Notation into an ordered, legality
// checked ply sequence with per-ply board state.
//
// The decoder applies the main line move by move against a real board, so
// every ply carries the exact position before and after it and an illegal
// or unparseable move is reported with its ply index instead of silently
// truncating the game. Comments, NAGs and move numbers are tolerated;
// variations are skipped (or rejected, configurably); only the main line
// is analyzed.
package pgn

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/notnil/chess"
)

// Color identifies the side that played a ply.
type Color int8

const (
	White Color = iota
	Black
)

// String returns "white" or "black".
func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Ply is one half-move with the board state around it.
type Ply struct {
	// Index is the zero-based ply number.
	Index int

	// Color is the side that moved.
	Color Color

	// SAN is the move as written, with decorations stripped.
	SAN string

	// UCI is the move in coordinate notation, e.g. "e2e4" or "e7e8q".
	UCI string

	// FENBefore and FENAfter are the positions around the move.
	FENBefore string
	FENAfter  string

	// Clock is the mover's remaining time from a [%clk] annotation.
	// Valid only when HasClock is set; clock annotations are optional.
	Clock    time.Duration
	HasClock bool

	// Eval is the pre-recorded [%eval] annotation, when present.
	Eval *EvalAnnotation
}

// EvalAnnotation is a pre-recorded engine judgment embedded in the source
// notation, e.g. by Lichess server analysis.
type EvalAnnotation struct {
	// Pawns is the evaluation in pawn units from White's perspective.
	// Meaningless when IsMate is set.
	Pawns float64

	// Mate is the signed mate distance when IsMate is set.
	Mate   int
	IsMate bool
}

// Game is a decoded game: metadata plus the ordered main-line plies.
// Immutable once decoded.
type Game struct {
	// ID is the source's game identifier tag, when one exists.
	ID string

	White    string
	Black    string
	WhiteElo int
	BlackElo int

	// Result is the PGN result marker: "1-0", "0-1", "1/2-1/2" or "*".
	Result string

	// Termination is the raw Termination tag, e.g. "Normal", "Time forfeit".
	Termination string

	TimeControl TimeControl

	// PlayedAt is the game's start timestamp, when the tags carry one.
	PlayedAt time.Time

	// Tags holds all header tags verbatim.
	Tags map[string]string

	Plies []Ply
}

// PlyCount returns the number of plies in the game.
func (g *Game) PlyCount() int {
	return len(g.Plies)
}

// MalformedGameError reports unparseable notation or an illegal move, with
// the zero-based index of the offending ply.
type MalformedGameError struct {
	// Ply is the index the failure occurred at; equal to the number of
	// plies decoded successfully before it.
	Ply   int
	Token string
	Err   error
}

func (e *MalformedGameError) Error() string {
	return fmt.Sprintf("pgn: malformed game at ply %d (%q): %v", e.Ply, e.Token, e.Err)
}

func (e *MalformedGameError) Unwrap() error {
	return e.Err
}

// Decoder configures decoding. The zero value skips variations.
type Decoder struct {
	// RejectVariations makes the decoder fail on sub-lines instead of
	// skipping them.
	RejectVariations bool
}

// Decode parses a single game with default settings.
func Decode(r io.Reader) (*Game, error) {
	return Decoder{}.Decode(r)
}

var (
	tagRe  = regexp.MustCompile(`^\[(\w+)\s+"((?:[^"\\]|\\.)*)"\]\s*$`)
	clkRe  = regexp.MustCompile(`\[%clk\s+(\d+):(\d{1,2}):(\d{1,2})(?:\.(\d+))?\]`)
	evalRe = regexp.MustCompile(`\[%eval\s+(#?-?\d+(?:\.\d+)?)\]`)
)

// Decode parses one game from r.
func (d Decoder) Decode(r io.Reader) (*Game, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading game: %w", err)
	}

	tags, movetext := splitSections(string(raw))

	g := &Game{
		ID:          tags["GameId"],
		White:       tags["White"],
		Black:       tags["Black"],
		WhiteElo:    parseElo(tags["WhiteElo"]),
		BlackElo:    parseElo(tags["BlackElo"]),
		Result:      tags["Result"],
		Termination: tags["Termination"],
		TimeControl: ParseTimeControl(tags["TimeControl"]),
		PlayedAt:    parseTimestamp(tags),
		Tags:        tags,
	}

	board, err := newBoard(tags)
	if err != nil {
		return nil, &MalformedGameError{Ply: 0, Token: tags["FEN"], Err: err}
	}

	if err := d.applyMovetext(g, board, movetext); err != nil {
		return nil, err
	}

	if g.Result == "" {
		g.Result = "*"
	}
	return g, nil
}

// applyMovetext tokenizes the movetext and applies each main-line move.
func (d Decoder) applyMovetext(g *Game, board *chess.Game, movetext string) error {
	depth := 0 // variation nesting
	i := 0

	for i < len(movetext) {
		ch := movetext[i]
		switch {
		case ch == '{':
			end := strings.IndexByte(movetext[i:], '}')
			if end < 0 {
				return &MalformedGameError{Ply: len(g.Plies), Token: "{", Err: fmt.Errorf("unterminated comment")}
			}
			if depth == 0 {
				annotateLastPly(g, movetext[i+1:i+end])
			}
			i += end + 1

		case ch == ';':
			nl := strings.IndexByte(movetext[i:], '\n')
			if nl < 0 {
				i = len(movetext)
			} else {
				i += nl + 1
			}

		case ch == '(':
			if d.RejectVariations {
				return &MalformedGameError{Ply: len(g.Plies), Token: "(", Err: fmt.Errorf("variations not allowed")}
			}
			depth++
			i++

		case ch == ')':
			if depth == 0 {
				return &MalformedGameError{Ply: len(g.Plies), Token: ")", Err: fmt.Errorf("unbalanced variation marker")}
			}
			depth--
			i++

		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++

		default:
			j := i
			for j < len(movetext) && !isDelimiter(movetext[j]) {
				j++
			}
			token := movetext[i:j]
			i = j

			if depth > 0 {
				continue // inside a skipped variation
			}
			if err := d.applyToken(g, board, token); err != nil {
				return err
			}
		}
	}

	if depth != 0 {
		return &MalformedGameError{Ply: len(g.Plies), Token: "(", Err: fmt.Errorf("unterminated variation")}
	}
	return nil
}

// applyToken handles one whitespace-delimited movetext token.
func (d Decoder) applyToken(g *Game, board *chess.Game, token string) error {
	switch {
	case token == "", isMoveNumber(token), strings.HasPrefix(token, "$"):
		return nil
	case token == "1-0" || token == "0-1" || token == "1/2-1/2" || token == "*":
		// Result marker; trust the Result tag when both are present.
		if g.Result == "" {
			g.Result = token
		}
		return nil
	}

	san := strings.TrimRight(token, "!?")
	if san == "" {
		return &MalformedGameError{Ply: len(g.Plies), Token: token, Err: fmt.Errorf("empty move")}
	}

	pos := board.Position()
	before := pos.String()
	mover := White
	if pos.Turn() == chess.Black {
		mover = Black
	}

	if err := board.MoveStr(san); err != nil {
		return &MalformedGameError{Ply: len(g.Plies), Token: token, Err: err}
	}

	moves := board.Moves()
	applied := moves[len(moves)-1]

	g.Plies = append(g.Plies, Ply{
		Index:     len(g.Plies),
		Color:     mover,
		SAN:       san,
		UCI:       applied.String(),
		FENBefore: before,
		FENAfter:  board.Position().String(),
	})
	return nil
}

// annotateLastPly parses [%clk] and [%eval] commands out of a comment and
// attaches them to the most recent ply.
func annotateLastPly(g *Game, comment string) {
	if len(g.Plies) == 0 {
		return
	}
	ply := &g.Plies[len(g.Plies)-1]

	if m := clkRe.FindStringSubmatch(comment); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		seconds, _ := strconv.Atoi(m[3])
		clock := time.Duration(hours)*time.Hour +
			time.Duration(minutes)*time.Minute +
			time.Duration(seconds)*time.Second
		if m[4] != "" {
			if frac, err := strconv.ParseFloat("0."+m[4], 64); err == nil {
				clock += time.Duration(frac * float64(time.Second))
			}
		}
		ply.Clock = clock
		ply.HasClock = true
	}

	if m := evalRe.FindStringSubmatch(comment); m != nil {
		ply.Eval = parseEvalAnnotation(m[1])
	}
}

func parseEvalAnnotation(s string) *EvalAnnotation {
	if rest, ok := strings.CutPrefix(s, "#"); ok {
		mate, err := strconv.Atoi(rest)
		if err != nil {
			return nil
		}
		return &EvalAnnotation{Mate: mate, IsMate: true}
	}
	pawns, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &EvalAnnotation{Pawns: pawns}
}

// newBoard builds the starting board, honoring SetUp/FEN tags for games
// from a custom position.
func newBoard(tags map[string]string) (*chess.Game, error) {
	if fenTag, ok := tags["FEN"]; ok && tags["SetUp"] == "1" {
		opt, err := chess.FEN(fenTag)
		if err != nil {
			return nil, fmt.Errorf("invalid FEN tag: %w", err)
		}
		return chess.NewGame(opt), nil
	}
	return chess.NewGame(), nil
}

// splitSections separates header tags from movetext.
func splitSections(raw string) (map[string]string, string) {
	tags := make(map[string]string)
	var movetext strings.Builder

	inMovetext := false
	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !inMovetext {
			if m := tagRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				tags[m[1]] = m[2]
				continue
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			inMovetext = true
		}
		movetext.WriteString(line)
		movetext.WriteString("\n")
	}

	return tags, movetext.String()
}

// isMoveNumber recognizes tokens like "1.", "23...", or a bare "14".
func isMoveNumber(token string) bool {
	trimmed := strings.TrimRight(token, ".")
	if trimmed == "" {
		return false
	}
	for _, ch := range trimmed {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

func isDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '{', ';', '(', ')':
		return true
	}
	return false
}

func parseElo(s string) int {
	elo, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return elo
}

// parseTimestamp builds the start time from UTCDate/UTCTime tags, falling
// back to the Date tag. Returns the zero time when nothing parses.
func parseTimestamp(tags map[string]string) time.Time {
	if date, ok := tags["UTCDate"]; ok {
		if clock, ok := tags["UTCTime"]; ok {
			if ts, err := time.Parse("2006.01.02 15:04:05", date+" "+clock); err == nil {
				return ts
			}
		}
		if ts, err := time.Parse("2006.01.02", date); err == nil {
			return ts
		}
	}
	if date, ok := tags["Date"]; ok {
		if ts, err := time.Parse("2006.01.02", date); err == nil {
			return ts
		}
	}
	return time.Time{}
}
