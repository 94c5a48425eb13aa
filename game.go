package gamereview

import (
	"io"
	"time"

	"github.com/discochess/gamereview/internal/pgn"
)

// Color identifies a side.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// TimeClass buckets a time control by estimated game duration.
type TimeClass string

const (
	UltraBullet    TimeClass = "ultrabullet"
	Bullet         TimeClass = "bullet"
	Blitz          TimeClass = "blitz"
	Rapid          TimeClass = "rapid"
	Classical      TimeClass = "classical"
	Correspondence TimeClass = "correspondence"
	UnknownSpeed   TimeClass = "unknown"
)

// TimeControl is a parsed TimeControl tag.
type TimeControl struct {
	// Raw is the tag verbatim, e.g. "300+3".
	Raw string

	// Initial is the base clock in seconds.
	Initial int

	// Increment is the per-move increment in seconds.
	Increment int

	Class TimeClass
}

// Ply is one half-move of a decoded game.
type Ply struct {
	// Index is the zero-based ply number.
	Index int

	// Color is the side that moved.
	Color Color

	// SAN is the move in standard algebraic notation.
	SAN string

	// UCI is the move in coordinate notation, e.g. "e2e4".
	UCI string

	// FENBefore and FENAfter are the positions around the move.
	FENBefore string
	FENAfter  string

	// Clock is the mover's remaining time from a clock annotation.
	// Valid only when HasClock is set.
	Clock    time.Duration
	HasClock bool

	// Eval is a pre-recorded evaluation annotation, when the source
	// notation carries one.
	Eval *EvalAnnotation
}

// EvalAnnotation is an engine judgment embedded in the source notation,
// e.g. by server-side analysis.
type EvalAnnotation struct {
	// Pawns is the evaluation in pawn units from White's perspective.
	// Meaningless when IsMate is set.
	Pawns float64

	// Mate is the signed mate distance when IsMate is set.
	Mate   int
	IsMate bool
}

// Game is a decoded game: metadata plus the ordered main-line plies.
type Game struct {
	// ID is the source's game identifier, when the notation carries one.
	ID string

	White    string
	Black    string
	WhiteElo int
	BlackElo int

	// Result is the result marker: "1-0", "0-1", "1/2-1/2" or "*".
	Result string

	// Termination describes how the game ended, e.g. "Time forfeit".
	Termination string

	TimeControl TimeControl

	// PlayedAt is the game's start timestamp; zero when unknown.
	PlayedAt time.Time

	// Tags holds all header tags verbatim.
	Tags map[string]string

	Plies []Ply
}

// DecodeGame decodes a single game, skipping variations. Undecodable
// notation returns a *MalformedGameError.
func DecodeGame(r io.Reader) (*Game, error) {
	return decodeGame(r, pgn.Decoder{})
}

// DecodeGames decodes every game in a multi-game stream.
func DecodeGames(r io.Reader) ([]*Game, error) {
	decoded, err := pgn.Decoder{}.DecodeAll(r)
	if err != nil {
		return nil, publicErr(err)
	}
	games := make([]*Game, len(decoded))
	for i, g := range decoded {
		games[i] = gameFromDecoded(g)
	}
	return games, nil
}

func decodeGame(r io.Reader, dec pgn.Decoder) (*Game, error) {
	decoded, err := dec.Decode(r)
	if err != nil {
		return nil, publicErr(err)
	}
	return gameFromDecoded(decoded), nil
}

// gameFromDecoded converts the decoder's game into the public model.
func gameFromDecoded(g *pgn.Game) *Game {
	plies := make([]Ply, len(g.Plies))
	for i, p := range g.Plies {
		plies[i] = Ply{
			Index:     p.Index,
			Color:     colorFromDecoded(p.Color),
			SAN:       p.SAN,
			UCI:       p.UCI,
			FENBefore: p.FENBefore,
			FENAfter:  p.FENAfter,
			Clock:     p.Clock,
			HasClock:  p.HasClock,
		}
		if p.Eval != nil {
			plies[i].Eval = &EvalAnnotation{
				Pawns:  p.Eval.Pawns,
				Mate:   p.Eval.Mate,
				IsMate: p.Eval.IsMate,
			}
		}
	}

	return &Game{
		ID:          g.ID,
		White:       g.White,
		Black:       g.Black,
		WhiteElo:    g.WhiteElo,
		BlackElo:    g.BlackElo,
		Result:      g.Result,
		Termination: g.Termination,
		TimeControl: TimeControl{
			Raw:       g.TimeControl.Raw,
			Initial:   g.TimeControl.Initial,
			Increment: g.TimeControl.Increment,
			Class:     TimeClass(g.TimeControl.Class),
		},
		PlayedAt: g.PlayedAt,
		Tags:     g.Tags,
		Plies:    plies,
	}
}

func colorFromDecoded(c pgn.Color) Color {
	if c == pgn.White {
		return White
	}
	return Black
}
