package phase

import "testing"

const (
	startFEN   = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	rookEnding = "4k3/8/8/8/8/8/4R3/4K3 w - - 0 1"
)

// middlegamePlies builds n plies on a full board, the first book of them
// in theory.
func middlegamePlies(n, book int) []Ply {
	plies := make([]Ply, n)
	for i := range plies {
		plies[i] = Ply{FEN: startFEN, InBook: i < book}
	}
	return plies
}

func TestSegment(t *testing.T) {
	var s Segmenter

	tests := []struct {
		name             string
		plies            []Ply
		wantOpeningEnd   int
		wantEndgameStart int
	}{
		{
			name:             "leaves theory before depth cap",
			plies:            middlegamePlies(40, 8),
			wantOpeningEnd:   8,
			wantEndgameStart: 40,
		},
		{
			name:             "depth cap before theory runs out",
			plies:            middlegamePlies(40, 30),
			wantOpeningEnd:   15,
			wantEndgameStart: 40,
		},
		{
			name:             "short game is all opening",
			plies:            middlegamePlies(8, 8),
			wantOpeningEnd:   8,
			wantEndgameStart: 8,
		},
		{
			name:             "empty game",
			plies:            nil,
			wantOpeningEnd:   0,
			wantEndgameStart: 0,
		},
		{
			name:             "book move played out of order ends opening",
			plies:            []Ply{{FEN: startFEN, InBook: true}, {FEN: startFEN}, {FEN: startFEN, InBook: true}},
			wantOpeningEnd:   1,
			wantEndgameStart: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Segment(tt.plies)
			if got.OpeningEnd != tt.wantOpeningEnd {
				t.Errorf("OpeningEnd = %d, want %d", got.OpeningEnd, tt.wantOpeningEnd)
			}
			if got.EndgameStart != tt.wantEndgameStart {
				t.Errorf("EndgameStart = %d, want %d", got.EndgameStart, tt.wantEndgameStart)
			}
			if got.PlyCount != len(tt.plies) {
				t.Errorf("PlyCount = %d, want %d", got.PlyCount, len(tt.plies))
			}
		})
	}
}

func TestSegmentEndgame(t *testing.T) {
	var s Segmenter

	plies := middlegamePlies(20, 4)
	for i := 12; i < 20; i++ {
		plies[i].FEN = rookEnding
	}

	got := s.Segment(plies)
	if got.OpeningEnd != 4 {
		t.Errorf("OpeningEnd = %d, want 4", got.OpeningEnd)
	}
	if got.EndgameStart != 12 {
		t.Errorf("EndgameStart = %d, want 12", got.EndgameStart)
	}

	if phase := got.Of(2); phase != Opening {
		t.Errorf("Of(2) = %s, want opening", phase)
	}
	if phase := got.Of(8); phase != Middlegame {
		t.Errorf("Of(8) = %s, want middlegame", phase)
	}
	if phase := got.Of(15); phase != Endgame {
		t.Errorf("Of(15) = %s, want endgame", phase)
	}
}

func TestSegmentEndgameNeverBeforeOpening(t *testing.T) {
	// A sparse board inside book theory stays opening until theory ends.
	var s Segmenter

	plies := make([]Ply, 10)
	for i := range plies {
		plies[i] = Ply{FEN: rookEnding, InBook: i < 5}
	}

	got := s.Segment(plies)
	if got.OpeningEnd != 5 {
		t.Errorf("OpeningEnd = %d, want 5", got.OpeningEnd)
	}
	if got.EndgameStart != 5 {
		t.Errorf("EndgameStart = %d, want clamped to 5", got.EndgameStart)
	}

	counts := map[Phase]int{}
	for i := 0; i < got.PlyCount; i++ {
		counts[got.Of(i)]++
	}
	if counts[Opening]+counts[Middlegame]+counts[Endgame] != got.PlyCount {
		t.Error("phases do not partition the game")
	}
	if counts[Middlegame] != 0 {
		t.Errorf("middlegame plies = %d, want 0", counts[Middlegame])
	}
}
