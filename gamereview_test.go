package gamereview

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/discochess/gamereview/internal/book/membook"
	"github.com/discochess/gamereview/internal/engine"
	"github.com/discochess/gamereview/internal/engine/stubengine"
)

// operaGame is Morphy's opera box game, 33 plies ending in mate.
const operaGame = `[Event "Opera Box Game"]
[White "Morphy, Paul"]
[Black "Duke Karl / Count Isouard"]
[WhiteElo "2690"]
[BlackElo "2250"]
[Result "1-0"]
[TimeControl "1800"]

1. e4 e5 2. Nf3 d6 3. d4 Bg4 4. dxe5 Bxf3 5. Qxf3 dxe5 6. Bc4 Nf6 7. Qb3 Qe7
8. Nc3 c6 9. Bg5 b5 10. Nxb5 cxb5 11. Bxb5+ Nbd7 12. O-O-O Rd8 13. Rxd7 Rxd7
14. Rd1 Qe6 15. Bxd7+ Nxd7 16. Qb8+ Nxb8 17. Rd8# 1-0
`

const shortGame = `[Event "Fragment"]
[White "A"]
[Black "B"]
[Result "*"]

1. e4 e5 2. Nf3 d6 3. d4 Bg4 4. dxe5 Bxf3 *
`

func mustDecode(t *testing.T, src string) *Game {
	t.Helper()
	g, err := DecodeGame(strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodeGame() error = %v", err)
	}
	return g
}

func newTestAnalyzer(t *testing.T, stub *stubengine.Engine, opts ...Option) *Analyzer {
	t.Helper()
	a, err := New(stub, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestAnalyzeGameAllBest(t *testing.T) {
	// The stub answers zero for every position, so no move loses anything.
	a := newTestAnalyzer(t, stubengine.New())
	g := mustDecode(t, operaGame)

	analysis, err := a.AnalyzeGame(context.Background(), g)
	if err != nil {
		t.Fatalf("AnalyzeGame() error = %v", err)
	}

	if len(analysis.Moves) != len(g.Plies) {
		t.Fatalf("len(Moves) = %d, want %d", len(analysis.Moves), len(g.Plies))
	}
	for i, m := range analysis.Moves {
		if !m.Evaluated {
			t.Errorf("move %d not evaluated", i)
		}
		if m.Loss != 0 {
			t.Errorf("move %d Loss = %d, want 0", i, m.Loss)
		}
		if m.Judgment != JudgmentGood {
			t.Errorf("move %d Judgment = %s, want good", i, m.Judgment)
		}
	}

	if analysis.White.ACPL != 0 || analysis.Black.ACPL != 0 {
		t.Errorf("ACPL = %v / %v, want 0", analysis.White.ACPL, analysis.Black.ACPL)
	}
	if analysis.White.Accuracy != 100 || analysis.Black.Accuracy != 100 {
		t.Errorf("Accuracy = %v / %v, want 100", analysis.White.Accuracy, analysis.Black.Accuracy)
	}
	if analysis.Degraded {
		t.Error("Degraded = true, want false")
	}
	if analysis.UnevaluatedFraction != 0 {
		t.Errorf("UnevaluatedFraction = %v, want 0", analysis.UnevaluatedFraction)
	}
}

func TestAnalyzeGameBlunder(t *testing.T) {
	stub := stubengine.New()
	g := mustDecode(t, operaGame)

	// After ply 10 the side to move is suddenly +300: the mover at ply 10
	// gave up three pawns against a level engine line.
	cp := 300
	stub.SetEval(g.Plies[10].FENAfter, engine.Evaluation{Score: engine.Cp(cp), Depth: 15})

	a := newTestAnalyzer(t, stub)
	analysis, err := a.AnalyzeGame(context.Background(), g)
	if err != nil {
		t.Fatalf("AnalyzeGame() error = %v", err)
	}

	move := analysis.Moves[10]
	if move.Loss != 300 {
		t.Errorf("Loss = %d, want 300", move.Loss)
	}
	if move.Judgment != JudgmentBlunder {
		t.Errorf("Judgment = %s, want blunder", move.Judgment)
	}
	if move.EvalAfter != -300 {
		t.Errorf("EvalAfter = %d, want -300 from the mover's side", move.EvalAfter)
	}
	if !move.MissedTactic {
		t.Error("MissedTactic = false, want true for a full-pawn non-best move")
	}
	if analysis.Moves[12].MissedTactic {
		t.Error("MissedTactic = true on a move with no loss")
	}

	mover := g.Plies[10].Color
	var summary PlayerSummary
	if mover == White {
		summary = analysis.White
	} else {
		summary = analysis.Black
	}
	if summary.Judgments[JudgmentBlunder] == 0 {
		t.Error("blunder missing from the mover's summary")
	}
	if summary.MissedTactics != 1 {
		t.Errorf("MissedTactics = %d, want 1", summary.MissedTactics)
	}
	if summary.ACPL <= 0 {
		t.Errorf("mover ACPL = %v, want positive", summary.ACPL)
	}
	if summary.Accuracy >= 100 {
		t.Errorf("mover Accuracy = %v, want below 100", summary.Accuracy)
	}
}

func TestAnalyzeGamePhases(t *testing.T) {
	a := newTestAnalyzer(t, stubengine.New())
	g := mustDecode(t, operaGame)

	analysis, err := a.AnalyzeGame(context.Background(), g)
	if err != nil {
		t.Fatalf("AnalyzeGame() error = %v", err)
	}

	ph := analysis.Phases
	if ph.PlyCount != len(g.Plies) {
		t.Errorf("PlyCount = %d, want %d", ph.PlyCount, len(g.Plies))
	}
	// No book is configured, so the opening runs to the depth cap.
	if ph.OpeningEnd != 15 {
		t.Errorf("OpeningEnd = %d, want 15", ph.OpeningEnd)
	}
	// The final position still has far more than six non-king pieces.
	if ph.EndgameStart != len(g.Plies) {
		t.Errorf("EndgameStart = %d, want %d (no endgame)", ph.EndgameStart, len(g.Plies))
	}

	for i, m := range analysis.Moves {
		if m.Phase != ph.Of(i) {
			t.Errorf("move %d Phase = %s, want %s", i, m.Phase, ph.Of(i))
		}
	}
}

func TestAnalyzeShortGameAllOpening(t *testing.T) {
	a := newTestAnalyzer(t, stubengine.New())
	g := mustDecode(t, shortGame)

	analysis, err := a.AnalyzeGame(context.Background(), g)
	if err != nil {
		t.Fatalf("AnalyzeGame() error = %v", err)
	}

	if analysis.Phases.OpeningEnd != 8 || analysis.Phases.EndgameStart != 8 {
		t.Errorf("Phases = %+v, want all opening", analysis.Phases)
	}
	for i, m := range analysis.Moves {
		if m.Phase != PhaseOpening {
			t.Errorf("move %d Phase = %s, want opening", i, m.Phase)
		}
	}
}

func TestAnalyzeGameBook(t *testing.T) {
	g := mustDecode(t, operaGame)

	book := membook.New()
	book.Add(g.Plies[0].FENBefore, g.Plies[0].UCI)
	book.Add(g.Plies[1].FENBefore, g.Plies[1].UCI)

	stub := stubengine.New()
	a := newTestAnalyzer(t, stub, WithBook(book))

	analysis, err := a.AnalyzeGame(context.Background(), g)
	if err != nil {
		t.Fatalf("AnalyzeGame() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		m := analysis.Moves[i]
		if m.Judgment != JudgmentBook {
			t.Errorf("move %d Judgment = %s, want book", i, m.Judgment)
		}
		if m.Evaluated {
			t.Errorf("move %d evaluated, book moves must not be graded", i)
		}
	}
	if analysis.Moves[2].Judgment == JudgmentBook {
		t.Error("move 2 judged book without being in the book")
	}

	// With a real book, theory ends where the book does.
	if analysis.Phases.OpeningEnd != 2 {
		t.Errorf("OpeningEnd = %d, want 2", analysis.Phases.OpeningEnd)
	}

	if analysis.White.Judgments[JudgmentBook] != 1 || analysis.Black.Judgments[JudgmentBook] != 1 {
		t.Errorf("book counts = %d / %d, want 1 / 1",
			analysis.White.Judgments[JudgmentBook], analysis.Black.Judgments[JudgmentBook])
	}
}

func TestAnalyzeGameIdempotent(t *testing.T) {
	stub := stubengine.New()
	g := mustDecode(t, operaGame)
	stub.SetEval(g.Plies[4].FENAfter, engine.Evaluation{Score: engine.Cp(120), Depth: 15})

	a := newTestAnalyzer(t, stub)

	first, err := a.AnalyzeGame(context.Background(), g)
	if err != nil {
		t.Fatalf("first AnalyzeGame() error = %v", err)
	}
	second, err := a.AnalyzeGame(context.Background(), g)
	if err != nil {
		t.Fatalf("second AnalyzeGame() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated analysis of the same game differs")
	}
}

func TestAnalyzeGameDegraded(t *testing.T) {
	stub := stubengine.New()
	stub.FailNext(1, &engine.UnavailableError{Cause: fmt.Errorf("engine exited")})

	a := newTestAnalyzer(t, stub)
	g := mustDecode(t, operaGame)

	analysis, err := a.AnalyzeGame(context.Background(), g)
	if err != nil {
		t.Fatalf("AnalyzeGame() error = %v", err)
	}

	if !analysis.Degraded {
		t.Fatal("Degraded = false, want true")
	}
	for i, m := range analysis.Moves {
		if m.Judgment != JudgmentUnevaluated {
			t.Errorf("move %d Judgment = %s, want unevaluated", i, m.Judgment)
		}
	}
	if analysis.White.EvaluatedMoves != 0 || analysis.White.Accuracy != 0 {
		t.Errorf("White summary = %+v, want no evaluated moves and no accuracy", analysis.White)
	}
	if analysis.UnevaluatedFraction != 1 {
		t.Errorf("UnevaluatedFraction = %v, want 1", analysis.UnevaluatedFraction)
	}
}

func TestAnalyzePGNMalformed(t *testing.T) {
	a := newTestAnalyzer(t, stubengine.New())

	src := `[Event "?"]

1. e4 e5 2. Nf3 Qh8 *
`
	_, err := a.AnalyzePGN(context.Background(), strings.NewReader(src))
	var malformed *MalformedGameError
	if !errors.As(err, &malformed) {
		t.Fatalf("AnalyzePGN() error = %v, want *MalformedGameError", err)
	}
	if malformed.Ply != 3 {
		t.Errorf("Ply = %d, want 3", malformed.Ply)
	}
}

func TestAnalyzerClosed(t *testing.T) {
	a, err := New(stubengine.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, err := a.AnalyzeGame(context.Background(), mustDecode(t, shortGame)); !errors.Is(err, ErrClosed) {
		t.Errorf("AnalyzeGame() after Close error = %v, want ErrClosed", err)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil) did not fail")
	}
	if _, err := New(stubengine.New(), WithThresholds(100, 50, 200)); err == nil {
		t.Error("unordered thresholds did not fail")
	}
	if _, err := New(stubengine.New(), WithWorkers(0)); err == nil {
		t.Error("zero workers did not fail")
	}
	if _, err := NewUCI(EngineConfig{}); err == nil {
		t.Error("empty engine path did not fail")
	}

	_, err := NewUCI(EngineConfig{Path: "/usr/bin/stockfish", Depth: -3})
	var config *EngineConfigError
	if !errors.As(err, &config) {
		t.Errorf("negative depth error = %v, want *EngineConfigError", err)
	}
}
