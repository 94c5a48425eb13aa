package evaluate

import (
	"testing"

	"github.com/discochess/gamereview/internal/engine"
)

func TestCentipawns(t *testing.T) {
	var e Evaluator

	tests := []struct {
		name  string
		score engine.Score
		want  int
	}{
		{"zero", engine.Cp(0), 0},
		{"material edge", engine.Cp(137), 137},
		{"losing", engine.Cp(-420), -420},
		{"clamped high", engine.Cp(25000), 8999},
		{"clamped low", engine.Cp(-25000), -8999},
		{"distant mate", engine.MateIn(2500), 9000},
		{"mate in 1", engine.MateIn(1), 9999},
		{"mate in 5", engine.MateIn(5), 9995},
		{"mated in 3", engine.MateIn(-3), -9997},
		{"mate in 0", engine.MateIn(0), -10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Centipawns(tt.score); got != tt.want {
				t.Errorf("Centipawns(%v) = %d, want %d", tt.score, got, tt.want)
			}
		})
	}
}

func TestCentipawnsOrdering(t *testing.T) {
	// Every mate must outrank every centipawn score, and faster mates
	// must outrank slower ones.
	var e Evaluator

	if e.Centipawns(engine.MateIn(50)) <= e.Centipawns(engine.Cp(9000)) {
		t.Error("slow mate does not outrank a large material edge")
	}
	if e.Centipawns(engine.MateIn(2)) <= e.Centipawns(engine.MateIn(9)) {
		t.Error("faster mate does not outrank slower mate")
	}
	if e.Centipawns(engine.MateIn(-2)) >= e.Centipawns(engine.MateIn(-9)) {
		t.Error("being mated sooner should score worse")
	}
	// An absurd material eval clamps below even the most distant mate.
	if e.Centipawns(engine.Cp(1<<20)) >= e.Centipawns(engine.MateIn(5000)) {
		t.Error("clamped material edge ties or outranks a distant mate")
	}
}

func TestAssess(t *testing.T) {
	var e Evaluator

	tests := []struct {
		name     string
		before   engine.Evaluation
		after    engine.Evaluation
		played   string
		wantLoss int
		wantBest bool
	}{
		{
			name:     "best move played",
			before:   engine.Evaluation{Score: engine.Cp(30), BestMove: "e2e4"},
			after:    engine.Evaluation{Score: engine.Cp(-30)},
			played:   "e2e4",
			wantLoss: 0,
			wantBest: true,
		},
		{
			name:     "hundred centipawn slip",
			before:   engine.Evaluation{Score: engine.Cp(50), BestMove: "g1f3"},
			after:    engine.Evaluation{Score: engine.Cp(50)},
			played:   "a2a4",
			wantLoss: 100,
			wantBest: false,
		},
		{
			name:     "gaining move counts as zero loss",
			before:   engine.Evaluation{Score: engine.Cp(10), BestMove: "d2d4"},
			after:    engine.Evaluation{Score: engine.Cp(-80)},
			played:   "c2c4",
			wantLoss: 0,
			wantBest: false,
		},
		{
			name:     "missed mate",
			before:   engine.Evaluation{Score: engine.MateIn(2), BestMove: "d8h4"},
			after:    engine.Evaluation{Score: engine.Cp(200)},
			played:   "a7a6",
			wantLoss: 9998 - (-200),
			wantBest: false,
		},
		{
			name:     "delivered mate",
			before:   engine.Evaluation{Score: engine.MateIn(1), BestMove: "h5f7"},
			after:    engine.Evaluation{Score: engine.MateIn(0)},
			played:   "h5f7",
			wantLoss: 0,
			wantBest: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Assess(tt.before, tt.after, tt.played)
			if got.Loss != tt.wantLoss {
				t.Errorf("Loss = %d, want %d", got.Loss, tt.wantLoss)
			}
			if got.IsBest != tt.wantBest {
				t.Errorf("IsBest = %v, want %v", got.IsBest, tt.wantBest)
			}
			if got.Loss < 0 {
				t.Errorf("Loss = %d, must never be negative", got.Loss)
			}
		})
	}
}

func TestAssessCustomCeiling(t *testing.T) {
	e := Evaluator{MateCeiling: 1000}
	if got := e.Centipawns(engine.MateIn(3)); got != 997 {
		t.Errorf("Centipawns(#3) = %d, want 997", got)
	}
	if got := e.Centipawns(engine.Cp(5000)); got != 899 {
		t.Errorf("Centipawns(5000cp) = %d, want clamped below the mate band", got)
	}
}
