package uci

import "testing"

func TestParseInfo(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantOK    bool
		wantDepth int
		wantCp    int
		wantMate  int
		wantScore bool
		wantBound bool
		wantPV    string
	}{
		{
			name:      "cp score with pv",
			line:      "info depth 18 seldepth 24 score cp 35 nodes 123456 nps 1000000 pv e2e4 e7e5 g1f3",
			wantOK:    true,
			wantDepth: 18,
			wantCp:    35,
			wantScore: true,
			wantPV:    "e2e4 e7e5 g1f3",
		},
		{
			name:      "mate score",
			line:      "info depth 12 score mate -3 pv h7h8",
			wantOK:    true,
			wantDepth: 12,
			wantMate:  -3,
			wantScore: true,
			wantPV:    "h7h8",
		},
		{
			name:      "lowerbound report",
			line:      "info depth 20 score cp 50 lowerbound nodes 99",
			wantOK:    true,
			wantDepth: 20,
			wantCp:    50,
			wantScore: true,
			wantBound: true,
		},
		{
			name:      "currmove noise without score",
			line:      "info depth 15 currmove e2e4 currmovenumber 1",
			wantOK:    true,
			wantDepth: 15,
		},
		{
			name:   "not an info line",
			line:   "bestmove e2e4",
			wantOK: false,
		},
		{
			name:   "empty line",
			line:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := parseInfo(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("parseInfo() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if info.depth != tt.wantDepth {
				t.Errorf("depth = %d, want %d", info.depth, tt.wantDepth)
			}
			if info.hasScore != tt.wantScore {
				t.Errorf("hasScore = %v, want %v", info.hasScore, tt.wantScore)
			}
			if tt.wantScore {
				if tt.wantMate != 0 {
					if info.score.Mate == nil || *info.score.Mate != tt.wantMate {
						t.Errorf("mate = %v, want %d", info.score.Mate, tt.wantMate)
					}
				} else if info.score.Centipawns == nil || *info.score.Centipawns != tt.wantCp {
					t.Errorf("cp = %v, want %d", info.score.Centipawns, tt.wantCp)
				}
			}
			if info.bound != tt.wantBound {
				t.Errorf("bound = %v, want %v", info.bound, tt.wantBound)
			}
			if info.pv != tt.wantPV {
				t.Errorf("pv = %q, want %q", info.pv, tt.wantPV)
			}
		})
	}
}

func TestParseBestMove(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantOK   bool
		wantMove string
	}{
		{name: "with ponder", line: "bestmove e2e4 ponder e7e5", wantOK: true, wantMove: "e2e4"},
		{name: "bare", line: "bestmove g1f3", wantOK: true, wantMove: "g1f3"},
		{name: "terminal position", line: "bestmove (none)", wantOK: true, wantMove: ""},
		{name: "not bestmove", line: "info depth 1", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			move, ok := parseBestMove(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("parseBestMove() ok = %v, want %v", ok, tt.wantOK)
			}
			if move != tt.wantMove {
				t.Errorf("move = %q, want %q", move, tt.wantMove)
			}
		})
	}
}

func TestParseOptionComplaint(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantOK     bool
		wantOption string
	}{
		{name: "stockfish style", line: "No such option: FooBar", wantOK: true, wantOption: "FooBar"},
		{name: "unknown option", line: "Unknown option: Hash2", wantOK: true, wantOption: "Hash2"},
		{name: "readyok is not a complaint", line: "readyok", wantOK: false},
		{name: "id line", line: "id name Stockfish 16", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			option, ok := parseOptionComplaint(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("parseOptionComplaint() ok = %v, want %v", ok, tt.wantOK)
			}
			if option != tt.wantOption {
				t.Errorf("option = %q, want %q", option, tt.wantOption)
			}
		})
	}
}

func TestSearchResult_Apply(t *testing.T) {
	var r searchResult

	shallow, _ := parseInfo("info depth 5 score cp 10")
	deep, _ := parseInfo("info depth 12 score cp 42")
	bound, _ := parseInfo("info depth 12 score cp 99 lowerbound")

	r.apply(shallow)
	r.apply(deep)
	r.apply(bound) // same depth but only a bound, must not replace

	if r.depth != 12 {
		t.Errorf("depth = %d, want 12", r.depth)
	}
	if r.score.Centipawns == nil || *r.score.Centipawns != 42 {
		t.Errorf("score = %v, want cp 42", r.score)
	}
}

func TestNewSession_Validation(t *testing.T) {
	if _, err := NewSession(Config{Depth: 10}, nil, nil); err == nil {
		t.Error("NewSession() without path returned nil error")
	}
	if _, err := NewSession(Config{Path: "/usr/bin/stockfish"}, nil, nil); err == nil {
		t.Error("NewSession() without depth returned nil error")
	}
}
