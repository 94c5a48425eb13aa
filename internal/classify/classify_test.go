package classify

import "testing"

func TestJudge(t *testing.T) {
	tests := []struct {
		loss int
		want Judgment
	}{
		{0, Good},
		{49, Good},
		{50, Inaccuracy}, // boundary values take the harsher judgment
		{99, Inaccuracy},
		{100, Mistake},
		{199, Mistake},
		{200, Blunder},
		{1200, Blunder},
	}

	for _, tt := range tests {
		if got := DefaultThresholds.Judge(tt.loss); got != tt.want {
			t.Errorf("Judge(%d) = %s, want %s", tt.loss, got, tt.want)
		}
	}
}

func TestJudgeCustomThresholds(t *testing.T) {
	strict := Thresholds{Inaccuracy: 20, Mistake: 60, Blunder: 120}
	if got := strict.Judge(25); got != Inaccuracy {
		t.Errorf("Judge(25) = %s, want inaccuracy", got)
	}
	if got := strict.Judge(120); got != Blunder {
		t.Errorf("Judge(120) = %s, want blunder", got)
	}
}

func TestThresholdsValid(t *testing.T) {
	tests := []struct {
		name string
		t    Thresholds
		want bool
	}{
		{"defaults", DefaultThresholds, true},
		{"zero value", Thresholds{}, false},
		{"unordered", Thresholds{Inaccuracy: 100, Mistake: 50, Blunder: 200}, false},
		{"equal lines", Thresholds{Inaccuracy: 50, Mistake: 50, Blunder: 200}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.t.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
