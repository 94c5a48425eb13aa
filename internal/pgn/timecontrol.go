package pgn

import (
	"strconv"
	"strings"
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
	// Raw is the tag verbatim, e.g. "300+3", "600", "-", "1/86400".
	Raw string

	// Initial is the base clock in seconds; zero when unknown.
	Initial int

	// Increment is the per-move increment in seconds.
	Increment int

	Class TimeClass
}

// ParseTimeControl parses "base+increment" style tags. Unknown or
// unlimited forms ("-", "?", "") classify as unknown; "1/seconds"
// correspondence forms classify by the per-move allotment.
func ParseTimeControl(raw string) TimeControl {
	tc := TimeControl{Raw: raw, Class: UnknownSpeed}

	switch raw {
	case "", "-", "?":
		return tc
	}

	if base, ok := strings.CutPrefix(raw, "1/"); ok {
		if secs, err := strconv.Atoi(base); err == nil {
			tc.Initial = secs
			tc.Class = Correspondence
		}
		return tc
	}

	base, inc, _ := strings.Cut(raw, "+")
	initial, err := strconv.Atoi(base)
	if err != nil {
		return tc
	}
	tc.Initial = initial
	if inc != "" {
		if n, err := strconv.Atoi(inc); err == nil {
			tc.Increment = n
		}
	}
	tc.Class = classifySpeed(tc.Initial, tc.Increment)
	return tc
}

// classifySpeed estimates total thinking time as base plus forty increments
// and buckets it.
func classifySpeed(initial, increment int) TimeClass {
	estimate := initial + 40*increment
	switch {
	case estimate >= 86400:
		return Correspondence
	case estimate < 30:
		return UltraBullet
	case estimate < 180:
		return Bullet
	case estimate < 600:
		return Blitz
	case estimate < 1800:
		return Rapid
	default:
		return Classical
	}
}
