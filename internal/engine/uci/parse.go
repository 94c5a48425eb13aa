package uci

import (
	"strconv"
	"strings"

	"github.com/discochess/gamereview/internal/engine"
)

// infoLine is the subset of a UCI "info" message the session cares about.
type infoLine struct {
	depth    int
	score    engine.Score
	hasScore bool
	bound    bool // lowerbound/upperbound report, not an exact score
	pv       string
}

// parseInfo extracts depth, score and pv from an info line. Returns
// ok=false for anything that is not an info message.
func parseInfo(line string) (infoLine, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return infoLine{}, false
	}

	var info infoLine
	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				if v, err := strconv.Atoi(fields[i+1]); err == nil {
					info.depth = v
				}
				i++
			}
		case "score":
			if i+2 < len(fields) {
				v, err := strconv.Atoi(fields[i+2])
				if err == nil {
					switch fields[i+1] {
					case "cp":
						info.score = engine.Cp(v)
						info.hasScore = true
					case "mate":
						info.score = engine.MateIn(v)
						info.hasScore = true
					}
				}
				i += 2
			}
		case "lowerbound", "upperbound":
			info.bound = true
		case "pv":
			if i+1 < len(fields) {
				info.pv = strings.Join(fields[i+1:], " ")
			}
			return info, true
		}
	}
	return info, true
}

// parseBestMove extracts the move from a bestmove line. The "(none)" marker
// emitted for terminal positions maps to an empty move.
func parseBestMove(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "bestmove" {
		return "", false
	}
	if len(fields) < 2 || fields[1] == "(none)" {
		return "", true
	}
	return fields[1], true
}

// parseOptionComplaint recognizes the complaint lines engines print for a
// rejected setoption, e.g. `No such option: Foo` or `Unknown option: Foo`.
func parseOptionComplaint(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	lower := strings.ToLower(trimmed)
	for _, prefix := range []string{"no such option", "unknown option", "unknown command"} {
		if strings.HasPrefix(lower, prefix) {
			rest := strings.TrimSpace(trimmed[len(prefix):])
			rest = strings.TrimPrefix(rest, ":")
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}
