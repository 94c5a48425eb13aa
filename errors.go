package gamereview

import (
	"errors"
	"fmt"

	"github.com/discochess/gamereview/internal/engine"
	"github.com/discochess/gamereview/internal/pgn"
)

// ErrClosed indicates the analyzer has been closed.
var ErrClosed = errors.New("gamereview: analyzer closed")

// MalformedGameError reports game notation that could not be decoded,
// with the zero-based index of the offending ply.
type MalformedGameError struct {
	// Ply is how many plies decoded successfully before the failure.
	Ply   int
	Token string
	Err   error
}

func (e *MalformedGameError) Error() string {
	return fmt.Sprintf("gamereview: malformed game at ply %d (%q): %v", e.Ply, e.Token, e.Err)
}

func (e *MalformedGameError) Unwrap() error {
	return e.Err
}

// EngineConfigError reports an engine that cannot run as configured, for
// example an unknown UCI option or a bad binary path. It is systemic:
// retrying with the same configuration cannot succeed.
type EngineConfigError struct {
	Option string
	Reason string
}

func (e *EngineConfigError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("gamereview: engine rejected option %q: %s", e.Option, e.Reason)
	}
	return fmt.Sprintf("gamereview: engine configuration: %s", e.Reason)
}

// EngineUnavailableError reports an engine that crashed or stopped
// responding and could not be recovered by a restart.
type EngineUnavailableError struct {
	Err error
}

func (e *EngineUnavailableError) Error() string {
	return fmt.Sprintf("gamereview: engine unavailable: %v", e.Err)
}

func (e *EngineUnavailableError) Unwrap() error {
	return e.Err
}

// publicErr maps internal errors onto the exported error types. Errors
// that already carry a public type pass through unchanged.
func publicErr(err error) error {
	if err == nil {
		return nil
	}

	var malformed *pgn.MalformedGameError
	if errors.As(err, &malformed) {
		return &MalformedGameError{Ply: malformed.Ply, Token: malformed.Token, Err: malformed.Err}
	}

	var config *engine.ConfigError
	if errors.As(err, &config) {
		return &EngineConfigError{Option: config.Option, Reason: config.Reason}
	}

	var unavailable *engine.UnavailableError
	if errors.As(err, &unavailable) {
		return &EngineUnavailableError{Err: unavailable.Cause}
	}

	if errors.Is(err, engine.ErrClosed) {
		return ErrClosed
	}

	return err
}
