package engine

import "fmt"

// ConfigError indicates the engine rejected its configuration. This class
// of error is systemic: retrying with the same configuration cannot help,
// so callers treat it as fatal for a whole batch.
type ConfigError struct {
	// Option is the rejected option name, when known.
	Option string
	// Reason is the engine's complaint, verbatim where available.
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("engine: configuration rejected: option %q: %s", e.Option, e.Reason)
	}
	return fmt.Sprintf("engine: configuration rejected: %s", e.Reason)
}

// UnavailableError indicates the engine process died or stopped responding
// and a restart-and-retry did not recover it. The current game cannot be
// fully analyzed; other games may still succeed on a fresh session.
type UnavailableError struct {
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("engine: unavailable after restart: %v", e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}
