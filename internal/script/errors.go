package script

import "errors"

// Errors for script operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrUnknownOption is returned by options.set for names it does not know.
	ErrUnknownOption = errors.New("unknown option")

	// ErrBadOption is returned when an option value has the wrong type or
	// is out of range.
	ErrBadOption = errors.New("invalid option value")

	// ErrNoHost is returned when a runtime is created without an engine.
	ErrNoHost = errors.New("script: no host")
)
