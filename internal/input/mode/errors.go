package mode

import "errors"

// Mode errors
var (
	// ErrModeExists is returned when registering an identifier that is
	// already taken, built-in modes included.
	ErrModeExists = errors.New("mode already registered")

	// ErrUnknownMode is returned when switching to an unregistered mode.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrInvalidMode is returned for empty or malformed identifiers.
	ErrInvalidMode = errors.New("invalid mode identifier")
)
