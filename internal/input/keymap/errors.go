package keymap

import (
	"errors"
	"fmt"
)

// Registration errors
var (
	ErrEmptyLHS      = errors.New("empty key sequence")
	ErrInvalidAction = errors.New("invalid action")
	ErrUnknownMode   = errors.New("unknown mode")
	ErrNoMapping     = errors.New("no such mapping")
	ErrUnknownFormat = errors.New("unsupported keymap file format")
)

// RegistrationError reports a mapping that could not be set or deleted.
type RegistrationError struct {
	Mode     string
	LHS      string
	BufferID string
	Err      error
}

// Error implements error.
func (e *RegistrationError) Error() string {
	scope := "global"
	if e.BufferID != "" {
		scope = "buffer " + e.BufferID
	}
	return fmt.Sprintf("keymap %s %q (%s): %v", e.Mode, e.LHS, scope, e.Err)
}

// Unwrap returns the underlying error.
func (e *RegistrationError) Unwrap() error {
	return e.Err
}
