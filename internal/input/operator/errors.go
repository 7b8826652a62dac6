package operator

import "errors"

var (
	// ErrUnknownOperator is returned for operator names other than d and c.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrUnknownEdit is returned for unknown single-key edit names.
	ErrUnknownEdit = errors.New("unknown edit")

	// ErrNoPendingOperator is returned by Complete when no operator is
	// pending in the buffer.
	ErrNoPendingOperator = errors.New("no pending operator")

	// ErrNothingToRepeat is returned by Repeat before any repeatable edit.
	ErrNothingToRepeat = errors.New("nothing to repeat")

	// ErrNoSelection is returned by Visual when the surface has no
	// selection.
	ErrNoSelection = errors.New("no visual selection")
)
