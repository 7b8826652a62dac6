package input

import (
	"errors"
	"fmt"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/mode"
)

// Engine errors
var (
	// ErrClosed is returned by an engine that has been closed.
	ErrClosed = errors.New("engine closed")

	// ErrBufferOpen is returned when opening a buffer id that is in use.
	ErrBufferOpen = errors.New("buffer already open")

	// ErrBufferClosed is returned to key captures of a closed buffer.
	ErrBufferClosed = errors.New("buffer closed")

	// ErrUnknownCommand is returned for excmds nothing can execute.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrBadArguments is returned when a built-in command is misused.
	ErrBadArguments = errors.New("bad command arguments")

	// ErrNoSurface is returned by edit commands when the buffer has no
	// editable surface.
	ErrNoSurface = errors.New("no editable surface")

	// ErrActionPanic wraps a panic recovered from an action.
	ErrActionPanic = errors.New("action panicked")
)

// ActionError reports a failed action with the key sequence and mode
// that triggered it.
type ActionError struct {
	BufferID string
	Mode     mode.ID
	Sequence key.Sequence
	Action   string
	Err      error
}

// Error implements error.
func (e *ActionError) Error() string {
	return fmt.Sprintf("%s (%s in %s mode): %v", e.Action, e.Sequence, e.Mode, e.Err)
}

// Unwrap returns the underlying error.
func (e *ActionError) Unwrap() error {
	return e.Err
}
