package surface

import "errors"

var (
	// ErrInvalidRange is returned when an edit span lies outside the text.
	ErrInvalidRange = errors.New("edit range out of bounds")

	// ErrNothingToUndo is returned by Undo on an empty history.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned by Redo on an empty redo stack.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrNoHistory is returned when a surface keeps no undo history.
	ErrNoHistory = errors.New("surface has no undo history")
)
