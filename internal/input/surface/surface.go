package surface

import (
	"fmt"

	"github.com/rivo/uniseg"
)

// EditOperation replaces the span [Start, End) with Text and leaves the
// caret at Caret. Offsets are rune indices into the text before the edit;
// Caret indexes the text after it.
type EditOperation struct {
	Start int
	End   int
	Text  string
	Caret int
}

// IsNoop reports whether the operation changes no text.
func (op EditOperation) IsNoop() bool {
	return op.End <= op.Start && op.Text == ""
}

// String returns a debugging description.
func (op EditOperation) String() string {
	return fmt.Sprintf("[%d,%d)->%q caret=%d", op.Start, op.End, op.Text, op.Caret)
}

// Selection is a visual-mode selection. Anchor stays put while Head
// follows the caret; both are inclusive character offsets.
type Selection struct {
	Anchor int
	Head   int
}

// Range returns the selected span [min, max+1), bounded by n.
func (s Selection) Range(n int) (start, end int) {
	start, end = min(s.Anchor, s.Head), max(s.Anchor, s.Head)+1
	return max(start, 0), min(end, n)
}

// Surface is the editable control focused in a buffer.
type Surface interface {
	// Text returns the current content. Callers must not modify it.
	Text() []rune

	// Caret returns the caret offset.
	Caret() int

	// SetCaret moves the caret, clamped to the text.
	SetCaret(pos int)

	// Selection returns the visual selection, if one is active.
	Selection() (Selection, bool)

	// SetSelection starts or updates the visual selection and moves the
	// caret to its head.
	SetSelection(sel Selection)

	// ClearSelection drops the visual selection.
	ClearSelection()

	// Apply performs an edit as one undo unit.
	Apply(op EditOperation) error

	// Insert types text at the caret, as unmapped keys in insert mode do.
	Insert(text string) error
}

// Undoer is implemented by surfaces with an undo history.
type Undoer interface {
	Undo() error
	Redo() error
}

// Provider returns the surface that has focus in a buffer.
type Provider interface {
	Surface(bufferID string) (Surface, bool)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(bufferID string) (Surface, bool)

// Surface implements Provider.
func (f ProviderFunc) Surface(bufferID string) (Surface, bool) {
	return f(bufferID)
}

// maxClusterRunes bounds the text examined for one grapheme cluster.
const maxClusterRunes = 64

// GraphemeEnd returns the end of the grapheme cluster starting at pos, so
// that deleting a "character" never splits a combining sequence or an
// emoji with modifiers. The cluster never extends past a newline.
func GraphemeEnd(t []rune, pos int) int {
	if pos < 0 || pos >= len(t) {
		return pos
	}
	rest := string(t[pos:min(pos+maxClusterRunes, len(t))])
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(rest, -1)
	end := pos + max(len([]rune(cluster)), 1)
	for i := pos; i < end; i++ {
		if t[i] == '\n' {
			return max(i, pos+1)
		}
	}
	return end
}
