package surface

import (
	"fmt"
	"sync"
	"time"
)

// TextArea is an in-memory Surface with undo history.
type TextArea struct {
	mu sync.Mutex

	text   []rune
	caret  int
	sel    Selection
	hasSel bool

	history *History
}

// NewTextArea creates a text area holding text with the caret at 0.
func NewTextArea(text string) *TextArea {
	return &TextArea{
		text:    []rune(text),
		history: NewHistory(DefaultMaxHistory),
	}
}

// Text returns a copy of the content.
func (a *TextArea) Text() []rune {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]rune, len(a.text))
	copy(out, a.text)
	return out
}

// String returns the content as a string.
func (a *TextArea) String() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return string(a.text)
}

// Caret returns the caret offset.
func (a *TextArea) Caret() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.caret
}

// SetCaret moves the caret, clamped to [0, len].
func (a *TextArea) SetCaret(pos int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.caret = a.clamp(pos)
	a.history.Seal()
}

// Selection returns the visual selection, if any.
func (a *TextArea) Selection() (Selection, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sel, a.hasSel
}

// SetSelection sets the selection and moves the caret to its head.
func (a *TextArea) SetSelection(sel Selection) {
	a.mu.Lock()
	defer a.mu.Unlock()
	sel.Anchor, sel.Head = a.clamp(sel.Anchor), a.clamp(sel.Head)
	a.sel = sel
	a.hasSel = true
	a.caret = sel.Head
}

// ClearSelection drops the selection; the caret stays where it is.
func (a *TextArea) ClearSelection() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sel = Selection{}
	a.hasSel = false
}

// Apply performs op as one undo unit. The selection is cleared.
func (a *TextArea) Apply(op EditOperation) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.apply(op, false)
}

// Insert types text at the caret. Consecutive inserts coalesce into one
// undo unit until the caret is moved or another edit is applied.
func (a *TextArea) Insert(text string) error {
	if text == "" {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	n := len([]rune(text))
	return a.apply(EditOperation{Start: a.caret, End: a.caret, Text: text, Caret: a.caret + n}, true)
}

// Undo reverts the most recent undo unit.
func (a *TextArea) Undo() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	op, ok := a.history.popUndo()
	if !ok {
		return ErrNothingToUndo
	}
	a.replay(op.Invert())
	return nil
}

// Redo re-applies the most recently undone unit.
func (a *TextArea) Redo() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	op, ok := a.history.popRedo()
	if !ok {
		return ErrNothingToRedo
	}
	a.replay(op)
	return nil
}

// History returns the undo history.
func (a *TextArea) History() *History {
	return a.history
}

func (a *TextArea) apply(op EditOperation, typing bool) error {
	if op.Start < 0 || op.End > len(a.text) || op.Start > op.End {
		return fmt.Errorf("%w: %s on %d runes", ErrInvalidRange, op, len(a.text))
	}
	a.hasSel = false
	if op.IsNoop() {
		a.caret = a.clamp(op.Caret)
		return nil
	}

	old := string(a.text[op.Start:op.End])
	a.splice(op.Start, op.End, []rune(op.Text))
	before := a.caret
	a.caret = a.clamp(op.Caret)

	if !typing {
		a.history.Seal()
	}
	a.history.Push(&Operation{
		Start:       op.Start,
		OldText:     old,
		NewText:     op.Text,
		CaretBefore: before,
		CaretAfter:  a.caret,
		typing:      typing,
		Timestamp:   time.Now(),
	})
	return nil
}

// replay performs a recorded operation without touching the history.
func (a *TextArea) replay(op *Operation) {
	end := op.Start + len([]rune(op.OldText))
	a.splice(op.Start, min(end, len(a.text)), []rune(op.NewText))
	a.caret = a.clamp(op.CaretAfter)
	a.hasSel = false
}

func (a *TextArea) splice(start, end int, repl []rune) {
	out := make([]rune, 0, len(a.text)-(end-start)+len(repl))
	out = append(out, a.text[:start]...)
	out = append(out, repl...)
	out = append(out, a.text[end:]...)
	a.text = out
}

func (a *TextArea) clamp(pos int) int {
	return max(0, min(pos, len(a.text)))
}
