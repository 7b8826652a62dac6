package operator

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dshills/modalkeys/internal/input/surface"
	"github.com/dshills/modalkeys/internal/input/vim"
)

// Pending is an operator waiting for its motion.
type Pending struct {
	Operator Operator
	Count    int
}

// Result reports what an edit did.
type Result struct {
	// Edit is the operation handed to the surface.
	Edit surface.EditOperation

	// Applied is false when the motion produced no span and nothing
	// changed.
	Applied bool

	// Insert is true when the edit leaves the buffer in insert mode.
	Insert bool
}

// Coordinator composes operators with motions into surface edits and
// keeps the record replayed by ".". Pending operators are tracked per
// buffer; the repeat record is shared, as in Vim.
type Coordinator struct {
	mu sync.Mutex

	eval    *vim.Evaluator
	pending map[string]Pending

	last      RepeatRecord
	hasLast   bool
	inserting bool
}

// New creates a coordinator using eval for motions.
func New(eval *vim.Evaluator) *Coordinator {
	return &Coordinator{
		eval:    eval,
		pending: make(map[string]Pending),
	}
}

// Begin marks op as pending in the buffer. count is the count typed
// before the operator (0 if none).
func (c *Coordinator) Begin(bufferID string, op Operator, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[bufferID] = Pending{Operator: op, Count: count}
}

// Pending returns the buffer's pending operator.
func (c *Coordinator) Pending(bufferID string) (Pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[bufferID]
	return p, ok
}

// Abort discards the buffer's pending operator.
func (c *Coordinator) Abort(bufferID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, bufferID)
}

// Complete applies the buffer's pending operator with a motion or text
// object. count is the count typed before the motion; it multiplies the
// operator's count. A motion with no span aborts with no edit.
func (c *Coordinator) Complete(bufferID string, s surface.Surface, motion string, count int) (Result, error) {
	c.mu.Lock()
	p, ok := c.pending[bufferID]
	delete(c.pending, bufferID)
	c.mu.Unlock()
	if !ok {
		return Result{}, ErrNoPendingOperator
	}

	rec := RepeatRecord{
		Kind:     RecordOperator,
		Operator: p.Operator,
		Motion:   motion,
		Count:    vim.Multiply(p.Count, count),
	}
	return c.run(s, rec, false)
}

// Edit performs a single-key edit (x X s D C o O).
func (c *Coordinator) Edit(s surface.Surface, name string, count int) (Result, error) {
	if !IsEdit(name) {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownEdit, name)
	}
	return c.run(s, RepeatRecord{Kind: RecordEdit, Motion: name, Count: max(count, 1)}, false)
}

// Replace replaces count characters under the caret with char.
func (c *Coordinator) Replace(s surface.Surface, char string, count int) (Result, error) {
	return c.run(s, RepeatRecord{Kind: RecordReplace, Char: char, Count: max(count, 1)}, false)
}

// Visual applies op to the surface's selection.
func (c *Coordinator) Visual(s surface.Surface, op Operator) (Result, error) {
	sel, ok := s.Selection()
	if !ok {
		return Result{}, ErrNoSelection
	}
	start, end := sel.Range(len(s.Text()))
	s.SetCaret(start)
	return c.run(s, RepeatRecord{Kind: RecordVisual, Operator: op, Span: end - start, Count: 1}, false)
}

// Repeat replays the last repeatable edit at the current caret. A
// positive count replaces the recorded one. Text typed after a change is
// inserted again and the buffer stays in normal mode.
func (c *Coordinator) Repeat(s surface.Surface, count int) (Result, error) {
	c.mu.Lock()
	rec, ok := c.last, c.hasLast
	c.mu.Unlock()
	if !ok {
		return Result{}, ErrNothingToRepeat
	}
	if count > 0 {
		rec.Count = count
	}
	return c.run(s, rec, true)
}

// Last returns the current repeat record.
func (c *Coordinator) Last() (RepeatRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.hasLast
}

// Typed appends text typed in insert mode to the record of the change
// that entered insert mode. It does nothing for other insert sessions.
func (c *Coordinator) Typed(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inserting {
		c.last.Inserted += text
	}
}

// EndInsert closes the insert session started by a change.
func (c *Coordinator) EndInsert() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inserting = false
}

// DropBuffer forgets the buffer's pending operator.
func (c *Coordinator) DropBuffer(bufferID string) {
	c.Abort(bufferID)
}

// run plans rec at the caret, applies it and records it.
func (c *Coordinator) run(s surface.Surface, rec RepeatRecord, repeating bool) (Result, error) {
	t := s.Text()
	pos := s.Caret()

	op, insert, ok := c.plan(rec, t, pos)
	if !ok {
		return Result{}, nil
	}
	if repeating && insert {
		op = withInserted(op, rec.Inserted, t)
		insert = false
	}
	if op.IsNoop() && !insert {
		return Result{Edit: op}, nil
	}

	if err := s.Apply(op); err != nil {
		return Result{}, err
	}

	c.mu.Lock()
	if !repeating {
		rec.Inserted = ""
		c.last = rec
		c.hasLast = true
	}
	c.inserting = insert
	c.mu.Unlock()

	return Result{Edit: op, Applied: !op.IsNoop(), Insert: insert}, nil
}

// plan computes the edit for rec at pos without inserted text. insert
// reports whether the edit enters insert mode.
func (c *Coordinator) plan(rec RepeatRecord, t []rune, pos int) (op surface.EditOperation, insert, ok bool) {
	pos = max(0, min(pos, len(t)))
	switch rec.Kind {
	case RecordOperator:
		r, ok := c.eval.OperatorRange(rune(rec.Operator), rec.Motion, t, pos, rec.Count)
		if !ok {
			return op, false, false
		}
		return c.operatorEdit(rec.Operator, r, t, pos), rec.Operator == Change, true

	case RecordVisual:
		end := min(pos+rec.Span, len(t))
		return c.operatorEdit(rec.Operator, vim.Range{Start: pos, End: end}, t, pos), rec.Operator == Change, true

	case RecordReplace:
		return replaceEdit(rec.Char, rec.Count, t, pos)

	case RecordEdit:
		return singleEdit(rec.Motion, rec.Count, t, pos)
	}
	return op, false, false
}

func (c *Coordinator) operatorEdit(o Operator, r vim.Range, t []rune, pos int) surface.EditOperation {
	op := surface.EditOperation{Start: r.Start, End: r.End, Caret: r.Start}
	if o == Change {
		return op
	}
	after := splice(t, r.Start, r.End, "")
	if r.Linewise {
		op.Caret = vim.CaretAfterLinewise(after, r.Start, vim.Column(t, pos))
	} else {
		op.Caret = vim.ClampNormal(after, r.Start)
	}
	return op
}

func singleEdit(name string, count int, t []rune, pos int) (op surface.EditOperation, insert, ok bool) {
	ls, le := vim.LineStart(t, pos), vim.LineEnd(t, pos)
	switch name {
	case "x", "s":
		end := pos
		for i := 0; i < count && end < le; i++ {
			end = min(surface.GraphemeEnd(t, end), le)
		}
		op = surface.EditOperation{Start: pos, End: end, Caret: pos}
		if name == "s" {
			return op, true, true
		}
		op.Caret = vim.ClampNormal(splice(t, pos, end, ""), pos)
		return op, false, true

	case "X":
		start := max(pos-count, ls)
		return surface.EditOperation{Start: start, End: pos, Caret: start}, false, true

	case "D":
		op = surface.EditOperation{Start: pos, End: le}
		op.Caret = vim.ClampNormal(splice(t, pos, le, ""), pos)
		return op, false, true

	case "C":
		return surface.EditOperation{Start: pos, End: le, Caret: pos}, true, true

	case "o":
		return surface.EditOperation{Start: le, End: le, Text: "\n", Caret: le + 1}, true, true

	case "O":
		return surface.EditOperation{Start: ls, End: ls, Text: "\n", Caret: ls}, true, true
	}
	return op, false, false
}

// replaceEdit implements r: every one of the count characters must exist
// on the line, otherwise nothing happens. r<CR> splits the line.
func replaceEdit(char string, count int, t []rune, pos int) (op surface.EditOperation, insert, ok bool) {
	le := vim.LineEnd(t, pos)
	if char == "" || pos+count > le {
		return surface.EditOperation{Start: pos, End: pos, Caret: pos}, false, true
	}
	if char == "\n" {
		return surface.EditOperation{Start: pos, End: pos + count, Text: "\n", Caret: pos + 1}, false, true
	}
	text := strings.Repeat(char, count)
	return surface.EditOperation{
		Start: pos,
		End:   pos + count,
		Text:  text,
		Caret: pos + utf8.RuneCountInString(text) - 1,
	}, false, true
}

// withInserted folds the text typed after a change into its edit, placing
// the caret on the last inserted character.
func withInserted(op surface.EditOperation, inserted string, t []rune) surface.EditOperation {
	base := []rune(op.Text)
	k := max(0, min(op.Caret-op.Start, len(base)))
	op.Text = string(base[:k]) + inserted + string(base[k:])

	after := splice(t, op.Start, op.End, op.Text)
	caret := op.Caret
	if n := utf8.RuneCountInString(inserted); n > 0 {
		caret += n - 1
	}
	op.Caret = vim.ClampNormal(after, caret)
	return op
}

func splice(t []rune, start, end int, text string) []rune {
	out := make([]rune, 0, len(t)-(end-start)+len(text))
	out = append(out, t[:start]...)
	out = append(out, []rune(text)...)
	return append(out, t[end:]...)
}
