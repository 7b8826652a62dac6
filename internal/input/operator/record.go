package operator

import (
	"fmt"
	"strings"
)

// Operator is an edit operator awaiting a motion.
type Operator rune

const (
	// Delete removes the span.
	Delete Operator = 'd'

	// Change removes the span and enters insert mode.
	Change Operator = 'c'
)

// ParseOperator parses "d" or "c".
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "d":
		return Delete, nil
	case "c":
		return Change, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperator, s)
}

// String returns the operator key.
func (o Operator) String() string {
	return string(rune(o))
}

// Edits lists the single-key edits Edit accepts.
var Edits = []string{"x", "X", "s", "D", "C", "o", "O"}

// IsEdit reports whether name is a single-key edit.
func IsEdit(name string) bool {
	for _, e := range Edits {
		if e == name {
			return true
		}
	}
	return false
}

// RecordKind identifies what a RepeatRecord replays.
type RecordKind uint8

const (
	// RecordOperator is an operator with a motion or text object (dw, ci").
	RecordOperator RecordKind = iota

	// RecordEdit is a single-key edit (x, D, o).
	RecordEdit

	// RecordReplace is r followed by a character.
	RecordReplace

	// RecordVisual is an operator applied to a visual selection.
	RecordVisual
)

// RepeatRecord describes the last repeatable edit relative to the caret,
// never by absolute position.
type RepeatRecord struct {
	Kind     RecordKind
	Operator Operator

	// Motion is the motion or text object (RecordOperator) or the edit
	// name (RecordEdit).
	Motion string

	// Char replaces characters for RecordReplace.
	Char string

	// Count is the effective count the edit ran with.
	Count int

	// Span is the selection length for RecordVisual.
	Span int

	// Inserted is the text typed in the insert session that followed an
	// edit entering insert mode.
	Inserted string
}

// String describes the record, e.g. "d2w" or "r:x".
func (r RepeatRecord) String() string {
	var sb strings.Builder
	switch r.Kind {
	case RecordOperator:
		sb.WriteString(r.Operator.String())
		if r.Count > 1 {
			fmt.Fprintf(&sb, "%d", r.Count)
		}
		sb.WriteString(r.Motion)
	case RecordEdit:
		if r.Count > 1 {
			fmt.Fprintf(&sb, "%d", r.Count)
		}
		sb.WriteString(r.Motion)
	case RecordReplace:
		fmt.Fprintf(&sb, "r:%s", r.Char)
	case RecordVisual:
		fmt.Fprintf(&sb, "v%d%s", r.Span, r.Operator)
	}
	if r.Inserted != "" {
		fmt.Fprintf(&sb, "+%q", r.Inserted)
	}
	return sb.String()
}
