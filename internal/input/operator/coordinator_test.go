package operator

import (
	"errors"
	"testing"

	"github.com/dshills/modalkeys/internal/input/surface"
	"github.com/dshills/modalkeys/internal/input/vim"
)

func newCoordinator() *Coordinator {
	return New(vim.New(vim.DefaultOptions()))
}

func newArea(text string, caret int) *surface.TextArea {
	a := surface.NewTextArea(text)
	a.SetCaret(caret)
	return a
}

func check(t *testing.T, a *surface.TextArea, text string, caret int) {
	t.Helper()
	if got := a.String(); got != text {
		t.Errorf("text = %q, want %q", got, text)
	}
	if got := a.Caret(); got != caret {
		t.Errorf("caret = %d, want %d", got, caret)
	}
}

func TestDeleteAndRepeat(t *testing.T) {
	c := newCoordinator()
	a := newArea("Hello world", 0)

	c.Begin("b", Delete, 0)
	res, err := c.Complete("b", a, "l", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Applied || res.Insert {
		t.Errorf("result = %+v", res)
	}
	check(t, a, "ello world", 0)

	if _, err := c.Repeat(a, 0); err != nil {
		t.Fatal(err)
	}
	check(t, a, "llo world", 0)
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		caret     int
		op        Operator
		opCount   int
		motion    string
		count     int
		wantText  string
		wantCaret int
		insert    bool
	}{
		{"diw", "foo(bar: true)", 4, Delete, 0, "iw", 0, "foo(: true)", 4, false},
		{"d2w", "foo bar baz", 0, Delete, 2, "w", 0, "baz", 0, false},
		{"2d3w", "a b c d e f g", 0, Delete, 2, "w", 3, "g", 0, false},
		{"d$ clamps caret", "foo bar", 4, Delete, 0, "$", 0, "foo ", 3, false},
		{"dd keeps column", "abc\ndef\nghi", 5, Delete, 0, vim.LineOperand, 0, "abc\nghi", 5, false},
		{"dd last line", "abc\ndef", 5, Delete, 0, vim.LineOperand, 0, "abc", 1, false},
		{"cw", "foo bar", 0, Change, 0, "w", 0, " bar", 0, true},
		{"ci\"", `x "abc" y`, 4, Change, 0, `i"`, 0, `x "" y`, 3, true},
		{"cc", "  foo\nbar", 3, Change, 0, vim.LineOperand, 0, "\nbar", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCoordinator()
			a := newArea(tt.text, tt.caret)
			c.Begin("b", tt.op, tt.opCount)
			res, err := c.Complete("b", a, tt.motion, tt.count)
			if err != nil {
				t.Fatal(err)
			}
			check(t, a, tt.wantText, tt.wantCaret)
			if res.Insert != tt.insert {
				t.Errorf("Insert = %v, want %v", res.Insert, tt.insert)
			}
			if _, ok := c.Pending("b"); ok {
				t.Error("operator still pending")
			}
		})
	}
}

func TestCompleteNoSpan(t *testing.T) {
	c := newCoordinator()
	a := newArea("abc", 1)

	c.Begin("b", Delete, 0)
	res, err := c.Complete("b", a, "j", 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Applied {
		t.Error("dj on the only line should not edit")
	}
	check(t, a, "abc", 1)
	if _, ok := c.Last(); ok {
		t.Error("aborted operator must not be recorded")
	}
}

func TestCompleteWithoutPending(t *testing.T) {
	c := newCoordinator()
	_, err := c.Complete("b", newArea("abc", 0), "w", 0)
	if !errors.Is(err, ErrNoPendingOperator) {
		t.Errorf("err = %v, want ErrNoPendingOperator", err)
	}
}

func TestPendingPerBuffer(t *testing.T) {
	c := newCoordinator()
	c.Begin("one", Delete, 3)

	if p, ok := c.Pending("one"); !ok || p.Operator != Delete || p.Count != 3 {
		t.Errorf("Pending(one) = %+v, %v", p, ok)
	}
	if _, ok := c.Pending("two"); ok {
		t.Error("pending operator leaked across buffers")
	}
	c.DropBuffer("one")
	if _, ok := c.Pending("one"); ok {
		t.Error("DropBuffer should abort the pending operator")
	}
}

func TestChangeRepeatReinsertsText(t *testing.T) {
	c := newCoordinator()
	a := newArea("foo bar", 0)

	c.Begin("b", Change, 0)
	if _, err := c.Complete("b", a, "w", 0); err != nil {
		t.Fatal(err)
	}
	_ = a.Insert("xy")
	c.Typed("xy")
	c.EndInsert()
	check(t, a, "xy bar", 2)

	a.SetCaret(3)
	res, err := c.Repeat(a, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Insert {
		t.Error("repeat should stay in normal mode")
	}
	check(t, a, "xy xy", 4)

	last, _ := c.Last()
	if last.Inserted != "xy" {
		t.Errorf("Inserted = %q, want %q", last.Inserted, "xy")
	}
}

func TestOpenLineRepeat(t *testing.T) {
	c := newCoordinator()
	a := newArea("ab", 0)

	res, err := c.Edit(a, "o", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Insert {
		t.Fatal("o should enter insert mode")
	}
	check(t, a, "ab\n", 3)

	_ = a.Insert("cd")
	c.Typed("cd")
	c.EndInsert()

	a.SetCaret(0)
	if _, err := c.Repeat(a, 0); err != nil {
		t.Fatal(err)
	}
	check(t, a, "ab\ncd\ncd", 4)
}

func TestTypedOutsideChange(t *testing.T) {
	c := newCoordinator()
	a := newArea("abc", 0)

	_, _ = c.Edit(a, "x", 1)
	c.Typed("zz")
	if last, _ := c.Last(); last.Inserted != "" {
		t.Errorf("Inserted = %q; typing after x must not be recorded", last.Inserted)
	}
}

func TestEdits(t *testing.T) {
	tests := []struct {
		name      string
		edit      string
		text      string
		caret     int
		count     int
		wantText  string
		wantCaret int
		insert    bool
	}{
		{"x", "x", "abc", 1, 1, "ac", 1, false},
		{"2x", "x", "abcd", 1, 2, "ad", 1, false},
		{"x last char", "x", "abc", 2, 1, "ab", 1, false},
		{"x line end", "x", "ab\ncd", 1, 5, "a\ncd", 0, false},
		{"x combining", "x", "e\u0301x", 0, 1, "x", 0, false},
		{"X", "X", "abc", 2, 1, "ac", 1, false},
		{"X line start", "X", "abc", 2, 5, "c", 0, false},
		{"s", "s", "abc", 1, 1, "ac", 1, true},
		{"D", "D", "foo bar", 4, 1, "foo ", 3, false},
		{"C", "C", "foo bar", 4, 1, "foo ", 4, true},
		{"o", "o", "ab\ncd", 0, 1, "ab\n\ncd", 3, true},
		{"O", "O", "ab\ncd", 4, 1, "ab\n\ncd", 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCoordinator()
			a := newArea(tt.text, tt.caret)
			res, err := c.Edit(a, tt.edit, tt.count)
			if err != nil {
				t.Fatal(err)
			}
			check(t, a, tt.wantText, tt.wantCaret)
			if res.Insert != tt.insert {
				t.Errorf("Insert = %v, want %v", res.Insert, tt.insert)
			}
		})
	}
}

func TestEditNoop(t *testing.T) {
	c := newCoordinator()
	a := newArea("a\n\nb", 2)

	res, err := c.Edit(a, "x", 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Applied {
		t.Error("x on an empty line should not edit")
	}
	check(t, a, "a\n\nb", 2)
}

func TestEditUnknown(t *testing.T) {
	c := newCoordinator()
	if _, err := c.Edit(newArea("abc", 0), "Q", 1); !errors.Is(err, ErrUnknownEdit) {
		t.Errorf("err = %v, want ErrUnknownEdit", err)
	}
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		caret     int
		char      string
		count     int
		wantText  string
		wantCaret int
	}{
		{"single", "abc", 0, "x", 1, "xbc", 0},
		{"count", "abc", 0, "x", 2, "xxc", 1},
		{"count too large", "abc", 1, "x", 3, "abc", 1},
		{"newline", "abc", 1, "\n", 1, "a\nc", 2},
		{"wide", "abc", 2, "é", 1, "abé", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCoordinator()
			a := newArea(tt.text, tt.caret)
			if _, err := c.Replace(a, tt.char, tt.count); err != nil {
				t.Fatal(err)
			}
			check(t, a, tt.wantText, tt.wantCaret)
		})
	}
}

func TestVisual(t *testing.T) {
	c := newCoordinator()
	a := surface.NewTextArea("abcdef")
	a.SetSelection(surface.Selection{Anchor: 3, Head: 1})

	if _, err := c.Visual(a, Delete); err != nil {
		t.Fatal(err)
	}
	check(t, a, "aef", 1)
	if _, ok := a.Selection(); ok {
		t.Error("selection should be cleared")
	}

	// Repeat acts on the same number of characters from the caret.
	if _, err := c.Repeat(a, 0); err != nil {
		t.Fatal(err)
	}
	check(t, a, "a", 0)
}

func TestVisualChange(t *testing.T) {
	c := newCoordinator()
	a := surface.NewTextArea("abcdef")
	a.SetSelection(surface.Selection{Anchor: 1, Head: 2})

	res, err := c.Visual(a, Change)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Insert {
		t.Error("visual c should enter insert mode")
	}
	check(t, a, "adef", 1)
}

func TestVisualWithoutSelection(t *testing.T) {
	c := newCoordinator()
	if _, err := c.Visual(surface.NewTextArea("abc"), Delete); !errors.Is(err, ErrNoSelection) {
		t.Errorf("err = %v, want ErrNoSelection", err)
	}
}

func TestRepeatNothing(t *testing.T) {
	c := newCoordinator()
	if _, err := c.Repeat(newArea("abc", 0), 0); !errors.Is(err, ErrNothingToRepeat) {
		t.Errorf("err = %v, want ErrNothingToRepeat", err)
	}
}

func TestRepeatCountOverride(t *testing.T) {
	c := newCoordinator()
	a := newArea("abcdef", 0)

	_, _ = c.Edit(a, "x", 1)
	_, _ = c.Repeat(a, 3)
	check(t, a, "ef", 0)
}

func TestParseOperator(t *testing.T) {
	if op, err := ParseOperator("c"); err != nil || op != Change {
		t.Errorf("ParseOperator(c) = %v, %v", op, err)
	}
	if _, err := ParseOperator("y"); !errors.Is(err, ErrUnknownOperator) {
		t.Errorf("err = %v, want ErrUnknownOperator", err)
	}
}

func TestRepeatRecordString(t *testing.T) {
	tests := []struct {
		rec  RepeatRecord
		want string
	}{
		{RepeatRecord{Kind: RecordOperator, Operator: Delete, Motion: "w", Count: 2}, "d2w"},
		{RepeatRecord{Kind: RecordOperator, Operator: Change, Motion: "iw", Count: 1, Inserted: "x"}, `ciw+"x"`},
		{RepeatRecord{Kind: RecordEdit, Motion: "x", Count: 3}, "3x"},
		{RepeatRecord{Kind: RecordReplace, Char: "z", Count: 1}, "r:z"},
		{RepeatRecord{Kind: RecordVisual, Operator: Delete, Span: 4}, "v4d"},
	}
	for _, tt := range tests {
		if got := tt.rec.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
