package vim

// MotionKind describes how an operator treats a motion's span.
type MotionKind uint8

const (
	// Exclusive spans stop before the target.
	Exclusive MotionKind = iota

	// Inclusive spans include the target character.
	Inclusive

	// Linewise spans cover every line between caret and target.
	Linewise
)

type motionFunc func(e *Evaluator, t []rune, pos int) int

type motionSpec struct {
	kind MotionKind
	fn   motionFunc
}

// motions maps names to single-step motion functions.
var motions = map[string]motionSpec{
	"h":  {Exclusive, func(_ *Evaluator, t []rune, p int) int { return left(t, p) }},
	"l":  {Exclusive, func(_ *Evaluator, t []rune, p int) int { return right(t, p) }},
	"j":  {Linewise, func(_ *Evaluator, t []rune, p int) int { return down(t, p) }},
	"k":  {Linewise, func(_ *Evaluator, t []rune, p int) int { return up(t, p) }},
	"w":  {Exclusive, func(e *Evaluator, t []rune, p int) int { return clampLast(t, e.wordForward(t, p, false)) }},
	"W":  {Exclusive, func(e *Evaluator, t []rune, p int) int { return clampLast(t, e.wordForward(t, p, true)) }},
	"b":  {Exclusive, func(e *Evaluator, t []rune, p int) int { return e.wordBackward(t, p, false) }},
	"B":  {Exclusive, func(e *Evaluator, t []rune, p int) int { return e.wordBackward(t, p, true) }},
	"e":  {Inclusive, func(e *Evaluator, t []rune, p int) int { return e.wordEnd(t, p, false) }},
	"E":  {Inclusive, func(e *Evaluator, t []rune, p int) int { return e.wordEnd(t, p, true) }},
	"0":  {Exclusive, func(_ *Evaluator, t []rune, p int) int { return LineStart(t, p) }},
	"^":  {Exclusive, func(_ *Evaluator, t []rune, p int) int { return FirstNonBlank(t, p) }},
	"$":  {Inclusive, func(_ *Evaluator, t []rune, p int) int { return LastChar(t, p) }},
	"}":  {Exclusive, func(_ *Evaluator, t []rune, p int) int { return paragraphForward(t, p) }},
	"{":  {Exclusive, func(_ *Evaluator, t []rune, p int) int { return paragraphBackward(t, p) }},
	"gg": {Linewise, func(_ *Evaluator, t []rune, p int) int { return 0 }},
	"G":  {Linewise, func(_ *Evaluator, t []rune, p int) int { return LineStart(t, len(t)) }},
}

// Move applies a motion count times and returns the new caret. ok is
// false for unknown names. A caret outside the text is clamped first.
func (e *Evaluator) Move(name string, t []rune, pos, count int) (int, bool) {
	pos = clampPos(t, pos)
	spec, ok := motions[name]
	if !ok {
		return pos, false
	}
	if name == "gg" || name == "G" {
		return spec.fn(e, t, pos), true
	}
	for i := 0; i < max(count, 1); i++ {
		next := spec.fn(e, t, pos)
		if next == pos {
			break
		}
		pos = next
	}
	return pos, true
}

// MoveVisual is Move for a visual-mode head. Unlike normal mode, l may
// step onto the newline ending a line, but never past the last character
// of the text.
func (e *Evaluator) MoveVisual(name string, t []rune, pos, count int) (int, bool) {
	if name != "l" {
		return e.Move(name, t, pos, count)
	}
	pos = clampPos(t, pos)
	for i := 0; i < max(count, 1); i++ {
		end := LineEnd(t, pos)
		next := min(pos+1, end)
		if next >= len(t) {
			next = max(len(t)-1, 0)
		}
		if next == pos {
			break
		}
		pos = next
	}
	return pos, true
}

func left(t []rune, p int) int {
	if p > LineStart(t, p) {
		return p - 1
	}
	return p
}

func right(t []rune, p int) int {
	if p+1 < LineEnd(t, p) {
		return p + 1
	}
	return p
}

func down(t []rune, p int) int {
	next := nextLineStart(t, p)
	if next < 0 {
		return p
	}
	return atColumn(t, next, Column(t, p))
}

func up(t []rune, p int) int {
	prev := prevLineStart(t, p)
	if prev < 0 {
		return p
	}
	return atColumn(t, prev, Column(t, p))
}

func clampLast(t []rune, p int) int {
	if p >= len(t) {
		return max(len(t)-1, 0)
	}
	return p
}

// isEmptyLineAt reports whether t[i] is the newline of an empty line.
func isEmptyLineAt(t []rune, i int) bool {
	return t[i] == '\n' && (i == 0 || t[i-1] == '\n')
}

// wordForward returns the start of the next word after p, or len(t) when
// there is none. Empty lines count as words.
func (e *Evaluator) wordForward(t []rune, p int, big bool) int {
	n := len(t)
	if p >= n {
		return n
	}
	same := e.segment(big)

	i := p + 1
	if !isSpace(t[p]) {
		for i < n && same(t, i) {
			i++
		}
	}
	for i < n && isSpace(t[i]) {
		if isEmptyLineAt(t, i) {
			return i
		}
		i++
	}
	return i
}

// wordBackward returns the start of the word before p.
func (e *Evaluator) wordBackward(t []rune, p int, big bool) int {
	if p <= 0 {
		return 0
	}
	same := e.segment(big)

	i := min(p, len(t)) - 1
	for i > 0 && isSpace(t[i]) {
		if isEmptyLineAt(t, i) {
			return i
		}
		i--
	}
	for i > 0 && same(t, i) {
		i--
	}
	return i
}

// wordEnd returns the end of the word at or after p+1.
func (e *Evaluator) wordEnd(t []rune, p int, big bool) int {
	n := len(t)
	if n == 0 {
		return 0
	}
	same := e.segment(big)

	i := p + 1
	for i < n && isSpace(t[i]) {
		i++
	}
	if i >= n {
		return n - 1
	}
	for i+1 < n && same(t, i+1) {
		i++
	}
	return i
}

// paragraphForward moves to the next blank-line boundary, or the last
// character when there is none.
func paragraphForward(t []rune, p int) int {
	return clampLast(t, paragraphEnd(t, p))
}

// paragraphEnd returns the next blank-line boundary after p, or len(t).
func paragraphEnd(t []rune, p int) int {
	for i := p + 1; i+1 < len(t); i++ {
		if t[i] == '\n' && t[i+1] == '\n' {
			return i
		}
	}
	return len(t)
}

// paragraphBackward moves to the previous blank-line boundary, or 0.
func paragraphBackward(t []rune, p int) int {
	for i := min(p, len(t)) - 1; i >= 0; i-- {
		if i+1 < len(t) && t[i] == '\n' && t[i+1] == '\n' {
			return i
		}
	}
	return 0
}
