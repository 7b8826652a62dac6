package vim

// LineOperand is the pseudo-motion used by dd and cc.
const LineOperand = "line"

// OperatorRange resolves the span an operator ('d' or 'c') acts on when
// combined with a motion or text object at pos. ok is false for unknown
// names and for combinations that have no span, such as dj on the last
// line or diw on an empty line.
func (e *Evaluator) OperatorRange(op rune, name string, t []rune, pos, count int) (Range, bool) {
	count = max(count, 1)
	pos = clampPos(t, pos)

	if _, ok := textObjects[name]; ok {
		return e.TextObject(name, t, pos)
	}

	n := len(t)
	ls, le := LineStart(t, pos), LineEnd(t, pos)
	cur := lineIndex(t, pos)

	switch name {
	case LineOperand:
		return linewise(op, t, cur, cur+count-1), true
	case "j":
		if nextLineStart(t, pos) < 0 {
			return Range{}, false
		}
		return linewise(op, t, cur, cur+count), true
	case "k":
		if prevLineStart(t, pos) < 0 {
			return Range{}, false
		}
		return linewise(op, t, max(cur-count, 0), cur), true
	case "gg":
		return linewise(op, t, 0, cur), true
	case "G":
		return linewise(op, t, cur, lineIndex(t, n)), true

	case "w", "W":
		big := name == "W"
		if op == 'c' && pos < n && !isSpace(t[pos]) {
			// cw changes to the end of the word, like ce.
			end := pos
			for i := 0; i < count; i++ {
				if i == 0 {
					end = e.wordEndFrom(t, pos, big)
				} else {
					end = e.wordEnd(t, end, big)
				}
			}
			return Range{Start: pos, End: min(end+1, n)}, true
		}
		if ls == le {
			return Range{Start: pos, End: min(pos+1, n)}, true
		}
		end := pos
		for i := 0; i < count && end < n; i++ {
			end = e.wordForward(t, end, big)
		}
		return Range{Start: pos, End: min(end, le)}, true

	case "e", "E":
		big := name == "E"
		end := pos
		for i := 0; i < count; i++ {
			end = e.wordEnd(t, end, big)
		}
		if n == 0 {
			return Range{}, true
		}
		return Range{Start: pos, End: min(end+1, n)}, true

	case "l":
		return Range{Start: pos, End: min(pos+count, le)}, true
	case "h":
		return Range{Start: max(pos-count, ls), End: pos}, true
	case "$":
		return Range{Start: pos, End: le}, true
	case "0":
		return Range{Start: ls, End: pos}, true
	case "^":
		fnb := FirstNonBlank(t, pos)
		return Range{Start: min(fnb, pos), End: max(fnb, pos)}, true
	case "}":
		end := pos
		for i := 0; i < count && end < n; i++ {
			end = paragraphEnd(t, end)
		}
		return Range{Start: pos, End: end}, true
	}

	q, ok := e.Move(name, t, pos, count)
	if !ok {
		return Range{}, false
	}
	return Range{Start: min(q, pos), End: max(q, pos)}, true
}

// wordEndFrom is e that stays on the current character when it already
// ends a word.
func (e *Evaluator) wordEndFrom(t []rune, p int, big bool) int {
	same := e.segment(big)
	if p+1 >= len(t) || !same(t, p+1) {
		return p
	}
	return e.wordEnd(t, p, big)
}

// linewise returns the span of lines first..last. A delete takes the
// lines with their newline, removing the preceding newline when the last
// line of the text goes. A change keeps one newline so the caret stays on
// an empty line.
func linewise(op rune, t []rune, first, last int) Range {
	start := lineOffset(t, first)
	end := LineEnd(t, lineOffset(t, last))
	if op == 'c' {
		return Range{Start: start, End: end, Linewise: true}
	}
	if end < len(t) {
		return Range{Start: start, End: end + 1, Linewise: true}
	}
	if start > 0 {
		return Range{Start: start - 1, End: len(t), Linewise: true}
	}
	return Range{Start: 0, End: len(t), Linewise: true}
}

// lineOffset returns the start offset of line idx, or of the last line
// when idx is past the end.
func lineOffset(t []rune, idx int) int {
	pos := 0
	for i := 0; i < idx; i++ {
		next := nextLineStart(t, pos)
		if next < 0 {
			break
		}
		pos = next
	}
	return pos
}

// CaretAfterLinewise places the caret after a linewise delete that removed
// text starting at start: on the line now at that position (or the last
// line), at the previous column clamped to the line.
func CaretAfterLinewise(t []rune, start, col int) int {
	if len(t) == 0 {
		return 0
	}
	return atColumn(t, LineStart(t, min(start, len(t))), col)
}
