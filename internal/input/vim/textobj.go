package vim

type textObjectFunc func(e *Evaluator, t []rune, pos int) (Range, bool)

// textObjects maps names such as "iw" or "a(" to their finders.
var textObjects = map[string]textObjectFunc{}

func init() {
	textObjects["iw"] = func(e *Evaluator, t []rune, p int) (Range, bool) { return e.word(t, p, false, true) }
	textObjects["aw"] = func(e *Evaluator, t []rune, p int) (Range, bool) { return e.word(t, p, false, false) }
	textObjects["iW"] = func(e *Evaluator, t []rune, p int) (Range, bool) { return e.word(t, p, true, true) }
	textObjects["aW"] = func(e *Evaluator, t []rune, p int) (Range, bool) { return e.word(t, p, true, false) }

	for _, q := range []rune{'"', '\'', '`'} {
		textObjects["i"+string(q)] = func(_ *Evaluator, t []rune, p int) (Range, bool) { return quoted(t, p, q, true) }
		textObjects["a"+string(q)] = func(_ *Evaluator, t []rune, p int) (Range, bool) { return quoted(t, p, q, false) }
	}

	pairs := []struct {
		open, close rune
		aliases     []string
	}{
		{'(', ')', []string{"(", ")", "b"}},
		{'[', ']', []string{"[", "]"}},
		{'{', '}', []string{"{", "}", "B"}},
		{'<', '>', []string{"<", ">"}},
	}
	for _, pr := range pairs {
		for _, alias := range pr.aliases {
			textObjects["i"+alias] = func(_ *Evaluator, t []rune, p int) (Range, bool) {
				return bracketed(t, p, pr.open, pr.close, true)
			}
			textObjects["a"+alias] = func(_ *Evaluator, t []rune, p int) (Range, bool) {
				return bracketed(t, p, pr.open, pr.close, false)
			}
		}
	}
}

// TextObject resolves a text object at pos.
func (e *Evaluator) TextObject(name string, t []rune, pos int) (Range, bool) {
	fn, ok := textObjects[name]
	if !ok {
		return Range{}, false
	}
	return fn(e, t, clampPos(t, pos))
}

// word finds iw/aw (or iW/aW). The inner object is the run of word,
// punctuation or whitespace characters under the caret, never crossing a
// line. There is no object on an empty line.
func (e *Evaluator) word(t []rune, p int, big, inner bool) (Range, bool) {
	if p < 0 || p >= len(t) || t[p] == '\n' {
		return Range{}, false
	}
	same := e.segment(big)
	ls, le := LineStart(t, p), LineEnd(t, p)

	start, end := p, p+1
	if isSpace(t[p]) {
		for start > ls && isSpace(t[start-1]) {
			start--
		}
		for end < le && isSpace(t[end]) {
			end++
		}
		if inner {
			return Range{Start: start, End: end}, true
		}
		// Around whitespace: the blanks plus the following word.
		if end < le {
			end++
			for end < le && same(t, end) {
				end++
			}
		}
		return Range{Start: start, End: end}, true
	}

	for start > ls && same(t, start) {
		start--
	}
	for end < le && same(t, end) {
		end++
	}
	if inner {
		return Range{Start: start, End: end}, true
	}

	trail := end
	for trail < le && isSpace(t[trail]) {
		trail++
	}
	if trail > end {
		return Range{Start: start, End: trail}, true
	}
	lead := start
	for lead > ls && isSpace(t[lead-1]) {
		lead--
	}
	return Range{Start: lead, End: end}, true
}

// quoted finds a quoted string on the caret's line: the pair surrounding
// the caret, or else the first pair after it.
func quoted(t []rune, p int, q rune, inner bool) (Range, bool) {
	if p < 0 || p >= len(t) {
		return Range{}, false
	}
	ls, le := LineStart(t, p), LineEnd(t, p)

	var marks []int
	for i := ls; i < le; i++ {
		if t[i] == q && (i == ls || t[i-1] != '\\') {
			marks = append(marks, i)
		}
	}

	for i := 0; i+1 < len(marks); i += 2 {
		open, close := marks[i], marks[i+1]
		if close < p {
			continue
		}
		if inner {
			return Range{Start: open + 1, End: close}, true
		}
		end := close + 1
		for end < le && isSpace(t[end]) {
			end++
		}
		start := open
		if end == close+1 {
			for start > ls && isSpace(t[start-1]) {
				start--
			}
		}
		return Range{Start: start, End: end}, true
	}
	return Range{}, false
}

// bracketed finds the innermost open/close pair enclosing the caret. The
// pair may span lines.
func bracketed(t []rune, p int, open, close rune, inner bool) (Range, bool) {
	if p < 0 || p >= len(t) {
		return Range{}, false
	}

	start := p
	if t[p] != open {
		start = matchBackward(t, p-1, open, close)
	}
	if start < 0 {
		return Range{}, false
	}

	depth := 0
	end := -1
	for i := start + 1; i < len(t); i++ {
		switch t[i] {
		case open:
			depth++
		case close:
			if depth == 0 {
				end = i
			} else {
				depth--
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 || end < p {
		return Range{}, false
	}

	if inner {
		return Range{Start: start + 1, End: end}, true
	}
	return Range{Start: start, End: end + 1}, true
}

// matchBackward scans left from i for an unmatched open rune.
func matchBackward(t []rune, i int, open, close rune) int {
	depth := 0
	for ; i >= 0; i-- {
		switch t[i] {
		case close:
			depth++
		case open:
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}
