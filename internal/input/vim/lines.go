package vim

import "github.com/rivo/uniseg"

// LineStart returns the offset of the first character of the line
// containing pos.
func LineStart(t []rune, pos int) int {
	pos = clampPos(t, pos)
	for pos > 0 && t[pos-1] != '\n' {
		pos--
	}
	return pos
}

// LineEnd returns the offset of the newline ending the line containing
// pos, or len(t) for the last line.
func LineEnd(t []rune, pos int) int {
	pos = clampPos(t, pos)
	for pos < len(t) && t[pos] != '\n' {
		pos++
	}
	return pos
}

// IsEmptyLine reports whether pos is on a line with no characters.
func IsEmptyLine(t []rune, pos int) bool {
	return LineStart(t, pos) == LineEnd(t, pos)
}

// Column returns the rune column of pos within its line.
func Column(t []rune, pos int) int {
	pos = clampPos(t, pos)
	return pos - LineStart(t, pos)
}

// DisplayColumn returns the terminal cell column of pos within its line,
// counting wide characters as two cells.
func DisplayColumn(t []rune, pos int) int {
	pos = clampPos(t, pos)
	return uniseg.StringWidth(string(t[LineStart(t, pos):pos]))
}

// FirstNonBlank returns the first non-blank character of the line holding
// pos. On an all-blank line it returns the last character.
func FirstNonBlank(t []rune, pos int) int {
	start, end := LineStart(t, pos), LineEnd(t, pos)
	for i := start; i < end; i++ {
		if t[i] != ' ' && t[i] != '\t' {
			return i
		}
	}
	return max(start, end-1)
}

// LastChar returns the last character of the line holding pos, or the line
// start on an empty line.
func LastChar(t []rune, pos int) int {
	start, end := LineStart(t, pos), LineEnd(t, pos)
	return max(start, end-1)
}

// ClampNormal keeps a normal-mode caret on a character: it may not rest on
// the newline of a non-empty line or past the end of the text.
func ClampNormal(t []rune, pos int) int {
	if len(t) == 0 {
		return 0
	}
	pos = clampPos(t, pos)
	if pos == len(t) || t[pos] == '\n' {
		if pos > LineStart(t, pos) {
			return pos - 1
		}
	}
	return pos
}

// lineIndex returns the zero-based line number of pos.
func lineIndex(t []rune, pos int) int {
	pos = clampPos(t, pos)
	n := 0
	for i := 0; i < pos; i++ {
		if t[i] == '\n' {
			n++
		}
	}
	return n
}

// nextLineStart returns the start of the line after pos, or -1 on the
// last line.
func nextLineStart(t []rune, pos int) int {
	end := LineEnd(t, pos)
	if end >= len(t) {
		return -1
	}
	return end + 1
}

// prevLineStart returns the start of the line before pos, or -1 on the
// first line.
func prevLineStart(t []rune, pos int) int {
	start := LineStart(t, pos)
	if start == 0 {
		return -1
	}
	return LineStart(t, start-1)
}

// atColumn returns the offset at col in the line starting at start,
// clamped to the line's last character.
func atColumn(t []rune, start, col int) int {
	end := LineEnd(t, start)
	if end == start {
		return start
	}
	return start + min(col, end-start-1)
}

func clampPos(t []rune, pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(t) {
		return len(t)
	}
	return pos
}
