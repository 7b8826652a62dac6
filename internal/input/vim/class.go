package vim

import "unicode"

// CharClass is the word-motion class of a character.
type CharClass uint8

const (
	// ClassWhitespace covers spaces, newlines, NUL and zero-width space.
	ClassWhitespace CharClass = iota

	// ClassPunctuation covers ASCII punctuation, symbols and controls and
	// non-ASCII punctuation.
	ClassPunctuation

	// ClassWord is everything else: letters, digits, underscore, CJK, emoji.
	ClassWord
)

// String returns the class name.
func (c CharClass) String() string {
	switch c {
	case ClassWhitespace:
		return "whitespace"
	case ClassPunctuation:
		return "punctuation"
	default:
		return "word"
	}
}

// Classify returns the class of r.
func Classify(r rune) CharClass {
	if r == 0 || r == '\u200b' || unicode.IsSpace(r) {
		return ClassWhitespace
	}
	if r < 0x80 {
		if r == '_' || ('0' <= r && r <= '9') || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			return ClassWord
		}
		return ClassPunctuation
	}
	if unicode.IsPunct(r) {
		return ClassPunctuation
	}
	return ClassWord
}

// ClassifyString returns the class of the first character of s. The empty
// string is punctuation.
func ClassifyString(s string) CharClass {
	for _, r := range s {
		return Classify(r)
	}
	return ClassPunctuation
}

func isSpace(r rune) bool {
	return Classify(r) == ClassWhitespace
}

// sameWord reports whether t[i-1] and t[i] belong to one word segment.
func (e *Evaluator) sameWord(t []rune, i int) bool {
	a, b := Classify(t[i-1]), Classify(t[i])
	if a != b || a == ClassWhitespace {
		return false
	}
	if a == ClassWord && e.opts.CaseBoundaries && unicode.IsLower(t[i-1]) && unicode.IsUpper(t[i]) {
		return false
	}
	return true
}

// sameBigWord reports whether t[i-1] and t[i] belong to one WORD.
func sameBigWord(t []rune, i int) bool {
	return !isSpace(t[i-1]) && !isSpace(t[i])
}

// segmentFunc reports whether t[i-1] and t[i] belong to the same unit.
type segmentFunc func(t []rune, i int) bool

func (e *Evaluator) segment(big bool) segmentFunc {
	if big {
		return sameBigWord
	}
	return e.sameWord
}
