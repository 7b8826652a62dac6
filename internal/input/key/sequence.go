package key

import (
	"strings"
	"unicode/utf8"
)

// Sequence is an ordered list of key notations forming one mapping
// left-hand side, e.g. ["d", "i", "w"] or ["<C-x>", "<C-s>"].
type Sequence []Notation

// Len returns the number of keys in the sequence.
func (s Sequence) Len() int {
	return len(s)
}

// IsEmpty returns true if the sequence has no keys.
func (s Sequence) IsEmpty() bool {
	return len(s) == 0
}

// String joins the notations, e.g. "diw" or "<C-x><C-s>".
func (s Sequence) String() string {
	var sb strings.Builder
	for _, n := range s {
		sb.WriteString(string(n))
	}
	return sb.String()
}

// Strings returns the notations as plain strings.
func (s Sequence) Strings() []string {
	out := make([]string, len(s))
	for i, n := range s {
		out[i] = string(n)
	}
	return out
}

// Equal returns true if two sequences are identical.
func (s Sequence) Equal(other Sequence) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix returns true if this sequence starts with the given prefix.
func (s Sequence) HasPrefix(prefix Sequence) bool {
	if len(prefix) > len(s) {
		return false
	}
	return s[:len(prefix)].Equal(prefix)
}

// Clone returns a copy of the sequence.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Append returns a new sequence with n added at the end.
func (s Sequence) Append(n ...Notation) Sequence {
	out := make(Sequence, len(s), len(s)+len(n))
	copy(out, s)
	return append(out, n...)
}

// Split tokenizes an authored sequence string into individual keys.
// A <...> group is one token; a '<' without a matching '>' (or with
// another '<' before it) is a literal '<'. Tokens are returned as written.
//
//	Split("<Esc>a<lt>") == ["<Esc>", "a", "<lt>"]
//	Split("<>")         == ["<", ">"]
//	Split("<D-a>>")     == ["<D-a>", ">"]
func Split(s string) Sequence {
	var out Sequence
	for i := 0; i < len(s); {
		if s[i] == '<' {
			if end := closingBracket(s, i); end > 0 {
				out = append(out, Notation(s[i:end+1]))
				i = end + 1
				continue
			}
			out = append(out, "<")
			i++
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		out = append(out, Notation(s[i:i+size]))
		i += size
	}
	return out
}

// closingBracket returns the index of the '>' closing the group opened at
// start, or -1 when the '<' is literal. A group ending in "->" followed by
// another '>' takes that '>' as its key, so "<C->>" stays one token.
func closingBracket(s string, start int) int {
	for j := start + 1; j < len(s); j++ {
		switch s[j] {
		case '<':
			return -1
		case '>':
			if j == start+1 {
				return -1
			}
			if s[j-1] == '-' && j+1 < len(s) && s[j+1] == '>' {
				return j + 1
			}
			return j
		}
	}
	return -1
}
