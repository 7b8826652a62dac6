package finder

import "unicode"

// Score weights.
const (
	baseScore        = 100
	consecutiveBonus = 20
	boundaryBonus    = 15
	firstCharBonus   = 25
	prefixBonus      = 50
	gapPenalty       = 2
	shortTextLimit   = 20
)

// subsequence returns the positions of query's runes in text, matched
// greedily left to right, or nil when text does not contain them all in
// order. Both are compared as given.
func subsequence(query, text []rune) []int {
	if len(query) == 0 || len(query) > len(text) {
		return nil
	}
	pos := make([]int, 0, len(query))
	q := 0
	for i := 0; i < len(text) && q < len(query); i++ {
		if text[i] == query[q] {
			pos = append(pos, i)
			q++
		}
	}
	if q != len(query) {
		return nil
	}
	return pos
}

// score rates a match. original keeps the case of the text for boundary
// detection; folded is the text as compared. Every match scores at least 1.
func score(query, original, folded []rune, pos []int) int {
	if len(pos) == 0 {
		return 0
	}
	s := baseScore

	for i := 1; i < len(pos); i++ {
		if pos[i] == pos[i-1]+1 {
			s += consecutiveBonus
		}
	}
	for _, p := range pos {
		if boundary(original, p) {
			s += boundaryBonus
		}
	}

	if pos[0] == 0 {
		s += firstCharBonus
	} else {
		s -= pos[0]
	}
	if gap := pos[len(pos)-1] - pos[0] - len(pos) + 1; gap > 0 {
		s -= gap * gapPenalty
	}
	if len(folded) < shortTextLimit {
		s += shortTextLimit - len(folded)
	}
	if hasPrefix(folded, query) {
		s += prefixBonus
	}
	return max(s, 1)
}

func hasPrefix(text, prefix []rune) bool {
	if len(prefix) > len(text) {
		return false
	}
	for i, r := range prefix {
		if text[i] != r {
			return false
		}
	}
	return true
}

// boundary reports whether idx starts a word: the first rune, a rune after
// a space or punctuation, or an upper-case rune after a lower-case one.
func boundary(runes []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	if idx >= len(runes) {
		return false
	}
	prev, cur := runes[idx-1], runes[idx]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) || unicode.IsSymbol(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}
