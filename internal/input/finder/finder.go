package finder

import (
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/dshills/modalkeys/internal/input/keymap"
)

// Field names the part of a mapping a query matched.
type Field string

const (
	FieldLHS         Field = "lhs"
	FieldAction      Field = "action"
	FieldDescription Field = "description"
)

// Options configures a Finder.
type Options struct {
	// CacheTTL bounds how long a scored (query, text) pair is reused.
	// Zero uses DefaultCacheTTL; a negative value disables the cache.
	CacheTTL time.Duration

	// CaseSensitive disables case folding.
	CaseSensitive bool
}

// DefaultCacheTTL is the cache lifetime of a scored pair.
const DefaultCacheTTL = 5 * time.Minute

// Match is one mapping found by a query.
type Match struct {
	Entry keymap.Entry
	Score int

	// Field is the best-scoring part of the entry; Positions are the rune
	// offsets of the query's characters within it.
	Field     Field
	Positions []int
}

// Finder fuzzy-searches keymap entries by their left-hand side, action
// and description. It is safe for concurrent use.
type Finder struct {
	cache         *cache.Cache
	caseSensitive bool
}

type scored struct {
	score int
	pos   []int
}

// New creates a Finder.
func New(opts Options) *Finder {
	f := &Finder{caseSensitive: opts.CaseSensitive}
	ttl := opts.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	if ttl > 0 {
		f.cache = cache.New(ttl, 2*ttl)
	}
	return f
}

// Find returns the entries matching query, best first. Ties are broken by
// mode and then by sequence. An empty query matches every entry with a
// zero score. A limit of zero or less returns all matches.
func (f *Finder) Find(query string, entries []keymap.Entry, limit int) []Match {
	query = strings.TrimSpace(query)
	if !f.caseSensitive {
		query = strings.ToLower(query)
	}

	var out []Match
	if query == "" {
		out = make([]Match, len(entries))
		for i, e := range entries {
			out[i] = Match{Entry: e}
		}
	} else {
		q := []rune(query)
		for _, e := range entries {
			if m, ok := f.match(q, e); ok {
				out = append(out, m)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Entry.Mode != b.Entry.Mode {
			return a.Entry.Mode < b.Entry.Mode
		}
		return a.Entry.Sequence.String() < b.Entry.Sequence.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// match scores every searchable field of e and keeps the best.
func (f *Finder) match(q []rune, e keymap.Entry) (Match, bool) {
	best := Match{Entry: e}
	fields := []struct {
		field Field
		text  string
	}{
		{FieldLHS, e.LHS},
		{FieldAction, e.Action.String()},
		{FieldDescription, e.Description},
	}
	for _, fl := range fields {
		s := f.score(q, fl.text)
		if s.score > best.Score {
			best.Score, best.Field, best.Positions = s.score, fl.field, s.pos
		}
	}
	return best, best.Score > 0
}

func (f *Finder) score(q []rune, text string) scored {
	if text == "" {
		return scored{}
	}
	key := string(q) + "\x00" + text
	if f.cache != nil {
		if v, ok := f.cache.Get(key); ok {
			return v.(scored)
		}
	}

	original := []rune(text)
	folded := original
	if !f.caseSensitive {
		folded = []rune(strings.ToLower(text))
	}
	var s scored
	// Case folding can change the rune count; such texts only match
	// exactly as written.
	if len(folded) != len(original) {
		folded = original
	}
	if pos := subsequence(q, folded); pos != nil {
		s = scored{score: score(q, original, folded, pos), pos: pos}
	}

	if f.cache != nil {
		f.cache.SetDefault(key, s)
	}
	return s
}

// CachedPairs returns the number of scored pairs in the cache.
func (f *Finder) CachedPairs() int {
	if f.cache == nil {
		return 0
	}
	return f.cache.ItemCount()
}

// Flush empties the cache.
func (f *Finder) Flush() {
	if f.cache != nil {
		f.cache.Flush()
	}
}
