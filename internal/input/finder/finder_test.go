package finder

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
)

func entry(m mode.ID, lhs, action, desc string) keymap.Entry {
	return keymap.Entry{
		Mode:        m,
		LHS:         lhs,
		Sequence:    key.NormalizeSequence(lhs),
		Action:      keymap.Excmd(action),
		Description: desc,
	}
}

var sample = []keymap.Entry{
	entry(mode.Normal, "dd", "operator d", "Delete line"),
	entry(mode.Normal, "u", "undo", "Undo"),
	entry(mode.Normal, "<C-r>", "redo", "Redo"),
	entry(mode.Normal, "gt", "tabnext", "Next tab"),
	entry(mode.Insert, "<Esc>", "mode_change normal", "Normal mode"),
}

func TestFind(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantFirst string
		wantField Field
		wantCount int
	}{
		{"description", "undo", "u", FieldAction, 1},
		{"case folded", "REDO", "<C-r>", FieldAction, 1},
		{"subsequence", "nxtb", "gt", FieldDescription, 1},
		{"lhs", "<esc>", "<Esc>", FieldLHS, 1},
		{"no match", "zzz", "", "", 0},
	}

	f := New(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Find(tt.query, sample, 0)
			if len(got) != tt.wantCount {
				t.Fatalf("Find(%q) returned %d matches, want %d", tt.query, len(got), tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}
			if got[0].Entry.LHS != tt.wantFirst {
				t.Errorf("first match = %q, want %q", got[0].Entry.LHS, tt.wantFirst)
			}
			if got[0].Field != tt.wantField {
				t.Errorf("field = %q, want %q", got[0].Field, tt.wantField)
			}
		})
	}
}

func TestFind_EmptyQuery(t *testing.T) {
	f := New(Options{})
	got := f.Find("  ", sample, 2)
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	// Zero scores sort by mode, then sequence.
	if got[0].Entry.Mode != mode.Insert || got[1].Entry.LHS != "<C-r>" {
		t.Errorf("unexpected order: %q %q", got[0].Entry.LHS, got[1].Entry.LHS)
	}
}

func TestFind_PrefersPrefix(t *testing.T) {
	entries := []keymap.Entry{
		entry(mode.Insert, "<Esc>", "mode_change normal", "Leave insert mode"),
		entry(mode.Normal, "i", "mode_change normal", "Insert before cursor"),
	}
	got := New(Options{}).Find("insert", entries, 0)
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if got[0].Entry.LHS != "i" {
		t.Errorf("prefix match should rank first, got %q", got[0].Entry.LHS)
	}
	if got[0].Field != FieldDescription || len(got[0].Positions) != 6 || got[0].Positions[0] != 0 {
		t.Errorf("unexpected match detail: %+v", got[0])
	}
}

func TestFind_CaseSensitive(t *testing.T) {
	f := New(Options{CaseSensitive: true})
	if got := f.Find("REDO", sample, 0); len(got) != 0 {
		t.Errorf("case-sensitive query matched %d entries", len(got))
	}
	if got := f.Find("Redo", sample, 0); len(got) != 1 {
		t.Errorf("Redo matched %d entries, want 1", len(got))
	}
}

func TestFind_Cache(t *testing.T) {
	f := New(Options{})
	f.Find("undo", sample, 0)
	n := f.CachedPairs()
	if n == 0 {
		t.Fatal("expected cached pairs")
	}
	f.Find("undo", sample, 0)
	if f.CachedPairs() != n {
		t.Errorf("repeated query grew the cache from %d to %d", n, f.CachedPairs())
	}
	f.Flush()
	if f.CachedPairs() != 0 {
		t.Error("Flush left pairs behind")
	}

	off := New(Options{CacheTTL: -1})
	off.Find("undo", sample, 0)
	if off.CachedPairs() != 0 {
		t.Error("disabled cache stored pairs")
	}
}

func TestScore(t *testing.T) {
	q := []rune("ab")
	prefix := score(q, []rune("abc"), []rune("abc"), []int{0, 1})
	spread := score(q, []rune("xaxb"), []rune("xaxb"), []int{1, 3})
	if prefix <= spread {
		t.Errorf("prefix score %d should beat spread score %d", prefix, spread)
	}
	if score(q, nil, nil, nil) != 0 {
		t.Error("no positions should score 0")
	}
}

func TestBoundary(t *testing.T) {
	tests := []struct {
		s    string
		idx  int
		want bool
	}{
		{"abc", 0, true},
		{"abc", 1, false},
		{"mode_change", 5, true},
		{"nextTab", 4, true},
		{"a b", 2, true},
		{"abc", 5, false},
	}
	for _, tt := range tests {
		if got := boundary([]rune(tt.s), tt.idx); got != tt.want {
			t.Errorf("boundary(%q, %d) = %v, want %v", tt.s, tt.idx, got, tt.want)
		}
	}
}

func TestSubsequenceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := []rune(rapid.StringMatching(`[a-d]{0,12}`).Draw(t, "text"))
		query := []rune(rapid.StringMatching(`[a-d]{1,4}`).Draw(t, "query"))

		pos := subsequence(query, text)
		if pos == nil {
			return
		}
		if len(pos) != len(query) {
			t.Fatalf("got %d positions for %d query runes", len(pos), len(query))
		}
		for i, p := range pos {
			if text[p] != query[i] {
				t.Fatalf("position %d holds %q, want %q", p, text[p], query[i])
			}
			if i > 0 && p <= pos[i-1] {
				t.Fatalf("positions not increasing: %v", pos)
			}
		}
		if s := score(query, text, text, pos); s < 1 {
			t.Fatalf("match scored %d", s)
		}
	})
}
