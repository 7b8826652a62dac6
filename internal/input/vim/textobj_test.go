package vim

import "testing"

func TestTextObject(t *testing.T) {
	e := New(DefaultOptions())

	tests := []struct {
		name   string
		object string
		text   string
		pos    int
		want   Range
		ok     bool
	}{
		{"iw in parens", "iw", "foo(bar: true)", 4, Range{Start: 4, End: 7}, true},
		{"aw trailing space", "aw", "foo bar baz", 4, Range{Start: 4, End: 8}, true},
		{"aw leading space", "aw", "foo bar", 4, Range{Start: 3, End: 7}, true},
		{"iw on blanks", "iw", "foo   bar", 4, Range{Start: 3, End: 6}, true},
		{"aw on blanks", "aw", "foo   bar", 4, Range{Start: 3, End: 9}, true},
		{"iw camelCase", "iw", "fooBar", 4, Range{Start: 3, End: 6}, true},
		{"iW", "iW", "foo.bar baz", 1, Range{Start: 0, End: 7}, true},
		{"iw empty line", "iw", "a\n\nb", 2, Range{}, false},
		{"iw empty text", "iw", "", 0, Range{}, false},

		{"i\" inside", `i"`, `say "hi there" ok`, 6, Range{Start: 5, End: 13}, true},
		{"a\" inside", `a"`, `say "hi there" ok`, 6, Range{Start: 4, End: 15}, true},
		{"i\" before pair", `i"`, `say "hi there" ok`, 0, Range{Start: 5, End: 13}, true},
		{"i\" escaped quote", `i"`, `"a\"b"`, 1, Range{Start: 1, End: 5}, true},
		{"i' no quotes", "i'", "abc", 1, Range{}, false},
		{"i` backticks", "i`", "x `y` z", 3, Range{Start: 3, End: 4}, true},

		{"i( outer", "i(", "f(a, (b))", 2, Range{Start: 2, End: 8}, true},
		{"i( nested", "i(", "f(a, (b))", 6, Range{Start: 6, End: 7}, true},
		{"a( nested", "a(", "f(a, (b))", 6, Range{Start: 5, End: 8}, true},
		{"i( on open", "i(", "f(a, (b))", 1, Range{Start: 2, End: 8}, true},
		{"i( on close", "i(", "f(a, (b))", 8, Range{Start: 2, End: 8}, true},
		{"ib alias", "ib", "f(a, (b))", 2, Range{Start: 2, End: 8}, true},
		{"i) alias", "i)", "f(a, (b))", 2, Range{Start: 2, End: 8}, true},
		{"i{ multiline", "i{", "{\n  x\n}", 3, Range{Start: 1, End: 6}, true},
		{"aB multiline", "aB", "{\n  x\n}", 3, Range{Start: 0, End: 7}, true},
		{"i[", "i[", "a[1]", 2, Range{Start: 2, End: 3}, true},
		{"i<", "i<", "a<b>c", 2, Range{Start: 2, End: 3}, true},
		{"i( unenclosed", "i(", "abc", 1, Range{}, false},
		{"i( unclosed", "i(", "(abc", 2, Range{}, false},
		{"unknown", "iz", "abc", 1, Range{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.TextObject(tt.object, []rune(tt.text), tt.pos)
			if ok != tt.ok {
				t.Fatalf("TextObject(%q) ok = %v, want %v", tt.object, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("TextObject(%q, %q, %d) = %+v, want %+v", tt.object, tt.text, tt.pos, got, tt.want)
			}
		})
	}
}
