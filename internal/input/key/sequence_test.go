package key

import "testing"

func TestSplit(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"diw", []string{"d", "i", "w"}},
		{"<Esc>a<lt>", []string{"<Esc>", "a", "<lt>"}},
		{"<>", []string{"<", ">"}},
		{"<D-a>>", []string{"<D-a>", ">"}},
		{"<C->>", []string{"<C->>"}},
		{"<C->>x", []string{"<C->>", "x"}},
		{"a<b", []string{"a", "<", "b"}},
		{"<<Esc>", []string{"<", "<Esc>"}},
		{"<leader>ff", []string{"<leader>", "f", "f"}},
		{"é<C-é>", []string{"é", "<C-é>"}},
		{"<S-C-h>j", []string{"<S-C-h>", "j"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Split(tt.in).Strings()
			if len(got) != len(tt.want) {
				t.Fatalf("Split(%q) = %q, want %q", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Split(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSequenceString(t *testing.T) {
	seq := Sequence{"<C-x>", "<C-s>"}
	if got := seq.String(); got != "<C-x><C-s>" {
		t.Errorf("String() = %q", got)
	}
	if Split(seq.String()).Equal(seq) == false {
		t.Error("Split should invert String for canonical sequences")
	}
}

func TestSequencePrefix(t *testing.T) {
	seq := Sequence{"d", "i", "w"}
	if !seq.HasPrefix(Sequence{"d"}) || !seq.HasPrefix(Sequence{"d", "i"}) || !seq.HasPrefix(nil) {
		t.Error("expected prefixes to match")
	}
	if seq.HasPrefix(Sequence{"d", "a"}) || seq.HasPrefix(Sequence{"d", "i", "w", "x"}) {
		t.Error("unexpected prefix match")
	}
}

func TestSequenceCloneAppend(t *testing.T) {
	seq := Sequence{"g"}
	ext := seq.Append("g")
	if seq.Len() != 1 || ext.Len() != 2 {
		t.Fatalf("Append modified the receiver: %v %v", seq, ext)
	}
	clone := ext.Clone()
	clone[0] = "x"
	if ext[0] != "g" {
		t.Error("Clone shares storage with the original")
	}
	if Sequence(nil).Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
	if !Sequence(nil).IsEmpty() {
		t.Error("nil sequence should be empty")
	}
}
