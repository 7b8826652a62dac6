package vim

import (
	"testing"

	"github.com/dshills/modalkeys/internal/input/key"
)

func TestCount(t *testing.T) {
	var c Count
	if c.Active() || c.Get() != 1 || c.Value() != 0 {
		t.Fatal("zero Count should be inactive with effective count 1")
	}

	if c.Feed("0") {
		t.Error("leading 0 should not start a count")
	}
	for _, n := range []key.Notation{"1", "2", "0"} {
		if !c.Feed(n) {
			t.Fatalf("Feed(%q) = false", n)
		}
	}
	if !c.Active() || c.Get() != 120 {
		t.Errorf("Get() = %d, want 120", c.Get())
	}

	for _, n := range []key.Notation{"a", "<C-1>", "<Space>", ""} {
		if c.Feed(n) {
			t.Errorf("Feed(%q) = true", n)
		}
	}

	c.Reset()
	if c.Active() || c.Get() != 1 {
		t.Error("Reset should clear the count")
	}
}

func TestCountOverflow(t *testing.T) {
	var c Count
	for i := 0; i < 30; i++ {
		c.Feed("9")
	}
	if c.Get() != maxCount {
		t.Errorf("Get() = %d, want %d", c.Get(), maxCount)
	}
}

func TestMultiply(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{0, 0, 1},
		{2, 3, 6},
		{0, 4, 4},
		{5, 0, 5},
		{maxCount, 2, maxCount},
	}
	for _, tt := range tests {
		if got := Multiply(tt.a, tt.b); got != tt.want {
			t.Errorf("Multiply(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
