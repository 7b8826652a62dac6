package vim

import (
	"math"

	"github.com/dshills/modalkeys/internal/input/key"
)

// maxCount caps an accumulated count.
const maxCount = math.MaxInt32

// Count accumulates a numeric prefix typed before a command, as in "3dw".
// The zero value holds no count.
type Count struct {
	value  int
	active bool
}

// Feed offers a key to the count. It returns true when the key was a
// digit the count consumed. A leading 0 is not a count; it is the motion
// to the start of the line.
func (c *Count) Feed(n key.Notation) bool {
	if len(n) != 1 || n[0] < '0' || n[0] > '9' {
		return false
	}
	digit := int(n[0] - '0')
	if !c.active && digit == 0 {
		return false
	}
	c.active = true
	if c.value > (maxCount-digit)/10 {
		c.value = maxCount
		return true
	}
	c.value = c.value*10 + digit
	return true
}

// Active reports whether any digit has been consumed.
func (c *Count) Active() bool {
	return c.active
}

// Value returns the raw count, 0 when none was typed.
func (c *Count) Value() int {
	return c.value
}

// Get returns the effective count (1 if no count was typed).
func (c *Count) Get() int {
	if c.value <= 0 {
		return 1
	}
	return c.value
}

// Reset clears the count.
func (c *Count) Reset() {
	c.value = 0
	c.active = false
}

// Multiply combines the counts typed before an operator and before its
// motion: 2d3w deletes six words. Zero means one.
func Multiply(a, b int) int {
	a, b = max(a, 1), max(b, 1)
	if a > maxCount/b {
		return maxCount
	}
	return a * b
}
