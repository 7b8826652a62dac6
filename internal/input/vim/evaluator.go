package vim

// Options configures word segmentation.
type Options struct {
	// CaseBoundaries makes w, b, e and iw stop where a lower-case letter is
	// followed by an upper-case one ("fooBar" is two words).
	CaseBoundaries bool
}

// DefaultOptions returns the default evaluator options.
func DefaultOptions() Options {
	return Options{CaseBoundaries: true}
}

// Evaluator resolves motion and text-object names against text. All
// functions are pure: they read the text and caret and return offsets.
// Offsets are rune indices.
type Evaluator struct {
	opts Options
}

// New creates an evaluator.
func New(opts Options) *Evaluator {
	return &Evaluator{opts: opts}
}

// Options returns the evaluator options.
func (e *Evaluator) Options() Options {
	return e.opts
}

// Range is a span of text an operator acts on.
type Range struct {
	// Start and End delimit the span [Start, End).
	Start, End int

	// Linewise marks ranges covering whole lines (dd, dj).
	Linewise bool
}

// IsEmpty returns true if the range covers no characters.
func (r Range) IsEmpty() bool {
	return r.End <= r.Start
}

// Len returns the number of characters in the range.
func (r Range) Len() int {
	return max(0, r.End-r.Start)
}

// IsMotion reports whether name is a known motion.
func IsMotion(name string) bool {
	_, ok := motions[name]
	return ok
}

// IsTextObject reports whether name is a known text object.
func IsTextObject(name string) bool {
	_, ok := textObjects[name]
	return ok
}

// Names returns every motion and text-object name.
func Names() []string {
	names := make([]string, 0, len(motions)+len(textObjects))
	for n := range motions {
		names = append(names, n)
	}
	for n := range textObjects {
		names = append(names, n)
	}
	return names
}
