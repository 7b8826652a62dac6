// Package operator composes pending operators with motions into edits and
// replays the last edit for ".".
//
// In normal mode "d" calls Begin and switches the buffer to operator
// pending. The next mapped motion or text object calls Complete, which
// asks the vim evaluator for the span, applies one surface.EditOperation
// and records a RepeatRecord. Repeat re-plans that record at the current
// caret, so "." acts relative to where the caret is now rather than where
// the original edit happened.
//
// Single-key edits (x X s D C o O), r and visual-mode operators are
// recorded the same way.
package operator
