// Package surface abstracts the editable text control that has focus in a
// buffer.
//
// The engine never owns text. It reads a Surface's runes, caret and
// selection, computes an EditOperation and hands it back to Apply, which
// must perform it as one undo unit:
//
//	op := surface.EditOperation{Start: 0, End: 1, Caret: 0}
//	err := s.Apply(op)
//
// TextArea is an in-memory Surface with undo and redo history. It backs
// the terminal playground and the engine tests; real hosts implement
// Surface over their own controls and return it from a Provider.
package surface
