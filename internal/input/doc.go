// Package input is the modal input engine.
//
// An Engine turns host key events into mode changes, caret motions,
// surface edits and dispatched actions. Keys are canonicalized by package
// key, matched by package resolver against the mappings of package
// keymap, and interpreted in the buffer's mode from package mode. In
// operator-pending mode the operator coordinator combines the pending
// operator with a motion or text object from package vim into one edit
// of the buffer's surface.
//
// # Buffers
//
// Every key belongs to a buffer, a logical editing context such as a tab.
// A buffer has its own mode, pending keys, count and buffer-scoped
// mappings. Buffers open on first use or through OpenBuffer; CloseBuffer
// drops all of their state, including a pending timer.
//
// # Commands
//
// A few excmds are executed by the engine itself:
//
//	mode_change <mode> [--automove=left|right|endline|startline|firstnonblank]
//	motion <name>
//	operator <d|c>
//	edit <x|X|s|D|C|o|O>
//	visual_edit <d|c>
//	replace
//	repeat
//	undo
//	redo
//
// Other excmds go to the Executor and callbacks are called directly, both
// on their own goroutine. Failures are reported through the Notifier as
// ActionFailed notifications carrying an *ActionError.
//
// # Usage
//
//	area := surface.NewTextArea("Hello world")
//	surfaces := surface.NewMap()
//	surfaces.Set("tab-1", area)
//
//	e, err := input.New(input.Options{Surfaces: surfaces})
//	if err != nil {
//	    return err
//	}
//	defer e.Close()
//
//	e.Feed("tab-1", "dw")
//	fmt.Println(area.String()) // "world"
package input
