// Package host is a terminal playground for the input engine: a single
// text area edited through the engine, drawn with tcell.
//
// The playground is the engine's Executor for host commands (quit, write,
// echo) and its Notifier. Keys the engine does not consume get default
// handling: arrows move the caret everywhere, and Backspace and Delete
// edit in literal-input modes.
package host
