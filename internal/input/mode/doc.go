// Package mode provides the modal state machine of the input engine.
//
// The mode system supports vim-style modal input with these built-in modes:
//   - normal: Navigation and commands
//   - insert: Text input into the focused surface
//   - visual: Character-wise selection
//   - op-pending: Waiting for a motion or text object after an operator
//   - command: Command line input
//   - hint: Hint selection
//   - ignore: All keys pass through to the host
//
// # Architecture
//
// The Registry interns mode identifiers. Hosts and scripts may register
// further modes at runtime, but an identifier can be registered only once.
//
// The Machine tracks the current mode of every buffer independently. Each
// switch produces a Change carrying the previous and current identifiers:
//
//	┌─────────┐   Switch()   ┌─────────┐
//	│ normal  │ ───────────▶ │ insert  │
//	└─────────┘              └─────────┘
//
// Change callbacks run after the machine lock is released.
package mode
