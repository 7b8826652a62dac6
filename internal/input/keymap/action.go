package keymap

import (
	"context"
	"strings"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/mode"
)

// ActionKind distinguishes the variants of Action.
type ActionKind uint8

const (
	// ActionNone is the zero Action.
	ActionNone ActionKind = iota

	// ActionExcmd is a command string executed by the engine or its Executor.
	ActionExcmd

	// ActionCallback is a host or script function.
	ActionCallback
)

// String returns the kind name.
func (k ActionKind) String() string {
	switch k {
	case ActionExcmd:
		return "excmd"
	case ActionCallback:
		return "callback"
	default:
		return "none"
	}
}

// Invocation describes the key press that triggered an action.
type Invocation struct {
	BufferID string
	Mode     mode.ID
	Sequence key.Sequence
	// Count is the numeric prefix typed before the sequence, or 0.
	Count int
}

// Callback is a function bound to a key sequence.
type Callback func(ctx context.Context, inv Invocation) error

// Action is what a mapping executes: either an excmd string or a callback.
type Action struct {
	Kind     ActionKind
	Excmd    string
	Callback Callback
	// Name labels callbacks in listings.
	Name string
}

// Excmd creates a command-string action.
func Excmd(cmd string) Action {
	return Action{Kind: ActionExcmd, Excmd: strings.TrimSpace(cmd)}
}

// Func creates a callback action. The name is used when listing.
func Func(name string, fn Callback) Action {
	return Action{Kind: ActionCallback, Callback: fn, Name: name}
}

// IsValid reports whether the action can be executed.
func (a Action) IsValid() bool {
	switch a.Kind {
	case ActionExcmd:
		return a.Excmd != ""
	case ActionCallback:
		return a.Callback != nil
	}
	return false
}

// String returns the excmd, or a label for callbacks.
func (a Action) String() string {
	switch a.Kind {
	case ActionExcmd:
		return a.Excmd
	case ActionCallback:
		if a.Name != "" {
			return "<callback " + a.Name + ">"
		}
		return "<callback>"
	}
	return ""
}

// Command splits an excmd into its name and arguments.
func (a Action) Command() (string, []string) {
	if a.Kind != ActionExcmd {
		return "", nil
	}
	fields := strings.Fields(a.Excmd)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}
