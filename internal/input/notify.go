package input

import (
	"context"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/mode"
)

// NotificationKind names a notification.
type NotificationKind string

// Notification kinds.
const (
	// ModeChanged is sent after every mode transition.
	ModeChanged NotificationKind = "mode_changed"

	// KeyStateChanged is sent after every key with the keys the host should
	// display: withheld keys while Partial, otherwise retained keys or none.
	KeyStateChanged NotificationKind = "key_state_changed"

	// KeysReplayed carries withheld keys released as input that the engine
	// could not insert itself. The host should handle them as unmapped keys.
	KeysReplayed NotificationKind = "keys_replayed"

	// ActionFailed carries an *ActionError.
	ActionFailed NotificationKind = "action_error"
)

// Notification is an event delivered to the host.
type Notification struct {
	Kind     NotificationKind
	BufferID string

	// Previous and Mode are set for ModeChanged; Previous is empty for a
	// buffer's first transition. Other kinds carry the current mode.
	Previous mode.ID
	Mode     mode.ID

	Keys    key.Sequence
	Partial bool

	Err *ActionError
}

// Notifier receives engine notifications. Notify is called without any
// engine lock held and may call back into the engine.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}
