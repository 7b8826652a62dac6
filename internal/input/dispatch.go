package input

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
)

// Span and attribute names used for action dispatch.
const (
	SpanDispatch = "input.dispatch"

	AttrBuffer   = "modalkeys.buffer"
	AttrMode     = "modalkeys.mode"
	AttrSequence = "modalkeys.sequence"
	AttrAction   = "modalkeys.action"
	AttrKind     = "modalkeys.action_kind"
)

// ActionContext is passed to the executor with every dispatched action.
type ActionContext struct {
	BufferID string
	Mode     mode.ID
	Sequence key.Sequence

	// Count is the numeric prefix typed before the sequence, or 0.
	Count int

	// Args are the excmd arguments after the command name.
	Args []string
}

// Executor runs excmds the engine does not implement itself.
type Executor interface {
	Execute(ctx context.Context, action keymap.Action, ac ActionContext) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, action keymap.Action, ac ActionContext) error

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, action keymap.Action, ac ActionContext) error {
	return f(ctx, action, ac)
}

// dispatch runs an external action on its own goroutine. The engine does
// not wait for it; failures and panics come back as ActionFailed
// notifications.
func (e *Engine) dispatch(a keymap.Action, ac ActionContext) {
	if e.hooks.RunPreAction(a, ac) {
		e.metrics.RecordHookConsumption()
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		start := time.Now()
		err := e.execute(e.ctx, a, ac)
		e.metrics.RecordAction(time.Since(start), err != nil)
		if err == nil {
			return
		}

		aerr := &ActionError{
			BufferID: ac.BufferID,
			Mode:     ac.Mode,
			Sequence: ac.Sequence,
			Action:   a.String(),
			Err:      err,
		}
		e.log.Error("%v", aerr)
		e.notify(Notification{Kind: ActionFailed, BufferID: ac.BufferID, Mode: ac.Mode, Err: aerr})
	}()
}

// execute runs one action inside a span, converting panics to errors.
func (e *Engine) execute(ctx context.Context, a keymap.Action, ac ActionContext) (err error) {
	ctx, span := e.tracer.Start(ctx, SpanDispatch,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(AttrBuffer, ac.BufferID),
			attribute.String(AttrMode, string(ac.Mode)),
			attribute.String(AttrSequence, ac.Sequence.String()),
			attribute.String(AttrAction, a.String()),
			attribute.String(AttrKind, a.Kind.String()),
		),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrActionPanic, r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}()

	switch a.Kind {
	case keymap.ActionCallback:
		return a.Callback(ctx, keymap.Invocation{
			BufferID: ac.BufferID,
			Mode:     ac.Mode,
			Sequence: ac.Sequence,
			Count:    ac.Count,
		})
	case keymap.ActionExcmd:
		if e.executor == nil {
			name, _ := a.Command()
			return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
		}
		return e.executor.Execute(ctx, a, ac)
	}
	return fmt.Errorf("%w: empty action", ErrUnknownCommand)
}

// Wait blocks until every dispatched action has returned.
func (e *Engine) Wait() {
	e.wg.Wait()
}
