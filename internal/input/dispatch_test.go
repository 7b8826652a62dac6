package input

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
)

func newTracedEngine(t *testing.T, exec Executor) (*Engine, *tracetest.SpanRecorder, *recorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	e, _, rec := newTestEngine(t, "", Options{Executor: exec, Tracer: tp.Tracer("test")})
	return e, sr, rec
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]string {
	out := make(map[attribute.Key]string)
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value.Emit()
	}
	return out
}

func TestDispatch_CallbackReceivesInvocation(t *testing.T) {
	e, sr, _ := newTracedEngine(t, nil)

	got := make(chan keymap.Invocation, 1)
	cb := keymap.Func("scroll", func(_ context.Context, inv keymap.Invocation) error {
		got <- inv
		return nil
	})
	_, err := e.SetKeymap(mode.Normal, "<C-e>", cb, keymap.SetOptions{})
	require.NoError(t, err)

	e.Feed("b", "4<C-e>")
	e.Wait()

	inv := <-got
	assert.Equal(t, "b", inv.BufferID)
	assert.Equal(t, mode.Normal, inv.Mode)
	assert.Equal(t, key.Sequence{"<C-e>"}, inv.Sequence)
	assert.Equal(t, 4, inv.Count)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, SpanDispatch, spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	attrs := spanAttrs(spans[0])
	assert.Equal(t, "b", attrs[AttrBuffer])
	assert.Equal(t, "normal", attrs[AttrMode])
	assert.Equal(t, "<C-e>", attrs[AttrSequence])
	assert.Equal(t, "callback", attrs[AttrKind])
}

func TestDispatch_ExecutorErrorIsReported(t *testing.T) {
	errTab := errors.New("no such tab")
	exec := ExecutorFunc(func(context.Context, keymap.Action, ActionContext) error {
		return errTab
	})
	e, sr, rec := newTracedEngine(t, exec)

	_, err := e.SetKeymap(mode.Normal, "Q", keymap.Excmd("tabclose 3"), keymap.SetOptions{})
	require.NoError(t, err)

	e.Feed("b", "Q")
	e.Wait()

	failures := rec.of(ActionFailed)
	require.Len(t, failures, 1)
	aerr := failures[0].Err
	require.NotNil(t, aerr)
	assert.ErrorIs(t, aerr, errTab)
	assert.Equal(t, "b", aerr.BufferID)
	assert.Equal(t, "tabclose 3", aerr.Action)
	assert.Contains(t, aerr.Error(), "no such tab")

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "tabclose 3", spanAttrs(spans[0])[AttrAction])
	require.NotEmpty(t, spans[0].Events(), "error should be recorded on the span")
}

func TestDispatch_PanicIsRecovered(t *testing.T) {
	e, sr, rec := newTracedEngine(t, nil)

	cb := keymap.Func("explode", func(context.Context, keymap.Invocation) error {
		panic("kaboom")
	})
	_, err := e.SetKeymap(mode.Normal, "<C-k>", cb, keymap.SetOptions{})
	require.NoError(t, err)

	e.Feed("b", "<C-k>")
	e.Wait()

	n, ok := rec.last(ActionFailed)
	require.True(t, ok)
	assert.ErrorIs(t, n.Err, ErrActionPanic)
	assert.Contains(t, n.Err.Error(), "kaboom")

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	// The engine keeps working after a panicking action.
	e.Feed("b", "i")
	assert.Equal(t, mode.Insert, e.Mode("b"))
}

func TestDispatch_BuiltinsAreNotTraced(t *testing.T) {
	e, sr, _ := newTracedEngine(t, nil)

	e.Feed("b", "i<Esc>")
	e.Wait()

	assert.Empty(t, sr.Ended())
}

func TestDispatch_PreActionHookConsumes(t *testing.T) {
	called := false
	exec := ExecutorFunc(func(context.Context, keymap.Action, ActionContext) error {
		called = true
		return nil
	})
	e, sr, _ := newTracedEngine(t, exec)

	var seen []string
	e.Hooks().Register(FilterHook{
		ActionFilter: func(a keymap.Action, ac ActionContext) bool {
			seen = append(seen, a.String())
			return a.Excmd == "quit"
		},
	})
	_, err := e.SetKeymap(mode.Normal, "ZQ", keymap.Excmd("quit"), keymap.SetOptions{})
	require.NoError(t, err)

	e.Feed("b", "ZQ")
	e.Wait()

	assert.False(t, called)
	assert.Equal(t, []string{"quit"}, seen)
	assert.Empty(t, sr.Ended())
	assert.Equal(t, uint64(1), e.Metrics().Snapshot().HookConsumptions)
}

func TestDispatch_ContextCancelledOnClose(t *testing.T) {
	e, _, _ := newTracedEngine(t, nil)

	started := make(chan struct{})
	cb := keymap.Func("wait", func(ctx context.Context, _ keymap.Invocation) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	_, err := e.SetKeymap(mode.Normal, "W", cb, keymap.SetOptions{})
	require.NoError(t, err)

	e.Feed("b", "W")
	<-started
	e.Close()

	assert.Equal(t, uint64(1), e.Metrics().ActionsTotal())
	assert.Equal(t, uint64(1), e.Metrics().ActionErrors())
}

func TestActionError(t *testing.T) {
	err := &ActionError{
		BufferID: "tab-1",
		Mode:     mode.Normal,
		Sequence: key.Sequence{"g", "t"},
		Action:   "tabnext",
		Err:      ErrUnknownCommand,
	}
	assert.Equal(t, "tabnext (gt in normal mode): unknown command", err.Error())
	assert.True(t, errors.Is(err, ErrUnknownCommand))
}
