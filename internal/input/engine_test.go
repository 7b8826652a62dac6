package input

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
	"github.com/dshills/modalkeys/internal/input/resolver"
	"github.com/dshills/modalkeys/internal/input/surface"
)

type recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recorder) of(kind NotificationKind) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.items {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func (r *recorder) last(kind NotificationKind) (Notification, bool) {
	all := r.of(kind)
	if len(all) == 0 {
		return Notification{}, false
	}
	return all[len(all)-1], true
}

// newTestEngine creates an engine with one buffer "b" backed by a text
// area. Timers are off unless opts asks for them.
func newTestEngine(t *testing.T, text string, opts Options) (*Engine, *surface.TextArea, *recorder) {
	t.Helper()
	area := surface.NewTextArea(text)
	surfaces := surface.NewMap()
	surfaces.Set("b", area)

	rec := &recorder{}
	opts.Surfaces = surfaces
	opts.Notifier = rec
	if opts.MappingTimeout == 0 {
		opts.MappingTimeout = -1
	}
	e, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Close)
	return e, area, rec
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestEngineEdits(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		caret     int
		keys      string
		wantText  string
		wantCaret int
		wantMode  mode.ID
	}{
		{"w", "Hello world", 0, "w", "Hello world", 6, mode.Normal},
		{"w four times", "foo(bar: true)", 0, "wwww", "foo(bar: true)", 9, mode.Normal},
		{"dl", "Hello world", 0, "dl", "ello world", 0, mode.Normal},
		{"dl repeat", "Hello world", 0, "dl.", "llo world", 0, mode.Normal},
		{"diw", "foo(bar: true)", 4, "diw", "foo(: true)", 4, mode.Normal},
		{"dw", "Hello world", 0, "dw", "world", 0, mode.Normal},
		{"d2w", "one two three", 0, "d2w", "three", 0, mode.Normal},
		{"2dw", "one two three", 0, "2dw", "three", 0, mode.Normal},
		{"dd", "a\nb\nc", 0, "dd", "b\nc", 0, mode.Normal},
		{"2dd", "a\nb\nc", 0, "2dd", "c", 0, mode.Normal},
		{"x", "abc", 0, "x", "bc", 0, mode.Normal},
		{"3x", "abc", 0, "3x", "", 0, mode.Normal},
		{"r", "abc", 1, "rz", "azc", 1, mode.Normal},
		{"r esc cancels", "abc", 1, "r<Esc>", "abc", 1, mode.Normal},
		{"cw", "hello", 0, "cwbye<Esc>", "bye", 2, mode.Normal},
		{"cw stays in insert", "hello", 0, "cwb", "b", 1, mode.Insert},
		{"visual delete", "hello world", 0, "vlld", "lo world", 0, mode.Normal},
		{"visual x", "hello world", 0, "vlx", "llo world", 0, mode.Normal},
		{"A", "hello", 0, "A!<Esc>", "hello!", 5, mode.Normal},
		{"a", "hello", 0, "a-<Esc>", "h-ello", 1, mode.Normal},
		{"i esc", "ab", 1, "i<Esc>", "ab", 0, mode.Normal},
		{"undo", "hello", 0, "xu", "hello", 0, mode.Normal},
		{"redo", "hello", 0, "xu<C-r>", "ello", 0, mode.Normal},
		{"G", "a\nb\nc", 0, "G", "a\nb\nc", 4, mode.Normal},
		{"unknown motion aborts", "abc", 0, "dz", "abc", 0, mode.Normal},
		{"esc aborts operator", "abc", 0, "d<Esc>x", "bc", 0, mode.Normal},
		{"o", "ab", 0, "oc<Esc>", "ab\nc", 3, mode.Normal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, area, _ := newTestEngine(t, tt.text, Options{})
			area.SetCaret(tt.caret)

			e.Feed("b", tt.keys)

			if got := area.String(); got != tt.wantText {
				t.Errorf("text = %q, want %q", got, tt.wantText)
			}
			if got := area.Caret(); got != tt.wantCaret {
				t.Errorf("caret = %d, want %d", got, tt.wantCaret)
			}
			if got := e.Mode("b"); got != tt.wantMode {
				t.Errorf("mode = %q, want %q", got, tt.wantMode)
			}
		})
	}
}

func TestEngineWordMotionSequence(t *testing.T) {
	e, area, _ := newTestEngine(t, "foo(bar: true)", Options{})
	var got []int
	for range 4 {
		e.Feed("b", "w")
		got = append(got, area.Caret())
	}
	want := []int{3, 4, 7, 9}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("carets = %v, want %v", got, want)
		}
	}
}

func TestEngineRepeatChange(t *testing.T) {
	e, area, _ := newTestEngine(t, "foo bar", Options{})
	e.Feed("b", "cwx<Esc>w.")
	if got := area.String(); got != "x x" {
		t.Errorf("text = %q, want %q", got, "x x")
	}
	if rec, ok := e.Operators().Last(); !ok || rec.Inserted != "x" {
		t.Errorf("repeat record = %+v", rec)
	}
}

func TestEngineInsertReplay(t *testing.T) {
	e, area, _ := newTestEngine(t, "", Options{})
	if _, err := e.SetKeymap(mode.Insert, "jj", keymap.Excmd("mode_change normal"), keymap.SetOptions{}); err != nil {
		t.Fatal(err)
	}

	e.Feed("b", "ij")
	if got := area.String(); got != "" {
		t.Fatalf("withheld j was typed: %q", got)
	}
	if got := e.PendingKeys("b"); !got.Equal(key.Sequence{"j"}) {
		t.Errorf("PendingKeys = %v", got)
	}

	e.Feed("b", "a")
	if got := area.String(); got != "ja" {
		t.Errorf("text = %q, want %q", got, "ja")
	}

	e.Feed("b", "jj")
	if e.Mode("b") != mode.Normal {
		t.Errorf("jj did not leave insert mode")
	}
	if got := area.String(); got != "ja" {
		t.Errorf("jj typed text: %q", got)
	}
}

func TestEngineTimeoutReplay(t *testing.T) {
	e, area, rec := newTestEngine(t, "", Options{MappingTimeout: 20 * time.Millisecond})
	if _, err := e.SetKeymap(mode.Insert, "jj", keymap.Excmd("mode_change normal"), keymap.SetOptions{}); err != nil {
		t.Fatal(err)
	}

	e.Feed("b", "ij")
	waitFor(t, "replayed j", func() bool { return area.String() == "j" })

	if e.Mode("b") != mode.Insert {
		t.Errorf("mode = %s, want insert", e.Mode("b"))
	}
	if len(e.PendingKeys("b")) != 0 {
		t.Errorf("keys still pending after timeout")
	}
	if e.Metrics().Snapshot().SequenceTimeouts != 1 {
		t.Errorf("timeout not counted")
	}
	waitFor(t, "key state", func() bool {
		n, ok := rec.last(KeyStateChanged)
		return ok && !n.Partial && len(n.Keys) == 0
	})
}

func TestEngineLongerMatchWins(t *testing.T) {
	e, _, _ := newTestEngine(t, "", Options{SkipDefaults: true})

	var mu sync.Mutex
	var ran []string
	record := func(name string) keymap.Action {
		return keymap.Func(name, func(context.Context, keymap.Invocation) error {
			mu.Lock()
			defer mu.Unlock()
			ran = append(ran, name)
			return nil
		})
	}
	for _, lhs := range []string{"g", "gg"} {
		if _, err := e.SetKeymap(mode.Normal, lhs, record(lhs), keymap.SetOptions{}); err != nil {
			t.Fatal(err)
		}
	}

	e.Feed("b", "gg")
	e.Wait()
	mu.Lock()
	if len(ran) != 1 || ran[0] != "gg" {
		t.Errorf("ran = %v, want [gg]", ran)
	}
	ran = nil
	mu.Unlock()

	// g followed by a key that extends nothing runs g.
	results := e.Feed("b", "gq")
	e.Wait()
	mu.Lock()
	defer mu.Unlock()
	if len(ran) != 1 || ran[0] != "g" {
		t.Errorf("ran = %v, want [g]", ran)
	}
	if last := results[1]; last.Kind != resolver.NoMatch || last.Consumed {
		t.Errorf("q = %+v", last)
	}
}

func TestEngineFlushedMappingChangesMode(t *testing.T) {
	e, area, _ := newTestEngine(t, "abc", Options{})
	// g is ambiguous with the default gg.
	if _, err := e.SetKeymap(mode.Normal, "g", keymap.Excmd("mode_change insert"), keymap.SetOptions{}); err != nil {
		t.Fatal(err)
	}

	results := e.Feed("b", "gx")
	if e.Mode("b") != mode.Insert {
		t.Fatalf("mode = %s, want insert", e.Mode("b"))
	}
	if got := area.String(); got != "xabc" {
		t.Errorf("text = %q, want x typed in insert mode", got)
	}
	last := results[1]
	if last.Mode != mode.Insert || !last.Consumed || last.Flushed == nil || last.Flushed.LHS != "g" {
		t.Errorf("x = %+v", last)
	}
}

func TestEngineFlushedMappingStartsSequenceInNewMode(t *testing.T) {
	e, area, _ := newTestEngine(t, "abc", Options{})
	maps := []struct {
		m      mode.ID
		lhs    string
		action string
	}{
		{mode.Normal, "g", "mode_change insert"},
		{mode.Normal, "jz", "edit x"},
		{mode.Insert, "jk", "mode_change normal"},
	}
	for _, mp := range maps {
		if _, err := e.SetKeymap(mp.m, mp.lhs, keymap.Excmd(mp.action), keymap.SetOptions{}); err != nil {
			t.Fatal(err)
		}
	}

	e.Feed("b", "gj")
	if e.Mode("b") != mode.Insert {
		t.Fatalf("mode = %s, want insert", e.Mode("b"))
	}
	if got := e.PendingKeys("b"); !got.Equal(key.Sequence{"j"}) {
		t.Fatalf("PendingKeys = %v, want j withheld in insert mode", got)
	}

	e.Feed("b", "k")
	if e.Mode("b") != mode.Normal {
		t.Errorf("jk did not fire: mode = %s", e.Mode("b"))
	}
	if got := area.String(); got != "abc" {
		t.Errorf("text = %q", got)
	}
}

func TestEngineMappedDigit(t *testing.T) {
	e, _, _ := newTestEngine(t, "abc", Options{})
	if _, err := e.SetKeymap(mode.Normal, "2", keymap.Excmd("mode_change insert"), keymap.SetOptions{}); err != nil {
		t.Fatal(err)
	}

	r := e.Feed("b", "2")[0]
	if r.Kind != resolver.FullMatch || !r.Consumed {
		t.Errorf("2 = %+v", r)
	}
	if e.Mode("b") != mode.Insert {
		t.Fatalf("mode = %s, want insert", e.Mode("b"))
	}

	// Inside a count the digit is still part of it.
	e.Feed("b", "<Esc>1")
	r = e.Feed("b", "2")[0]
	if r.Kind == resolver.FullMatch || !r.Consumed {
		t.Errorf("2 after 1 = %+v", r)
	}
	if e.Mode("b") != mode.Normal {
		t.Errorf("mode = %s, want normal", e.Mode("b"))
	}
}

func TestEngineBufferShadowing(t *testing.T) {
	e, area, _ := newTestEngine(t, "abc", Options{})
	if err := e.DelKeymap(mode.Normal, "x", keymap.DelOptions{BufferID: "b"}); err != nil {
		t.Fatal(err)
	}

	r := e.Feed("b", "x")[0]
	if r.Kind != resolver.NoMatch || r.Consumed {
		t.Errorf("x in b = %+v", r)
	}
	if area.String() != "abc" {
		t.Errorf("x edited the buffer that deleted it")
	}

	id, err := e.OpenBuffer("")
	if err != nil {
		t.Fatal(err)
	}
	if r := e.Feed(id, "x")[0]; r.Kind != resolver.FullMatch {
		t.Errorf("x in new buffer = %+v", r)
	}
}

func TestEngineNotifications(t *testing.T) {
	e, _, rec := newTestEngine(t, "abc", Options{})

	e.Feed("b", "i")
	changes := rec.of(ModeChanged)
	if len(changes) != 2 {
		t.Fatalf("mode changes = %+v", changes)
	}
	if changes[0].Previous != "" || changes[0].Mode != mode.Normal {
		t.Errorf("first change = %+v", changes[0])
	}
	if changes[1].Previous != mode.Normal || changes[1].Mode != mode.Insert {
		t.Errorf("second change = %+v", changes[1])
	}

	e.Feed("b", "<Esc>d")
	n, _ := rec.last(KeyStateChanged)
	if n.Partial || !n.Keys.Equal(key.Sequence{"d"}) {
		t.Errorf("retained display = %+v", n)
	}

	e.Feed("b", "<Esc>g")
	n, _ = rec.last(KeyStateChanged)
	if !n.Partial || !n.Keys.Equal(key.Sequence{"g"}) {
		t.Errorf("partial display = %+v", n)
	}

	e.Feed("b", "<Esc>2")
	n, _ = rec.last(KeyStateChanged)
	if !n.Partial || !n.Keys.Equal(key.Sequence{"2"}) {
		t.Errorf("count display = %+v", n)
	}

	e.Feed("b", "l")
	n, _ = rec.last(KeyStateChanged)
	if n.Partial || len(n.Keys) != 0 {
		t.Errorf("display after motion = %+v", n)
	}
}

func TestEngineKeysReplayedInNormalMode(t *testing.T) {
	e, _, rec := newTestEngine(t, "abc", Options{})

	e.Feed("b", "gq")
	n, ok := rec.last(KeysReplayed)
	if !ok || !n.Keys.Equal(key.Sequence{"g"}) {
		t.Errorf("replayed = %+v, %v", n, ok)
	}
}

func TestEngineActionErrors(t *testing.T) {
	e, _, rec := newTestEngine(t, "abc", Options{})
	if _, err := e.SetKeymap(mode.Normal, "Q", keymap.Excmd("tabclose"), keymap.SetOptions{}); err != nil {
		t.Fatal(err)
	}
	boom := keymap.Func("boom", func(context.Context, keymap.Invocation) error { panic("boom") })
	if _, err := e.SetKeymap(mode.Normal, "<C-b>", boom, keymap.SetOptions{}); err != nil {
		t.Fatal(err)
	}

	e.Feed("b", "Q<C-b>")
	e.Wait()

	failures := rec.of(ActionFailed)
	if len(failures) != 2 {
		t.Fatalf("failures = %+v", failures)
	}
	var unknown, panicked bool
	for _, f := range failures {
		switch {
		case errors.Is(f.Err, ErrUnknownCommand):
			unknown = f.Err.Sequence.Equal(key.Sequence{"Q"}) && f.Err.Mode == mode.Normal
		case errors.Is(f.Err, ErrActionPanic):
			panicked = f.Err.Sequence.Equal(key.Sequence{"<C-b>"})
		}
	}
	if !unknown || !panicked {
		t.Errorf("failures = %+v", failures)
	}
	if e.Mode("b") != mode.Normal || len(e.PendingKeys("b")) != 0 {
		t.Errorf("engine state disturbed by failing actions")
	}
	if got := e.Metrics().ActionErrors(); got != 2 {
		t.Errorf("ActionErrors = %d", got)
	}
}

func TestEngineBuiltinErrorsAreReported(t *testing.T) {
	e, _, rec := newTestEngine(t, "abc", Options{})
	if _, err := e.SetKeymap(mode.Normal, "Q", keymap.Excmd("mode_change nowhere"), keymap.SetOptions{}); err != nil {
		t.Fatal(err)
	}
	e.Feed("b", "Q")
	n, ok := rec.last(ActionFailed)
	if !ok || !errors.Is(n.Err, mode.ErrUnknownMode) {
		t.Errorf("failure = %+v, %v", n, ok)
	}
}

func TestEngineExecutor(t *testing.T) {
	got := make(chan ActionContext, 1)
	exec := ExecutorFunc(func(_ context.Context, a keymap.Action, ac ActionContext) error {
		got <- ac
		return nil
	})
	e, _, _ := newTestEngine(t, "", Options{Executor: exec})
	if _, err := e.SetKeymap(mode.Normal, "<C-t>", keymap.Excmd("tabopen https://example.com"), keymap.SetOptions{}); err != nil {
		t.Fatal(err)
	}

	e.Feed("b", "3<C-t>")
	e.Wait()

	select {
	case ac := <-got:
		if ac.Count != 3 || ac.BufferID != "b" || ac.Mode != mode.Normal {
			t.Errorf("context = %+v", ac)
		}
		if len(ac.Args) != 1 || ac.Args[0] != "https://example.com" {
			t.Errorf("args = %v", ac.Args)
		}
		if !ac.Sequence.Equal(key.Sequence{"<C-t>"}) {
			t.Errorf("sequence = %v", ac.Sequence)
		}
	default:
		t.Fatal("executor not called")
	}
}

func TestEngineCapture(t *testing.T) {
	e, area, _ := newTestEngine(t, "abc", Options{})

	ch := e.CaptureKey("b", false)
	e.Feed("b", "x")
	if n := <-ch; n != "x" {
		t.Errorf("captured %q", n)
	}
	if area.String() != "abc" {
		t.Errorf("captured key reached the mappings")
	}

	ch = e.CaptureKey("b", true)
	e.Feed("b", "x")
	if n := <-ch; n != "x" {
		t.Errorf("observed %q", n)
	}
	if area.String() != "bc" {
		t.Errorf("passthrough key was consumed: %q", area.String())
	}
}

func TestEngineNextKey(t *testing.T) {
	e, _, _ := newTestEngine(t, "abc", Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.NextKey(ctx, "b"); !errors.Is(err, context.Canceled) {
		t.Errorf("NextKey(cancelled) = %v", err)
	}

	done := make(chan key.Notation)
	go func() {
		n, _ := e.NextKeyPassthrough(context.Background(), "b")
		done <- n
	}()
	waitFor(t, "capture", func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return len(e.buffers["b"].captures) == 1
	})
	e.Feed("b", "<C-x>")
	if n := <-done; n != "<C-x>" {
		t.Errorf("NextKeyPassthrough = %q", n)
	}
}

func TestEngineCloseBuffer(t *testing.T) {
	e, _, _ := newTestEngine(t, "abc", Options{})
	if _, err := e.SetKeymap(mode.Normal, "Q", keymap.Excmd("mode_change insert"), keymap.SetOptions{BufferID: "b"}); err != nil {
		t.Fatal(err)
	}
	e.Feed("b", "g")
	ch := e.CaptureKey("b", false)

	e.CloseBuffer("b")

	if _, ok := <-ch; ok {
		t.Error("capture not closed")
	}
	if e.Mode("b") != "" || len(e.PendingKeys("b")) != 0 || e.Store().HasBuffer("b") {
		t.Error("buffer state survived CloseBuffer")
	}
	if len(e.Buffers()) != 0 {
		t.Errorf("Buffers = %v", e.Buffers())
	}
}

func TestEngineCloseBufferCancelsTimer(t *testing.T) {
	e, area, rec := newTestEngine(t, "", Options{MappingTimeout: 20 * time.Millisecond})
	if _, err := e.SetKeymap(mode.Insert, "jj", keymap.Excmd("mode_change normal"), keymap.SetOptions{}); err != nil {
		t.Fatal(err)
	}

	e.Feed("b", "ij")
	if got := e.PendingKeys("b"); !got.Equal(key.Sequence{"j"}) {
		t.Fatalf("PendingKeys = %v", got)
	}
	before := len(rec.of(KeyStateChanged))
	e.CloseBuffer("b")

	time.Sleep(100 * time.Millisecond)
	if got := area.String(); got != "" {
		t.Errorf("withheld key was typed after close: %q", got)
	}
	if after := len(rec.of(KeyStateChanged)); after != before {
		t.Errorf("key state changed %d times after close", after-before)
	}
	if e.Metrics().Snapshot().SequenceTimeouts != 0 {
		t.Error("timer expired for a closed buffer")
	}
}

func TestEngineNextKeyDeliveredBeforeCancel(t *testing.T) {
	e, _, _ := newTestEngine(t, "abc", Options{})

	ctx, cancel := context.WithCancel(context.Background())
	type got struct {
		n   key.Notation
		err error
	}
	done := make(chan got, 1)
	go func() {
		n, err := e.NextKey(ctx, "b")
		done <- got{n, err}
	}()
	waitFor(t, "capture", func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return len(e.buffers["b"].captures) == 1
	})

	e.Feed("b", "x")
	cancel()
	r := <-done
	if r.err != nil || r.n != "x" {
		t.Errorf("NextKey = %q, %v; the consumed key must be returned", r.n, r.err)
	}
}

func TestEngineOpenBuffer(t *testing.T) {
	e, _, _ := newTestEngine(t, "", Options{})

	id, err := e.OpenBuffer("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("generated id %q: %v", id, err)
	}
	if _, err := e.OpenBuffer(id); !errors.Is(err, ErrBufferOpen) {
		t.Errorf("reopen = %v", err)
	}
	if e.Mode(id) != mode.Normal {
		t.Errorf("initial mode = %q", e.Mode(id))
	}
}

func TestEngineSwitchMode(t *testing.T) {
	e, area, _ := newTestEngine(t, "abc", Options{})
	e.Feed("b", "g")

	if err := e.SwitchMode("b", mode.Visual); err != nil {
		t.Fatal(err)
	}
	if len(e.PendingKeys("b")) != 0 {
		t.Error("SwitchMode kept pending keys")
	}
	if _, ok := area.Selection(); !ok {
		t.Error("visual mode has no selection")
	}
	if err := e.SwitchMode("b", "nowhere"); !errors.Is(err, mode.ErrUnknownMode) {
		t.Errorf("SwitchMode(nowhere) = %v", err)
	}
	if err := e.SwitchMode("b", mode.Normal); err != nil {
		t.Fatal(err)
	}
	if _, ok := area.Selection(); ok {
		t.Error("selection survived leaving visual mode")
	}
}

func TestEngineRegisterMode(t *testing.T) {
	e, _, _ := newTestEngine(t, "", Options{})
	if _, err := e.RegisterMode(mode.Normal, mode.Options{}); !errors.Is(err, mode.ErrModeExists) {
		t.Errorf("re-registering normal = %v", err)
	}
	if _, err := e.RegisterMode("browse", mode.Options{}); err != nil {
		t.Fatal(err)
	}
	if err := e.SwitchMode("b", "browse"); err != nil {
		t.Errorf("switch to registered mode: %v", err)
	}
}

func TestEngineReloadKeymaps(t *testing.T) {
	e, _, _ := newTestEngine(t, "abc", Options{})
	if _, err := e.SetKeymap(mode.Normal, "Z", keymap.Excmd("mode_change insert"), keymap.SetOptions{}); err != nil {
		t.Fatal(err)
	}

	f := &keymap.File{Keymaps: []keymap.FileEntry{{Mode: "normal", LHS: "Q", Action: "mode_change insert"}}}
	if err := e.ReloadKeymaps(f); err != nil {
		t.Fatal(err)
	}

	if r := e.Feed("b", "Z")[0]; r.Kind != resolver.NoMatch {
		t.Errorf("Z survived reload: %+v", r)
	}
	e.Feed("b", "Q")
	if e.Mode("b") != mode.Insert {
		t.Errorf("Q from file not active")
	}
	e.Feed("b", "<Esc>x")
	if e.Mode("b") != mode.Normal {
		t.Errorf("defaults not reloaded")
	}
}

func TestEngineHooks(t *testing.T) {
	e, area, _ := newTestEngine(t, "abc", Options{})
	var post []Result
	e.Hooks().Register(FuncHook{
		PreKeyFunc:  func(kc KeyContext) bool { return kc.Key == "x" },
		PostKeyFunc: func(_ KeyContext, r Result) { post = append(post, r) },
	})

	e.Feed("b", "xl")
	if area.String() != "abc" {
		t.Error("hook did not consume x")
	}
	if len(post) != 1 || post[0].Key != "l" || !post[0].Consumed {
		t.Errorf("post hooks saw %+v", post)
	}
	if e.Metrics().Snapshot().HookConsumptions != 1 {
		t.Error("hook consumption not counted")
	}
}

func TestEngineUnmappedKeyPassesThrough(t *testing.T) {
	e, _, _ := newTestEngine(t, "abc", Options{})
	r := e.HandleKey("b", key.NewSpecialEvent(key.KeyF5, key.ModNone))
	if r.Consumed || r.Kind != resolver.NoMatch || r.Key != "<F5>" {
		t.Errorf("F5 = %+v", r)
	}
	if r := e.HandleKey("b", key.Event{}); r.Consumed || r.Key != "" {
		t.Errorf("empty event = %+v", r)
	}
}

func TestEngineIgnoreMode(t *testing.T) {
	e, area, _ := newTestEngine(t, "abc", Options{})
	e.Feed("b", "<S-Esc>x")
	if e.Mode("b") != mode.Ignore || area.String() != "abc" {
		t.Errorf("ignore mode: mode=%s text=%q", e.Mode("b"), area.String())
	}
	e.Feed("b", "<S-Esc>x")
	if e.Mode("b") != mode.Normal || area.String() != "bc" {
		t.Errorf("leaving ignore mode: mode=%s text=%q", e.Mode("b"), area.String())
	}
}

func TestEngineClosed(t *testing.T) {
	e, _, _ := newTestEngine(t, "abc", Options{})
	e.Close()
	e.Close()
	if _, err := e.OpenBuffer("x"); !errors.Is(err, ErrClosed) {
		t.Errorf("OpenBuffer after Close = %v", err)
	}
	if r := e.Feed("b", "x"); r[0].Consumed {
		t.Error("closed engine consumed a key")
	}
	if _, ok := <-e.CaptureKey("b", false); ok {
		t.Error("capture on closed engine delivered a key")
	}
}
