package input

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
	"github.com/dshills/modalkeys/internal/input/operator"
	"github.com/dshills/modalkeys/internal/input/resolver"
	"github.com/dshills/modalkeys/internal/input/surface"
	"github.com/dshills/modalkeys/internal/input/vim"
	"github.com/dshills/modalkeys/internal/logging"
)

// DefaultMappingTimeout is how long withheld keys wait for the next key.
const DefaultMappingTimeout = resolver.DefaultTimeout

const tracerName = "github.com/dshills/modalkeys/internal/input"

// Options configures an Engine.
type Options struct {
	// Modes is the mode registry. Nil creates one with the built-in modes.
	Modes *mode.Registry

	// Store holds the mappings. Nil creates an empty store over Modes.
	Store *keymap.Store

	// SkipDefaults leaves the built-in mappings out of the store, here
	// and on every ReloadKeymaps.
	SkipDefaults bool

	// Executor runs excmds that are not built in.
	Executor Executor

	// Surfaces supplies the editable surface of a buffer.
	Surfaces surface.Provider

	Notifier Notifier
	Logger   *logging.Logger

	// Tracer traces action dispatch. Nil uses the global provider.
	Tracer trace.Tracer

	// MappingTimeout is the pending-key timeout. Zero uses
	// DefaultMappingTimeout; a negative value disables the timer.
	MappingTimeout time.Duration

	Layout key.LayoutOptions

	// Motions configures word segmentation. Nil uses vim.DefaultOptions.
	Motions *vim.Options

	// InitialMode is the mode new buffers start in (default normal).
	InitialMode mode.ID
}

// Result is what HandleKey did with one key.
type Result struct {
	resolver.Resolution

	BufferID string

	// Mode is the mode the key was resolved in.
	Mode mode.ID

	// Key is the canonical notation of the key.
	Key key.Notation

	// Consumed reports that the engine handled the key. Keys that were
	// not consumed should get the host's default handling.
	Consumed bool
}

// buffer is the per-buffer state the engine keeps beside the resolver,
// the mode machine and the operator coordinator.
type buffer struct {
	count     vim.Count
	countKeys key.Sequence

	// display is the retained sequence shown while nothing is pending.
	display key.Sequence

	// replace is set while "r" waits for its character.
	replace *pendingReplace

	captures []*capture
}

type pendingReplace struct {
	count int
}

type capture struct {
	ch          chan key.Notation
	passthrough bool
}

// Engine is the modal input engine. It owns the keymap store, the
// resolver, the mode machine and the operator coordinator, and
// serializes key handling, buffer lifecycle and timer expiry behind one
// mutex.
type Engine struct {
	mu sync.Mutex

	modes    *mode.Registry
	machine  *mode.Machine
	store    *keymap.Store
	resolver *resolver.Resolver
	eval     *vim.Evaluator
	ops      *operator.Coordinator

	executor Executor
	surfaces surface.Provider
	notifier Notifier
	log      *logging.Logger
	modeLog  *logging.Logger
	tracer   trace.Tracer
	hooks    *HookManager
	metrics  *Metrics

	layout       key.LayoutOptions
	initialMode  mode.ID
	skipDefaults bool

	buffers map[string]*buffer

	// outbox collects notifications raised under the lock; they are
	// delivered by unlock.
	outbox []Notification
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an engine.
func New(opts Options) (*Engine, error) {
	modes := opts.Modes
	if modes == nil {
		modes = mode.NewRegistry()
	}
	store := opts.Store
	if store == nil {
		store = keymap.NewStore(modes)
	}
	if !opts.SkipDefaults {
		if err := keymap.LoadDefaults(store); err != nil {
			return nil, fmt.Errorf("loading default keymaps: %w", err)
		}
	}

	initial := opts.InitialMode
	if initial == "" {
		initial = mode.Normal
	}
	if !modes.Has(initial) {
		return nil, fmt.Errorf("initial mode: %w: %s", mode.ErrUnknownMode, initial)
	}

	motions := vim.DefaultOptions()
	if opts.Motions != nil {
		motions = *opts.Motions
	}
	timeout := opts.MappingTimeout
	if timeout == 0 {
		timeout = DefaultMappingTimeout
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	ctx, cancel := context.WithCancel(context.Background())
	eval := vim.New(motions)
	e := &Engine{
		modes:        modes,
		machine:      mode.NewMachine(modes),
		store:        store,
		eval:         eval,
		ops:          operator.New(eval),
		executor:     opts.Executor,
		surfaces:     opts.Surfaces,
		notifier:     opts.Notifier,
		log:          opts.Logger.WithCategory(logging.CatDispatch),
		modeLog:      opts.Logger.WithCategory(logging.CatMode),
		tracer:       tracer,
		hooks:        NewHookManager(),
		metrics:      NewMetrics(),
		layout:       opts.Layout,
		initialMode:  initial,
		skipDefaults: opts.SkipDefaults,
		buffers:      make(map[string]*buffer),
		ctx:          ctx,
		cancel:       cancel,
	}
	e.resolver = resolver.New(store, modes, resolver.Options{
		Timeout:   timeout,
		OnTimeout: e.expire,
		Logger:    opts.Logger,
	})
	e.machine.OnChange(e.onModeChange)
	return e, nil
}

// unlock releases the engine mutex and then delivers the notifications
// queued while it was held.
func (e *Engine) unlock() {
	out := e.outbox
	e.outbox = nil
	e.mu.Unlock()
	for _, n := range out {
		e.notify(n)
	}
}

func (e *Engine) queue(n Notification) {
	e.outbox = append(e.outbox, n)
}

func (e *Engine) notify(n Notification) {
	if e.notifier != nil {
		e.notifier.Notify(e.ctx, n)
	}
}

// onModeChange runs inside Machine.Switch, which the engine only calls
// with its mutex held.
func (e *Engine) onModeChange(c mode.Change) {
	e.modeLog.Debug("%s: %s -> %s", c.BufferID, c.Previous, c.Current)
	e.queue(Notification{
		Kind:     ModeChanged,
		BufferID: c.BufferID,
		Previous: c.Previous,
		Mode:     c.Current,
	})
}

// Store returns the keymap store.
func (e *Engine) Store() *keymap.Store {
	return e.store
}

// Modes returns the mode registry.
func (e *Engine) Modes() *mode.Registry {
	return e.modes
}

// Hooks returns the hook manager.
func (e *Engine) Hooks() *HookManager {
	return e.hooks
}

// Metrics returns the engine metrics.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Operators returns the operator coordinator.
func (e *Engine) Operators() *operator.Coordinator {
	return e.ops
}

// SetKeymap registers a mapping.
func (e *Engine) SetKeymap(m mode.ID, lhs string, action keymap.Action, opts keymap.SetOptions) (keymap.Entry, error) {
	return e.store.Set(m, lhs, action, opts)
}

// DelKeymap removes a mapping, or masks a global one for a buffer.
func (e *Engine) DelKeymap(m mode.ID, lhs string, opts keymap.DelOptions) error {
	return e.store.Del(m, lhs, opts)
}

// ListKeymaps returns the mappings matching f.
func (e *Engine) ListKeymaps(f keymap.Filter) []keymap.Entry {
	return e.store.List(f)
}

// RegisterMode adds a runtime mode. Each identifier can be registered
// once; built-in identifiers are taken.
func (e *Engine) RegisterMode(id mode.ID, opts mode.Options) (mode.Mode, error) {
	return e.modes.Register(id, opts)
}

// Normalize returns the canonical notation of an authored key.
func (e *Engine) Normalize(s string) key.Notation {
	return key.Normalize(s)
}

// Split tokenizes an authored key sequence.
func (e *Engine) Split(s string) key.Sequence {
	return key.Split(s)
}

// SetMappingTimeout changes the pending-key timeout. Zero or negative
// disables the timer.
func (e *Engine) SetMappingTimeout(d time.Duration) {
	e.resolver.SetTimeout(d)
}

// MappingTimeout returns the pending-key timeout; zero or negative means
// the timer is disabled.
func (e *Engine) MappingTimeout() time.Duration {
	return e.resolver.Timeout()
}

// Layout returns the physical layout options.
func (e *Engine) Layout() key.LayoutOptions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layout
}

// SetLayout changes physical layout translation for HandleKey.
func (e *Engine) SetLayout(opts key.LayoutOptions) {
	e.mu.Lock()
	defer e.unlock()
	e.layout = opts
}

// SetLeader changes the key <leader> stands for.
func (e *Engine) SetLeader(spec string) error {
	return e.store.SetLeader(spec)
}

// ReloadKeymaps replaces every mapping, global and buffer-scoped, with
// the defaults plus the given files. Pending keys are discarded. Every
// file is applied; the error joins all failures.
func (e *Engine) ReloadKeymaps(files ...*keymap.File) error {
	e.mu.Lock()
	defer e.unlock()

	e.store.Reset()
	for id := range e.buffers {
		e.resolver.Reset(id)
	}

	var errs []error
	if !e.skipDefaults {
		errs = append(errs, keymap.LoadDefaults(e.store))
	}
	for _, f := range files {
		errs = append(errs, f.Apply(e.store))
	}
	e.log.Info("reloaded keymaps from %d files", len(files))
	return errors.Join(errs...)
}

// OpenBuffer starts tracking a buffer in the initial mode. An empty id
// is replaced by a generated one, which is returned.
func (e *Engine) OpenBuffer(bufferID string) (string, error) {
	e.mu.Lock()
	defer e.unlock()

	if e.closed {
		return "", ErrClosed
	}
	if bufferID == "" {
		bufferID = uuid.NewString()
	}
	if _, ok := e.buffers[bufferID]; ok {
		return "", fmt.Errorf("%w: %s", ErrBufferOpen, bufferID)
	}
	e.openLocked(bufferID)
	return bufferID, nil
}

func (e *Engine) openLocked(bufferID string) *buffer {
	b := &buffer{}
	e.buffers[bufferID] = b
	if err := e.switchLocked(bufferID, e.initialMode); err != nil {
		e.log.Error("opening %s: %v", bufferID, err)
	}
	return b
}

// bufferLocked returns the buffer's state, opening it on first use.
func (e *Engine) bufferLocked(bufferID string) *buffer {
	if b, ok := e.buffers[bufferID]; ok {
		return b
	}
	return e.openLocked(bufferID)
}

// CloseBuffer forgets a buffer: its pending keys and timer, its
// buffer-scoped mappings, its mode and pending operator. Key captures
// waiting on it fail with ErrBufferClosed.
func (e *Engine) CloseBuffer(bufferID string) {
	e.mu.Lock()
	defer e.unlock()

	e.resolver.Drop(bufferID)
	e.store.DropBuffer(bufferID)
	e.machine.Drop(bufferID)
	e.ops.DropBuffer(bufferID)
	if b, ok := e.buffers[bufferID]; ok {
		for _, c := range b.captures {
			close(c.ch)
		}
		delete(e.buffers, bufferID)
	}
}

// Buffers returns the ids of the open buffers, sorted.
func (e *Engine) Buffers() []string {
	e.mu.Lock()
	defer e.unlock()
	ids := make([]string, 0, len(e.buffers))
	for id := range e.buffers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Mode returns the buffer's current mode, or "" for unknown buffers.
func (e *Engine) Mode(bufferID string) mode.ID {
	return e.machine.Current(bufferID)
}

// PendingKeys returns the keys withheld for the buffer.
func (e *Engine) PendingKeys(bufferID string) key.Sequence {
	p, ok := e.resolver.Pending(bufferID)
	if !ok {
		return nil
	}
	return p.Accumulated
}

// SwitchMode moves a buffer to another mode, discarding its pending keys.
func (e *Engine) SwitchMode(bufferID string, m mode.ID) error {
	e.mu.Lock()
	defer e.unlock()

	if e.closed {
		return ErrClosed
	}
	b := e.bufferLocked(bufferID)
	if err := e.switchLocked(bufferID, m); err != nil {
		return err
	}
	b.display = nil
	e.keyStateLocked(bufferID, b)
	return nil
}

// switchLocked changes mode and keeps the collaborators in step with it.
func (e *Engine) switchLocked(bufferID string, to mode.ID) error {
	prev := e.machine.Current(bufferID)
	if _, err := e.machine.Switch(bufferID, to); err != nil {
		return err
	}
	e.resolver.Reset(bufferID)
	if b := e.buffers[bufferID]; b != nil {
		e.resetCount(b)
		b.replace = nil
	}
	if prev == mode.Insert && to != mode.Insert {
		e.ops.EndInsert()
	}
	if prev == mode.OpPending && to != mode.OpPending {
		e.ops.Abort(bufferID)
	}

	s, ok := e.surfaceLocked(bufferID)
	if !ok {
		return nil
	}
	switch {
	case to == mode.Visual && prev != mode.Visual:
		c := s.Caret()
		s.SetSelection(surface.Selection{Anchor: c, Head: c})
	case prev == mode.Visual && to != mode.Visual:
		s.ClearSelection()
	}
	if to == mode.Normal {
		s.SetCaret(vim.ClampNormal(s.Text(), s.Caret()))
	}
	return nil
}

func (e *Engine) surfaceLocked(bufferID string) (surface.Surface, bool) {
	if e.surfaces == nil {
		return nil, false
	}
	s, ok := e.surfaces.Surface(bufferID)
	return s, ok && s != nil
}

func (e *Engine) resetCount(b *buffer) {
	b.count.Reset()
	b.countKeys = nil
}

// HandleKey processes one host key event for a buffer, in the buffer's
// current mode. It never fails: keys the engine does not handle come back
// with Consumed false.
func (e *Engine) HandleKey(bufferID string, ev key.Event) Result {
	e.mu.Lock()
	defer e.unlock()
	return e.handleLocked(bufferID, key.ToNotation(ev, e.layout))
}

// HandleNotation is HandleKey for a key already written in notation.
func (e *Engine) HandleNotation(bufferID string, n key.Notation) Result {
	e.mu.Lock()
	defer e.unlock()
	return e.handleLocked(bufferID, key.Normalize(string(n)))
}

// Feed processes an authored key sequence such as "d2w" or "<Esc>" one
// key at a time.
func (e *Engine) Feed(bufferID, keys string) []Result {
	e.mu.Lock()
	defer e.unlock()
	seq := key.NormalizeSequence(keys)
	results := make([]Result, 0, len(seq))
	for _, n := range seq {
		results = append(results, e.handleLocked(bufferID, n))
	}
	return results
}

func (e *Engine) handleLocked(bufferID string, n key.Notation) (res Result) {
	res = Result{BufferID: bufferID, Key: n}
	if e.closed || n == "" {
		return res
	}
	timer := e.metrics.StartKeyEventTimer()
	defer timer.Stop()

	b := e.bufferLocked(bufferID)
	m := e.machine.Current(bufferID)
	res.Mode = m

	kc := KeyContext{BufferID: bufferID, Mode: m, Key: n}
	if e.hooks.RunPreKey(kc) {
		e.metrics.RecordHookConsumption()
		res.Consumed = true
		return res
	}
	defer func() { e.hooks.RunPostKey(kc, res) }()

	if e.deliverCaptures(b, n) {
		res.Consumed = true
		return res
	}

	if b.replace != nil {
		e.finishReplaceLocked(bufferID, b, m, n)
		e.keyStateLocked(bufferID, b)
		res.Consumed = true
		return res
	}

	return e.resolveLocked(bufferID, b, m, n, res)
}

// resolveLocked takes n as a count digit or feeds it to the resolver. A
// key deferred behind a flushed mapping is resolved again after the
// mapping ran, in the mode it left the buffer in.
func (e *Engine) resolveLocked(bufferID string, b *buffer, m mode.ID, n key.Notation, res Result) Result {
	if e.countLocked(bufferID, b, m, n) {
		res.Consumed = true
		return res
	}

	r := e.resolver.HandleKey(bufferID, m, n)
	if r.Deferred == "" {
		res.Resolution = r
		res.Consumed = e.applyLocked(bufferID, b, m, r)
		e.keyStateLocked(bufferID, b)
		return res
	}

	e.releaseLocked(bufferID, b, m, r)
	if _, open := e.buffers[bufferID]; !open {
		res.Resolution = r
		res.Consumed = true
		return res
	}
	m = e.machine.Current(bufferID)
	res.Mode = m
	res = e.resolveLocked(bufferID, b, m, r.Deferred, res)
	res.Flushed, res.FlushedSequence = r.Flushed, r.FlushedSequence
	return res
}

// countLocked feeds n to the buffer's count. A digit only starts a count
// when nothing is withheld and no mapping begins with it.
func (e *Engine) countLocked(bufferID string, b *buffer, m mode.ID, n key.Notation) bool {
	if !countsIn(m) {
		return false
	}
	if _, pending := e.resolver.Pending(bufferID); pending {
		return false
	}
	if !b.count.Active() && e.mappedLocked(bufferID, m, n) {
		return false
	}
	if !b.count.Feed(n) {
		return false
	}
	b.countKeys = append(b.countKeys, n)
	e.queue(Notification{
		Kind:     KeyStateChanged,
		BufferID: bufferID,
		Mode:     m,
		Keys:     b.countKeys.Clone(),
		Partial:  true,
	})
	return true
}

// mappedLocked reports whether a live mapping starts with n.
func (e *Engine) mappedLocked(bufferID string, m mode.ID, n key.Notation) bool {
	match, ok := e.store.Lookup(m, bufferID, key.Sequence{n})
	return ok && (match.Entry != nil || match.HasChildren)
}

// countsIn reports whether digits start a count in mode m.
func countsIn(m mode.ID) bool {
	return m == mode.Normal || m == mode.Visual || m == mode.OpPending
}

// applyLocked acts on a resolution and reports whether the key was
// consumed.
func (e *Engine) applyLocked(bufferID string, b *buffer, m mode.ID, r resolver.Resolution) bool {
	e.releaseLocked(bufferID, b, m, r)

	switch r.Kind {
	case resolver.FullMatch:
		e.runLocked(bufferID, b, m, r.Sequence, r.Entry)
		return true
	case resolver.PartialMatch:
		return true
	}

	b.display = nil
	n := r.Sequence[len(r.Sequence)-1]
	switch {
	case m == mode.OpPending:
		e.log.Debug("%s: %s aborts the pending operator", bufferID, n)
		if err := e.switchLocked(bufferID, mode.Normal); err != nil {
			e.log.Error("%v", err)
		}
		return true
	case e.modes.IsLiteralInput(m):
		return e.insertLocked(bufferID, n)
	}
	e.resetCount(b)
	return false
}

// releaseLocked runs a flushed ambiguous mapping and replays withheld
// keys. In literal-input modes replayed keys are typed into the surface;
// keys that cannot be typed go to the host in a KeysReplayed notification.
func (e *Engine) releaseLocked(bufferID string, b *buffer, m mode.ID, r resolver.Resolution) {
	if r.Flushed != nil {
		e.runLocked(bufferID, b, m, r.FlushedSequence, r.Flushed)
	}
	if len(r.Replayed) == 0 {
		return
	}
	e.metrics.RecordReplay(len(r.Replayed))

	literal := e.modes.IsLiteralInput(m)
	var rest key.Sequence
	for _, n := range r.Replayed {
		if literal && e.insertLocked(bufferID, n) {
			continue
		}
		rest = append(rest, n)
	}
	if len(rest) > 0 {
		e.queue(Notification{Kind: KeysReplayed, BufferID: bufferID, Mode: m, Keys: rest})
	}
}

// insertLocked types a key's text into the buffer's surface.
func (e *Engine) insertLocked(bufferID string, n key.Notation) bool {
	text, ok := n.Literal()
	if !ok {
		return false
	}
	s, ok := e.surfaceLocked(bufferID)
	if !ok {
		return false
	}
	if err := s.Insert(text); err != nil {
		e.log.Warn("%s: inserting %q: %v", bufferID, text, err)
		return false
	}
	e.ops.Typed(text)
	return true
}

// runLocked executes a completed mapping. Built-in commands run here,
// under the lock; everything else is dispatched.
func (e *Engine) runLocked(bufferID string, b *buffer, m mode.ID, seq key.Sequence, entry *keymap.Entry) {
	count := b.count.Value()
	e.resetCount(b)
	if entry.RetainDisplay {
		b.display = seq.Clone()
	} else {
		b.display = nil
	}

	ac := ActionContext{
		BufferID: bufferID,
		Mode:     m,
		Sequence: seq.Clone(),
		Count:    count,
	}
	if entry.Action.Kind == keymap.ActionExcmd {
		name, args := entry.Action.Command()
		ac.Args = args
		if cmd, ok := builtins[name]; ok {
			if err := cmd(e, b, ac); err != nil {
				e.reportLocked(entry.Action, ac, err)
			}
			return
		}
	}
	e.dispatch(entry.Action, ac)
}

// reportLocked turns a built-in command failure into an ActionFailed
// notification.
func (e *Engine) reportLocked(a keymap.Action, ac ActionContext, err error) {
	aerr := &ActionError{
		BufferID: ac.BufferID,
		Mode:     ac.Mode,
		Sequence: ac.Sequence,
		Action:   a.String(),
		Err:      err,
	}
	e.log.Error("%v", aerr)
	e.queue(Notification{Kind: ActionFailed, BufferID: ac.BufferID, Mode: ac.Mode, Err: aerr})
}

// keyStateLocked queues the buffer's key display.
func (e *Engine) keyStateLocked(bufferID string, b *buffer) {
	n := Notification{
		Kind:     KeyStateChanged,
		BufferID: bufferID,
		Mode:     e.machine.Current(bufferID),
	}
	if p, ok := e.resolver.Pending(bufferID); ok {
		n.Keys = b.countKeys.Clone().Append(p.Accumulated...)
		n.Partial = true
	} else {
		n.Keys = b.display.Clone()
	}
	e.queue(n)
}

// expire is the resolver's timer callback.
func (e *Engine) expire(bufferID string, generation uint64) {
	e.mu.Lock()
	defer e.unlock()

	if e.closed {
		return
	}
	b, ok := e.buffers[bufferID]
	if !ok {
		return
	}
	r, ok := e.resolver.Expire(bufferID, generation)
	if !ok {
		return
	}
	e.metrics.RecordSequenceTimeout()
	e.releaseLocked(bufferID, b, e.machine.Current(bufferID), r)
	e.keyStateLocked(bufferID, b)
}

// CaptureKey returns a channel that receives the buffer's next key and is
// then closed. A passthrough capture only observes the key; otherwise the
// key is consumed and mappings never see it. The channel is closed
// without a value when the buffer or engine closes.
func (e *Engine) CaptureKey(bufferID string, passthrough bool) <-chan key.Notation {
	e.mu.Lock()
	defer e.unlock()

	ch := make(chan key.Notation, 1)
	if e.closed {
		close(ch)
		return ch
	}
	b := e.bufferLocked(bufferID)
	b.captures = append(b.captures, &capture{ch: ch, passthrough: passthrough})
	return ch
}

// NextKey waits for the buffer's next key and consumes it.
func (e *Engine) NextKey(ctx context.Context, bufferID string) (key.Notation, error) {
	return e.awaitKey(ctx, bufferID, false)
}

// NextKeyPassthrough waits for the buffer's next key and lets it be
// processed normally.
func (e *Engine) NextKeyPassthrough(ctx context.Context, bufferID string) (key.Notation, error) {
	return e.awaitKey(ctx, bufferID, true)
}

func (e *Engine) awaitKey(ctx context.Context, bufferID string, passthrough bool) (key.Notation, error) {
	ch := e.CaptureKey(bufferID, passthrough)
	select {
	case n, ok := <-ch:
		if !ok {
			return "", ErrBufferClosed
		}
		return n, nil
	case <-ctx.Done():
		e.releaseCapture(bufferID, ch)
		// The key may have been delivered before the capture was released.
		select {
		case n, ok := <-ch:
			if ok {
				return n, nil
			}
		default:
		}
		return "", ctx.Err()
	}
}

func (e *Engine) releaseCapture(bufferID string, ch <-chan key.Notation) {
	e.mu.Lock()
	defer e.unlock()
	b, ok := e.buffers[bufferID]
	if !ok {
		return
	}
	for i, c := range b.captures {
		if c.ch == ch {
			close(c.ch)
			b.captures = append(b.captures[:i], b.captures[i+1:]...)
			return
		}
	}
}

// deliverCaptures hands n to every waiting capture and reports whether
// any of them consumes it.
func (e *Engine) deliverCaptures(b *buffer, n key.Notation) bool {
	if len(b.captures) == 0 {
		return false
	}
	captures := b.captures
	b.captures = nil

	consumed := false
	for _, c := range captures {
		c.ch <- n
		close(c.ch)
		if !c.passthrough {
			consumed = true
		}
	}
	return consumed
}

// Close stops the engine: timers are cancelled, captures fail, and Close
// waits for dispatched actions, whose context is cancelled.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	for id, b := range e.buffers {
		e.resolver.Drop(id)
		for _, c := range b.captures {
			close(c.ch)
		}
	}
	e.buffers = make(map[string]*buffer)
	e.unlock()

	e.cancel()
	e.wg.Wait()
}
