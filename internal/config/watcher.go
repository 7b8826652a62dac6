package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/modalkeys/internal/logging"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 150 * time.Millisecond

// Operation is the kind of file change that triggered a reload.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates the file was created, including atomic saves
	// that rename a temporary file over it.
	OpCreate

	// OpRemove indicates the file was deleted or renamed away.
	OpRemove
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event describes the last change seen before a debounced reload.
type Event struct {
	Path string
	Op   Operation
	Time time.Time
}

// ReloadFunc receives the freshly loaded configuration, or the error that
// prevented loading it. The previous configuration stays in effect on
// error.
type ReloadFunc func(ev Event, cfg *Config, err error)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher's logger.
func WithLogger(l *logging.Logger) WatcherOption {
	return func(w *Watcher) {
		w.log = l.WithCategory(logging.CatWatcher)
	}
}

// Watcher reloads a configuration file, its keymap files and its script
// when any of them changes on disk.
type Watcher struct {
	fsw      *fsnotify.Watcher
	path     string
	onReload ReloadFunc
	debounce time.Duration
	log      *logging.Logger

	mu      sync.Mutex
	files   map[string]bool
	dirs    map[string]bool
	started bool
	closed  bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher creates a watcher for cfg, which must have been loaded from
// a file. onReload is called from the watcher goroutine.
func NewWatcher(cfg *Config, onReload ReloadFunc, opts ...WatcherOption) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: configuration was not loaded from a file", ErrInvalid)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		path:     cfg.Path,
		onReload: onReload,
		debounce: DefaultDebounce,
		log:      logging.Discard(),
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.track(cfg)
	return w, nil
}

// Files returns the paths whose changes trigger a reload.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	return out
}

// Start begins watching. Directories are watched rather than files so
// that atomic saves, which replace the file, are still seen.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	if w.started {
		return nil
	}
	for dir := range w.dirs {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}
	w.started = true

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop terminates the watcher and waits for a reload in progress.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// track records the files of cfg and the directories holding them.
// Directories already watched stay watched.
func (w *Watcher) track(cfg *Config) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.files = map[string]bool{w.path: true}
	paths := cfg.KeymapPaths()
	if s := cfg.ScriptPath(); s != "" {
		paths = append(paths, s)
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		w.files[abs] = true
	}

	for p := range w.files {
		dir := filepath.Dir(p)
		if w.dirs[dir] {
			continue
		}
		w.dirs[dir] = true
		if w.started {
			if err := w.fsw.Add(dir); err != nil {
				w.log.Warn("watching directory %s: %v", dir, err)
			}
		}
	}
}

// relevant maps an fsnotify event to a reload event.
func (w *Watcher) relevant(fe fsnotify.Event) (Event, bool) {
	abs, err := filepath.Abs(fe.Name)
	if err != nil {
		return Event{}, false
	}
	w.mu.Lock()
	watched := w.files[abs]
	w.mu.Unlock()
	if !watched {
		return Event{}, false
	}

	ev := Event{Path: abs, Time: time.Now()}
	switch {
	case fe.Op.Has(fsnotify.Create):
		ev.Op = OpCreate
	case fe.Op.Has(fsnotify.Write):
		ev.Op = OpWrite
	case fe.Op.Has(fsnotify.Remove), fe.Op.Has(fsnotify.Rename):
		ev.Op = OpRemove
	default:
		return Event{}, false
	}
	return ev, true
}

// loop debounces file events into reloads.
func (w *Watcher) loop() {
	defer w.wg.Done()

	var (
		timer   *time.Timer
		pending Event
	)
	timerC := func() <-chan time.Time {
		if timer != nil {
			return timer.C
		}
		return nil
	}

	for {
		select {
		case fe, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			ev, ok := w.relevant(fe)
			if !ok {
				continue
			}
			w.log.Debug("%s %s", ev.Op, ev.Path)
			pending = ev
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC():
			timer = nil
			w.reload(pending)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("fsnotify: %v", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// reload loads the configuration again and reports the outcome.
func (w *Watcher) reload(ev Event) {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Error("reloading %s: %v", w.path, err)
	} else {
		w.track(cfg)
		w.log.Info("reloaded %s after %s of %s", w.path, ev.Op, ev.Path)
	}
	w.safeCall(ev, cfg, err)
}

func (w *Watcher) safeCall(ev Event, cfg *Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("reload handler panic: %v", r)
		}
	}()
	if w.onReload != nil {
		w.onReload(ev, cfg, err)
	}
}
