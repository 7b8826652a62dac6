package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/modalkeys/internal/input"
	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
	"github.com/dshills/modalkeys/internal/input/surface"
	"github.com/dshills/modalkeys/internal/input/vim"
	"github.com/dshills/modalkeys/internal/logging"
)

// DefaultBufferID is the buffer the playground edits.
const DefaultBufferID = "main"

// Host commands run by the playground's executor.
const (
	CmdQuit  = "quit"
	CmdWrite = "write"
	CmdEcho  = "echo"
)

// ErrNoEngine is returned by Run before Attach.
var ErrNoEngine = errors.New("host: no engine attached")

// Options configures a Playground.
type Options struct {
	// BufferID defaults to DefaultBufferID.
	BufferID string

	// Path is the file "write" saves to when given no argument.
	Path string

	Logger *logging.Logger
}

// Playground is a single-buffer terminal editor driven by the engine. It
// is the engine's executor for host commands and its notifier.
type Playground struct {
	term     *Terminal
	area     *surface.TextArea
	bufferID string
	path     string
	log      *logging.Logger

	mu      sync.Mutex
	engine  *input.Engine
	mode    mode.ID
	pending key.Sequence
	message string
	msgType MessageType
	top     int

	quit     chan struct{}
	quitOnce sync.Once
}

// New creates a playground editing area on term.
func New(term *Terminal, area *surface.TextArea, opts Options) *Playground {
	if opts.BufferID == "" {
		opts.BufferID = DefaultBufferID
	}
	return &Playground{
		term:     term,
		area:     area,
		bufferID: opts.BufferID,
		path:     opts.Path,
		log:      opts.Logger.WithCategory(logging.CatHost),
		mode:     mode.Normal,
		quit:     make(chan struct{}),
	}
}

// BufferID returns the edited buffer.
func (p *Playground) BufferID() string {
	return p.bufferID
}

// Surfaces returns the provider to pass in input.Options.
func (p *Playground) Surfaces() surface.Provider {
	return surface.ProviderFunc(func(bufferID string) (surface.Surface, bool) {
		if bufferID != p.bufferID {
			return nil, false
		}
		return p.area, true
	})
}

// Attach connects the engine and opens the playground's buffer in it.
func (p *Playground) Attach(e *input.Engine) error {
	p.mu.Lock()
	p.engine = e
	p.mu.Unlock()

	if _, err := e.OpenBuffer(p.bufferID); err != nil && !errors.Is(err, input.ErrBufferOpen) {
		return err
	}
	p.mu.Lock()
	p.mode = e.Mode(p.bufferID)
	p.mu.Unlock()
	return nil
}

// Done is closed when the playground quits.
func (p *Playground) Done() <-chan struct{} {
	return p.quit
}

// Quit stops Run.
func (p *Playground) Quit() {
	p.quitOnce.Do(func() { close(p.quit) })
	p.term.Interrupt(nil)
}

func (p *Playground) quitting() bool {
	select {
	case <-p.quit:
		return true
	default:
		return false
	}
}

// SetMessage shows msg in the status line until the next message.
func (p *Playground) SetMessage(msg string, t MessageType) {
	p.mu.Lock()
	p.message, p.msgType = msg, t
	p.mu.Unlock()
	p.term.Interrupt(nil)
}

// Execute runs host commands.
func (p *Playground) Execute(_ context.Context, a keymap.Action, ac input.ActionContext) error {
	name, _ := a.Command()
	switch name {
	case CmdQuit, "q":
		p.Quit()
		return nil
	case CmdWrite, "w":
		return p.write(ac.Args)
	case CmdEcho:
		p.SetMessage(strings.Join(ac.Args, " "), MessageInfo)
		return nil
	}
	return fmt.Errorf("%w: %s", input.ErrUnknownCommand, name)
}

func (p *Playground) write(args []string) error {
	path := p.path
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return errors.New("no file name")
	}
	text := p.area.String()
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return err
	}
	p.log.Info("wrote %d bytes to %s", len(text), path)
	p.SetMessage(fmt.Sprintf("%q %dB written", path, len(text)), MessageInfo)
	return nil
}

// Notify tracks mode and key state, replays keys the engine could not
// insert, and shows action failures.
func (p *Playground) Notify(_ context.Context, n input.Notification) {
	if n.BufferID != p.bufferID {
		return
	}
	switch n.Kind {
	case input.ModeChanged:
		p.mu.Lock()
		p.mode = n.Mode
		p.mu.Unlock()
	case input.KeyStateChanged:
		p.mu.Lock()
		p.pending = n.Keys.Clone()
		p.mu.Unlock()
	case input.KeysReplayed:
		for _, k := range n.Keys {
			p.unmapped(n.Mode, k)
		}
	case input.ActionFailed:
		p.log.Warn("%v", n.Err)
		p.SetMessage(n.Err.Error(), MessageError)
		return
	}
	p.term.Interrupt(nil)
}

// HandleEvent processes one terminal event and redraws. It returns false
// once the playground has quit.
func (p *Playground) HandleEvent(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventKey:
		p.HandleKey(KeyEvent(e))
	case *tcell.EventResize:
		p.term.Sync()
	}
	if p.quitting() {
		return false
	}
	p.Draw()
	return true
}

// HandleKey feeds one key to the engine and gives unconsumed keys their
// default handling.
func (p *Playground) HandleKey(ev key.Event) {
	p.mu.Lock()
	e := p.engine
	p.mu.Unlock()
	if e == nil {
		return
	}

	res := e.HandleKey(p.bufferID, ev)
	if res.Consumed {
		return
	}
	p.unmapped(res.Mode, res.Key)
}

// unmapped applies the default handling of a key no mapping consumed:
// caret movement everywhere and deletion in literal-input modes.
func (p *Playground) unmapped(m mode.ID, n key.Notation) {
	text := p.area.Text()
	caret := p.area.Caret()

	switch n {
	case "<Left>":
		p.area.SetCaret(caret - 1)
	case "<Right>":
		p.area.SetCaret(caret + 1)
	case "<Home>":
		p.area.SetCaret(vim.LineStart(text, caret))
	case "<End>":
		p.area.SetCaret(vim.LineEnd(text, caret))
	case "<Up>":
		p.area.SetCaret(verticalMove(text, caret, -1))
	case "<Down>":
		p.area.SetCaret(verticalMove(text, caret, 1))
	case "<BS>":
		if p.literal(m) && caret > 0 {
			_ = p.area.Apply(surface.EditOperation{Start: caret - 1, End: caret, Caret: caret - 1})
		}
	case "<Del>":
		if p.literal(m) && caret < len(text) {
			end := surface.GraphemeEnd(text, caret)
			_ = p.area.Apply(surface.EditOperation{Start: caret, End: end, Caret: caret})
		}
	default:
		p.log.Debug("unmapped %s in %s", n, m)
	}
}

func (p *Playground) literal(m mode.ID) bool {
	p.mu.Lock()
	e := p.engine
	p.mu.Unlock()
	return e != nil && e.Modes().IsLiteralInput(m)
}

// verticalMove returns the offset dir lines away from pos, keeping the
// rune column where the target line is long enough.
func verticalMove(t []rune, pos, dir int) int {
	col := vim.Column(t, pos)
	start := vim.LineStart(t, pos)
	if dir < 0 {
		if start == 0 {
			return pos
		}
		prev := vim.LineStart(t, start-1)
		return min(prev+col, start-1)
	}
	end := vim.LineEnd(t, pos)
	if end >= len(t) {
		return pos
	}
	next := end + 1
	return min(next+col, vim.LineEnd(t, next))
}

// Status returns what the status line currently shows.
func (p *Playground) Status() Status {
	p.mu.Lock()
	e := p.engine
	st := Status{
		Mode:        mode.Mode{ID: p.mode},
		Pending:     p.pending,
		Message:     p.message,
		MessageType: p.msgType,
	}
	p.mu.Unlock()

	if e != nil {
		if m, ok := e.Modes().Get(st.Mode.ID); ok {
			st.Mode = m
		}
	}
	text := p.area.Text()
	caret := min(p.area.Caret(), len(text))
	st.Line = strings.Count(string(text[:caret]), "\n") + 1
	st.Column = vim.Column(text, caret) + 1
	return st
}

// Draw renders the text, the selection, the status line and the caret.
func (p *Playground) Draw() {
	w, h := p.term.Size()
	if w <= 0 || h <= 0 {
		return
	}
	rows := h - 1
	st := p.Status()
	text := p.area.Text()
	selStart, selEnd := -1, -1
	if sel, ok := p.area.Selection(); ok {
		selStart, selEnd = sel.Range(len(text))
	}

	lines := strings.Split(string(text), "\n")
	caretLine := st.Line - 1

	p.mu.Lock()
	if caretLine < p.top {
		p.top = caretLine
	}
	if rows > 0 && caretLine >= p.top+rows {
		p.top = caretLine - rows + 1
	}
	top := p.top
	p.mu.Unlock()

	p.term.Clear()

	offset := 0
	for i := 0; i < top && i < len(lines); i++ {
		offset += len([]rune(lines[i])) + 1
	}
	for row := 0; row < rows && top+row < len(lines); row++ {
		line := lines[top+row]
		base := offset
		p.term.DrawText(0, row, w, line, func(off int) tcell.Style {
			if pos := base + off; pos >= selStart && pos < selEnd {
				return tcell.StyleDefault.Reverse(true)
			}
			return tcell.StyleDefault
		})
		offset += len([]rune(line)) + 1
	}

	style := st.Style()
	p.term.Fill(0, h-1, w, ' ', style)
	p.term.DrawString(0, h-1, w, st.Left(), style)
	right := st.Right()
	if x := w - cellWidth(right); x > cellWidth(st.Left()) {
		p.term.DrawString(x, h-1, w, right, style)
	}

	if st.Mode.CursorStyle == mode.CursorHidden || caretLine-top >= rows {
		p.term.HideCursor()
	} else {
		lineRunes := []rune(lines[caretLine])
		col := min(st.Column-1, len(lineRunes))
		p.term.SetCursorStyle(st.Mode.CursorStyle)
		p.term.ShowCursor(cellWidth(string(lineRunes[:col])), caretLine-top)
	}
	p.term.Show()
}

// Run initializes the terminal and processes events until the playground
// quits or ctx is cancelled.
func (p *Playground) Run(ctx context.Context) error {
	p.mu.Lock()
	attached := p.engine != nil
	p.mu.Unlock()
	if !attached {
		return ErrNoEngine
	}

	if err := p.term.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer p.term.Shutdown()

	go func() {
		select {
		case <-ctx.Done():
			p.Quit()
		case <-p.quit:
		}
	}()

	p.Draw()
	for {
		ev := p.term.PollEvent()
		if ev == nil {
			return nil
		}
		if !p.HandleEvent(ev) {
			return nil
		}
	}
}
