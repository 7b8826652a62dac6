package host

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/modalkeys/internal/input/mode"
)

// TabWidth is the number of cells a tab occupies.
const TabWidth = 4

// Terminal wraps a tcell screen.
type Terminal struct {
	screen tcell.Screen
	mu     sync.Mutex
}

// NewTerminal creates a terminal on the process's tty.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// NewTerminalWithScreen wraps an existing screen, such as a simulation
// screen in tests.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// Screen returns the underlying screen.
func (t *Terminal) Screen() tcell.Screen {
	return t.screen
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnablePaste()
	return nil
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

func (t *Terminal) Sync() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Sync()
}

func (t *Terminal) ShowCursor(x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.ShowCursor(x, y)
}

func (t *Terminal) HideCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.HideCursor()
}

// SetCursorStyle shows the caret shape a mode asks for.
func (t *Terminal) SetCursorStyle(style mode.CursorStyle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var tcellStyle tcell.CursorStyle
	switch style {
	case mode.CursorBlock:
		tcellStyle = tcell.CursorStyleSteadyBlock
	case mode.CursorUnderline:
		tcellStyle = tcell.CursorStyleSteadyUnderline
	case mode.CursorBar:
		tcellStyle = tcell.CursorStyleSteadyBar
	case mode.CursorHidden:
		t.screen.HideCursor()
		return
	}
	t.screen.SetCursorStyle(tcellStyle)
}

// DrawString draws s from (x, y) and returns the column after it. Drawing
// stops at maxX. Tabs expand to TabWidth cells.
func (t *Terminal) DrawString(x, y, maxX int, s string, style tcell.Style) int {
	return t.DrawText(x, y, maxX, s, func(int) tcell.Style { return style })
}

// DrawText is DrawString with a style per grapheme cluster, chosen by the
// rune offset of the cluster within s.
func (t *Terminal) DrawText(x, y, maxX int, s string, styleAt func(offset int) tcell.Style) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	offset := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() && x < maxX {
		runes := g.Runes()
		x = t.drawCluster(x, y, runes, g.Width(), styleAt(offset))
		offset += len(runes)
	}
	return x
}

// Fill paints the cells [x, maxX) of row y.
func (t *Terminal) Fill(x, y, maxX int, r rune, style tcell.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for ; x < maxX; x++ {
		t.screen.SetContent(x, y, r, nil, style)
	}
}

func (t *Terminal) drawCluster(x, y int, runes []rune, width int, style tcell.Style) int {
	if len(runes) == 1 && runes[0] == '\t' {
		for i := 0; i < TabWidth; i++ {
			t.screen.SetContent(x+i, y, ' ', nil, style)
		}
		return x + TabWidth
	}
	t.screen.SetContent(x, y, runes[0], runes[1:], style)
	return x + max(width, 1)
}

func (t *Terminal) PollEvent() tcell.Event {
	return t.screen.PollEvent()
}

// Interrupt wakes PollEvent with an interrupt event. It is best-effort:
// a full event queue drops it.
func (t *Terminal) Interrupt(data any) {
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(data))
}

// cellWidth returns the cells s occupies when drawn by DrawString.
func cellWidth(s string) int {
	w := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		runes := g.Runes()
		if len(runes) == 1 && runes[0] == '\t' {
			w += TabWidth
			continue
		}
		w += max(g.Width(), 1)
	}
	return w
}
