package host

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/mode"
)

// MessageType is the severity of a status message.
type MessageType int

const (
	MessageNone MessageType = iota
	MessageInfo
	MessageError
)

// Status is what the status line shows.
type Status struct {
	Mode    mode.Mode
	Pending key.Sequence

	Message     string
	MessageType MessageType

	// Line and Column are 1-based.
	Line   int
	Column int
}

// Left returns the left-aligned part: mode, pending keys and message.
func (s Status) Left() string {
	name := s.Mode.DisplayName
	if name == "" {
		name = strings.ToUpper(string(s.Mode.ID))
	}
	parts := []string{" " + name}
	if len(s.Pending) > 0 {
		parts = append(parts, s.Pending.String())
	}
	if s.Message != "" {
		parts = append(parts, s.Message)
	}
	return strings.Join(parts, "  ")
}

// Right returns the caret position.
func (s Status) Right() string {
	return fmt.Sprintf("%d:%d ", s.Line, s.Column)
}

var modeStyles = map[mode.ID]tcell.Style{
	mode.Normal:    tcell.StyleDefault.Bold(true).Background(tcell.ColorBlue).Foreground(tcell.ColorWhite),
	mode.Insert:    tcell.StyleDefault.Bold(true).Background(tcell.ColorGreen).Foreground(tcell.ColorBlack),
	mode.Visual:    tcell.StyleDefault.Bold(true).Background(tcell.ColorPurple).Foreground(tcell.ColorWhite),
	mode.OpPending: tcell.StyleDefault.Bold(true).Background(tcell.ColorTeal).Foreground(tcell.ColorBlack),
	mode.Ignore:    tcell.StyleDefault.Bold(true).Background(tcell.ColorGray).Foreground(tcell.ColorBlack),
}

// Style returns the status line style for the mode and message.
func (s Status) Style() tcell.Style {
	if s.MessageType == MessageError {
		return tcell.StyleDefault.Bold(true).Background(tcell.ColorMaroon).Foreground(tcell.ColorWhite)
	}
	if st, ok := modeStyles[s.Mode.ID]; ok {
		return st
	}
	return tcell.StyleDefault.Reverse(true)
}
