package input

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
	"github.com/dshills/modalkeys/internal/input/operator"
	"github.com/dshills/modalkeys/internal/input/surface"
	"github.com/dshills/modalkeys/internal/input/vim"
)

// Built-in command names.
const (
	CmdModeChange = "mode_change"
	CmdMotion     = "motion"
	CmdOperator   = "operator"
	CmdEdit       = "edit"
	CmdVisualEdit = "visual_edit"
	CmdReplace    = "replace"
	CmdRepeat     = "repeat"
	CmdUndo       = "undo"
	CmdRedo       = "redo"
)

// Automove targets accepted by mode_change --automove.
const (
	AutomoveLeft          = "left"
	AutomoveRight         = "right"
	AutomoveEndLine       = "endline"
	AutomoveStartLine     = "startline"
	AutomoveFirstNonBlank = "firstnonblank"
)

// builtin runs an excmd inside the engine, with the engine lock held.
type builtin func(e *Engine, b *buffer, ac ActionContext) error

var builtins = map[string]builtin{
	CmdModeChange: cmdModeChange,
	CmdMotion:     cmdMotion,
	CmdOperator:   cmdOperator,
	CmdEdit:       cmdEdit,
	CmdVisualEdit: cmdVisualEdit,
	CmdReplace:    cmdReplace,
	CmdRepeat:     cmdRepeat,
	CmdUndo:       cmdUndo,
	CmdRedo:       cmdRedo,
}

// IsBuiltin reports whether the engine executes the excmd name itself.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

func oneArg(ac ActionContext, cmd string) (string, error) {
	if len(ac.Args) != 1 {
		return "", fmt.Errorf("%w: %s takes one argument, got %d", ErrBadArguments, cmd, len(ac.Args))
	}
	return ac.Args[0], nil
}

// cmdModeChange implements "mode_change <mode> [--automove=<where>]".
func cmdModeChange(e *Engine, _ *buffer, ac ActionContext) error {
	if len(ac.Args) == 0 {
		return fmt.Errorf("%w: %s needs a mode", ErrBadArguments, CmdModeChange)
	}
	target := mode.ID(ac.Args[0])
	if !e.modes.Has(target) {
		return fmt.Errorf("%w: %s", mode.ErrUnknownMode, target)
	}

	var automove string
	for _, arg := range ac.Args[1:] {
		v, ok := strings.CutPrefix(arg, "--automove=")
		if !ok {
			return fmt.Errorf("%w: %s: unexpected %q", ErrBadArguments, CmdModeChange, arg)
		}
		automove = v
	}
	if automove != "" {
		if err := e.automoveLocked(ac.BufferID, automove); err != nil {
			return err
		}
	}
	return e.switchLocked(ac.BufferID, target)
}

func (e *Engine) automoveLocked(bufferID, where string) error {
	s, ok := e.surfaceLocked(bufferID)
	if !ok {
		return nil
	}
	t, c := s.Text(), s.Caret()
	switch where {
	case AutomoveLeft:
		if c > vim.LineStart(t, c) {
			c--
		}
	case AutomoveRight:
		if c < vim.LineEnd(t, c) {
			c++
		}
	case AutomoveEndLine:
		c = vim.LineEnd(t, c)
	case AutomoveStartLine:
		c = vim.LineStart(t, c)
	case AutomoveFirstNonBlank:
		c = vim.FirstNonBlank(t, c)
	default:
		return fmt.Errorf("%w: automove %q", ErrBadArguments, where)
	}
	s.SetCaret(c)
	return nil
}

// cmdMotion implements "motion <name>". In normal mode it moves the
// caret, in visual mode the selection head, and in operator-pending mode
// it completes the pending operator.
func cmdMotion(e *Engine, _ *buffer, ac ActionContext) error {
	arg, err := oneArg(ac, CmdMotion)
	if err != nil {
		return err
	}
	name := key.NormalizeSequence(arg).String()
	m := e.machine.Current(ac.BufferID)
	s, ok := e.surfaceLocked(ac.BufferID)

	if m == mode.OpPending {
		if !ok {
			return errors.Join(ErrNoSurface, e.switchLocked(ac.BufferID, mode.Normal))
		}
		res, err := e.ops.Complete(ac.BufferID, s, name, ac.Count)
		next := mode.Normal
		if err == nil && res.Insert {
			next = mode.Insert
		}
		return errors.Join(err, e.switchLocked(ac.BufferID, next))
	}
	if !ok {
		return nil
	}

	t := s.Text()
	if m == mode.Visual {
		sel, has := s.Selection()
		if !has {
			sel = surface.Selection{Anchor: s.Caret(), Head: s.Caret()}
		}
		head, known := e.eval.MoveVisual(name, t, sel.Head, ac.Count)
		if !known {
			return fmt.Errorf("%w: unknown motion %q", ErrBadArguments, name)
		}
		s.SetSelection(surface.Selection{Anchor: sel.Anchor, Head: head})
		return nil
	}

	pos, known := e.eval.Move(name, t, s.Caret(), ac.Count)
	if !known {
		return fmt.Errorf("%w: unknown motion %q", ErrBadArguments, name)
	}
	if m == mode.Normal {
		pos = vim.ClampNormal(t, pos)
	}
	s.SetCaret(pos)
	return nil
}

// cmdOperator implements "operator <d|c>".
func cmdOperator(e *Engine, _ *buffer, ac ActionContext) error {
	arg, err := oneArg(ac, CmdOperator)
	if err != nil {
		return err
	}
	op, err := operator.ParseOperator(arg)
	if err != nil {
		return err
	}
	if _, ok := e.surfaceLocked(ac.BufferID); !ok {
		return ErrNoSurface
	}
	e.ops.Begin(ac.BufferID, op, ac.Count)
	return e.switchLocked(ac.BufferID, mode.OpPending)
}

// cmdEdit implements "edit <x|X|s|D|C|o|O>".
func cmdEdit(e *Engine, _ *buffer, ac ActionContext) error {
	arg, err := oneArg(ac, CmdEdit)
	if err != nil {
		return err
	}
	s, ok := e.surfaceLocked(ac.BufferID)
	if !ok {
		return ErrNoSurface
	}
	res, err := e.ops.Edit(s, arg, ac.Count)
	if err != nil {
		return err
	}
	if res.Insert {
		return e.switchLocked(ac.BufferID, mode.Insert)
	}
	return nil
}

// cmdVisualEdit implements "visual_edit <d|c>".
func cmdVisualEdit(e *Engine, _ *buffer, ac ActionContext) error {
	arg, err := oneArg(ac, CmdVisualEdit)
	if err != nil {
		return err
	}
	op, err := operator.ParseOperator(arg)
	if err != nil {
		return err
	}
	s, ok := e.surfaceLocked(ac.BufferID)
	if !ok {
		return ErrNoSurface
	}
	res, err := e.ops.Visual(s, op)
	next := mode.Normal
	if err == nil && res.Insert {
		next = mode.Insert
	}
	return errors.Join(err, e.switchLocked(ac.BufferID, next))
}

// cmdReplace implements "replace": the next key replaces the character
// under the caret.
func cmdReplace(e *Engine, b *buffer, ac ActionContext) error {
	if _, ok := e.surfaceLocked(ac.BufferID); !ok {
		return ErrNoSurface
	}
	b.replace = &pendingReplace{count: max(ac.Count, 1)}
	return nil
}

// finishReplaceLocked consumes the key following "r". A key with no text,
// such as <Esc>, cancels.
func (e *Engine) finishReplaceLocked(bufferID string, b *buffer, m mode.ID, n key.Notation) {
	count := b.replace.count
	b.replace = nil
	b.display = nil

	char, ok := n.Literal()
	if !ok {
		return
	}
	s, ok := e.surfaceLocked(bufferID)
	if !ok {
		return
	}
	if _, err := e.ops.Replace(s, char, count); err != nil {
		ac := ActionContext{BufferID: bufferID, Mode: m, Sequence: key.Sequence{n}, Count: count}
		e.reportLocked(keymap.Excmd(CmdReplace), ac, err)
	}
}

// cmdRepeat implements ".". A count replaces the recorded one.
func cmdRepeat(e *Engine, _ *buffer, ac ActionContext) error {
	s, ok := e.surfaceLocked(ac.BufferID)
	if !ok {
		return ErrNoSurface
	}
	_, err := e.ops.Repeat(s, ac.Count)
	if errors.Is(err, operator.ErrNothingToRepeat) {
		e.log.Debug("%s: nothing to repeat", ac.BufferID)
		return nil
	}
	return err
}

func cmdUndo(e *Engine, _ *buffer, ac ActionContext) error {
	return e.historyLocked(ac, surface.Undoer.Undo, surface.ErrNothingToUndo)
}

func cmdRedo(e *Engine, _ *buffer, ac ActionContext) error {
	return e.historyLocked(ac, surface.Undoer.Redo, surface.ErrNothingToRedo)
}

// historyLocked runs an undo or redo step. An empty history is not an
// error.
func (e *Engine) historyLocked(ac ActionContext, step func(surface.Undoer) error, empty error) error {
	s, ok := e.surfaceLocked(ac.BufferID)
	if !ok {
		return ErrNoSurface
	}
	u, ok := s.(surface.Undoer)
	if !ok {
		return surface.ErrNoHistory
	}
	if err := step(u); err != nil {
		if errors.Is(err, empty) {
			return nil
		}
		return err
	}
	if e.machine.Current(ac.BufferID) == mode.Normal {
		s.SetCaret(vim.ClampNormal(s.Text(), s.Caret()))
	}
	return nil
}
