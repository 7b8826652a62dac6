package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
	"github.com/dshills/modalkeys/internal/logging"
)

// Host is the part of the engine a script can configure.
type Host interface {
	SetKeymap(m mode.ID, lhs string, action keymap.Action, opts keymap.SetOptions) (keymap.Entry, error)
	DelKeymap(m mode.ID, lhs string, opts keymap.DelOptions) error
	ListKeymaps(f keymap.Filter) []keymap.Entry
	RegisterMode(id mode.ID, opts mode.Options) (mode.Mode, error)
	SetLeader(spec string) error
	SetMappingTimeout(d time.Duration)
	SetLayout(opts key.LayoutOptions)
}

// Option names accepted by options.set and options.get.
const (
	OptMappingTimeout    = "mapping_timeout"
	OptLeader            = "leader"
	OptUsePhysicalLayout = "use_physical_layout"
	OptKeyboardLayout    = "keyboard_layout"
)

// Options configures a Runtime.
type Options struct {
	Logger *logging.Logger

	// CallTimeout bounds each Lua callback. Zero means DefaultCallTimeout.
	CallTimeout time.Duration

	// Initial values reported by options.get until a script changes them.
	MappingTimeout time.Duration
	Leader         string
	Layout         key.LayoutOptions

	// Rerun tolerates modes.register for modes that already exist, as
	// when a script runs again after a configuration reload.
	Rerun bool
}

// Runtime runs configuration scripts against a Host. Scripts see three
// global tables:
//
//	keymaps.set(mode | {modes}, lhs, "excmd" | function, {description=, buffer=, retain_display=})
//	keymaps.del(mode | {modes}, lhs, {buffer=})
//	keymaps.list({mode=, buffer=, include_global=, prefix=})
//	modes.register(name, {display_name=, caret=, literal=})
//	options.set(name, value) / options.get(name)
//
// Lua functions bound with keymaps.set become callback actions; they
// receive one table {buffer=, mode=, keys=, count=}.
type Runtime struct {
	host    Host
	state   *State
	log     *logging.Logger
	timeout time.Duration

	timeoutOpt time.Duration
	leader     string
	layout     key.LayoutOptions
	rerun      bool
}

// New creates a runtime with a fresh Lua state.
func New(host Host, opts Options) (*Runtime, error) {
	if host == nil {
		return nil, ErrNoHost
	}
	r := &Runtime{
		host:       host,
		state:      NewState(),
		log:        opts.Logger.WithCategory(logging.CatScript),
		timeout:    opts.CallTimeout,
		timeoutOpt: opts.MappingTimeout,
		leader:     opts.Leader,
		layout:     opts.Layout,
		rerun:      opts.Rerun,
	}
	if r.timeout == 0 {
		r.timeout = DefaultCallTimeout
	}
	if r.leader == "" {
		r.leader = string(keymap.DefaultLeader)
	}

	r.state.RegisterModule("keymaps", map[string]lua.LGFunction{
		"set":  r.keymapSet,
		"del":  r.keymapDel,
		"list": r.keymapList,
	})
	r.state.RegisterModule("modes", map[string]lua.LGFunction{
		"register": r.modeRegister,
	})
	r.state.RegisterModule("options", map[string]lua.LGFunction{
		"set": r.optionSet,
		"get": r.optionGet,
	})
	r.state.RegisterFunc("print", r.print)
	return r, nil
}

// State returns the runtime's Lua state.
func (r *Runtime) State() *State {
	return r.state
}

// LoadFile runs a configuration script.
func (r *Runtime) LoadFile(path string) error {
	r.log.Info("loading %s", path)
	if err := r.state.DoFile(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}

// Exec runs a chunk of Lua.
func (r *Runtime) Exec(code string) error {
	return r.state.DoString(code)
}

// Close releases the Lua state.
func (r *Runtime) Close() error {
	return r.state.Close()
}

// keymaps.set(modes, lhs, action, opts?)
func (r *Runtime) keymapSet(L *lua.LState) int {
	modes := checkModes(L, 1)
	lhs := L.CheckString(2)
	action := r.checkAction(L, 3, lhs)
	opts := keymap.SetOptions{}
	if t := L.OptTable(4, nil); t != nil {
		opts.Description = tableString(L, t, "description")
		if opts.Description == "" {
			opts.Description = tableString(L, t, "desc")
		}
		opts.BufferID = tableString(L, t, "buffer")
		opts.RetainDisplay = lua.LVAsBool(L.GetField(t, "retain_display"))
	}

	for _, m := range modes {
		if _, err := r.host.SetKeymap(m, lhs, action, opts); err != nil {
			L.RaiseError("keymaps.set: %v", err)
			return 0
		}
	}
	return 0
}

// keymaps.del(modes, lhs, opts?)
func (r *Runtime) keymapDel(L *lua.LState) int {
	modes := checkModes(L, 1)
	lhs := L.CheckString(2)
	opts := keymap.DelOptions{}
	if t := L.OptTable(3, nil); t != nil {
		opts.BufferID = tableString(L, t, "buffer")
	}

	for _, m := range modes {
		if err := r.host.DelKeymap(m, lhs, opts); err != nil {
			L.RaiseError("keymaps.del: %v", err)
			return 0
		}
	}
	return 0
}

// keymaps.list(filter?) -> {entries...}
func (r *Runtime) keymapList(L *lua.LState) int {
	var f keymap.Filter
	if t := L.OptTable(1, nil); t != nil {
		f.Mode = mode.ID(tableString(L, t, "mode"))
		f.BufferID = tableString(L, t, "buffer")
		f.IncludeGlobal = lua.LVAsBool(L.GetField(t, "include_global"))
		if p := tableString(L, t, "prefix"); p != "" {
			seq, err := key.ParseSequence(p)
			if err != nil {
				L.ArgError(1, err.Error())
				return 0
			}
			f.Prefix = seq
		}
	}

	result := L.NewTable()
	for _, e := range r.host.ListKeymaps(f) {
		tbl := L.NewTable()
		L.SetField(tbl, "mode", lua.LString(e.Mode))
		L.SetField(tbl, "lhs", lua.LString(e.LHS))
		L.SetField(tbl, "keys", lua.LString(e.Sequence.String()))
		L.SetField(tbl, "action", lua.LString(e.Action.String()))
		L.SetField(tbl, "description", lua.LString(e.Description))
		L.SetField(tbl, "buffer", lua.LString(e.BufferID))
		L.SetField(tbl, "retain_display", lua.LBool(e.RetainDisplay))
		result.Append(tbl)
	}
	L.Push(result)
	return 1
}

// modes.register(name, opts?)
func (r *Runtime) modeRegister(L *lua.LState) int {
	name := L.CheckString(1)
	var opts mode.Options
	if t := L.OptTable(2, nil); t != nil {
		opts.DisplayName = tableString(L, t, "display_name")
		opts.LiteralInput = lua.LVAsBool(L.GetField(t, "literal"))
		style, err := mode.ParseCursorStyle(tableString(L, t, "caret"))
		if err != nil {
			L.ArgError(2, err.Error())
			return 0
		}
		opts.CursorStyle = style
	}
	_, err := r.host.RegisterMode(mode.ID(name), opts)
	if err != nil && r.rerun && errors.Is(err, mode.ErrModeExists) {
		r.log.Debug("mode %s already registered", name)
		return 0
	}
	if err != nil {
		L.RaiseError("modes.register: %v", err)
	}
	return 0
}

// options.set(name, value)
func (r *Runtime) optionSet(L *lua.LState) int {
	name := L.CheckString(1)
	if err := r.setOption(name, L.CheckAny(2)); err != nil {
		L.RaiseError("options.set: %v", err)
	}
	return 0
}

func (r *Runtime) setOption(name string, v lua.LValue) error {
	switch name {
	case OptMappingTimeout:
		d, err := durationValue(v)
		if err != nil {
			return err
		}
		r.timeoutOpt = d
		r.host.SetMappingTimeout(d)
	case OptLeader:
		s, ok := v.(lua.LString)
		if !ok {
			return fmt.Errorf("%w: %s wants a string", ErrBadOption, name)
		}
		if err := r.host.SetLeader(string(s)); err != nil {
			return err
		}
		r.leader = string(s)
	case OptUsePhysicalLayout:
		m := key.PhysicalLayoutMode(lua.LVAsString(v))
		if !key.ValidMode(m) {
			return fmt.Errorf("%w: %s %q", ErrBadOption, name, m)
		}
		r.layout.UsePhysicalLayout = m
		r.host.SetLayout(r.layout)
	case OptKeyboardLayout:
		next := r.layout
		next.Layout = lua.LVAsString(v)
		if _, ok := next.Lookup(); !ok {
			return fmt.Errorf("%w: unknown layout %q", ErrBadOption, next.Layout)
		}
		r.layout = next
		r.host.SetLayout(r.layout)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}
	r.log.Debug("option %s = %s", name, v)
	return nil
}

// options.get(name) -> value
func (r *Runtime) optionGet(L *lua.LState) int {
	name := L.CheckString(1)
	switch name {
	case OptMappingTimeout:
		L.Push(lua.LNumber(r.timeoutOpt.Milliseconds()))
	case OptLeader:
		L.Push(lua.LString(r.leader))
	case OptUsePhysicalLayout:
		L.Push(lua.LString(r.layout.UsePhysicalLayout))
	case OptKeyboardLayout:
		name := r.layout.Layout
		if name == "" {
			name = key.DefaultLayoutName
		}
		L.Push(lua.LString(name))
	default:
		L.RaiseError("options.get: %v: %s", ErrUnknownOption, name)
		return 0
	}
	return 1
}

// print writes to the log instead of stdout.
func (r *Runtime) print(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	r.log.Info("%s", strings.Join(parts, "\t"))
	return 0
}

// checkAction converts argument n to an action. Functions become
// callbacks that re-enter the state under its lock.
func (r *Runtime) checkAction(L *lua.LState, n int, lhs string) keymap.Action {
	switch v := L.CheckAny(n).(type) {
	case lua.LString:
		if v == "" {
			L.ArgError(n, "action cannot be empty")
		}
		return keymap.Excmd(string(v))
	case *lua.LFunction:
		return keymap.Func("lua:"+lhs, r.callback(v))
	}
	L.ArgError(n, "action must be a string or function")
	return keymap.Action{}
}

func (r *Runtime) callback(fn *lua.LFunction) keymap.Callback {
	return func(ctx context.Context, inv keymap.Invocation) error {
		arg := r.state.L.NewTable()
		arg.RawSetString("buffer", lua.LString(inv.BufferID))
		arg.RawSetString("mode", lua.LString(inv.Mode))
		arg.RawSetString("keys", lua.LString(inv.Sequence.String()))
		arg.RawSetString("count", lua.LNumber(inv.Count))

		err := r.state.CallFunction(ctx, r.timeout, fn, arg)
		var apiErr *lua.ApiError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("lua: %s", apiErr.Object.String())
		}
		return err
	}
}

// checkModes reads a mode name or a list of mode names.
func checkModes(L *lua.LState, n int) []mode.ID {
	switch v := L.CheckAny(n).(type) {
	case lua.LString:
		return []mode.ID{mode.ID(v)}
	case *lua.LTable:
		var ids []mode.ID
		v.ForEach(func(_, m lua.LValue) {
			ids = append(ids, mode.ID(lua.LVAsString(m)))
		})
		if len(ids) == 0 {
			L.ArgError(n, "no modes given")
		}
		return ids
	}
	L.ArgError(n, "mode must be a string or a list of strings")
	return nil
}

func tableString(L *lua.LState, t *lua.LTable, field string) string {
	if s, ok := L.GetField(t, field).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// durationValue accepts milliseconds or a Go duration string.
func durationValue(v lua.LValue) (time.Duration, error) {
	switch v := v.(type) {
	case lua.LNumber:
		if v < 0 {
			return 0, fmt.Errorf("%w: negative timeout", ErrBadOption)
		}
		return time.Duration(float64(v) * float64(time.Millisecond)), nil
	case lua.LString:
		d, err := time.ParseDuration(string(v))
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrBadOption, err)
		}
		return d, nil
	}
	return 0, fmt.Errorf("%w: timeout must be milliseconds or a duration string", ErrBadOption)
}
