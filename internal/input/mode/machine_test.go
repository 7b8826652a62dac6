package mode

import (
	"errors"
	"testing"
)

func TestMachineSwitch(t *testing.T) {
	m := NewMachine(nil)

	var changes []Change
	m.OnChange(func(c Change) { changes = append(changes, c) })

	if got := m.Current("b1"); got != "" {
		t.Errorf("Current() before first switch = %q, want empty", got)
	}

	if _, err := m.Switch("b1", Normal); err != nil {
		t.Fatalf("Switch() error = %v", err)
	}
	if _, err := m.Switch("b1", Insert); err != nil {
		t.Fatalf("Switch() error = %v", err)
	}

	want := []Change{
		{BufferID: "b1", Previous: "", Current: Normal},
		{BufferID: "b1", Previous: Normal, Current: Insert},
	}
	if len(changes) != len(want) {
		t.Fatalf("got %d changes, want %d", len(changes), len(want))
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("change[%d] = %+v, want %+v", i, changes[i], want[i])
		}
	}
}

func TestMachineBuffersIndependent(t *testing.T) {
	m := NewMachine(nil)
	_, _ = m.Switch("b1", Insert)
	_, _ = m.Switch("b2", Visual)

	if !m.IsMode("b1", Insert) || !m.IsMode("b2", Visual) {
		t.Errorf("buffers share state: b1=%q b2=%q", m.Current("b1"), m.Current("b2"))
	}
	if !m.IsAnyMode("b2", Normal, Visual) || m.IsAnyMode("b2", Normal, Insert) {
		t.Error("IsAnyMode misreported")
	}
}

func TestMachineUnknownMode(t *testing.T) {
	m := NewMachine(nil)
	if _, err := m.Switch("b1", "nope"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("Switch(nope) error = %v, want ErrUnknownMode", err)
	}
	if got := m.Current("b1"); got != "" {
		t.Errorf("failed switch changed state to %q", got)
	}
}

func TestMachineRuntimeMode(t *testing.T) {
	reg := NewRegistry()
	m := NewMachine(reg)
	if _, err := reg.Register("browse", Options{}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Switch("b1", "browse"); err != nil {
		t.Errorf("Switch(browse) error = %v", err)
	}
}

func TestMachineDrop(t *testing.T) {
	m := NewMachine(nil)
	_, _ = m.Switch("b1", Insert)
	m.Drop("b1")

	c, err := m.Switch("b1", Normal)
	if err != nil {
		t.Fatal(err)
	}
	if c.Previous != "" {
		t.Errorf("Previous after Drop = %q, want empty", c.Previous)
	}
}

func TestMachineOnChangeUnregister(t *testing.T) {
	m := NewMachine(nil)
	calls := 0
	unregister := m.OnChange(func(Change) { calls++ })

	_, _ = m.Switch("b1", Normal)
	unregister()
	_, _ = m.Switch("b1", Insert)

	if calls != 1 {
		t.Errorf("callback called %d times, want 1", calls)
	}
}
