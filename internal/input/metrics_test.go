package input

import (
	"testing"
	"time"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordKeyEvent(2 * time.Millisecond)
	m.RecordKeyEvent(4 * time.Millisecond)
	m.RecordAction(time.Millisecond, false)
	m.RecordAction(time.Millisecond, true)
	m.RecordReplay(3)
	m.RecordReplay(0)
	m.RecordSequenceTimeout()
	m.RecordHookConsumption()

	s := m.Snapshot()
	if s.KeyEventsTotal != 2 || s.ActionsTotal != 2 || s.ActionErrors != 1 {
		t.Errorf("totals = %+v", s)
	}
	if s.ReplayedKeys != 3 || s.SequenceTimeouts != 1 || s.HookConsumptions != 1 {
		t.Errorf("input counters = %+v", s)
	}
	if s.AvgKeyLatency != 3*time.Millisecond || s.MaxKeyLatency != 4*time.Millisecond {
		t.Errorf("key latency avg=%v max=%v", s.AvgKeyLatency, s.MaxKeyLatency)
	}
	if s.PeakKeyLatency != 4*time.Millisecond {
		t.Errorf("peak = %v", s.PeakKeyLatency)
	}

	m.Reset()
	if m.KeyEventsTotal() != 0 || m.ActionErrors() != 0 {
		t.Error("Reset kept counters")
	}
}

func TestMetricsDisabled(t *testing.T) {
	m := NewMetrics()
	m.SetEnabled(false)
	m.RecordKeyEvent(time.Millisecond)
	m.RecordAction(time.Millisecond, true)
	if m.KeyEventsTotal() != 0 || m.ActionsTotal() != 0 {
		t.Error("disabled metrics recorded")
	}
}

func TestMetricsHealthCheck(t *testing.T) {
	m := NewMetrics()
	if h := m.HealthCheck(time.Second); !h.Healthy {
		t.Errorf("fresh metrics unhealthy: %+v", h)
	}
	m.RecordKeyEvent(2 * time.Second)
	if h := m.HealthCheck(time.Second); h.Healthy || h.Message != "latency threshold exceeded" {
		t.Errorf("slow key: %+v", h)
	}
	m.RecordAction(time.Millisecond, true)
	if h := m.HealthCheck(time.Hour); h.Healthy || h.Message != "action errors detected" {
		t.Errorf("failed action: %+v", h)
	}
}
