package input

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// defaultLatencySamples is the size of each latency ring buffer.
const defaultLatencySamples = 1000

// Metrics tracks key processing and action dispatch.
type Metrics struct {
	keyEventsTotal   atomic.Uint64
	actionsTotal     atomic.Uint64
	actionErrors     atomic.Uint64
	replayedKeys     atomic.Uint64
	sequenceTimeouts atomic.Uint64
	hookConsumptions atomic.Uint64

	// Latency tracking
	mu                sync.RWMutex
	keyLatencies      []time.Duration
	actionLatencies   []time.Duration
	maxLatencySamples int
	latencyIdx        int
	actionLatencyIdx  int

	// Peak latency (all time)
	peakKeyLatency    atomic.Int64
	peakActionLatency atomic.Int64

	startTime time.Time

	enabled atomic.Bool
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		keyLatencies:      make([]time.Duration, defaultLatencySamples),
		actionLatencies:   make([]time.Duration, defaultLatencySamples),
		maxLatencySamples: defaultLatencySamples,
		startTime:         time.Now(),
	}
	m.enabled.Store(true)
	return m
}

// SetEnabled enables or disables metrics collection.
func (m *Metrics) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// IsEnabled returns whether metrics collection is enabled.
func (m *Metrics) IsEnabled() bool {
	return m.enabled.Load()
}

// RecordKeyEvent records a key with its processing time.
func (m *Metrics) RecordKeyEvent(latency time.Duration) {
	if !m.enabled.Load() {
		return
	}
	m.keyEventsTotal.Add(1)
	storePeak(&m.peakKeyLatency, latency)

	m.mu.Lock()
	m.keyLatencies[m.latencyIdx] = latency
	m.latencyIdx = (m.latencyIdx + 1) % m.maxLatencySamples
	m.mu.Unlock()
}

// RecordAction records an action dispatch with its run time.
func (m *Metrics) RecordAction(latency time.Duration, failed bool) {
	if !m.enabled.Load() {
		return
	}
	m.actionsTotal.Add(1)
	if failed {
		m.actionErrors.Add(1)
	}
	storePeak(&m.peakActionLatency, latency)

	m.mu.Lock()
	m.actionLatencies[m.actionLatencyIdx] = latency
	m.actionLatencyIdx = (m.actionLatencyIdx + 1) % m.maxLatencySamples
	m.mu.Unlock()
}

// RecordReplay records withheld keys released as input.
func (m *Metrics) RecordReplay(keys int) {
	if !m.enabled.Load() || keys <= 0 {
		return
	}
	m.replayedKeys.Add(uint64(keys))
}

// RecordSequenceTimeout records a pending sequence timing out.
func (m *Metrics) RecordSequenceTimeout() {
	if !m.enabled.Load() {
		return
	}
	m.sequenceTimeouts.Add(1)
}

// RecordHookConsumption records when a hook consumes a key or action.
func (m *Metrics) RecordHookConsumption() {
	if !m.enabled.Load() {
		return
	}
	m.hookConsumptions.Add(1)
}

func storePeak(peak *atomic.Int64, latency time.Duration) {
	ns := latency.Nanoseconds()
	for {
		current := peak.Load()
		if ns <= current || peak.CompareAndSwap(current, ns) {
			return
		}
	}
}

// MetricsSnapshot holds a point-in-time view of metrics.
type MetricsSnapshot struct {
	KeyEventsTotal   uint64
	ActionsTotal     uint64
	ActionErrors     uint64
	ReplayedKeys     uint64
	SequenceTimeouts uint64
	HookConsumptions uint64

	AvgKeyLatency  time.Duration
	MaxKeyLatency  time.Duration
	P99KeyLatency  time.Duration
	PeakKeyLatency time.Duration

	AvgActionLatency  time.Duration
	MaxActionLatency  time.Duration
	P99ActionLatency  time.Duration
	PeakActionLatency time.Duration

	EventsPerSecond  float64
	ActionsPerSecond float64

	Uptime time.Duration
}

// Snapshot returns a point-in-time view of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	keyLatencies := slices.Clone(m.keyLatencies)
	actionLatencies := slices.Clone(m.actionLatencies)
	uptime := time.Since(m.startTime)
	m.mu.RUnlock()

	keyCount := m.keyEventsTotal.Load()
	actionCount := m.actionsTotal.Load()

	snap := MetricsSnapshot{
		KeyEventsTotal:    keyCount,
		ActionsTotal:      actionCount,
		ActionErrors:      m.actionErrors.Load(),
		ReplayedKeys:      m.replayedKeys.Load(),
		SequenceTimeouts:  m.sequenceTimeouts.Load(),
		HookConsumptions:  m.hookConsumptions.Load(),
		PeakKeyLatency:    time.Duration(m.peakKeyLatency.Load()),
		PeakActionLatency: time.Duration(m.peakActionLatency.Load()),
		Uptime:            uptime,
	}

	if uptime > 0 {
		snap.EventsPerSecond = float64(keyCount) / uptime.Seconds()
		snap.ActionsPerSecond = float64(actionCount) / uptime.Seconds()
	}

	snap.AvgKeyLatency, snap.MaxKeyLatency, snap.P99KeyLatency = calculateLatencyStats(keyLatencies)
	snap.AvgActionLatency, snap.MaxActionLatency, snap.P99ActionLatency = calculateLatencyStats(actionLatencies)
	return snap
}

// calculateLatencyStats computes average, max, and p99 from a slice of latencies.
func calculateLatencyStats(latencies []time.Duration) (avg, maxLat, p99 time.Duration) {
	valid := make([]time.Duration, 0, len(latencies))
	for _, l := range latencies {
		if l > 0 {
			valid = append(valid, l)
		}
	}
	if len(valid) == 0 {
		return 0, 0, 0
	}

	var sum time.Duration
	for _, l := range valid {
		sum += l
	}
	avg = sum / time.Duration(len(valid))

	slices.Sort(valid)
	maxLat = valid[len(valid)-1]

	idx := int(float64(len(valid)) * 0.99)
	if idx >= len(valid) {
		idx = len(valid) - 1
	}
	p99 = valid[idx]

	return avg, maxLat, p99
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.keyEventsTotal.Store(0)
	m.actionsTotal.Store(0)
	m.actionErrors.Store(0)
	m.replayedKeys.Store(0)
	m.sequenceTimeouts.Store(0)
	m.hookConsumptions.Store(0)
	m.peakKeyLatency.Store(0)
	m.peakActionLatency.Store(0)

	m.mu.Lock()
	m.keyLatencies = make([]time.Duration, m.maxLatencySamples)
	m.actionLatencies = make([]time.Duration, m.maxLatencySamples)
	m.latencyIdx = 0
	m.actionLatencyIdx = 0
	m.startTime = time.Now()
	m.mu.Unlock()
}

// KeyEventsTotal returns the total number of keys processed.
func (m *Metrics) KeyEventsTotal() uint64 {
	return m.keyEventsTotal.Load()
}

// ActionsTotal returns the total number of actions dispatched.
func (m *Metrics) ActionsTotal() uint64 {
	return m.actionsTotal.Load()
}

// ActionErrors returns the number of actions that failed.
func (m *Metrics) ActionErrors() uint64 {
	return m.actionErrors.Load()
}

// HealthStatus represents the current health status of key processing.
type HealthStatus struct {
	Healthy          bool
	ActionErrors     uint64
	PeakLatency      time.Duration
	LatencyThreshold time.Duration
	Message          string
}

// HealthCheck returns the current health status.
func (m *Metrics) HealthCheck(latencyThreshold time.Duration) HealthStatus {
	status := HealthStatus{
		Healthy:          true,
		ActionErrors:     m.actionErrors.Load(),
		PeakLatency:      time.Duration(m.peakKeyLatency.Load()),
		LatencyThreshold: latencyThreshold,
	}

	switch {
	case status.ActionErrors > 0:
		status.Healthy = false
		status.Message = "action errors detected"
	case status.PeakLatency > latencyThreshold:
		status.Healthy = false
		status.Message = "latency threshold exceeded"
	default:
		status.Message = "healthy"
	}
	return status
}

// Timer measures the processing time of one key.
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// StartKeyEventTimer starts a timer for measuring key processing.
func (m *Metrics) StartKeyEventTimer() *Timer {
	return &Timer{start: time.Now(), metrics: m}
}

// Stop stops the timer and records the key latency.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.metrics.RecordKeyEvent(elapsed)
	return elapsed
}
