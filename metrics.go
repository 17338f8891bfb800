package barrier

import (
	"sync/atomic"

	"github.com/ShaoG-R/swmr-barrier/internal/capability"
)

// LatencyBuckets defines the heavy-barrier latency histogram buckets in
// nanoseconds. The expedited syscalls land around a few microseconds;
// the native flush and the global (non-expedited) command can take
// scheduler-bounded milliseconds.
var LatencyBuckets = []uint64{
	1_000,         // 1us
	10_000,        // 10us
	100_000,       // 100us
	1_000_000,     // 1ms
	10_000_000,    // 10ms
	100_000_000,   // 100ms
	1_000_000_000, // 1s
}

const numLatencyBuckets = 7

// Metrics tracks the cold paths only: heavy-barrier invocations by
// strategy and their latency. The light barrier records nothing, by
// design, so its cost stays at a branch and a compiler fence.
type Metrics struct {
	// Heavy invocations by dispatched strategy
	PrivateOps atomic.Uint64 // per-process expedited commands issued
	GlobalOps  atomic.Uint64 // shared (global) commands issued
	NativeOps  atomic.Uint64 // native flush API calls
	FenceOps   atomic.Uint64 // full-fence fallbacks (Unsupported)

	// DegradedOps counts heavy invocations whose primary strategy
	// failed at invoke time and fell through to a weaker path.
	DegradedOps atomic.Uint64

	// Latency tracking for the heavy path
	TotalLatencyNs atomic.Uint64
	OpCount        atomic.Uint64

	// Each bucket[i] counts heavy invocations with latency <= LatencyBuckets[i]
	LatencyBuckets [numLatencyBuckets]atomic.Uint64
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordHeavy records one heavy-barrier invocation.
func (m *Metrics) RecordHeavy(s State, latencyNs uint64, degraded bool) {
	switch s {
	case capability.PrivateExpedited:
		m.PrivateOps.Add(1)
	case capability.SharedExpedited:
		m.GlobalOps.Add(1)
	case capability.OsNativeAPI:
		m.NativeOps.Add(1)
	default:
		m.FenceOps.Add(1)
	}
	if degraded {
		m.DegradedOps.Add(1)
	}

	m.TotalLatencyNs.Add(latencyNs)
	m.OpCount.Add(1)
	for i, bound := range LatencyBuckets {
		if latencyNs <= bound {
			m.LatencyBuckets[i].Add(1)
			break
		}
	}
}

// Snapshot is a point-in-time copy of the metrics with derived values.
type Snapshot struct {
	Capability string

	HeavyOps    uint64
	PrivateOps  uint64
	GlobalOps   uint64
	NativeOps   uint64
	FenceOps    uint64
	DegradedOps uint64

	AvgLatencyNs   float64
	LatencyBuckets [numLatencyBuckets]uint64
}

// Snapshot returns a consistent-enough view of the counters. Counters
// are read individually; the heavy path may race in new increments but
// each value is itself atomic.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		PrivateOps:  m.PrivateOps.Load(),
		GlobalOps:   m.GlobalOps.Load(),
		NativeOps:   m.NativeOps.Load(),
		FenceOps:    m.FenceOps.Load(),
		DegradedOps: m.DegradedOps.Load(),
	}
	s.HeavyOps = s.PrivateOps + s.GlobalOps + s.NativeOps + s.FenceOps

	if ops := m.OpCount.Load(); ops > 0 {
		s.AvgLatencyNs = float64(m.TotalLatencyNs.Load()) / float64(ops)
	}
	for i := range s.LatencyBuckets {
		s.LatencyBuckets[i] = m.LatencyBuckets[i].Load()
	}
	return s
}

// Reset zeroes all counters.
func (m *Metrics) Reset() {
	m.PrivateOps.Store(0)
	m.GlobalOps.Store(0)
	m.NativeOps.Store(0)
	m.FenceOps.Store(0)
	m.DegradedOps.Store(0)
	m.TotalLatencyNs.Store(0)
	m.OpCount.Store(0)
	for i := range m.LatencyBuckets {
		m.LatencyBuckets[i].Store(0)
	}
}

// metrics is the process-wide instance fed by the heavy path.
var metrics = NewMetrics()

// Stats returns a snapshot of the process-wide barrier metrics, with
// the currently resolved capability attached.
func Stats() Snapshot {
	s := metrics.Snapshot()
	s.Capability = resolve().String()
	return s
}
