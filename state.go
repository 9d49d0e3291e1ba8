// FILE: state.go
package cclog

import (
	"sync/atomic"
)

// Metrics is the shared counter storage mutated by every Logger bound to a
// Registry. All fields are safe for concurrent use.
type Metrics struct {
	Creations       atomic.Uint64 // loggers created
	Destructions    atomic.Uint64 // loggers destroyed
	Active          atomic.Int64  // loggers currently alive
	Opens           atomic.Uint64 // file sinks opened, stderr excluded
	Writes          atomic.Uint64 // accepted writes
	SkippedMessages atomic.Uint64 // messages dropped on buffer overflow
	SkippedBytes    atomic.Uint64 // bytes of dropped messages
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Creations       uint64
	Destructions    uint64
	Active          int64
	Opens           uint64
	Writes          uint64
	SkippedMessages uint64
	SkippedBytes    uint64
}

// NewMetrics returns zeroed metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Creations:       m.Creations.Load(),
		Destructions:    m.Destructions.Load(),
		Active:          m.Active.Load(),
		Opens:           m.Opens.Load(),
		Writes:          m.Writes.Load(),
		SkippedMessages: m.SkippedMessages.Load(),
		SkippedBytes:    m.SkippedBytes.Load(),
	}
}

// Reset zeroes all counters.
func (m *Metrics) Reset() {
	m.Creations.Store(0)
	m.Destructions.Store(0)
	m.Active.Store(0)
	m.Opens.Store(0)
	m.Writes.Store(0)
	m.SkippedMessages.Store(0)
	m.SkippedBytes.Store(0)
}

// Registry installs the Metrics storage that loggers created against it
// report into. It must be set up before any Logger is created and stay set
// up for the loggers' lifetime.
type Registry struct {
	metrics atomic.Pointer[Metrics]
}

// NewRegistry returns a registry with no storage installed.
func NewRegistry() *Registry {
	return &Registry{}
}

// Setup installs m. Calling Setup twice without Teardown fails.
func (r *Registry) Setup(m *Metrics) error {
	if m == nil {
		return fmtErrorf("metrics storage cannot be nil")
	}
	if !r.metrics.CompareAndSwap(nil, m) {
		return ErrAlreadySetUp
	}
	return nil
}

// Teardown detaches the installed storage. Loggers still bound to the
// registry fail with ErrNotSetUp until Setup is called again.
func (r *Registry) Teardown() {
	r.metrics.Store(nil)
}

// IsSetUp reports whether storage is installed.
func (r *Registry) IsSetUp() bool {
	return r.metrics.Load() != nil
}

// Metrics returns the installed storage or ErrNotSetUp.
func (r *Registry) Metrics() (*Metrics, error) {
	m := r.metrics.Load()
	if m == nil {
		return nil, ErrNotSetUp
	}
	return m, nil
}

// Snapshot copies the installed counters or returns ErrNotSetUp.
func (r *Registry) Snapshot() (MetricsSnapshot, error) {
	m, err := r.Metrics()
	if err != nil {
		return MetricsSnapshot{}, err
	}
	return m.Snapshot(), nil
}
