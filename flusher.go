// --- File: flusher.go ---
package cclog

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// MessageWriter accepts whole messages, satisfied by *Logger and Handle.
type MessageWriter interface {
	Write(p []byte) (bool, error)
}

// Flusher flushes a set of loggers on a fixed interval from one goroutine
// and optionally emits a metrics heartbeat line.
type Flusher struct {
	mu      sync.Mutex
	loggers map[*Logger]struct{}

	interval time.Duration
	hb       *heartbeat
	onError  func(error)

	runMu  sync.Mutex    // guards stopCh and done
	stopCh chan struct{} // nil once Stop has signalled
	done   chan struct{} // closed when the goroutine exits, nil when none is alive
}

// FlusherOption customizes a Flusher.
type FlusherOption func(*Flusher)

// WithErrorHandler receives flush and heartbeat errors from the flusher goroutine.
func WithErrorHandler(fn func(error)) FlusherOption {
	return func(f *Flusher) {
		if fn != nil {
			f.onError = fn
		}
	}
}

// WithHeartbeat writes a metrics line for reg to target every interval.
func WithHeartbeat(reg *Registry, target MessageWriter, interval time.Duration) FlusherOption {
	return func(f *Flusher) {
		if reg == nil || target == nil || interval <= 0 {
			return
		}
		f.hb = &heartbeat{reg: reg, target: target, interval: interval}
	}
}

// NewFlusher creates a stopped flusher. A non-positive interval uses the default.
func NewFlusher(interval time.Duration, opts ...FlusherOption) *Flusher {
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	f := &Flusher{
		loggers:  make(map[*Logger]struct{}),
		interval: interval,
		onError:  internalLog,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Add tracks l. Adding a logger twice is a no-op.
func (f *Flusher) Add(l *Logger) {
	if l == nil {
		return
	}
	f.mu.Lock()
	f.loggers[l] = struct{}{}
	f.mu.Unlock()
}

// Remove stops tracking l. It does not flush or destroy it.
func (f *Flusher) Remove(l *Logger) {
	f.mu.Lock()
	delete(f.loggers, l)
	f.mu.Unlock()
}

// Len returns the number of tracked loggers.
func (f *Flusher) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.loggers)
}

// Start launches the flush goroutine. A previous run that timed out in Stop
// must exit before the flusher can start again.
func (f *Flusher) Start() error {
	f.runMu.Lock()
	defer f.runMu.Unlock()

	if f.done != nil {
		select {
		case <-f.done:
			f.done = nil
		default:
			if f.stopCh != nil {
				return fmtErrorf("flusher already started")
			}
			return fmtErrorf("flusher still stopping")
		}
	}

	f.stopCh = make(chan struct{})
	f.done = make(chan struct{})
	go f.run(f.stopCh, f.done)
	return nil
}

// Stop signals the goroutine and waits for it to exit. If no timeout is
// provided, uses 2x the flush interval. Tracked loggers get a final flush.
// After a timeout, calling Stop again keeps waiting for the same goroutine.
func (f *Flusher) Stop(timeout ...time.Duration) error {
	f.runMu.Lock()
	if f.stopCh != nil {
		close(f.stopCh)
		f.stopCh = nil
	}
	done := f.done
	f.runMu.Unlock()

	if done == nil {
		return nil // Already stopped
	}

	effectiveTimeout := 2 * f.interval
	if len(timeout) > 0 {
		effectiveTimeout = timeout[0]
	}

	// Wait for the goroutine to exit (with timeout)
	deadline := time.Now().Add(effectiveTimeout)
	for !isClosed(done) && time.Now().Before(deadline) {
		time.Sleep(minWaitTime)
	}
	if !isClosed(done) {
		return fmtErrorf("flusher did not exit within timeout (%v)", effectiveTimeout)
	}

	f.runMu.Lock()
	if f.done == done {
		f.done = nil
	}
	f.runMu.Unlock()
	return nil
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// run is the flush loop running in a separate goroutine
func (f *Flusher) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	timers := f.setupTimers()
	defer timers.close()

	for {
		select {
		case <-stop:
			f.flushAll()
			return

		case <-timers.flushTicker.C:
			f.flushAll()

		case <-timers.heartbeatChan:
			if err := f.hb.emit(); err != nil {
				f.onError(err)
			}
		}
	}
}

// flushAll flushes every tracked logger, reporting failures without stopping
func (f *Flusher) flushAll() {
	f.mu.Lock()
	targets := make([]*Logger, 0, len(f.loggers))
	for l := range f.loggers {
		targets = append(targets, l)
	}
	f.mu.Unlock()

	for _, l := range targets {
		err := l.Flush()
		switch {
		case err == nil:
		case errors.Is(err, ErrDestroyed):
			// Owner destroyed it without removing it first
			f.Remove(l)
		default:
			f.onError(err)
		}
	}
}

// timerSet holds the tickers used by run
type timerSet struct {
	flushTicker     *time.Ticker
	heartbeatTicker *time.Ticker
	heartbeatChan   <-chan time.Time
}

// setupTimers creates the flush ticker and, if configured, the heartbeat ticker
func (f *Flusher) setupTimers() *timerSet {
	timers := &timerSet{
		flushTicker: time.NewTicker(f.interval),
	}
	if f.hb != nil {
		timers.heartbeatTicker = time.NewTicker(f.hb.interval)
		timers.heartbeatChan = timers.heartbeatTicker.C
	}
	return timers
}

// close stops all active timers
func (t *timerSet) close() {
	t.flushTicker.Stop()
	if t.heartbeatTicker != nil {
		t.heartbeatTicker.Stop()
	}
}

// internalLog reports the logger's own failures on stderr
func internalLog(err error) {
	fmt.Fprintf(os.Stderr, "cclog: %s\n", strings.TrimPrefix(err.Error(), "cclog: "))
}
