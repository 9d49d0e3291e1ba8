// FILE: lixenwraith/cclog/bridge/bridge.go
// Package bridge routes leveled records from host logging APIs into one
// registered cclog.Logger. The bridge holds a non-owning Handle to the
// Logger; unregistering never closes it.
package bridge

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/cclog"
	"github.com/lixenwraith/cclog/formatter"
	"github.com/lixenwraith/cclog/pool"
	"github.com/lixenwraith/cclog/sanitizer"
)

// Errors shared with the core package match with errors.Is against either name.
var (
	ErrNotSetUp          = cclog.ErrNotSetUp
	ErrAlreadySetUp      = cclog.ErrAlreadySetUp
	ErrAlreadyRegistered = errors.New("cclog: bridge already registered")
	ErrStillRegistered   = errors.New("cclog: bridge still registered")
	ErrInvalidEncoding   = errors.New("cclog: message is not valid UTF-8")
)

// State is the bridge lifecycle position.
type State int

const (
	StateUnprepared State = iota
	StatePrepared
	StateRegistered
)

func (s State) String() string {
	switch s {
	case StateUnprepared:
		return "unprepared"
	case StatePrepared:
		return "prepared"
	case StateRegistered:
		return "registered"
	default:
		return "unknown"
	}
}

// Bridge moves through Unprepared, Prepared and Registered. Log calls are
// only accepted while Registered. A Bridge is safe for concurrent use.
type Bridge struct {
	mu     sync.RWMutex
	state  State
	handle cclog.Handle

	threshold atomic.Int64

	requireUTF8 bool
	flushOnLog  bool
	format      string
	san         *sanitizer.Sanitizer
	now         func() time.Time

	formatters *pool.Pool[*formatter.Formatter]
}

// Option customizes a Bridge.
type Option func(*Bridge)

// WithFlushOnLog flushes the logger after every accepted message.
func WithFlushOnLog(enable bool) Option {
	return func(b *Bridge) {
		b.flushOnLog = enable
	}
}

// WithRequireUTF8 controls rejection of messages that are not valid UTF-8.
func WithRequireUTF8(enable bool) Option {
	return func(b *Bridge) {
		b.requireUTF8 = enable
	}
}

// WithFormat selects "txt" or "json" records for Emit.
func WithFormat(format string) Option {
	return func(b *Bridge) {
		b.format = format
	}
}

// WithSanitizer replaces the format's default sanitizer for Emit.
func WithSanitizer(s *sanitizer.Sanitizer) Option {
	return func(b *Bridge) {
		b.san = s
	}
}

// WithClock sets the timestamp source for Emit.
func WithClock(now func() time.Time) Option {
	return func(b *Bridge) {
		if now != nil {
			b.now = now
		}
	}
}

// New creates an unprepared bridge.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		requireUTF8: true,
		format:      "txt",
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.formatters = pool.New(pool.Config[*formatter.Formatter]{
		New: func() *formatter.Formatter {
			if b.san != nil {
				return formatter.New(b.san).Type(b.format)
			}
			return formatter.New().Type(b.format)
		},
	})
	return b
}

// Setup prepares the bridge for registration.
func (b *Bridge) Setup() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateUnprepared {
		return ErrAlreadySetUp
	}
	b.state = StatePrepared
	return nil
}

// Teardown returns a prepared bridge to Unprepared. An active registration
// must be removed first.
func (b *Bridge) Teardown() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateUnprepared:
		return ErrNotSetUp
	case StateRegistered:
		return ErrStillRegistered
	}
	b.state = StateUnprepared
	return nil
}

// Register takes a non-owning handle to l and sets the threshold.
func (b *Bridge) Register(l *cclog.Logger, minLevel cclog.Level) error {
	if l == nil || l.Destroyed() {
		return cclog.ErrDestroyed
	}
	if !minLevel.Valid() {
		return errors.New("cclog: invalid bridge level " + minLevel.String())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateUnprepared:
		return ErrNotSetUp
	case StateRegistered:
		return ErrAlreadyRegistered
	}
	b.handle = l.Handle()
	b.threshold.Store(int64(minLevel))
	b.state = StateRegistered
	return nil
}

// IsRegistered reports whether a logger is registered.
func (b *Bridge) IsRegistered() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state == StateRegistered
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// MaxLevel returns the current threshold.
func (b *Bridge) MaxLevel() cclog.Level {
	return cclog.Level(b.threshold.Load())
}

// SetMaxLevel replaces the threshold in place. Levels outside Error..Trace
// are ignored and leave the current threshold unchanged.
func (b *Bridge) SetMaxLevel(level cclog.Level) {
	if !level.Valid() {
		return
	}
	b.threshold.Store(int64(level))
}

// Enabled reports whether a message at level would reach the logger.
func (b *Bridge) Enabled(level cclog.Level) bool {
	return b.IsRegistered() && level.Enabled(b.MaxLevel())
}

// Unregister drops the handle and reports whether one was registered.
// The Logger itself is left untouched.
func (b *Bridge) Unregister() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateRegistered {
		return false
	}
	b.handle = cclog.Handle{}
	b.state = StatePrepared
	return true
}

// current returns a copy of the registered handle
func (b *Bridge) current() (cclog.Handle, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.state != StateRegistered {
		return cclog.Handle{}, ErrNotSetUp
	}
	return b.handle, nil
}

// Log forwards msg when level passes the threshold. Messages below it never
// reach the logger and are never counted. Overflow drops are silent.
func (b *Bridge) Log(msg []byte, level cclog.Level) error {
	h, err := b.current()
	if err != nil {
		return err
	}
	if !level.Enabled(b.MaxLevel()) {
		return nil
	}
	if b.requireUTF8 && !sanitizer.ValidText(msg) {
		return ErrInvalidEncoding
	}
	return b.write(h, msg)
}

// Emit formats a record with the bridge's formatter and logs it.
func (b *Bridge) Emit(level cclog.Level, module, msg string, fields ...any) error {
	return b.emitAt(b.now(), level, module, msg, fields)
}

// emitAt formats and writes a record with an explicit timestamp
func (b *Bridge) emitAt(ts time.Time, level cclog.Level, module, msg string, fields []any) error {
	h, err := b.current()
	if err != nil {
		return err
	}
	if !level.Enabled(b.MaxLevel()) {
		return nil
	}

	f, _ := b.formatters.Take() // unbounded, never fails
	defer b.formatters.Put(f)

	record := f.Format(ts, level, module, msg, fields)
	// Built-in policies always produce valid UTF-8; a custom sanitizer may not
	if b.requireUTF8 && b.san != nil && !sanitizer.ValidText(record) {
		return ErrInvalidEncoding
	}
	return b.write(h, record)
}

func (b *Bridge) write(h cclog.Handle, p []byte) error {
	if _, err := h.Write(p); err != nil {
		return err
	}
	if b.flushOnLog {
		return h.Flush()
	}
	return nil
}

// Flush flushes the registered logger.
func (b *Bridge) Flush() error {
	h, err := b.current()
	if err != nil {
		return err
	}
	return h.Flush()
}
