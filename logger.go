// FILE: lixenwraith/cclog/logger.go
package cclog

import (
	"errors"
	"io"
	"os"
	"sync"
)

// BufferSource supplies logger buffers, typically a preallocated pool.
type BufferSource interface {
	Take() ([]byte, bool)
	Put([]byte)
}

// Logger owns a sink, either a file or standard error, and an optional
// fixed-capacity buffer. A Logger is safe for concurrent use; mutations of
// the buffer and the sink are serialized by one mutex per Logger.
type Logger struct {
	mu  sync.Mutex
	reg *Registry

	file *os.File  // nil when bound to stderr
	w    io.Writer // current sink
	path string    // remembered for reopen, empty for stderr

	buf      []byte // len is the fill, cap is the capacity
	borrowed []byte // original slice taken from source
	capacity int

	source      BufferSource
	mode        OpenMode
	perm        os.FileMode
	syncOnFlush bool

	destroyed bool
}

// Option customizes a Logger at creation.
type Option func(*Logger)

// WithOpenMode selects truncate or append for file sinks.
func WithOpenMode(mode OpenMode) Option {
	return func(l *Logger) {
		l.mode = mode
	}
}

// WithFileMode sets permission bits for created files.
func WithFileMode(perm os.FileMode) Option {
	return func(l *Logger) {
		l.perm = perm
	}
}

// WithSyncOnFlush makes every non-empty flush fsync the file sink.
func WithSyncOnFlush(enable bool) Option {
	return func(l *Logger) {
		l.syncOnFlush = enable
	}
}

// WithBufferSource borrows the buffer from src instead of allocating it.
// The buffer is returned to src on Destroy.
func WithBufferSource(src BufferSource) Option {
	return func(l *Logger) {
		l.source = src
	}
}

// Create opens a logger against reg. An empty path binds to standard error,
// which is never counted as an open. A zero capacity makes every write a
// direct sink write.
func Create(reg *Registry, path string, capacity uint32, opts ...Option) (*Logger, error) {
	if reg == nil {
		return nil, ErrNotSetUp
	}
	m, err := reg.Metrics()
	if err != nil {
		return nil, err
	}
	if capacity > maxBufferCapacity {
		return nil, fmtErrorf("buffer capacity %d exceeds limit %d", capacity, maxBufferCapacity)
	}

	l := &Logger{
		reg:      reg,
		path:     path,
		capacity: int(capacity),
		mode:     OpenTruncate,
		perm:     defaultFileMode,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.capacity > 0 {
		if err := l.allocBuffer(); err != nil {
			return nil, err
		}
	}

	if path == "" {
		l.w = os.Stderr
	} else {
		f, err := openFile(path, l.mode, l.perm)
		if err != nil {
			l.releaseBuffer()
			return nil, &OpenError{Op: "create", Path: path, Err: err}
		}
		l.file = f
		l.w = f
		m.Opens.Add(1)
	}

	m.Creations.Add(1)
	m.Active.Add(1)
	return l, nil
}

// Write submits one message. Unbuffered loggers write through and return
// any sink error. Buffered loggers append when the whole message fits and
// otherwise drop it, returning false with a nil error. Write never flushes.
func (l *Logger) Write(p []byte) (bool, error) {
	m, err := l.reg.Metrics()
	if err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.destroyed {
		return false, ErrDestroyed
	}

	if l.capacity == 0 {
		if _, err := l.w.Write(p); err != nil {
			return false, fmtErrorf("failed to write to '%s': %w", l.sinkName(), err)
		}
		m.Writes.Add(1)
		return true, nil
	}

	if len(p) > l.capacity-len(l.buf) {
		m.SkippedMessages.Add(1)
		m.SkippedBytes.Add(uint64(len(p)))
		return false, nil
	}
	l.buf = append(l.buf, p...)
	m.Writes.Add(1)
	return true, nil
}

// Flush writes buffered bytes to the sink and empties the buffer.
func (l *Logger) Flush() error {
	if _, err := l.reg.Metrics(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.destroyed {
		return ErrDestroyed
	}
	return l.flushLocked()
}

// Sync flushes and then fsyncs a file sink.
func (l *Logger) Sync() error {
	if _, err := l.reg.Metrics(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.destroyed {
		return ErrDestroyed
	}
	if err := l.flushLocked(); err != nil {
		return err
	}
	if l.file != nil {
		if err := l.file.Sync(); err != nil {
			return fmtErrorf("failed to sync log file '%s': %w", l.path, err)
		}
	}
	return nil
}

// Reopen rotates the sink. Buffered data goes to the current sink first.
// The new file is opened at newPath, or at the remembered path when newPath
// is empty, before the old file is closed, so a failed open leaves the
// logger writing where it was. A non-empty newPath is remembered.
// A stderr logger with no newPath only flushes.
func (l *Logger) Reopen(newPath string) error {
	m, err := l.reg.Metrics()
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.destroyed {
		return ErrDestroyed
	}

	if err := l.flushLocked(); err != nil {
		return fmtErrorf("reopen aborted, buffered data not flushed: %w", err)
	}

	target := newPath
	if target == "" {
		target = l.path
	}
	if target == "" {
		return nil
	}

	f, err := openFile(target, l.mode, l.perm)
	if err != nil {
		return &OpenError{Op: "reopen", Path: target, Err: err}
	}

	closeErr := l.closeFileLocked()
	l.file = f
	l.w = f
	l.path = target
	m.Opens.Add(1)

	return closeErr
}

// Destroy flushes, closes the file sink and releases the buffer. It runs
// once; later calls return ErrDestroyed. Resources are released even when
// the final flush or close fails.
func (l *Logger) Destroy() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.destroyed {
		return ErrDestroyed
	}
	m, err := l.reg.Metrics()
	if err != nil {
		return err
	}
	l.destroyed = true

	finalErr := l.flushLocked()
	finalErr = combineErrors(finalErr, l.closeFileLocked())
	l.w = nil
	l.releaseBuffer()

	m.Active.Add(-1)
	m.Destructions.Add(1)
	return finalErr
}

// Destroy destroys *lp and sets the caller's reference to nil.
func Destroy(lp **Logger) error {
	if lp == nil || *lp == nil {
		return ErrDestroyed
	}
	err := (*lp).Destroy()
	if errors.Is(err, ErrNotSetUp) {
		return err
	}
	*lp = nil
	return err
}

// Path returns the remembered sink path, empty for stderr.
func (l *Logger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// IsStderr reports whether the logger writes to standard error.
func (l *Logger) IsStderr() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file == nil && !l.destroyed
}

// Capacity returns the fixed buffer capacity, zero when unbuffered.
func (l *Logger) Capacity() int {
	return l.capacity
}

// Buffered returns the bytes currently held in the buffer.
func (l *Logger) Buffered() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buf)
}

// Destroyed reports whether Destroy has run.
func (l *Logger) Destroyed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.destroyed
}

// Handle returns a non-owning view of the logger's write path.
func (l *Logger) Handle() Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Handle{l: l, path: l.path, capacity: l.capacity}
}

// Handle is a small value mirroring a Logger's sink configuration. It
// forwards writes and flushes to the Logger but cannot close or destroy it;
// the Logger's owner keeps sole responsibility for release. Once the owner
// destroys the Logger every call returns ErrDestroyed.
type Handle struct {
	l        *Logger
	path     string
	capacity int
}

// Write forwards to Logger.Write.
func (h Handle) Write(p []byte) (bool, error) {
	if h.l == nil {
		return false, ErrDestroyed
	}
	return h.l.Write(p)
}

// Flush forwards to Logger.Flush.
func (h Handle) Flush() error {
	if h.l == nil {
		return ErrDestroyed
	}
	return h.l.Flush()
}

// Path is the sink path at the time the handle was taken.
func (h Handle) Path() string { return h.path }

// Capacity is the logger's buffer capacity.
func (h Handle) Capacity() int { return h.capacity }

// Valid reports whether the handle refers to a live logger.
func (h Handle) Valid() bool {
	return h.l != nil && !h.l.Destroyed()
}
