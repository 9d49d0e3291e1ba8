// FILE: storage.go
package cclog

import (
	"os"
)

// openFile opens a file sink using the configured mode
func openFile(path string, mode OpenMode, perm os.FileMode) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if mode == OpenAppend {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(path, flags, perm)
}

// flushLocked writes the occupied buffer to the sink in one write.
// The unwritten tail of a failed or short write stays buffered. Assumes mu is held.
func (l *Logger) flushLocked() error {
	if len(l.buf) == 0 {
		return nil
	}

	n, err := l.w.Write(l.buf)
	if err != nil {
		rest := copy(l.buf, l.buf[n:])
		l.buf = l.buf[:rest]
		return fmtErrorf("failed to flush %d bytes to '%s': %w", rest, l.sinkName(), err)
	}
	l.buf = l.buf[:0]

	if l.syncOnFlush && l.file != nil {
		if err := l.file.Sync(); err != nil {
			return fmtErrorf("failed to sync log file '%s': %w", l.path, err)
		}
	}
	return nil
}

// closeFileLocked closes the current file sink, stderr is never closed. Assumes mu is held.
func (l *Logger) closeFileLocked() error {
	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil
	if err := f.Close(); err != nil {
		return fmtErrorf("failed to close log file '%s': %w", f.Name(), err)
	}
	return nil
}

// allocBuffer sets up the fixed-capacity buffer, borrowing from the source if one is set
func (l *Logger) allocBuffer() error {
	if l.source == nil {
		l.buf = make([]byte, 0, l.capacity)
		return nil
	}

	b, ok := l.source.Take()
	if !ok {
		return fmtErrorf("buffer source exhausted: %w", ErrBufferUnavailable)
	}
	if cap(b) < l.capacity {
		l.source.Put(b)
		return fmtErrorf("borrowed buffer holds %d bytes, need %d: %w", cap(b), l.capacity, ErrBufferUnavailable)
	}
	l.borrowed = b
	l.buf = b[:0:l.capacity]
	return nil
}

// releaseBuffer drops the buffer, returning a borrowed one to its source
func (l *Logger) releaseBuffer() {
	if l.borrowed != nil && l.source != nil {
		l.source.Put(l.borrowed)
	}
	l.borrowed = nil
	l.buf = nil
}

// sinkName returns the path or "stderr" for messages
func (l *Logger) sinkName() string {
	if l.file == nil && l.path == "" {
		return "stderr"
	}
	return l.path
}
