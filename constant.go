// FILE: lixenwraith/cclog/constant.go
package cclog

import (
	"os"
	"time"
)

// Log levels, most to least severe. Threshold checks rely on this ordering.
const (
	LevelError Level = iota + 1
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// Sink open modes
const (
	OpenTruncate OpenMode = iota // create or truncate, conventional for rotation
	OpenAppend                   // create or append
)

// Storage
const (
	// Permission bits for newly created log files
	defaultFileMode os.FileMode = 0644
	// Upper bound on a single logger buffer, keeps capacity within uint32 and sane
	maxBufferCapacity = 1 << 30
)

// Timers
const (
	// Minimum wait time used by the flusher stop loop
	minWaitTime = 10 * time.Millisecond
	// Default interval for periodic flushing
	defaultFlushInterval = 100 * time.Millisecond
)
