// --- File: bridge/default.go ---
package bridge

import (
	"github.com/lixenwraith/cclog"
)

// Process-wide bridge for package-level functions
var std = New()

// Default returns the process-wide bridge
func Default() *Bridge {
	return std
}

// Setup prepares the default bridge
func Setup() error {
	return std.Setup()
}

// Teardown unprepares the default bridge
func Teardown() error {
	return std.Teardown()
}

// Register binds l to the default bridge
func Register(l *cclog.Logger, minLevel cclog.Level) error {
	return std.Register(l, minLevel)
}

// IsRegistered reports whether the default bridge has a logger
func IsRegistered() bool {
	return std.IsRegistered()
}

// Log forwards msg through the default bridge
func Log(msg []byte, level cclog.Level) error {
	return std.Log(msg, level)
}

// Emit formats and forwards a record through the default bridge
func Emit(level cclog.Level, module, msg string, fields ...any) error {
	return std.Emit(level, module, msg, fields...)
}

// SetMaxLevel updates the default bridge threshold
func SetMaxLevel(level cclog.Level) {
	std.SetMaxLevel(level)
}

// Unregister drops the default bridge's handle
func Unregister() bool {
	return std.Unregister()
}

// Flush flushes the logger behind the default bridge
func Flush() error {
	return std.Flush()
}
