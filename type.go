// FILE: lixenwraith/cclog/type.go
package cclog

import (
	"strings"
)

// Level is a log severity. Lower values are more severe.
type Level int

// OpenMode selects how a file sink is opened on create and reopen.
type OpenMode int

// String returns the upper-case level name.
func (lv Level) String() string {
	switch lv {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return "LEVEL(" + itoa(int(lv)) + ")"
	}
}

// Valid reports whether lv is one of the five defined levels.
func (lv Level) Valid() bool {
	return lv >= LevelError && lv <= LevelTrace
}

// Enabled reports whether a message at lv passes a threshold.
// A message passes when it is at least as severe as the threshold.
func (lv Level) Enabled(threshold Level) bool {
	return lv <= threshold
}

// ParseLevel converts a level name to its Level.
func ParseLevel(levelStr string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "trace":
		return LevelTrace, nil
	default:
		return 0, fmtErrorf("invalid level string: '%s' (use error, warn, info, debug, trace)", levelStr)
	}
}

// String returns the config name of the open mode.
func (m OpenMode) String() string {
	switch m {
	case OpenTruncate:
		return "truncate"
	case OpenAppend:
		return "append"
	default:
		return "unknown"
	}
}

// ParseOpenMode converts "truncate" or "append" to an OpenMode.
func ParseOpenMode(s string) (OpenMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "truncate", "":
		return OpenTruncate, nil
	case "append":
		return OpenAppend, nil
	default:
		return 0, fmtErrorf("invalid open_mode: '%s' (use truncate or append)", s)
	}
}
