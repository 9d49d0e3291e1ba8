// FILE: lixenwraith/cclog/compat/fasthttp.go
package compat

import (
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/cclog"
	"github.com/lixenwraith/cclog/bridge"
)

const fasthttpModule = "fasthttp"

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

// FastHTTPAdapter routes fasthttp's Printf logging through a bridge
type FastHTTPAdapter struct {
	bridge        *bridge.Bridge
	defaultLevel  cclog.Level
	levelDetector func(string) cclog.Level // 0 means no opinion
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter
func NewFastHTTPAdapter(b *bridge.Bridge, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		bridge:        b,
		defaultLevel:  cclog.LevelInfo,
		levelDetector: DetectLogLevel,
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the level used when detection has no opinion
func WithDefaultLevel(level cclog.Level) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		if level.Valid() {
			a.defaultLevel = level
		}
	}
}

// WithLevelDetector sets a custom function to detect log level from message content
func WithLevelDetector(detector func(string) cclog.Level) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected := a.levelDetector(msg); detected.Valid() {
			level = detected
		}
	}

	_ = a.bridge.Emit(level, fasthttpModule, msg)
}

// DetectLogLevel guesses a level from keywords in fasthttp's messages.
// It returns 0 when nothing matches.
func DetectLogLevel(msg string) cclog.Level {
	msgLower := strings.ToLower(msg)

	switch {
	case strings.Contains(msgLower, "error"),
		strings.Contains(msgLower, "failed"),
		strings.Contains(msgLower, "fatal"),
		strings.Contains(msgLower, "panic"):
		return cclog.LevelError
	case strings.Contains(msgLower, "warn"),
		strings.Contains(msgLower, "deprecated"):
		return cclog.LevelWarn
	case strings.Contains(msgLower, "debug"):
		return cclog.LevelDebug
	case strings.Contains(msgLower, "trace"):
		return cclog.LevelTrace
	}
	return 0
}
