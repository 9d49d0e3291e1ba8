package compat

import (
	"fmt"
	"os"

	"github.com/panjf2000/gnet/v2/pkg/logging"

	"github.com/lixenwraith/cclog"
	"github.com/lixenwraith/cclog/bridge"
)

const gnetModule = "gnet"

var _ logging.Logger = (*GnetAdapter)(nil)

// GnetAdapter routes gnet's logging.Logger calls through a bridge
type GnetAdapter struct {
	bridge       *bridge.Bridge
	fatalHandler func(msg string) // Customizable fatal behavior
}

// NewGnetAdapter creates a new gnet-compatible logger adapter
func NewGnetAdapter(b *bridge.Bridge, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		bridge: b,
		fatalHandler: func(msg string) {
			os.Exit(1) // gnet expects Fatalf not to return
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// Debugf logs at debug level with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.logf(cclog.LevelDebug, format, args)
}

// Infof logs at info level with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.logf(cclog.LevelInfo, format, args)
}

// Warnf logs at warn level with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.logf(cclog.LevelWarn, format, args)
}

// Errorf logs at error level with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.logf(cclog.LevelError, format, args)
}

// Fatalf logs at error level, flushes and triggers the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_ = a.bridge.Emit(cclog.LevelError, gnetModule, msg, "fatal", true)

	// Ensure the record reaches the sink before exit
	_ = a.bridge.Flush()

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}

func (a *GnetAdapter) logf(level cclog.Level, format string, args []any) {
	if !a.bridge.Enabled(level) {
		return
	}
	_ = a.bridge.Emit(level, gnetModule, fmt.Sprintf(format, args...))
}
