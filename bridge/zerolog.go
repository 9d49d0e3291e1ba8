package bridge

import (
	"github.com/rs/zerolog"

	"github.com/lixenwraith/cclog"
)

// ZerologWriter is a zerolog.LevelWriter backed by a Bridge. zerolog does
// the encoding; the bridge applies its threshold and writes each event as
// one message.
type ZerologWriter struct {
	b *Bridge
}

var _ zerolog.LevelWriter = (*ZerologWriter)(nil)

// NewZerologWriter wraps b for use with zerolog.New.
func NewZerologWriter(b *Bridge) *ZerologWriter {
	return &ZerologWriter{b: b}
}

// FromZerologLevel maps zerolog levels onto cclog levels.
func FromZerologLevel(l zerolog.Level) cclog.Level {
	switch l {
	case zerolog.TraceLevel:
		return cclog.LevelTrace
	case zerolog.DebugLevel:
		return cclog.LevelDebug
	case zerolog.WarnLevel:
		return cclog.LevelWarn
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return cclog.LevelError
	default:
		return cclog.LevelInfo
	}
}

// Write logs p at info level.
func (w *ZerologWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel logs p at the mapped level. Filtered and dropped events still
// report the full length so zerolog does not treat them as failures.
func (w *ZerologWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if err := w.b.Log(p, FromZerologLevel(l)); err != nil {
		return 0, err
	}
	return len(p), nil
}
