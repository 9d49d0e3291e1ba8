package bridge

import (
	"context"
	"log/slog"

	"github.com/lixenwraith/cclog"
)

// SlogHandler adapts a Bridge to log/slog.
type SlogHandler struct {
	b      *Bridge
	module string
	attrs  []any  // pre-flattened key-value pairs from WithAttrs
	group  string // dotted prefix for keys added after WithGroup
}

// NewSlogHandler returns a slog.Handler that emits through b under module.
func NewSlogHandler(b *Bridge, module string) *SlogHandler {
	return &SlogHandler{b: b, module: module}
}

// FromSlogLevel maps slog levels onto cclog levels.
func FromSlogLevel(l slog.Level) cclog.Level {
	switch {
	case l >= slog.LevelError:
		return cclog.LevelError
	case l >= slog.LevelWarn:
		return cclog.LevelWarn
	case l >= slog.LevelInfo:
		return cclog.LevelInfo
	case l >= slog.LevelDebug:
		return cclog.LevelDebug
	default:
		return cclog.LevelTrace
	}
}

// Enabled implements slog.Handler.
func (h *SlogHandler) Enabled(_ context.Context, l slog.Level) bool {
	return h.b.Enabled(FromSlogLevel(l))
}

// Handle implements slog.Handler.
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]any, 0, len(h.attrs)+2*r.NumAttrs())
	fields = append(fields, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, h.group, a)
		return true
	})
	ts := r.Time
	if ts.IsZero() {
		ts = h.b.now()
	}
	return h.b.emitAt(ts, FromSlogLevel(r.Level), h.module, r.Message, fields)
}

// WithAttrs implements slog.Handler.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(make([]any, 0, len(h.attrs)+2*len(attrs)), h.attrs...)
	for _, a := range attrs {
		next.attrs = appendAttr(next.attrs, h.group, a)
	}
	return &next
}

// WithGroup implements slog.Handler.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = h.group + name + "."
	return &next
}

// appendAttr flattens a into dotted key-value pairs
func appendAttr(dst []any, prefix string, a slog.Attr) []any {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		group := v.Group()
		if len(group) == 0 {
			return dst
		}
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range group {
			dst = appendAttr(dst, prefix, ga)
		}
		return dst
	}
	if a.Key == "" {
		return dst
	}
	return append(dst, prefix+a.Key, v.Any())
}
