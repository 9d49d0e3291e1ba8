// FILE: lixenwraith/cclog/builder.go
package cclog

import (
	"os"
)

// Builder provides a fluent API for creating loggers.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg    *Config
	source BufferSource
	err    error // Accumulate errors for deferred handling
}

// NewBuilder creates a new logger builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build validates the accumulated configuration and creates a Logger against reg.
func (b *Builder) Build(reg *Registry) (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	opts := b.cfg.LoggerOptions()
	if b.source != nil {
		opts = append(opts, WithBufferSource(b.source))
	}

	return Create(reg, b.cfg.Path, uint32(b.cfg.BufferCapacity), opts...)
}

// Config replaces the accumulated configuration with a copy of cfg.
func (b *Builder) Config(cfg *Config) *Builder {
	if cfg == nil {
		b.err = fmtErrorf("builder config cannot be nil")
		return b
	}
	b.cfg = cfg.Clone()
	return b
}

// Path sets the sink path, empty for stderr.
func (b *Builder) Path(path string) *Builder {
	b.cfg.Path = path
	return b
}

// BufferCapacity sets the buffer size in bytes.
func (b *Builder) BufferCapacity(capacity uint32) *Builder {
	b.cfg.BufferCapacity = int64(capacity)
	return b
}

// OpenMode sets truncate or append.
func (b *Builder) OpenMode(mode OpenMode) *Builder {
	b.cfg.OpenMode = mode.String()
	return b
}

// FileMode sets permission bits for created files.
func (b *Builder) FileMode(perm os.FileMode) *Builder {
	b.cfg.FileMode = int64(perm.Perm())
	return b
}

// SyncOnFlush enables fsync after every flush.
func (b *Builder) SyncOnFlush(enable bool) *Builder {
	b.cfg.SyncOnFlush = enable
	return b
}

// BufferSource borrows the logger buffer from src.
func (b *Builder) BufferSource(src BufferSource) *Builder {
	b.source = src
	return b
}

// Example usage:
// reg := cclog.NewRegistry()
// _ = reg.Setup(cclog.NewMetrics())
//
// logger, err := cclog.NewBuilder().
//
//	Path("/var/log/cache/debug.log").
//	BufferCapacity(64 * 1024).
//	OpenMode(cclog.OpenAppend).
//	Build(reg)
//
// if err == nil {
//
//	defer logger.Destroy()
//
// }
