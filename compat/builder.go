package compat

import (
	"fmt"

	"github.com/lixenwraith/cclog"
	"github.com/lixenwraith/cclog/bridge"
)

// Builder creates framework adapters that share one bridge. It can use an
// existing bridge or register a logger with a private one.
type Builder struct {
	bridge *bridge.Bridge
	logger *cclog.Logger
	level  cclog.Level
	err    error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithBridge uses an existing bridge for every adapter built.
// If this is set WithLogger is ignored
func (b *Builder) WithBridge(br *bridge.Bridge) *Builder {
	if br == nil {
		b.err = fmt.Errorf("cclog/compat: provided bridge cannot be nil")
		return b
	}
	b.bridge = br
	return b
}

// WithLogger registers l at level with a private bridge on first build.
// The caller still owns l and must destroy it.
func (b *Builder) WithLogger(l *cclog.Logger, level cclog.Level) *Builder {
	if l == nil {
		b.err = fmt.Errorf("cclog/compat: provided logger cannot be nil")
		return b
	}
	b.logger = l
	b.level = level
	return b
}

// getBridge resolves the bridge to be used, creating one if necessary
func (b *Builder) getBridge() (*bridge.Bridge, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.bridge != nil {
		return b.bridge, nil
	}
	if b.logger == nil {
		return nil, fmt.Errorf("cclog/compat: a bridge or logger is required")
	}

	br := bridge.New()
	if err := br.Setup(); err != nil {
		return nil, err
	}
	if err := br.Register(b.logger, b.level); err != nil {
		return nil, err
	}

	// Cache for subsequent builds with this builder
	b.bridge = br
	return br, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	br, err := b.getBridge()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(br, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	br, err := b.getBridge()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(br, opts...), nil
}

// GetBridge returns the bridge adapters are built on, creating it if needed
func (b *Builder) GetBridge() (*bridge.Bridge, error) {
	return b.getBridge()
}

// --- Example Usage ---
//
//	reg := cclog.NewRegistry()
//	_ = reg.Setup(cclog.NewMetrics())
//	appLogger, err := cclog.Create(reg, "/var/log/app.log", 64*1024)
//	if err != nil { /* handle error */ }
//	defer appLogger.Destroy()
//
//	builder := compat.NewBuilder().WithLogger(appLogger, cclog.LevelInfo)
//
//	gnetLogger, err := builder.BuildGnet()
//	if err != nil { /* handle error */ }
//	go gnet.Run(events, "tcp://:9000", gnet.WithLogger(gnetLogger))
//
//	fasthttpLogger, err := builder.BuildFastHTTP()
//	if err != nil { /* handle error */ }
//	server := &fasthttp.Server{Handler: handler, Logger: fasthttpLogger}
