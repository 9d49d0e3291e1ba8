// FILE: examples/fasthttp/main.go
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/cclog"
	"github.com/lixenwraith/cclog/bridge"
	"github.com/lixenwraith/cclog/compat"
)

func main() {
	if err := cclog.Setup(cclog.NewMetrics()); err != nil {
		panic(err)
	}
	defer cclog.Teardown()

	cfg, err := cclog.NewConfigFromDefaults(map[string]any{
		"path":              "/var/log/fasthttp.log",
		"buffer_capacity":   2048,
		"flush_interval_ms": 200,
		"level":             "debug",
	})
	if err != nil {
		panic(err)
	}

	logger, err := cclog.NewBuilder().Config(cfg).Build(cclog.DefaultRegistry())
	if err != nil {
		panic(err)
	}
	defer cclog.Destroy(&logger)

	flusher := cclog.NewFlusher(time.Duration(cfg.FlushIntervalMs) * time.Millisecond)
	flusher.Add(logger)
	if err := flusher.Start(); err != nil {
		panic(err)
	}
	defer flusher.Stop()

	// Process-wide bridge so handlers can log too
	if err := bridge.Setup(); err != nil {
		panic(err)
	}
	if err := bridge.Register(logger, cfg.LevelValue()); err != nil {
		panic(err)
	}
	defer bridge.Unregister()

	fasthttpAdapter := compat.NewFastHTTPAdapter(
		bridge.Default(),
		compat.WithDefaultLevel(cclog.LevelInfo),
		compat.WithLevelDetector(customLevelDetector),
	)

	server := &fasthttp.Server{
		Handler: requestHandler,
		Logger:  fasthttpAdapter,

		Name:              "MyServer",
		Concurrency:       fasthttp.DefaultConcurrency,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TCPKeepalive:      true,
		ReduceMemoryUsage: true,
	}

	fmt.Println("Starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	_ = bridge.Emit(cclog.LevelDebug, "http", "request", "path", string(ctx.Path()))
	ctx.SetContentType("text/plain")
	fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
}

func customLevelDetector(msg string) cclog.Level {
	if strings.Contains(msg, "connection cannot be served") {
		return cclog.LevelWarn
	}
	if strings.Contains(msg, "error when serving connection") {
		return cclog.LevelError
	}
	return compat.DetectLogLevel(msg)
}
