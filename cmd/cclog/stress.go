package main

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/cclog"
	"github.com/lixenwraith/cclog/bridge"
	"github.com/lixenwraith/cclog/pool"
)

var levels = []cclog.Level{
	cclog.LevelError,
	cclog.LevelWarn,
	cclog.LevelInfo,
	cclog.LevelDebug,
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Hammer one logger with concurrent writers",
		Long: `Start --writers goroutines that each submit --messages records to one
logger. Records that do not fit the buffer are dropped and counted; the
final metrics snapshot shows how many.`,
		RunE: runStress,
	}

	cmd.Flags().String("path", "./cclog-stress.log", "Log file path, empty for stderr")
	cmd.Flags().Int64("capacity", 64*1024, "Buffer capacity in bytes")
	cmd.Flags().Int("writers", 32, "Concurrent writer goroutines")
	cmd.Flags().Int("messages", 10000, "Messages per writer")
	cmd.Flags().Int("size", 128, "Maximum random message size")
	cmd.Flags().Duration("flush-interval", 50*time.Millisecond, "Periodic flush interval")
	cmd.Flags().String("format", "raw", "raw, txt or json")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")
	return cmd
}

func runStress(cmd *cobra.Command, args []string) error {
	writers, _ := cmd.Flags().GetInt("writers")
	messages, _ := cmd.Flags().GetInt("messages")
	size, _ := cmd.Flags().GetInt("size")
	format, _ := cmd.Flags().GetString("format")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	if writers <= 0 || messages <= 0 || size <= 0 {
		return fmt.Errorf("writers, messages and size must be positive")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	reg := cclog.NewRegistry()
	if err := reg.Setup(cclog.NewMetrics()); err != nil {
		return err
	}
	defer reg.Teardown()

	if err := serveMetrics(reg, metricsAddr); err != nil {
		return err
	}

	// Buffer comes from a pool so the run also exercises borrowed storage
	buffers := pool.NewBuffers(int(cfg.BufferCapacity), 1)
	l, err := cclog.NewBuilder().Config(cfg).BufferSource(buffers).Build(reg)
	if err != nil {
		return err
	}
	defer func() {
		if err := cclog.Destroy(&l); err != nil {
			out.Error().Err(err).Msg("destroy failed")
		}
	}()

	flusher, err := startFlusher(reg, cfg, l)
	if err != nil {
		return err
	}

	var br *bridge.Bridge
	if format != "raw" {
		br = bridge.New(bridge.WithFormat(format), bridge.WithRequireUTF8(cfg.RequireUTF8))
		if err := br.Setup(); err != nil {
			return err
		}
		if err := br.Register(l, cfg.LevelValue()); err != nil {
			return err
		}
		defer br.Unregister()
	}

	out.Info().
		Str("path", sinkLabel(l)).
		Int("capacity", l.Capacity()).
		Int("writers", writers).
		Int("messages", messages).
		Str("format", format).
		Msg("starting stress run")

	var sent atomic.Int64
	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))
			buf := make([]byte, 0, size+1)
			for i := 0; i < messages; i++ {
				buf = appendRandom(buf[:0], rng, rng.Intn(size)+1)
				if br != nil {
					level := levels[rng.Intn(len(levels))]
					_ = br.Emit(level, "stress", string(buf), "wkr", id, "seq", i)
				} else {
					buf = append(buf, '\n')
					if _, err := l.Write(buf); err != nil {
						out.Debug().Err(err).Int("writer", id).Msg("write failed")
					}
				}
				sent.Add(1)
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	if flusher != nil {
		if err := flusher.Stop(); err != nil {
			out.Warn().Err(err).Msg("flusher stop")
		}
	}
	if err := l.Flush(); err != nil {
		out.Warn().Err(err).Msg("final flush failed")
	}

	out.Info().
		Int64("sent", sent.Load()).
		Dur("elapsed", elapsed).
		Float64("msgs_per_sec", float64(sent.Load())/elapsed.Seconds()).
		Msg("stress run complete")
	logSnapshot(reg, "metrics")
	return nil
}

func appendRandom(dst []byte, rng *rand.Rand, n int) []byte {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	for i := 0; i < n; i++ {
		dst = append(dst, chars[rng.Intn(len(chars))])
	}
	return dst
}

func sinkLabel(l *cclog.Logger) string {
	if l.IsStderr() {
		return "<stderr>"
	}
	return l.Path()
}
