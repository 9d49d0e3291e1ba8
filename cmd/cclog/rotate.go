package main

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/cclog"
)

func newRotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Write continuously and reopen the sink on SIGHUP",
		Long: `Write one line every --interval. Rename the file externally, then send
SIGHUP; the logger flushes and reopens the original path. SIGINT or SIGTERM
flushes and destroys the logger.`,
		RunE: runRotate,
	}

	cmd.Flags().String("path", "./cclog-rotate.log", "Log file path")
	cmd.Flags().Int64("capacity", 4096, "Buffer capacity in bytes")
	cmd.Flags().Duration("interval", 100*time.Millisecond, "Delay between writes")
	cmd.Flags().Duration("flush-interval", time.Second, "Periodic flush interval")
	return cmd
}

func runRotate(cmd *cobra.Command, args []string) error {
	interval, _ := cmd.Flags().GetDuration("interval")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	reg := cclog.NewRegistry()
	if err := reg.Setup(cclog.NewMetrics()); err != nil {
		return err
	}
	defer reg.Teardown()

	l, err := cclog.NewBuilder().Config(cfg).Build(reg)
	if err != nil {
		return err
	}

	flusher, err := startFlusher(reg, cfg, l)
	if err != nil {
		_ = l.Destroy()
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	out.Info().Str("path", sinkLabel(l)).Int("pid", os.Getpid()).Msg("writing; send SIGHUP to reopen")

	var seq uint64
	buf := make([]byte, 0, 64)
	for {
		select {
		case <-ticker.C:
			seq++
			buf = append(buf[:0], "rotate seq="...)
			buf = strconv.AppendUint(buf, seq, 10)
			buf = append(buf, '\n')
			if _, err := l.Write(buf); err != nil {
				out.Warn().Err(err).Msg("write failed")
			}

		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				// Empty path reopens the current one
				if err := l.Reopen(""); err != nil {
					out.Error().Err(err).Msg("reopen failed, keeping previous sink")
				} else {
					out.Info().Str("path", sinkLabel(l)).Msg("reopened")
				}
				continue
			}

			out.Info().Str("signal", sig.String()).Msg("shutting down")
			if flusher != nil {
				if err := flusher.Stop(); err != nil {
					out.Warn().Err(err).Msg("flusher stop")
				}
			}
			destroyErr := cclog.Destroy(&l)
			logSnapshot(reg, "metrics")
			return destroyErr
		}
	}
}
