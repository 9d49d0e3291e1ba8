package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/cclog"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"
)

// out is the CLI's own console logger, separate from the logger under test
var out = zerolog.New(zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.RFC3339,
}).With().Timestamp().Logger()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cclog",
	Short: "Exercise the cclog buffered writer",
	Long: `cclog drives a buffered log writer the way a storage server would:
many concurrent writers, a periodic flusher and external rotation.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("cclog version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("config", "", "TOML config file with a [log] table")
	rootCmd.PersistentFlags().StringSlice("set", nil, "Config override as key=value (repeatable)")
	rootCmd.PersistentFlags().Bool("debug", false, "Verbose CLI output")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			out = out.Level(zerolog.DebugLevel)
		} else {
			out = out.Level(zerolog.InfoLevel)
		}
	}

	rootCmd.AddCommand(newStressCmd())
	rootCmd.AddCommand(newRotateCmd())
}

// sinkFlags maps the command flags that mirror config keys
var sinkFlags = []struct {
	flag string
	key  string
}{
	{"path", "path"},
	{"capacity", "buffer_capacity"},
	{"flush-interval", "flush_interval_ms"},
}

// loadConfig resolves the command's configuration in increasing precedence:
// built-in defaults, the command's flag defaults (only without --config),
// the --config file, --set overrides, then flags given explicitly.
func loadConfig(cmd *cobra.Command) (*cclog.Config, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg := cclog.DefaultConfig()
	if cfgPath != "" {
		loaded, err := cclog.NewConfigFromFile(cfgPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	var defaults, explicit []string
	for _, sf := range sinkFlags {
		f := cmd.Flags().Lookup(sf.flag)
		if f == nil {
			continue
		}
		override, err := flagOverride(cmd, sf.flag, sf.key)
		if err != nil {
			return nil, err
		}
		switch {
		case f.Changed:
			explicit = append(explicit, override)
		case cfgPath == "":
			defaults = append(defaults, override)
		}
	}
	sets, _ := cmd.Flags().GetStringSlice("set")

	overrides := append(defaults, sets...)
	overrides = append(overrides, explicit...)
	if err := cclog.ApplyOverride(cfg, overrides...); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// flagOverride renders a flag's current value as a key=value override
func flagOverride(cmd *cobra.Command, flag, key string) (string, error) {
	switch flag {
	case "capacity":
		capacity, err := cmd.Flags().GetInt64(flag)
		return fmt.Sprintf("%s=%d", key, capacity), err
	case "flush-interval":
		interval, err := cmd.Flags().GetDuration(flag)
		return fmt.Sprintf("%s=%d", key, interval.Milliseconds()), err
	default:
		value, err := cmd.Flags().GetString(flag)
		return key + "=" + value, err
	}
}

// startFlusher runs periodic flushing and heartbeats when the config asks for them
func startFlusher(reg *cclog.Registry, cfg *cclog.Config, l *cclog.Logger) (*cclog.Flusher, error) {
	if cfg.FlushIntervalMs <= 0 && cfg.HeartbeatIntervalS <= 0 {
		return nil, nil
	}

	var opts []cclog.FlusherOption
	opts = append(opts, cclog.WithErrorHandler(func(err error) {
		out.Warn().Err(err).Msg("flush failed")
	}))
	if cfg.HeartbeatIntervalS > 0 {
		opts = append(opts, cclog.WithHeartbeat(reg, l, time.Duration(cfg.HeartbeatIntervalS)*time.Second))
	}

	f := cclog.NewFlusher(time.Duration(cfg.FlushIntervalMs)*time.Millisecond, opts...)
	f.Add(l)
	if err := f.Start(); err != nil {
		return nil, err
	}
	return f, nil
}

// serveMetrics exposes the registry counters on addr until the process exits
func serveMetrics(reg *cclog.Registry, addr string) error {
	if addr == "" {
		return nil
	}
	promReg := prometheus.NewRegistry()
	if err := promReg.Register(cclog.NewCollector(reg, "cclog")); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			out.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	out.Info().Str("addr", addr).Msg("serving metrics")
	return nil
}

func logSnapshot(reg *cclog.Registry, msg string) {
	s, err := reg.Snapshot()
	if err != nil {
		out.Warn().Err(err).Msg("metrics unavailable")
		return
	}
	out.Info().
		Uint64("creations", s.Creations).
		Uint64("destructions", s.Destructions).
		Int64("active", s.Active).
		Uint64("opens", s.Opens).
		Uint64("writes", s.Writes).
		Uint64("skipped_messages", s.SkippedMessages).
		Uint64("skipped_bytes", s.SkippedBytes).
		Msg(msg)
}
