// FILE: override.go
package cclog

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyOverride applies string key-value overrides to cfg in place and
// validates the result. Each override should be in the format "key=value".
// All malformed overrides are reported together and cfg is left untouched
// when any of them fails.
//
// Example:
//
//	cfg := cclog.DefaultConfig()
//	err := cclog.ApplyOverride(cfg,
//	    "path=/var/log/cache/debug.log",
//	    "buffer_capacity=65536",
//	    "open_mode=append",
//	)
func ApplyOverride(cfg *Config, overrides ...string) error {
	if cfg == nil {
		return fmtErrorf("config cannot be nil")
	}
	next := cfg.Clone()

	var errs []error

	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := applyConfigField(next, key, value); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return combineConfigErrors(errs)
	}

	if err := next.Validate(); err != nil {
		return err
	}

	*cfg = *next
	return nil
}

// combineConfigErrors combines multiple configuration errors into a single error.
func combineConfigErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var sb strings.Builder
	sb.WriteString("cclog: multiple configuration errors:")
	for i, err := range errs {
		// Strip the per-error prefix to avoid duplication
		errMsg := strings.TrimPrefix(err.Error(), "cclog: ")
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField applies a single key-value override to a Config.
func applyConfigField(cfg *Config, key, value string) error {
	switch key {
	// Sink settings
	case "path":
		cfg.Path = value
	case "buffer_capacity":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for buffer_capacity '%s': %w", value, err)
		}
		cfg.BufferCapacity = intVal
	case "open_mode":
		if _, err := ParseOpenMode(value); err != nil {
			return err
		}
		cfg.OpenMode = value
	case "file_mode":
		// Base 0 so "0640" reads as octal
		intVal, err := strconv.ParseInt(value, 0, 64)
		if err != nil {
			return fmtErrorf("invalid permission value for file_mode '%s': %w", value, err)
		}
		cfg.FileMode = intVal
	case "sync_on_flush":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for sync_on_flush '%s': %w", value, err)
		}
		cfg.SyncOnFlush = boolVal

	// Timers
	case "flush_interval_ms":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for flush_interval_ms '%s': %w", value, err)
		}
		cfg.FlushIntervalMs = intVal
	case "heartbeat_interval_s":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for heartbeat_interval_s '%s': %w", value, err)
		}
		cfg.HeartbeatIntervalS = intVal

	// Bridge settings
	case "level":
		// Accept both numeric and named values
		if numVal, err := strconv.Atoi(value); err == nil {
			lv := Level(numVal)
			if !lv.Valid() {
				return fmtErrorf("invalid level value '%s'", value)
			}
			cfg.Level = strings.ToLower(lv.String())
		} else {
			if _, err := ParseLevel(value); err != nil {
				return fmtErrorf("invalid level value '%s': %w", value, err)
			}
			cfg.Level = value
		}
	case "require_utf8":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for require_utf8 '%s': %w", value, err)
		}
		cfg.RequireUTF8 = boolVal

	default:
		return fmtErrorf("unknown configuration key '%s'", key)
	}

	return nil
}
