// FILE: config.go
package cclog

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/lixenwraith/config"
)

// Config holds all logger configuration values
type Config struct {
	// Sink settings
	Path           string `toml:"path"`            // Log file path, empty for stderr
	BufferCapacity int64  `toml:"buffer_capacity"` // Buffer bytes, 0 for unbuffered
	OpenMode       string `toml:"open_mode"`       // "truncate" or "append"
	FileMode       int64  `toml:"file_mode"`       // Permission bits for created files
	SyncOnFlush    bool   `toml:"sync_on_flush"`   // fsync after every flush

	// Timers
	FlushIntervalMs    int64 `toml:"flush_interval_ms"`    // Periodic flush interval, 0 disables
	HeartbeatIntervalS int64 `toml:"heartbeat_interval_s"` // Metrics heartbeat interval, 0 disables

	// Bridge settings
	Level       string `toml:"level"`        // Bridge threshold: error, warn, info, debug, trace
	RequireUTF8 bool   `toml:"require_utf8"` // Reject non-UTF-8 bridge messages
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	// Sink settings
	Path:           "",
	BufferCapacity: 0,
	OpenMode:       "truncate",
	FileMode:       int64(defaultFileMode),
	SyncOnFlush:    false,

	// Timers
	FlushIntervalMs:    0,
	HeartbeatIntervalS: 0,

	// Bridge settings
	Level:       "info",
	RequireUTF8: true,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from a TOML file and returns a validated Config
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()

	if err := loader.RegisterStruct("log.", *cfg); err != nil {
		return nil, fmt.Errorf("failed to register config struct: %w", err)
	}

	// Missing file falls back to defaults
	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "log.", cfg); err != nil {
		return nil, fmt.Errorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmt.Errorf("failed to apply overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue
		}

		if err := setFieldValue(fieldValue, val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case uint32:
			field.SetInt(int64(v))
		case os.FileMode:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Path) != c.Path {
		return fmtErrorf("path has leading or trailing whitespace: '%s'", c.Path)
	}

	if _, err := ParseOpenMode(c.OpenMode); err != nil {
		return err
	}

	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}

	if c.BufferCapacity < 0 || c.BufferCapacity > maxBufferCapacity {
		return fmtErrorf("buffer_capacity must be between 0 and %d: %d", maxBufferCapacity, c.BufferCapacity)
	}

	if c.FileMode <= 0 || c.FileMode > 0777 {
		return fmtErrorf("file_mode must be permission bits between 0001 and 0777: %o", c.FileMode)
	}

	if c.FlushIntervalMs < 0 || c.HeartbeatIntervalS < 0 {
		return fmtErrorf("interval settings cannot be negative")
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// LoggerOptions converts the sink settings to creation options.
// Assumes the config has been validated.
func (c *Config) LoggerOptions() []Option {
	mode, _ := ParseOpenMode(c.OpenMode)
	return []Option{
		WithOpenMode(mode),
		WithFileMode(os.FileMode(c.FileMode)),
		WithSyncOnFlush(c.SyncOnFlush),
	}
}

// LevelValue returns the parsed bridge threshold, LevelInfo when invalid.
func (c *Config) LevelValue() Level {
	lv, err := ParseLevel(c.Level)
	if err != nil {
		return LevelInfo
	}
	return lv
}
