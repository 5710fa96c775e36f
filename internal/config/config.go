// Package config handles configuration loading, validation, and hot-reload
// for uiagate.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete subsystem configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version"`

	// Limiter configuration for the rate-limited sink.
	Limiter LimiterConfig `toml:"limiter"`

	// Source configuration for the event source feeding the sink.
	Source SourceConfig `toml:"source"`

	// Journal configuration for flush statistics.
	Journal JournalConfig `toml:"journal"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging"`

	// Metrics configuration.
	Metrics MetricsConfig `toml:"metrics"`
}

// LimiterConfig tunes the rate-limited sink.
type LimiterConfig struct {
	// CoalesceDelayMs is the flush delay hint for coalesceable batches, in
	// milliseconds. Force-flush kinds always hint zero. A value of 0 selects
	// the limiter's default delay (30 ms).
	CoalesceDelayMs int `toml:"coalesce_delay_ms"`

	// MaxBatchWarn logs a warning when a single flush emits more records
	// than this. 0 disables the warning.
	MaxBatchWarn int `toml:"max_batch_warn"`
}

// CoalesceDelay returns the delay as a duration.
func (c LimiterConfig) CoalesceDelay() time.Duration {
	return time.Duration(c.CoalesceDelayMs) * time.Millisecond
}

// SourceConfig selects and shapes the event source.
type SourceConfig struct {
	// Kind is "synthetic" or "atspi".
	Kind string `toml:"kind"`

	// Synthetic storm shape (synthetic kind only).
	Elements       int `toml:"elements"`
	EventsPerSec   int `toml:"events_per_sec"`
	PropertyRatio  int `toml:"property_ratio"`  // percent of events that are property changes
	FocusRatio     int `toml:"focus_ratio"`     // percent of events that are focus changes
	DurationSec    int `toml:"duration_sec"`    // 0 runs until cancelled
}

// JournalConfig controls the flush statistics journal.
type JournalConfig struct {
	// Enabled turns journalling on.
	Enabled bool `toml:"enabled"`

	// Path is the SQLite database path. Defaults to journal.db in the
	// platform data directory; must not be empty when Enabled is set.
	Path string `toml:"path"`
}

// LoggingConfig mirrors internal/logging.Config in file-friendly form.
type LoggingConfig struct {
	Level     string `toml:"level"`  // debug, info, warn, error
	Format    string `toml:"format"` // text, json
	Output    string `toml:"output"` // stdout, stderr, file
	FilePath  string `toml:"file_path"`
	AddSource bool   `toml:"add_source"`
}

// MetricsConfig controls the scrape endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: Version,
		Limiter: LimiterConfig{
			CoalesceDelayMs: 30,
			MaxBatchWarn:    0,
		},
		Source: SourceConfig{
			Kind:          "synthetic",
			Elements:      8,
			EventsPerSec:  200,
			PropertyRatio: 60,
			FocusRatio:    5,
		},
		Journal: JournalConfig{
			Enabled: false,
			Path:    filepath.Join(PlatformDataDir(), "journal.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  "127.0.0.1:9471",
		},
	}
}

// PlatformDataDir returns the platform-specific data directory.
//
// Platform paths:
//   - macOS:   ~/Library/Application Support/uiagate/
//   - Linux:   ~/.local/share/uiagate/
//   - Windows: %APPDATA%\uiagate\
func PlatformDataDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "uiagate")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, _ := os.UserHomeDir()
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "uiagate")
	default:
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			home, _ := os.UserHomeDir()
			dataHome = filepath.Join(home, ".local", "share")
		}
		return filepath.Join(dataHome, "uiagate")
	}
}

// PlatformConfigPath returns the default config file location.
func PlatformConfigPath() string {
	switch runtime.GOOS {
	case "darwin", "windows":
		return filepath.Join(PlatformDataDir(), "config.toml")
	default:
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, _ := os.UserHomeDir()
			configHome = filepath.Join(home, ".config")
		}
		return filepath.Join(configHome, "uiagate", "config.toml")
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for out-of-range or inconsistent
// values.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}
	if c.Limiter.CoalesceDelayMs < 0 || c.Limiter.CoalesceDelayMs > 1000 {
		errs = append(errs, ValidationError{
			Field:   "limiter.coalesce_delay_ms",
			Message: "must be between 0 and 1000",
		})
	}
	if c.Limiter.MaxBatchWarn < 0 {
		errs = append(errs, ValidationError{
			Field:   "limiter.max_batch_warn",
			Message: "must not be negative",
		})
	}
	switch c.Source.Kind {
	case "synthetic", "atspi":
	default:
		errs = append(errs, ValidationError{
			Field:   "source.kind",
			Message: fmt.Sprintf("unknown source kind %q", c.Source.Kind),
		})
	}
	if c.Source.Kind == "synthetic" {
		if c.Source.Elements < 1 {
			errs = append(errs, ValidationError{
				Field:   "source.elements",
				Message: "must be at least 1",
			})
		}
		if c.Source.EventsPerSec < 1 {
			errs = append(errs, ValidationError{
				Field:   "source.events_per_sec",
				Message: "must be at least 1",
			})
		}
		if c.Source.PropertyRatio < 0 || c.Source.FocusRatio < 0 ||
			c.Source.PropertyRatio+c.Source.FocusRatio > 100 {
			errs = append(errs, ValidationError{
				Field:   "source.property_ratio",
				Message: "ratios must be non-negative and sum to at most 100",
			})
		}
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, ValidationError{
			Field:   "journal.path",
			Message: "required when journal is enabled",
		})
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q", c.Logging.Level),
		})
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown format %q", c.Logging.Format),
		})
	}
	switch strings.ToLower(c.Logging.Output) {
	case "stdout", "stderr", "file":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("unknown output %q", c.Logging.Output),
		})
	}
	if c.Logging.Output == "file" && c.Logging.FilePath == "" {
		errs = append(errs, ValidationError{
			Field:   "logging.file_path",
			Message: "required when output is file",
		})
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		errs = append(errs, ValidationError{
			Field:   "metrics.listen",
			Message: "required when metrics are enabled",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
