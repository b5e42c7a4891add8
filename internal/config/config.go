// Package config provides configuration types and defaults for conddispatch.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/conddispatch/internal/cachemanager"
	"github.com/zjrosen/conddispatch/internal/log"
	"github.com/zjrosen/conddispatch/internal/rescache"
	"github.com/zjrosen/conddispatch/internal/tracing"
)

// Config holds all configuration options for conddispatch.
type Config struct {
	Cache   CacheConfig    `mapstructure:"cache"`
	Log     LogConfig      `mapstructure:"log"`
	Tracing tracing.Config `mapstructure:"tracing"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
}

// CacheConfig controls the resolution cache.
type CacheConfig struct {
	// Enabled memoizes resolutions per argument fingerprint.
	// Default: true
	Enabled bool `mapstructure:"enabled"`

	// Expiration is the lifetime of a cached resolution. Zero keeps entries
	// until their group changes.
	// Default: 10m
	Expiration time.Duration `mapstructure:"expiration"`

	// CleanupInterval is how often expired entries are purged.
	// Default: 5m
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`

	// Sliding extends an entry's lifetime on every hit.
	Sliding bool `mapstructure:"sliding"`
}

// LogConfig controls the debug log.
type LogConfig struct {
	// Path of the log file written when --debug is set.
	// Default: conddispatch.log
	Path string `mapstructure:"path"`

	// Level is the minimum level written: "debug", "info", "warn" or "error".
	// Default: "debug"
	Level string `mapstructure:"level"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics, e.g. ":9090". Empty disables it.
	Addr string `mapstructure:"addr"`
}

// Options translates the cache section into resolution cache options.
func (c CacheConfig) Options() []rescache.Option {
	return []rescache.Option{
		rescache.WithEnabled(c.Enabled),
		rescache.WithExpiration(c.Expiration),
		rescache.WithCleanupInterval(c.CleanupInterval),
		rescache.WithSlidingExpiration(c.Sliding),
	}
}

// DefaultTracesFilePath returns ~/.config/conddispatch/traces/traces.jsonl,
// or an empty string if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "conddispatch", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Cache: CacheConfig{
			Enabled:         true,
			Expiration:      cachemanager.DefaultExpiration,
			CleanupInterval: cachemanager.DefaultCleanupInterval,
		},
		Log: LogConfig{
			Path:  "conddispatch.log",
			Level: "debug",
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// ValidateCache checks cache configuration for errors.
func ValidateCache(c CacheConfig) error {
	if c.Expiration < 0 {
		return fmt.Errorf("cache.expiration must not be negative, got %s", c.Expiration)
	}
	if c.CleanupInterval < 0 {
		return fmt.Errorf("cache.cleanup_interval must not be negative, got %s", c.CleanupInterval)
	}
	if c.Sliding && c.Expiration == 0 {
		return errors.New("cache.sliding requires a non-zero cache.expiration")
	}
	return nil
}

// ValidateLog checks log configuration for errors.
func ValidateLog(l LogConfig) error {
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("log.level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", l.Level)
	}
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}

	switch t.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
	}

	if t.Enabled {
		if t.Exporter == "file" && t.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if t.Exporter == "otlp" && t.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// ValidateMetrics checks that the metrics address, when set, is host:port.
func ValidateMetrics(m MetricsConfig) error {
	if m.Addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(m.Addr); err != nil {
		return fmt.Errorf("metrics.addr: %w", err)
	}
	return nil
}

// Validate runs every section validator and joins their errors.
func (c Config) Validate() error {
	return errors.Join(
		ValidateCache(c.Cache),
		ValidateLog(c.Log),
		ValidateTracing(c.Tracing),
		ValidateMetrics(c.Metrics),
	)
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# conddispatch configuration

# Resolution cache: remembers which candidate won for a given argument shape.
# Only sound when predicates depend on argument types, not values.
cache:
  enabled: true
  expiration: 10m        # lifetime of a cached resolution, 0 = until the group changes
  cleanup_interval: 5m   # purge cadence for expired entries
  sliding: false         # extend lifetime on every hit

# Debug log (written only with --debug or CONDDISPATCH_DEBUG=1)
log:
  path: conddispatch.log
  level: debug           # debug, info, warn, error

# Distributed tracing, one span per dispatch call
tracing:
  enabled: false
  exporter: file         # none, file, stdout, otlp
  # file_path: ~/.config/conddispatch/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0

# Prometheus metrics, served on /metrics by "conddispatch run"
metrics:
  # addr: ":9090"
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
