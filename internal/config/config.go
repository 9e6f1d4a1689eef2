// Package config provides configuration types and defaults for raptorflow.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// BackendConfig holds settings for the generation service client.
type BackendConfig struct {
	URL      string        `mapstructure:"url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// ServerConfig holds settings for the local API server.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// TelemetryConfig holds tracing settings.
type TelemetryConfig struct {
	// Enabled turns span export on. When false a noop provider is installed.
	Enabled bool `mapstructure:"enabled"`
	// Exporter selects where spans go. Valid values: "stdout", "otlp".
	Exporter string `mapstructure:"exporter"`
	// Endpoint is the OTLP gRPC endpoint, e.g. "localhost:4317".
	Endpoint string `mapstructure:"endpoint"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum level written. Valid values: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Path is the log file location. Empty uses {data_dir}/raptorflow.log.
	Path string `mapstructure:"path"`
}

// ROIConfig holds defaults for the ROI calculator.
type ROIConfig struct {
	// PlanAnnualPrice is the annual subscription price used for payback math.
	PlanAnnualPrice float64 `mapstructure:"plan_annual_price"`
}

// Config holds all configuration options for raptorflow.
type Config struct {
	DataDir             string          `mapstructure:"data_dir"`
	AutoRefresh         bool            `mapstructure:"auto_refresh"`
	AutoRefreshDebounce time.Duration   `mapstructure:"auto_refresh_debounce"`
	MetricsSeed         int64           `mapstructure:"metrics_seed"`
	Backend             BackendConfig   `mapstructure:"backend"`
	Server              ServerConfig    `mapstructure:"server"`
	Telemetry           TelemetryConfig `mapstructure:"telemetry"`
	Log                 LogConfig       `mapstructure:"log"`
	ROI                 ROIConfig       `mapstructure:"roi"`
}

// DatabasePath returns the SQLite file location under the data directory.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "raptorflow.db")
}

// LogPath returns the log file location, defaulting under the data directory.
func (c Config) LogPath() string {
	if c.Log.Path != "" {
		return c.Log.Path
	}
	return filepath.Join(c.DataDir, "raptorflow.log")
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Backend.URL != "" {
		u, err := url.Parse(c.Backend.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("backend.url %q is not a valid URL", c.Backend.URL)
		}
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must not be negative")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Telemetry.Exporter {
	case "", "stdout", "otlp":
	default:
		return fmt.Errorf("telemetry.exporter %q is not one of stdout, otlp", c.Telemetry.Exporter)
	}
	if c.Telemetry.Enabled && c.Telemetry.Exporter == "otlp" && c.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry.endpoint is required when telemetry.exporter is otlp")
	}
	return nil
}

// DefaultDataDir returns ~/.raptorflow, falling back to the current directory
// when the home directory cannot be resolved.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".raptorflow"
	}
	return filepath.Join(home, ".raptorflow")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		DataDir:             DefaultDataDir(),
		AutoRefresh:         true,
		AutoRefreshDebounce: 1 * time.Second,
		MetricsSeed:         42,
		Backend: BackendConfig{
			URL:      "http://localhost:8787",
			Timeout:  15 * time.Second,
			CacheTTL: 10 * time.Minute,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Exporter: "stdout",
		},
		Log: LogConfig{
			Level: "info",
		},
		ROI: ROIConfig{
			PlanAnnualPrice: 4800,
		},
	}
}

// Load reads configuration from the given file path, layering file values
// over Defaults. An empty path or a missing file returns Defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()

	v := viper.New()
	v.SetConfigType("yaml")
	if path == "" {
		path = filepath.Join(DefaultDataDir(), "config.yaml")
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if os.IsNotExist(err) || errors.As(err, &notFound) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# RaptorFlow Configuration

# Directory for the local database and logs (default: ~/.raptorflow)
# data_dir: /path/to/data

# Refresh the dashboard automatically when local data changes
auto_refresh: true
auto_refresh_debounce: 1s

# Seed for the demo metrics generator; same seed, same dashboard
metrics_seed: 42

# Generation service
backend:
  url: http://localhost:8787
  timeout: 15s
  cache_ttl: 10m

# Local API server ('raptorflow serve')
server:
  addr: 127.0.0.1:8080

# Tracing
telemetry:
  enabled: false
  # exporter: stdout | otlp
  exporter: stdout
  # endpoint: localhost:4317

# Logging
log:
  # level: debug | info | warn | error
  level: info
  # path: /path/to/raptorflow.log

# ROI calculator defaults
roi:
  plan_annual_price: 4800
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
