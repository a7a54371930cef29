// Package config loads settings for the httpreq command from an optional
// YAML file and SHAPE_HTTPREQ_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shapestone/shape-httpreq/internal/logging"
	httpreq "github.com/shapestone/shape-httpreq/pkg/http"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "SHAPE_HTTPREQ_"

// Config holds the command settings.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Collector CollectorConfig `yaml:"collector"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Format string `yaml:"format"` // json or text
	Level  string `yaml:"level"`
}

// ServerConfig configures serve mode.
type ServerConfig struct {
	Address     string `yaml:"address"`
	MetricsPath string `yaml:"metrics_path"` // empty disables metrics
	Pretty      bool   `yaml:"pretty"`
}

// CollectorConfig tunes body collection and form parsing.
type CollectorConfig struct {
	ReadSize int `yaml:"read_size"`
	MaxKeys  int `yaml:"max_keys"` // 0 for unlimited
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log: LogConfig{
			Format: logging.FormatJSON,
			Level:  "info",
		},
		Server: ServerConfig{
			Address:     ":8080",
			MetricsPath: "/metrics",
		},
		Collector: CollectorConfig{
			ReadSize: httpreq.DefaultReadSize,
			MaxKeys:  httpreq.DefaultMaxKeys,
		},
	}
}

// Load returns Default overlaid with the YAML file at path. An empty path
// loads nothing.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables found by lookup,
// typically os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := get("ADDRESS"); ok {
		c.Server.Address = v
	}
	if v, ok := lookup(EnvPrefix + "METRICS_PATH"); ok {
		c.Server.MetricsPath = strings.TrimSpace(v)
	}
	if v, ok := get("PRETTY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %sPRETTY: %w", EnvPrefix, err)
		}
		c.Server.Pretty = b
	}
	if v, ok := get("READ_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sREAD_SIZE: %w", EnvPrefix, err)
		}
		c.Collector.ReadSize = n
	}
	if v, ok := get("MAX_KEYS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sMAX_KEYS: %w", EnvPrefix, err)
		}
		c.Collector.MaxKeys = n
	}
	return nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Log.Format) {
	case logging.FormatJSON, logging.FormatText:
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want json or text", c.Log.Format))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level))
	}
	if c.Server.Address == "" {
		errs = append(errs, errors.New("server.address is required"))
	}
	if c.Server.MetricsPath != "" && !strings.HasPrefix(c.Server.MetricsPath, "/") {
		errs = append(errs, fmt.Errorf("server.metrics_path %q must start with /", c.Server.MetricsPath))
	}
	if c.Collector.ReadSize <= 0 {
		errs = append(errs, fmt.Errorf("collector.read_size %d must be positive", c.Collector.ReadSize))
	}
	if c.Collector.MaxKeys < 0 {
		errs = append(errs, fmt.Errorf("collector.max_keys %d must not be negative", c.Collector.MaxKeys))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// CollectorOptions returns the collector options for c.
func (c Config) CollectorOptions() []httpreq.Option {
	return []httpreq.Option{
		httpreq.WithReadSize(c.Collector.ReadSize),
		httpreq.WithMaxKeys(c.Collector.MaxKeys),
	}
}
