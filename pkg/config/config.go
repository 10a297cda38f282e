// Package config loads runtime settings for the incomeform commands from
// defaults, an optional YAML file, an optional .env file and INCOMEFORM_*
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint     = "http://127.0.0.1:8000/predict"
	DefaultAddr         = ":8501"
	DefaultRenderer     = "vanilla"
	DefaultLogLevel     = "info"
	DefaultThemeVariant = "light"
	DefaultEnvFile      = ".env"
)

// Environment variable names.
const (
	EnvEndpoint     = "INCOMEFORM_ENDPOINT"
	EnvTimeout      = "INCOMEFORM_TIMEOUT"
	EnvAddr         = "INCOMEFORM_ADDR"
	EnvRenderer     = "INCOMEFORM_RENDERER"
	EnvLogLevel     = "INCOMEFORM_LOG_LEVEL"
	EnvThemeVariant = "INCOMEFORM_THEME_VARIANT"
	EnvPreset       = "INCOMEFORM_PRESET"
)

// Config holds all runtime settings.
type Config struct {
	// Endpoint is the prediction service URL.
	Endpoint string `yaml:"endpoint"`
	// Timeout bounds each prediction request ("30s"). Empty or "0" waits
	// indefinitely.
	Timeout string `yaml:"timeout"`
	// Addr is the listen address of the web UI.
	Addr string `yaml:"addr"`
	// Renderer names the renderer used by the web UI.
	Renderer string `yaml:"renderer"`
	// LogLevel is a zap level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// ThemeVariant selects the built-in palette (light or dark).
	ThemeVariant string `yaml:"theme_variant"`
	// Preset is an optional JSON file relabelling form fields.
	Preset string `yaml:"preset,omitempty"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:     DefaultEndpoint,
		Timeout:      "0s",
		Addr:         DefaultAddr,
		Renderer:     DefaultRenderer,
		LogLevel:     DefaultLogLevel,
		ThemeVariant: DefaultThemeVariant,
	}
}

// Load builds the configuration. path names an optional YAML file and envFile
// an optional dotenv file; a missing envFile is ignored, a missing path is not.
// Process environment variables win over dotenv entries.
func Load(path, envFile string) (*Config, error) {
	cfg := DefaultConfig()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	dotenv, err := readEnvFile(envFile)
	if err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides(func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := dotenv[key]
		return value, ok
	})

	return cfg, nil
}

func readEnvFile(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read env file %s: %w", path, err)
	}
	return values, nil
}

func (c *Config) applyEnvOverrides(lookup func(string) (string, bool)) {
	set := func(key string, target *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
	set(EnvEndpoint, &c.Endpoint)
	set(EnvTimeout, &c.Timeout)
	set(EnvAddr, &c.Addr)
	set(EnvRenderer, &c.Renderer)
	set(EnvLogLevel, &c.LogLevel)
	set(EnvThemeVariant, &c.ThemeVariant)
	set(EnvPreset, &c.Preset)
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// GetTimeout returns the request timeout; zero means no timeout.
func (c *Config) GetTimeout() time.Duration {
	d, err := parseTimeout(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// GetLogLevel returns the zap level, defaulting to info.
func (c *Config) GetLogLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// Validate rejects settings the commands cannot run with.
func (c *Config) Validate() error {
	parsed, err := url.Parse(strings.TrimSpace(c.Endpoint))
	if err != nil {
		return fmt.Errorf("config: invalid endpoint %q: %w", c.Endpoint, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("config: endpoint %q must use http or https", c.Endpoint)
	}
	if parsed.Host == "" {
		return fmt.Errorf("config: endpoint %q has no host", c.Endpoint)
	}

	timeout, err := parseTimeout(c.Timeout)
	if err != nil {
		return fmt.Errorf("config: invalid timeout %q: %w", c.Timeout, err)
	}
	if timeout < 0 {
		return fmt.Errorf("config: timeout %q must not be negative", c.Timeout)
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: invalid log level %q", c.LogLevel)
	}
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("config: addr is required")
	}
	return nil
}

func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}
