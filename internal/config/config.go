package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/vango-dev/userboard/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "userboard.yaml"

	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "USERBOARD_"

	// DefaultBaseURL is the API the CLI talks to.
	DefaultBaseURL = "http://localhost:8080"

	// DefaultListen is the address the mock API listens on.
	DefaultListen = ":8080"
)

// Config holds all userboard settings.
type Config struct {
	// BaseURL is the root of the users API.
	BaseURL string `koanf:"base_url"`

	// Timeout bounds how long a list call waits for a response.
	Timeout time.Duration `koanf:"timeout"`

	// Retries is the number of retries for transient failures.
	Retries int `koanf:"retries"`

	// RetryInitial is the first backoff interval.
	RetryInitial time.Duration `koanf:"retry_initial"`

	// Simulate injects random failures in front of the API.
	Simulate bool `koanf:"simulate"`

	// SimulateDelay is added to every simulated request.
	SimulateDelay time.Duration `koanf:"simulate_delay"`

	// Tracing installs a tracer provider so calls carry trace ids.
	Tracing bool `koanf:"tracing"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Listen is the mock API listen address.
	Listen string `koanf:"listen"`

	// path is the config file that was loaded, if any.
	path string
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		"base_url":       DefaultBaseURL,
		"timeout":        "10s",
		"retries":        3,
		"retry_initial":  "100ms",
		"simulate":       false,
		"simulate_delay": "3s",
		"tracing":        true,
		"log_level":      "info",
		"log_format":     "text",
		"listen":         DefaultListen,
	}
}

// findConfigFile finds the config file to use.
// Priority: explicit path > userboard.yaml > userboard.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, "userboard.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads configuration from defaults, the config file, environment
// variables and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	path := findConfigFile(cfgFile)
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.New("U100").
				WithDetail("Failed to read " + path + ": " + err.Error()).
				Wrap(err)
		}
	}

	// 3. Environment: USERBOARD_BASE_URL -> base_url
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.New("U101").
			WithDetail("Failed to decode configuration: " + err.Error()).
			Wrap(err)
	}
	cfg.path = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path returns the config file that was loaded, or "".
func (c *Config) Path() string {
	return c.path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("U101").
			WithDetail("base_url must be an absolute URL, got " + fmt.Sprintf("%q", c.BaseURL))
	}
	if c.Timeout <= 0 {
		return errors.New("U101").
			WithDetail("timeout must be positive")
	}
	if c.Retries < 0 {
		return errors.New("U101").
			WithDetail("retries must not be negative")
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		return errors.New("U101").
			WithDetail("log_level must be one of debug, info, warn, error")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return errors.New("U101").
			WithDetail("log_format must be text or json")
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
