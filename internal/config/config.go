// Package config loads the therapist client configuration from
// ~/.config/therapist/config.toml.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eshaffer321/therapist-go/internal/types"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything needed to build a client.
type Config struct {
	BaseURL             string
	Timeout             time.Duration
	SessionDir          string
	Language            string
	SentryDSN           string
	SingleFlightRefresh bool
	MetricsAddr         string
	Retry               *types.RetryConfig
	RateLimit           *RateLimit
}

// RateLimit bounds outgoing requests.
type RateLimit struct {
	PerSecond float64
	Burst     int
}

const (
	defaultConfigPath = "~/.config/therapist/config.toml"
	defaultSessionDir = "~/.local/share/therapist"
	defaultLanguage   = "en"

	envBaseURL   = "THERAPIST_BASE_URL"
	envSentryDSN = "THERAPIST_SENTRY_DSN"
)

type rawConfig struct {
	BaseURL             string `toml:"base_url"`
	Timeout             string `toml:"timeout"`
	SessionDir          string `toml:"session_dir"`
	Language            string `toml:"language"`
	SentryDSN           string `toml:"sentry_dsn"`
	SingleFlightRefresh bool   `toml:"single_flight_refresh"`
	MetricsAddr         string `toml:"metrics_addr"`
	Retry               *struct {
		MaxRetries int    `toml:"max_retries"`
		RetryWait  string `toml:"retry_wait"`
		MaxWait    string `toml:"max_wait"`
	} `toml:"retry"`
	RateLimit *struct {
		PerSecond float64 `toml:"per_second"`
		Burst     int     `toml:"burst"`
	} `toml:"rate_limit"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BaseURL:    types.DefaultBaseURL,
		Timeout:    types.DefaultTimeout,
		SessionDir: mustExpand(defaultSessionDir),
		Language:   defaultLanguage,
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load reads the config at path, falling back to defaults when the file is
// missing. Environment overrides are applied last.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(raw.Timeout); v != "" {
		d, err := parsePositiveDuration("timeout", v)
		if err != nil {
			return Config{}, err
		}
		cfg.Timeout = d
	}
	if v := strings.TrimSpace(raw.SessionDir); v != "" {
		cfg.SessionDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Language); v != "" {
		cfg.Language = v
	}
	cfg.SentryDSN = strings.TrimSpace(raw.SentryDSN)
	cfg.SingleFlightRefresh = raw.SingleFlightRefresh
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	if raw.Retry != nil {
		retry := &types.RetryConfig{
			MaxRetries: raw.Retry.MaxRetries,
			RetryWait:  time.Second,
			MaxWait:    30 * time.Second,
		}
		if v := strings.TrimSpace(raw.Retry.RetryWait); v != "" {
			if retry.RetryWait, err = parsePositiveDuration("retry.retry_wait", v); err != nil {
				return Config{}, err
			}
		}
		if v := strings.TrimSpace(raw.Retry.MaxWait); v != "" {
			if retry.MaxWait, err = parsePositiveDuration("retry.max_wait", v); err != nil {
				return Config{}, err
			}
		}
		if retry.MaxRetries < 0 {
			return Config{}, fmt.Errorf("retry.max_retries must not be negative")
		}
		cfg.Retry = retry
	}

	if raw.RateLimit != nil && raw.RateLimit.PerSecond > 0 {
		burst := raw.RateLimit.Burst
		if burst <= 0 {
			burst = 1
		}
		cfg.RateLimit = &RateLimit{PerSecond: raw.RateLimit.PerSecond, Burst: burst}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(envBaseURL)); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(envSentryDSN)); v != "" {
		cfg.SentryDSN = v
	}
}

func parsePositiveDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", field)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
