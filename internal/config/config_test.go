package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eshaffer321/therapist-go/internal/types"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(envBaseURL, "")
	t.Setenv(envSentryDSN, "")

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != types.DefaultBaseURL {
		t.Fatalf("BaseURL = %q, want %q", cfg.BaseURL, types.DefaultBaseURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if !strings.HasPrefix(cfg.SessionDir, home) {
		t.Fatalf("SessionDir = %q, want it under HOME %q", cfg.SessionDir, home)
	}
	if cfg.Retry != nil || cfg.RateLimit != nil {
		t.Fatalf("Retry/RateLimit should be unset by default, got %#v %#v", cfg.Retry, cfg.RateLimit)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(envBaseURL, "")
	t.Setenv(envSentryDSN, "")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
base_url = "  https://staging.example.com/api/v1  "
timeout = "10s"
session_dir = "~/.therapist"
language = "fr"
single_flight_refresh = true
metrics_addr = ":9102"

[retry]
max_retries = 3
retry_wait = "250ms"
max_wait = "2s"

[rate_limit]
per_second = 5
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != "https://staging.example.com/api/v1" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.SessionDir != filepath.Join(home, ".therapist") {
		t.Fatalf("SessionDir = %q, want %q", cfg.SessionDir, filepath.Join(home, ".therapist"))
	}
	if cfg.Language != "fr" || !cfg.SingleFlightRefresh || cfg.MetricsAddr != ":9102" {
		t.Fatalf("unexpected config: %#v", cfg)
	}
	if cfg.Retry == nil || cfg.Retry.MaxRetries != 3 || cfg.Retry.RetryWait != 250*time.Millisecond || cfg.Retry.MaxWait != 2*time.Second {
		t.Fatalf("Retry = %#v", cfg.Retry)
	}
	if cfg.RateLimit == nil || cfg.RateLimit.PerSecond != 5 || cfg.RateLimit.Burst != 1 {
		t.Fatalf("RateLimit = %#v", cfg.RateLimit)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`base_url = "https://file.example.com"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(envBaseURL, "https://env.example.com")
	t.Setenv(envSentryDSN, "https://key@sentry.example.com/1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != "https://env.example.com" {
		t.Fatalf("BaseURL = %q, want env override", cfg.BaseURL)
	}
	if cfg.SentryDSN != "https://key@sentry.example.com/1" {
		t.Fatalf("SentryDSN = %q, want env override", cfg.SentryDSN)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"bad toml":         `base_url = `,
		"bad timeout":      `timeout = "soon"`,
		"negative timeout": `timeout = "-1s"`,
		"bad retry wait":   "[retry]\nretry_wait = \"x\"",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("Load(%q) returned nil error", body)
			}
		})
	}
}
