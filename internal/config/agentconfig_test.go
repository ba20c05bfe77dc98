package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestNewAgentConfigDefaults(t *testing.T) {
	cfg := NewAgentConfig()

	if got := cfg.Polling.InitialDelay(); got != 800*time.Millisecond {
		t.Errorf("InitialDelay() = %v, want 800ms", got)
	}
	if got := cfg.Polling.Interval(); got != 1500*time.Millisecond {
		t.Errorf("Interval() = %v, want 1.5s", got)
	}
	if cfg.Polling.RetryMax != 0 {
		t.Errorf("RetryMax = %d, want 0", cfg.Polling.RetryMax)
	}
	if !cfg.Upload.AutoRefresh {
		t.Error("AutoRefresh should default to true")
	}
	if cfg.Proxy.Mode != "system" {
		t.Errorf("Proxy.Mode = %q, want system", cfg.Proxy.Mode)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Polling.IntervalMS != 1500 {
		t.Errorf("IntervalMS = %d, want default 1500", cfg.Polling.IntervalMS)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentconfig")

	cfg := NewAgentConfig()
	cfg.ServerURL = "https://carver.lab.example"
	cfg.SessionToken = "tok-123"
	cfg.Polling.IntervalMS = 2000
	cfg.Polling.RetryMax = 2
	cfg.Upload.AutoRefresh = false
	cfg.Proxy.Mode = "basic"
	cfg.Proxy.Host = "proxy.lab.example"
	cfg.Proxy.Port = 3128

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if loaded.ServerURL != cfg.ServerURL {
		t.Errorf("ServerURL = %q, want %q", loaded.ServerURL, cfg.ServerURL)
	}
	if loaded.SessionToken != cfg.SessionToken {
		t.Errorf("SessionToken = %q, want %q", loaded.SessionToken, cfg.SessionToken)
	}
	if loaded.Polling.IntervalMS != 2000 {
		t.Errorf("IntervalMS = %d, want 2000", loaded.Polling.IntervalMS)
	}
	if loaded.Polling.RetryMax != 2 {
		t.Errorf("RetryMax = %d, want 2", loaded.Polling.RetryMax)
	}
	if loaded.Upload.AutoRefresh {
		t.Error("AutoRefresh should round-trip as false")
	}
	if loaded.Proxy.Host != "proxy.lab.example" || loaded.Proxy.Port != 3128 {
		t.Errorf("Proxy = %+v", loaded.Proxy)
	}
}

func TestSaveFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not meaningful on Windows")
	}
	path := filepath.Join(t.TempDir(), "agentconfig")

	cfg := NewAgentConfig()
	cfg.ServerURL = "https://carver.lab.example"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file permissions = %o, want 0600", perm)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FAC_SERVER_URL", "https://override.example")
	t.Setenv("FAC_SESSION_TOKEN", "env-token")

	path := filepath.Join(t.TempDir(), "agentconfig")
	cfg := NewAgentConfig()
	cfg.ServerURL = "https://file.example"
	cfg.SessionToken = "file-token"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.ServerURL != "https://override.example" {
		t.Errorf("ServerURL = %q, env should win", loaded.ServerURL)
	}
	if loaded.SessionToken != "env-token" {
		t.Errorf("SessionToken = %q, env should win", loaded.SessionToken)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *AgentConfig {
		cfg := NewAgentConfig()
		cfg.ServerURL = "https://carver.lab.example"
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*AgentConfig)
		wantErr error
	}{
		{"missing url", func(c *AgentConfig) { c.ServerURL = " " }, ErrMissingServerURL},
		{"interval too small", func(c *AgentConfig) { c.Polling.IntervalMS = 50 }, ErrInvalidPollInterval},
		{"negative delay", func(c *AgentConfig) { c.Polling.InitialDelayMS = -1 }, ErrInvalidPollDelay},
		{"retry max too large", func(c *AgentConfig) { c.Polling.RetryMax = 11 }, ErrInvalidRetryMax},
		{"bad proxy mode", func(c *AgentConfig) { c.Proxy.Mode = "socks" }, ErrInvalidProxyMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBaseURL(t *testing.T) {
	cfg := NewAgentConfig()
	cfg.ServerURL = "https://carver.lab.example/"
	if got := cfg.BaseURL(); got != "https://carver.lab.example" {
		t.Errorf("BaseURL() = %q", got)
	}
}
