// Package config provides configuration management for the FAC agent.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/constants"
)

// AgentConfig is the single configuration source for the agent.
//
// Config file location:
//   - Windows: %USERPROFILE%\.config\fac\agentconfig
//   - Unix: ~/.config/fac/agentconfig
//
// INI format:
//
//	[server]
//	url = https://carver.lab.example
//	session_token = <token>
//
//	[polling]
//	initial_delay_ms = 800
//	interval_ms = 1500
//	retry_max = 0
//
//	[upload]
//	auto_refresh = true
//
//	[proxy]
//	mode = system
//	host =
//	port = 0
//	username =
//	no_proxy =
//	warmup = false
//
//	[notifications]
//	enabled = true
//	show_job_complete = true
//	show_transfer_complete = true
type AgentConfig struct {
	// Carver server connection settings
	ServerURL    string
	SessionToken string

	Polling       PollingConfig
	Upload        UploadConfig
	Proxy         ProxyConfig
	Notifications NotificationConfig
}

// PollingConfig controls the job status monitor cadence. All retry and
// delay policy lives here, not in code.
type PollingConfig struct {
	// InitialDelayMS is the wait between submission and the first poll.
	InitialDelayMS int `ini:"initial_delay_ms"`

	// IntervalMS is the fixed delay between consecutive polls.
	IntervalMS int `ini:"interval_ms"`

	// RetryMax is the number of automatic retries of a failed status
	// request. 0 means a transport failure ends the monitor.
	RetryMax int `ini:"retry_max"`
}

// InitialDelay returns the pre-first-poll wait as a duration.
func (p PollingConfig) InitialDelay() time.Duration {
	return time.Duration(p.InitialDelayMS) * time.Millisecond
}

// Interval returns the poll cadence as a duration.
func (p PollingConfig) Interval() time.Duration {
	return time.Duration(p.IntervalMS) * time.Millisecond
}

// UploadConfig contains settings for the transfer manager.
type UploadConfig struct {
	// AutoRefresh refreshes the uploaded-files inventory after a batch
	// without asking. When false the agent prompts instead.
	AutoRefresh bool `ini:"auto_refresh"`
}

// ProxyConfig mirrors the proxy block understood by internal/http.
type ProxyConfig struct {
	// Mode is one of "", "none", "system", "basic", "ntlm".
	Mode     string `ini:"mode"`
	Host     string `ini:"host"`
	Port     int    `ini:"port"`
	Username string `ini:"username"`
	Password string `ini:"password"`

	// NoProxy is a comma-separated bypass list.
	NoProxy string `ini:"no_proxy"`

	// Warmup sends a HEAD request through the proxy at startup so auth
	// failures surface before the first real call.
	Warmup bool `ini:"warmup"`
}

// NotificationConfig contains settings for desktop notifications.
type NotificationConfig struct {
	Enabled              bool `ini:"enabled"`
	ShowJobComplete      bool `ini:"show_job_complete"`
	ShowTransferComplete bool `ini:"show_transfer_complete"`
}

// Validation errors
var (
	ErrMissingServerURL    = errors.New("server url is required")
	ErrInvalidPollInterval = errors.New("polling interval_ms must be at least 100")
	ErrInvalidPollDelay    = errors.New("polling initial_delay_ms must not be negative")
	ErrInvalidRetryMax     = errors.New("polling retry_max must be between 0 and 10")
	ErrInvalidProxyMode    = errors.New("proxy mode must be one of none, system, basic, ntlm")
)

// DefaultConfigPath returns the default path for the agentconfig file.
func DefaultConfigPath() (string, error) {
	var configDir string

	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", errors.New("USERPROFILE environment variable not set")
		}
		configDir = filepath.Join(userProfile, ".config", constants.AppName)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", constants.AppName)
	}

	return filepath.Join(configDir, "agentconfig"), nil
}

// NewAgentConfig creates an AgentConfig with default values.
func NewAgentConfig() *AgentConfig {
	return &AgentConfig{
		Polling: PollingConfig{
			InitialDelayMS: int(constants.DefaultInitialPollDelay / time.Millisecond),
			IntervalMS:     int(constants.DefaultPollInterval / time.Millisecond),
			RetryMax:       constants.DefaultPollRetryMax,
		},
		Upload: UploadConfig{
			AutoRefresh: true,
		},
		Proxy: ProxyConfig{
			Mode: "system",
		},
		Notifications: NotificationConfig{
			Enabled:              true,
			ShowJobComplete:      true,
			ShowTransferComplete: true,
		},
	}
}

// Load reads configuration from an INI file, applying environment
// overrides (FAC_SERVER_URL, FAC_SESSION_TOKEN) last. A missing file
// yields defaults and no error.
func Load(path string) (*AgentConfig, error) {
	cfg := NewAgentConfig()

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			applyEnv(cfg)
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		applyEnv(cfg)
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load agentconfig: %w", err)
	}

	serverSection := iniFile.Section("server")
	cfg.ServerURL = serverSection.Key("url").String()
	cfg.SessionToken = serverSection.Key("session_token").String()

	if err := iniFile.Section("polling").MapTo(&cfg.Polling); err != nil {
		return nil, fmt.Errorf("failed to parse polling section: %w", err)
	}
	if err := iniFile.Section("upload").MapTo(&cfg.Upload); err != nil {
		return nil, fmt.Errorf("failed to parse upload section: %w", err)
	}
	if err := iniFile.Section("proxy").MapTo(&cfg.Proxy); err != nil {
		return nil, fmt.Errorf("failed to parse proxy section: %w", err)
	}
	if err := iniFile.Section("notifications").MapTo(&cfg.Notifications); err != nil {
		return nil, fmt.Errorf("failed to parse notifications section: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *AgentConfig) {
	if v := os.Getenv("FAC_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("FAC_SESSION_TOKEN"); v != "" {
		cfg.SessionToken = v
	}
}

// Save writes configuration to an INI file atomically. Creates parent
// directories as needed. The session token is sensitive, so the file is
// chmodded to owner-only on Unix.
func Save(cfg *AgentConfig, path string) error {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	serverSection, err := iniFile.NewSection("server")
	if err != nil {
		return fmt.Errorf("failed to create server section: %w", err)
	}
	serverSection.Key("url").SetValue(cfg.ServerURL)
	serverSection.Key("session_token").SetValue(cfg.SessionToken)

	pollingSection, err := iniFile.NewSection("polling")
	if err != nil {
		return fmt.Errorf("failed to create polling section: %w", err)
	}
	if err := pollingSection.ReflectFrom(&cfg.Polling); err != nil {
		return fmt.Errorf("failed to write polling section: %w", err)
	}

	uploadSection, err := iniFile.NewSection("upload")
	if err != nil {
		return fmt.Errorf("failed to create upload section: %w", err)
	}
	if err := uploadSection.ReflectFrom(&cfg.Upload); err != nil {
		return fmt.Errorf("failed to write upload section: %w", err)
	}

	proxySection, err := iniFile.NewSection("proxy")
	if err != nil {
		return fmt.Errorf("failed to create proxy section: %w", err)
	}
	if err := proxySection.ReflectFrom(&cfg.Proxy); err != nil {
		return fmt.Errorf("failed to write proxy section: %w", err)
	}

	notifySection, err := iniFile.NewSection("notifications")
	if err != nil {
		return fmt.Errorf("failed to create notifications section: %w", err)
	}
	if err := notifySection.ReflectFrom(&cfg.Notifications); err != nil {
		return fmt.Errorf("failed to write notifications section: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks if the configuration is usable for server calls.
func (cfg *AgentConfig) Validate() error {
	if strings.TrimSpace(cfg.ServerURL) == "" {
		return ErrMissingServerURL
	}
	if cfg.Polling.IntervalMS < 100 {
		return ErrInvalidPollInterval
	}
	if cfg.Polling.InitialDelayMS < 0 {
		return ErrInvalidPollDelay
	}
	if cfg.Polling.RetryMax < 0 || cfg.Polling.RetryMax > 10 {
		return ErrInvalidRetryMax
	}
	switch cfg.Proxy.Mode {
	case "", "none", "system", "basic", "ntlm":
	default:
		return ErrInvalidProxyMode
	}
	return nil
}

// BaseURL returns the server URL without a trailing slash.
func (cfg *AgentConfig) BaseURL() string {
	return strings.TrimRight(cfg.ServerURL, "/")
}
