// Package cli provides API client helper functions.
package cli

import (
	"fmt"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/api"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/config"
	fachttp "github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/http"
)

// loadConfig loads the agent configuration and applies CLI flag overrides.
// Priority: flags > environment > config file > defaults.
func loadConfig() (*config.AgentConfig, error) {
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if sessionToken != "" {
		cfg.SessionToken = sessionToken
	}

	return cfg, nil
}

// getAPIClient loads configuration and creates an API client.
// This is the standard way to get an API client in CLI commands.
func getAPIClient() (*api.Client, *config.AgentConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	// Authenticated proxies configured without a stored password ask for
	// one at the terminal.
	if fachttp.NeedsProxyPassword(cfg.Proxy) {
		password, err := promptProxyPassword(cfg.Proxy.Host, cfg.Proxy.Username)
		if err != nil {
			return nil, nil, err
		}
		cfg.Proxy.Password = password
	}

	client, err := api.NewClient(cfg, GetLogger())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return client, cfg, nil
}
