// Package cli provides configuration management commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage agent configuration",
		Long: `Configuration management commands for the FAC agent.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  test  - Test the server connection
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for the FAC agent.

The configuration will be saved to ~/.config/fac/agentconfig

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()

			configPath, err := resolveConfigPath()
			if err != nil {
				return err
			}

			if !force {
				if _, err := os.Stat(configPath); err == nil {
					fmt.Printf("Configuration already exists at: %s\n", configPath)
					fmt.Println("Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			fmt.Println("FAC Agent Configuration Setup")
			fmt.Println("=============================")
			fmt.Println()

			reader := bufio.NewReader(os.Stdin)
			cfg := config.NewAgentConfig()

			// Server URL (required)
			for cfg.ServerURL == "" {
				fmt.Print("Carver server URL (required): ")
				input, _ := reader.ReadString('\n')
				cfg.ServerURL = strings.TrimSpace(input)
				if cfg.ServerURL == "" {
					fmt.Println("  Error: server URL is required")
				}
			}

			fmt.Print("Session token (leave empty to fetch per session): ")
			tokenInput, _ := reader.ReadString('\n')
			cfg.SessionToken = strings.TrimSpace(tokenInput)

			// Polling settings
			fmt.Println()
			fmt.Println("Polling Settings (press Enter for defaults)")
			fmt.Println("-------------------------------------------")

			fmt.Printf("Poll interval in ms [%d]: ", cfg.Polling.IntervalMS)
			intervalInput, _ := reader.ReadString('\n')
			intervalInput = strings.TrimSpace(intervalInput)
			if intervalInput != "" {
				if v, err := strconv.Atoi(intervalInput); err == nil && v > 0 {
					cfg.Polling.IntervalMS = v
				}
			}

			// Proxy settings
			fmt.Println()
			fmt.Print("Configure proxy? [y/N]: ")
			proxyInput, _ := reader.ReadString('\n')
			proxyInput = strings.TrimSpace(strings.ToLower(proxyInput))

			if proxyInput == "y" || proxyInput == "yes" {
				fmt.Println()
				fmt.Println("Proxy Configuration")
				fmt.Println("-------------------")
				fmt.Println("Proxy modes: none, system, basic, ntlm")
				fmt.Print("Proxy mode [system]: ")
				modeInput, _ := reader.ReadString('\n')
				cfg.Proxy.Mode = strings.TrimSpace(modeInput)
				if cfg.Proxy.Mode == "" {
					cfg.Proxy.Mode = "system"
				}

				if cfg.Proxy.Mode == "basic" || cfg.Proxy.Mode == "ntlm" {
					fmt.Print("Proxy host: ")
					hostInput, _ := reader.ReadString('\n')
					cfg.Proxy.Host = strings.TrimSpace(hostInput)

					fmt.Print("Proxy port [8080]: ")
					portInput, _ := reader.ReadString('\n')
					portInput = strings.TrimSpace(portInput)
					cfg.Proxy.Port = 8080
					if portInput != "" {
						if v, err := strconv.Atoi(portInput); err == nil && v > 0 {
							cfg.Proxy.Port = v
						}
					}

					fmt.Print("Proxy username: ")
					userInput, _ := reader.ReadString('\n')
					cfg.Proxy.Username = strings.TrimSpace(userInput)
				}
			} else {
				cfg.Proxy.Mode = "none"
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if err := config.Save(cfg, configPath); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			logger.Info().Str("path", configPath).Msg("Configuration saved")

			fmt.Println()
			fmt.Printf("✓ Configuration saved to: %s\n", configPath)
			fmt.Println()
			if cfg.SessionToken == "" {
				fmt.Println("No session token stored; the agent will fetch one from the server")
				fmt.Println("per session, or you can set FAC_SESSION_TOKEN.")
				fmt.Println()
			}
			fmt.Println("Test your configuration with: fac config test")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

This command shows the merged configuration from:
  1. Configuration file (~/.config/fac/agentconfig)
  2. Environment variables (FAC_SERVER_URL, FAC_SESSION_TOKEN)
  3. Command-line flags (--server-url, --session-token)

Priority: flags > environment > config file > defaults`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Println("Current Configuration")
			fmt.Println("=====================")
			fmt.Println()

			fmt.Println("Server:")
			fmt.Printf("  URL:           %s\n", cfg.ServerURL)
			if cfg.SessionToken != "" {
				// Never display the token itself.
				fmt.Printf("  Session token: <set (%d chars)>\n", len(cfg.SessionToken))
			} else {
				fmt.Println("  Session token: <not set - fetched per session>")
			}
			fmt.Println()

			fmt.Println("Polling:")
			fmt.Printf("  Initial delay: %s\n", cfg.Polling.InitialDelay())
			fmt.Printf("  Interval:      %s\n", cfg.Polling.Interval())
			fmt.Printf("  Retry max:     %d\n", cfg.Polling.RetryMax)
			fmt.Println()

			fmt.Println("Upload:")
			fmt.Printf("  Auto-refresh inventory: %v\n", cfg.Upload.AutoRefresh)
			fmt.Println()

			fmt.Println("Proxy:")
			fmt.Printf("  Mode: %s\n", cfg.Proxy.Mode)
			if cfg.Proxy.Host != "" {
				fmt.Printf("  Host: %s\n", cfg.Proxy.Host)
				fmt.Printf("  Port: %d\n", cfg.Proxy.Port)
			}
			if cfg.Proxy.NoProxy != "" {
				fmt.Printf("  No-proxy: %s\n", cfg.Proxy.NoProxy)
			}
			fmt.Println()

			fmt.Println("Notifications:")
			fmt.Printf("  Enabled:           %v\n", cfg.Notifications.Enabled)
			fmt.Printf("  Job complete:      %v\n", cfg.Notifications.ShowJobComplete)
			fmt.Printf("  Transfer complete: %v\n", cfg.Notifications.ShowTransferComplete)
			fmt.Println()

			configPath, err := resolveConfigPath()
			if err != nil {
				return err
			}
			fmt.Printf("Configuration file: %s\n", configPath)
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				fmt.Println("  (file does not exist - using defaults)")
			}

			return nil
		},
	}

	return cmd
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the server connection",
		Long: `Test the carver server connection with current configuration.

Use this to verify your server URL, session token, and network path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()

			fmt.Println("Testing Server Connection")
			fmt.Println("=========================")
			fmt.Println()

			apiClient, cfg, err := getAPIClient()
			if err != nil {
				return err
			}

			fmt.Printf("Server URL: %s\n", cfg.BaseURL())
			fmt.Println("Testing connection...")
			fmt.Println()

			ctx, cancel := context.WithTimeout(GetContext(), 10*time.Second)
			defer cancel()

			if _, err := apiClient.EnsureSessionToken(ctx); err != nil {
				logger.Error().Err(err).Msg("Connection test failed")
				fmt.Println("✗ Connection FAILED")
				fmt.Printf("  Error: %v\n", err)
				return fmt.Errorf("connection test failed")
			}

			devices, err := apiClient.ListDevices(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("Connection test failed")
				fmt.Println("✗ Connection FAILED")
				fmt.Printf("  Error: %v\n", err)
				return fmt.Errorf("connection test failed")
			}

			logger.Info().Msg("Connection test successful")

			fmt.Println("✓ Connection SUCCESSFUL")
			fmt.Println()
			fmt.Printf("The server reports %d attached device(s).\n", len(devices))

			return nil
		},
	}

	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				fmt.Println("Configuration path (from --config flag):")
			} else {
				fmt.Println("Default configuration path:")
			}

			fmt.Printf("  %s\n", configPath)
			fmt.Println()

			if fileInfo, err := os.Stat(configPath); err == nil {
				fmt.Println("Status: ✓ File exists")
				fmt.Printf("Size:   %d bytes\n", fileInfo.Size())
				fmt.Printf("Modified: %s\n", fileInfo.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Println("Status: File does not exist")
				fmt.Println()
				fmt.Println("Create a configuration file with: fac config init")
			}

			return nil
		},
	}

	return cmd
}

// resolveConfigPath returns the --config flag value or the default path.
func resolveConfigPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	path, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	return path, nil
}
