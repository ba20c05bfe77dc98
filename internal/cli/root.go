// Package cli provides the command-line interface for the FAC agent.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/logging"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/version"
)

var (
	// Global flags
	cfgFile      string
	serverURL    string
	sessionToken string
	verbose      bool
	debug        bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command for CLI mode.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fac",
		Short: "FAC agent - acquisition and transfer client for the Forensic Auto Carver server",
		Long: `FAC agent ` + version.Version + ` - Built: ` + version.BuildTime + `
Client for driving forensic image acquisition on a Forensic Auto Carver server.

Typical workflow:
  fac config init                 Configure server URL and session token
  fac devices list                Enumerate attached evidence devices
  fac image create ... --watch    Start an imaging job and follow it
  fac files upload *.img          Push local evidence into the session workspace`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultLogger()
			if verbose || debug {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server-url", "", "Carver server base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&sessionToken, "session-token", "", "Session token (overrides all other sources)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	// Create a context that can be cancelled by signals
	rootContext, cancelFunc = context.WithCancel(context.Background())

	// Set up signal handling for graceful cancellation
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Loop to handle multiple signals (e.g., user pressing Ctrl+C twice)
	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\n\nReceived signal %v, cancelling operations...\n", sig)
				fmt.Fprintf(os.Stderr, "   Please wait for cleanup to complete.\n\n")
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	// Clean up signal handler
	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newImageCmd())
	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newFilesCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		// Fallback to background context if called before Execute()
		return context.Background()
	}
	return rootContext
}
