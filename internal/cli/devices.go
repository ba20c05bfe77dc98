// Package cli provides device enumeration commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newDevicesCmd creates the 'devices' command group.
func newDevicesCmd() *cobra.Command {
	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "Evidence device operations (list)",
		Long:  `Commands for enumerating block devices attached to the carver server.`,
	}

	devicesCmd.AddCommand(newDevicesListCmd())

	return devicesCmd
}

// newDevicesListCmd creates the 'devices list' command.
func newDevicesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List attached evidence devices",
		Long: `List block devices the carver server can image.

Example:
  fac devices list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()

			apiClient, _, err := getAPIClient()
			if err != nil {
				return err
			}

			logger.Info().Msg("Fetching attached devices")
			devices, err := apiClient.ListDevices(GetContext())
			if err != nil {
				return fmt.Errorf("failed to list devices: %w", err)
			}

			if len(devices) == 0 {
				fmt.Println("No devices found")
				return nil
			}

			fmt.Printf("Found %d device(s):\n\n", len(devices))
			for i := range devices {
				fmt.Printf("  %d. %s\n", i+1, devices[i].Label())
			}

			fmt.Println("\nImage one with: fac image create --kind device --path <identifier>")
			return nil
		},
	}

	return cmd
}
