// Package cli provides workspace file commands.
package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	facstrings "github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/util/strings"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/validation"
)

// newFilesCmd creates the 'files' command group.
func newFilesCmd() *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Workspace file operations (upload, list, mkdir, delete, inventory)",
		Long:  `Commands for managing files in the carver server's session workspace.`,
	}

	filesCmd.AddCommand(newFilesUploadCmd())
	filesCmd.AddCommand(newFilesListCmd())
	filesCmd.AddCommand(newFilesMkdirCmd())
	filesCmd.AddCommand(newFilesDeleteCmd())
	filesCmd.AddCommand(newFilesInventoryCmd())

	return filesCmd
}

// newFilesUploadCmd creates the 'files upload' command.
func newFilesUploadCmd() *cobra.Command {
	var (
		root     string
		destPath string
	)

	cmd := &cobra.Command{
		Use:   "upload <file|pattern>...",
		Short: "Upload files to the session workspace",
		Long: `Upload one or more local files to the carver server.

Files are sent one at a time; the first failure stops the batch and the
remaining files are skipped. Press Ctrl+C to abort the whole batch.

Glob patterns are expanded even when quoted.

Example:
  # Upload a single evidence file
  fac files upload usb.dd

  # Upload everything matching a pattern into a subdirectory
  fac files upload "*.img" --dest-path case-042/media`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateRemotePath(destPath); err != nil {
				return err
			}

			apiClient, cfg, err := getAPIClient()
			if err != nil {
				return err
			}

			return executeBatchUpload(GetContext(), cfg, apiClient, args, root, destPath)
		},
	}

	cmd.Flags().StringVar(&root, "root", "session", "Workspace root to upload into")
	cmd.Flags().StringVar(&destPath, "dest-path", "", "Subdirectory within the workspace root")

	return cmd
}

// newFilesListCmd creates the 'files list' command.
func newFilesListCmd() *cobra.Command {
	var (
		root string
		path string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a workspace directory",
		Long: `List the contents of a directory in the server workspace.

Example:
  fac files list --path case-042`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateRemotePath(path); err != nil {
				return err
			}

			apiClient, _, err := getAPIClient()
			if err != nil {
				return err
			}

			listing, err := apiClient.ListDir(GetContext(), root, path)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", path, err)
			}

			if len(listing.Entries) == 0 {
				fmt.Println("Directory is empty")
				return nil
			}

			fmt.Printf("%s:%s (%d entries)\n\n", listing.Root, "/"+listing.Path, len(listing.Entries))
			for _, entry := range listing.Entries {
				if entry.IsDir {
					fmt.Printf("  %-40s <dir>\n", entry.Name+"/")
				} else {
					fmt.Printf("  %-40s %s\n", entry.Name, facstrings.FormatSize(entry.Size))
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "session", "Workspace root to list")
	cmd.Flags().StringVarP(&path, "path", "p", "", "Directory path within the root")

	return cmd
}

// newFilesMkdirCmd creates the 'files mkdir' command.
func newFilesMkdirCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a workspace directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateRemotePath(args[0]); err != nil {
				return err
			}

			apiClient, _, err := getAPIClient()
			if err != nil {
				return err
			}

			if err := apiClient.MakeDir(GetContext(), root, args[0]); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}

			fmt.Printf("✓ Created %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "session", "Workspace root")

	return cmd
}

// newFilesDeleteCmd creates the 'files delete' command.
func newFilesDeleteCmd() *cobra.Command {
	var (
		root    string
		confirm bool
	)

	cmd := &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete a workspace file or directory",
		Long: `Delete a file or directory from the server workspace.

WARNING: This operation cannot be undone!`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateRemotePath(args[0]); err != nil {
				return err
			}

			if !confirm {
				ok, err := confirmDeletion(root, args[0])
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println("Deletion cancelled")
					return nil
				}
			}

			apiClient, _, err := getAPIClient()
			if err != nil {
				return err
			}

			if err := apiClient.Delete(GetContext(), root, args[0]); err != nil {
				return fmt.Errorf("failed to delete: %w", err)
			}

			fmt.Printf("✓ Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "session", "Workspace root")
	cmd.Flags().BoolVarP(&confirm, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// newFilesInventoryCmd creates the 'files inventory' command.
func newFilesInventoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "List uploaded files known to the server",
		Long: `Show the server-side inventory of uploaded files, including size and
encryption detection results.

Example:
  fac files inventory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, _, err := getAPIClient()
			if err != nil {
				return err
			}

			inventory, err := apiClient.UploadedFiles(GetContext())
			if err != nil {
				return fmt.Errorf("failed to fetch inventory: %w", err)
			}

			if len(inventory) == 0 {
				fmt.Println("No uploaded files on the server")
				return nil
			}

			names := make([]string, 0, len(inventory))
			for name := range inventory {
				names = append(names, name)
			}
			sort.Strings(names)

			fmt.Printf("Found %d uploaded %s:\n\n",
				len(names), facstrings.Pluralize("file", int64(len(names))))
			for _, name := range names {
				// Inventory names come from the server; refuse to render
				// anything that does not look like a plain filename.
				if err := validation.ValidateFilename(name); err != nil {
					GetLogger().Warn().Err(err).Msg("skipping inventory entry with an unsafe name")
					continue
				}
				item := inventory[name]
				fmt.Printf("  %-40s %8.2f MB", name, item.SizeMB)
				switch {
				case item.Encryption.Decrypting:
					fmt.Printf("  [decrypting]")
				case item.Encryption.DecryptedPath != "":
					fmt.Printf("  [decrypted: %s]", item.Encryption.DecryptedPath)
				case item.Encryption.Encrypted:
					fmt.Printf("  [encrypted: %s]", item.Encryption.Description)
				}
				fmt.Println()
			}

			return nil
		},
	}

	return cmd
}
