package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/api"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/config"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/constants"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/events"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/notify"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/progress"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/transfer"
	facstrings "github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/util/strings"
)

// expandGlobPatterns expands glob patterns like *.img, even when quoted.
// Returns a deduplicated list of absolute file paths.
func expandGlobPatterns(patterns []string) ([]string, error) {
	var expandedFiles []string
	seenFiles := make(map[string]bool)

	for _, pattern := range patterns {
		hasGlob := strings.ContainsAny(pattern, "*?[]")

		if hasGlob {
			matches, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
			}

			if len(matches) == 0 {
				return nil, fmt.Errorf("no files match pattern: %s", pattern)
			}

			for _, match := range matches {
				absPath, err := filepath.Abs(match)
				if err != nil {
					return nil, fmt.Errorf("failed to get absolute path for %s: %w", match, err)
				}

				if !seenFiles[absPath] {
					expandedFiles = append(expandedFiles, absPath)
					seenFiles[absPath] = true
				}
			}
		} else {
			absPath, err := filepath.Abs(pattern)
			if err != nil {
				return nil, fmt.Errorf("failed to get absolute path for %s: %w", pattern, err)
			}

			if !seenFiles[absPath] {
				expandedFiles = append(expandedFiles, absPath)
				seenFiles[absPath] = true
			}
		}
	}

	return expandedFiles, nil
}

// executeBatchUpload runs a sequential upload batch with live progress bars
// and prints the post-batch inventory reconciliation.
func executeBatchUpload(
	ctx context.Context,
	cfg *config.AgentConfig,
	apiClient *api.Client,
	patterns []string,
	root string,
	destPath string,
) error {
	logger := GetLogger()

	filePaths, err := expandGlobPatterns(patterns)
	if err != nil {
		return err
	}

	// Validate everything up front so a bad path fails before any bytes move.
	tasks := make([]*transfer.Task, 0, len(filePaths))
	for _, filePath := range filePaths {
		payload, err := transfer.FilePayload(filePath)
		if err != nil {
			return err
		}
		tasks = append(tasks, transfer.NewTask(payload, root, destPath))
	}

	logger.Info().
		Int("count", len(tasks)).
		Str("root", root).
		Msg("Starting upload batch")

	if destPath != "" {
		fmt.Printf("Uploading %d file(s) to %s:%s\n\n", len(tasks), root, destPath)
	} else {
		fmt.Printf("Uploading %d file(s) to the %s workspace\n\n", len(tasks), root)
	}

	bus := events.NewEventBus(constants.EventBusDefaultBuffer)
	ui := progress.NewBatchUI(len(tasks))

	destLabel := root
	if destPath != "" {
		destLabel = root + "/" + destPath
	}

	eventCh := bus.SubscribeAll()
	uiDone := make(chan struct{})
	go func() {
		defer close(uiDone)
		renderTransferEvents(eventCh, ui, destLabel)
	}()

	manager := transfer.NewManager(apiClient, transfer.Config{
		AutoRefresh: cfg.Upload.AutoRefresh,
	}, bus, logger)

	result, runErr := manager.Run(ctx, tasks)

	// Drain the UI pipeline before printing the summary below the bars.
	bus.Close()
	<-uiDone
	ui.Wait()

	if result == nil {
		return runErr
	}
	if runErr != nil && result.Failed == nil && !result.Aborted {
		// The batch never started: session token or slot acquisition failed.
		return runErr
	}

	return summarizeBatch(cfg, tasks, result)
}

// renderTransferEvents drives the progress bars from the batch event stream.
func renderTransferEvents(eventCh <-chan events.Event, ui *progress.BatchUI, destLabel string) {
	for ev := range eventCh {
		te, ok := ev.(*events.TransferEvent)
		if !ok {
			continue
		}

		switch te.Type() {
		case events.EventTransferStarted:
			ui.AddTaskBar(te.TaskID, te.Name, destLabel, te.Size)

		case events.EventTransferProgress:
			if bar, ok := ui.Bar(te.TaskID); ok && te.Progress >= 0 && te.Size > 0 {
				bar.Update(int64(te.Progress * float64(te.Size)))
			}

		case events.EventTransferCompleted:
			if bar, ok := ui.Bar(te.TaskID); ok {
				bar.Complete(nil)
			}

		case events.EventTransferFailed, events.EventTransferAborted:
			if bar, ok := ui.Bar(te.TaskID); ok {
				bar.Complete(te.Error)
			}
		}
	}
}

// summarizeBatch prints the outcome of a finished batch and fires the
// desktop notification.
func summarizeBatch(cfg *config.AgentConfig, tasks []*transfer.Task, result *transfer.BatchResult) error {
	notifier := notify.NewNotifier(cfg.Notifications, GetLogger())

	skipped := 0
	for _, task := range tasks {
		if task.State() == transfer.TaskSkipped {
			skipped++
		}
	}

	fmt.Println()
	switch {
	case result.Aborted:
		fmt.Printf("✗ Batch aborted: %d of %d file(s) uploaded", result.Uploaded, len(tasks))
		if skipped > 0 {
			fmt.Printf(", %d skipped", skipped)
		}
		fmt.Println()
		return fmt.Errorf("upload batch aborted")

	case result.Failed != nil:
		fmt.Printf("✗ Upload of %s failed: %v\n", result.Failed.Payload.Name, result.Failed.Err())
		if skipped > 0 {
			fmt.Printf("  %d remaining %s skipped\n",
				skipped, facstrings.Pluralize("file", int64(skipped)))
		}
		notifier.BatchFailed(result.Failed.Payload.Name, result.Failed.Err().Error())
		return fmt.Errorf("upload batch failed")
	}

	fmt.Printf("✓ Successfully uploaded %d %s\n",
		result.Uploaded, facstrings.Pluralize("file", int64(result.Uploaded)))

	if len(result.NewItems) > 0 {
		fmt.Println("\nNew on the server:")
		for _, name := range result.NewItems {
			fmt.Printf("  %s\n", name)
		}
		notifier.BatchComplete(result.NewItems)
	}
	if !cfg.Upload.AutoRefresh && result.Uploaded > 0 {
		fmt.Println("\nAuto-refresh is off. Refresh the listing with: fac files list")
	}

	return nil
}
