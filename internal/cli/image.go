// Package cli provides imaging job commands.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/api"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/config"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/constants"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/events"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/imaging"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/models"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/notify"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/progress"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/util/sanitize"
)

// newImageCmd creates the 'image' command group.
func newImageCmd() *cobra.Command {
	imageCmd := &cobra.Command{
		Use:   "image",
		Short: "Imaging job operations (create, status, watch)",
		Long:  `Commands for starting and following acquisition jobs on the carver server.`,
	}

	imageCmd.AddCommand(newImageCreateCmd())
	imageCmd.AddCommand(newImageStatusCmd())
	imageCmd.AddCommand(newImageWatchCmd())

	return imageCmd
}

// newImageCreateCmd creates the 'image create' command.
func newImageCreateCmd() *cobra.Command {
	var (
		kind          string
		sourceRoot    string
		sourcePath    string
		format        string
		dest          string
		caseNumber    string
		examiner      string
		notes         string
		compress      bool
		acknowledge   bool
		confirmDevice string
		watch         bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start an acquisition job",
		Long: `Start an imaging job on the carver server.

Imaging a raw device requires an explicit confirmation: pass both
--acknowledge-risk and --confirm-device with the exact device identifier,
or answer the interactive prompt.

Example:
  # Image a file from the session workspace into an E01 container
  fac image create --kind file --root session --path evidence/usb.dd --format .e01

  # Image a raw device and follow progress
  fac image create --kind device --path /dev/sdb --format .e01 --case CASE-042 --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()

			req := &models.AcquisitionRequest{
				SourceType: models.SourceKind(kind),
				SourceRoot: sourceRoot,
				SourcePath: sourcePath,
				Format:     format,
				Dest:       models.Destination(dest),
				CaseNumber: sanitize.Field(caseNumber),
				Examiner:   sanitize.Field(examiner),
				Notes:      sanitize.Notes(notes),
				Compress:   compress,
			}
			if err := req.Validate(); err != nil {
				return err
			}

			// Compression lives in the E01 container; raw images have
			// nowhere to put it.
			if req.Compress && !req.IsEWF() {
				logger.Warn().Str("format", req.Format).Msg("compression only applies to .e01, ignoring --compress")
				req.Compress = false
			}

			// Device sources go through the confirmation gate.
			typed := confirmDevice
			acked := acknowledge
			if req.SourceType == models.SourceDevice && !(acked && typed != "") {
				if !term.IsTerminal(int(os.Stdin.Fd())) {
					return fmt.Errorf("imaging a device requires --acknowledge-risk and --confirm-device when not running interactively")
				}
				answer, err := promptDeviceConfirmation(req.SourcePath)
				if err != nil {
					return err
				}
				acked = answer.Acknowledged
				typed = answer.Typed
			}

			gate := imaging.EvaluateConfirmation(req.SourceType, req.SourcePath, typed, acked)
			if !gate.Armed {
				return fmt.Errorf("cannot start device acquisition: %s", gate.Reason)
			}

			apiClient, cfg, err := getAPIClient()
			if err != nil {
				return err
			}

			ctx := GetContext()

			bus := events.NewEventBus(constants.EventBusDefaultBuffer)
			defer bus.Close()

			submitter := imaging.NewSubmitter(apiClient, bus)

			logger.Info().
				Str("kind", kind).
				Str("path", sourcePath).
				Str("format", format).
				Msg("Submitting acquisition job")

			jobID, err := submitter.Submit(ctx, req, gate)
			if err != nil {
				var subErr *api.SubmissionError
				if errors.As(err, &subErr) {
					return fmt.Errorf("server rejected the job (%s): %s", subErr.Code, subErr.Message)
				}
				return fmt.Errorf("failed to submit job: %w", err)
			}

			fmt.Printf("✓ Job submitted: %s\n", jobID)

			if !watch {
				fmt.Printf("\nFollow it with: fac image watch --job-id %s\n", jobID)
				return nil
			}

			return watchJob(cfg, apiClient, bus, jobID)
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "file", "Source kind: file, folder, cloud, device")
	cmd.Flags().StringVar(&sourceRoot, "root", "session", "Workspace root holding the source (file/folder/cloud kinds)")
	cmd.Flags().StringVarP(&sourcePath, "path", "p", "", "Source path, or device identifier for --kind device (required)")
	cmd.Flags().StringVarP(&format, "format", "f", models.FormatRaw, "Image format: .dd (raw) or .e01 (EWF)")
	cmd.Flags().StringVar(&dest, "dest", string(models.DestinationSession), "Destination: session or download")
	cmd.Flags().StringVar(&caseNumber, "case", "", "Case number recorded in the image metadata")
	cmd.Flags().StringVar(&examiner, "examiner", "", "Examiner name recorded in the image metadata")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes recorded in the image metadata")
	cmd.Flags().BoolVar(&compress, "compress", false, "Compress the E01 container")
	cmd.Flags().BoolVar(&acknowledge, "acknowledge-risk", false, "Acknowledge the device acquisition warning")
	cmd.Flags().StringVar(&confirmDevice, "confirm-device", "", "Exact device identifier, re-typed to confirm")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Follow the job until it finishes")
	cmd.MarkFlagRequired("path")

	return cmd
}

// newImageStatusCmd creates the 'image status' command.
func newImageStatusCmd() *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current status of an imaging job",
		Long: `Fetch a single status snapshot for a job.

Example:
  fac image status --job-id 3f1c9a`,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, _, err := getAPIClient()
			if err != nil {
				return err
			}

			snap, err := apiClient.ImageStatus(GetContext(), jobID)
			if err != nil {
				if errors.Is(err, api.ErrJobNotFound) {
					return fmt.Errorf("job %s not found on the server", jobID)
				}
				return fmt.Errorf("failed to fetch job status: %w", err)
			}

			printSnapshot(jobID, snap)
			return nil
		},
	}

	cmd.Flags().StringVarP(&jobID, "job-id", "j", "", "Job ID (required)")
	cmd.MarkFlagRequired("job-id")

	return cmd
}

// newImageWatchCmd creates the 'image watch' command.
func newImageWatchCmd() *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow an imaging job until it finishes",
		Long: `Poll an imaging job and render a live progress bar until the job
reaches a terminal state.

Example:
  fac image watch --job-id 3f1c9a`,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, cfg, err := getAPIClient()
			if err != nil {
				return err
			}

			bus := events.NewEventBus(constants.EventBusDefaultBuffer)
			defer bus.Close()

			return watchJob(cfg, apiClient, bus, jobID)
		},
	}

	cmd.Flags().StringVarP(&jobID, "job-id", "j", "", "Job ID (required)")
	cmd.MarkFlagRequired("job-id")

	return cmd
}

// watchJob polls a job to completion, rendering progress and sending a
// desktop notification on the terminal state.
func watchJob(cfg *config.AgentConfig, apiClient *api.Client, bus *events.EventBus, jobID string) error {
	ctx := GetContext()
	logger := GetLogger()
	notifier := notify.NewNotifier(cfg.Notifications, logger)

	monitor := imaging.NewMonitor(apiClient, imaging.MonitorConfig{
		InitialDelay: cfg.Polling.InitialDelay(),
		Interval:     cfg.Polling.Interval(),
	}, bus)

	eventCh := bus.SubscribeAll()
	defer bus.UnsubscribeAll(eventCh)

	bar := progress.NewCLIProgress()
	bar.Start(100, fmt.Sprintf("Imaging %s", jobID))

	type outcome struct {
		snap *models.JobSnapshot
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		snap, err := monitor.Watch(ctx, jobID)
		done <- outcome{snap, err}
	}()

	for {
		select {
		case ev := <-eventCh:
			if jobEv, ok := ev.(*events.JobEvent); ok && jobEv.Type() == events.EventJobProgress {
				if jobEv.Snapshot != nil {
					bar.Update(int64(jobEv.Snapshot.Progress))
					bar.SetDescription(fmt.Sprintf("Imaging %s (%s)", jobID, jobEv.Snapshot.Status))
				}
			}

		case res := <-done:
			if res.err != nil {
				bar.Error(res.err)

				var jobErr *api.JobError
				switch {
				case errors.Is(res.err, api.ErrJobNotFound):
					return fmt.Errorf("job %s not found on the server", jobID)
				case errors.As(res.err, &jobErr):
					notifier.JobFailed(jobID, jobErr.Message)
					return fmt.Errorf("job %s failed: %s", jobID, jobErr.Message)
				default:
					return fmt.Errorf("failed to watch job %s: %w", jobID, res.err)
				}
			}

			bar.Update(100)
			bar.Finish()

			fmt.Println()
			printSnapshot(jobID, res.snap)
			notifier.JobFinished(jobID, res.snap.Filename)
			return nil
		}
	}
}

// printSnapshot displays a job status snapshot.
func printSnapshot(jobID string, snap *models.JobSnapshot) {
	fmt.Printf("Job %s:\n", jobID)
	fmt.Printf("  Status:   %s\n", snap.Status)
	fmt.Printf("  Progress: %.1f%%\n", snap.Progress)
	if snap.Filename != "" {
		fmt.Printf("  Image:    %s\n", snap.Filename)
	}
	if snap.MD5 != "" {
		fmt.Printf("  MD5:      %s\n", snap.MD5)
	}
	if snap.SHA1 != "" {
		fmt.Printf("  SHA1:     %s\n", snap.SHA1)
	}
	if snap.DownloadURL != "" {
		fmt.Printf("  Download: %s\n", snap.DownloadURL)
	}
	if snap.Error != "" {
		fmt.Printf("  Error:    %s\n", snap.Error)
	}
}
