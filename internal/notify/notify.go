// Package notify provides desktop notifications for long-running agent
// operations, via github.com/gen2brain/beeep.
package notify

import (
	"fmt"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/config"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/logging"
	facstrings "github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/util/strings"
)

const appTitle = "FAC Agent"

// Notifier handles desktop notifications.
type Notifier struct {
	logger *logging.Logger
	cfg    config.NotificationConfig
	mu     sync.RWMutex
}

// NewNotifier creates a notifier with the given configuration.
func NewNotifier(cfg config.NotificationConfig, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Notifier{logger: logger, cfg: cfg}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cfg.Enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cfg.Enabled
}

func (n *Notifier) jobNotificationsOn() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cfg.Enabled && n.cfg.ShowJobComplete
}

func (n *Notifier) transferNotificationsOn() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cfg.Enabled && n.cfg.ShowTransferComplete
}

// JobFinished announces a completed imaging job.
func (n *Notifier) JobFinished(jobID, filename string) {
	if !n.jobNotificationsOn() {
		return
	}

	message := fmt.Sprintf("Imaging job %s finished.", truncate(jobID, 40))
	if filename != "" {
		message = fmt.Sprintf("Image %s is ready.", truncate(filename, 60))
	}

	if err := n.send("Imaging Complete", message); err != nil {
		n.logger.Warn().Err(err).Str("job", jobID).Msg("Failed to send job finished notification")
	}
}

// JobFailed announces a failed imaging job.
func (n *Notifier) JobFailed(jobID, errorMsg string) {
	if !n.jobNotificationsOn() {
		return
	}

	message := fmt.Sprintf("Imaging job %s failed:\n%s", truncate(jobID, 40), truncate(errorMsg, 100))
	if err := n.send("Imaging Failed", message); err != nil {
		n.logger.Warn().Err(err).Str("job", jobID).Msg("Failed to send job failed notification")
	}
}

// BatchComplete announces new inventory after an upload batch. A single
// new item is named; more than one is counted.
func (n *Notifier) BatchComplete(newItems []string) {
	if !n.transferNotificationsOn() || len(newItems) == 0 {
		return
	}

	var message string
	if len(newItems) == 1 {
		message = fmt.Sprintf("%s uploaded.", truncate(newItems[0], 60))
	} else {
		message = fmt.Sprintf("%d new %s on the server.",
			len(newItems), facstrings.Pluralize("item", int64(len(newItems))))
	}

	if err := n.send("Upload Complete", message); err != nil {
		n.logger.Warn().Err(err).Msg("Failed to send batch complete notification")
	}
}

// BatchFailed announces a halted upload batch.
func (n *Notifier) BatchFailed(name string, errorMsg string) {
	if !n.transferNotificationsOn() {
		return
	}

	message := fmt.Sprintf("Upload of %s failed:\n%s", truncate(name, 40), truncate(errorMsg, 100))
	if err := n.send("Upload Failed", message); err != nil {
		n.logger.Warn().Err(err).Msg("Failed to send batch failed notification")
	}
}

// Alert sends a prominent notification for issues needing attention.
func (n *Notifier) Alert(message string) {
	if !n.IsEnabled() {
		return
	}

	if err := beeep.Alert(appTitle, message, ""); err != nil {
		if err := n.send(appTitle, message); err != nil {
			n.logger.Error().Err(err).Str("message", message).Msg("Failed to send alert notification")
		}
	}
}

// send is the internal method that actually sends the notification.
func (n *Notifier) send(title, message string) error {
	// beeep.Notify is cross-platform:
	// - Windows: toast notifications
	// - macOS: NSUserNotificationCenter
	// - Linux: D-Bus notifications
	return beeep.Notify(title, message, "")
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
