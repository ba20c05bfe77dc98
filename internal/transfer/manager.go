package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/api"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/events"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/logging"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/models"
	facstrings "github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/util/strings"
)

// ErrBatchActive is returned when a batch is started while another one
// is still running.
var ErrBatchActive = errors.New("an upload batch is already running")

// Backend is the slice of the server client the manager needs.
type Backend interface {
	EnsureSessionToken(ctx context.Context) (string, error)
	Upload(ctx context.Context, root, destPath, name string, r io.Reader, progress func(sent int64)) error
	UploadedFiles(ctx context.Context) (models.Inventory, error)
}

// BatchResult summarizes a finished batch.
type BatchResult struct {
	Uploaded int
	Failed   *Task    // first failed task, nil when the batch succeeded
	Aborted  bool     // the batch was cancelled
	NewItems []string // inventory names that appeared, nil when reconciliation was skipped
}

// Config tunes manager behavior.
type Config struct {
	// AutoRefresh refreshes the workspace listing after a batch. When
	// false the manager emits a RefreshPromptEvent so the user can do
	// it themselves; reconciliation happens either way.
	AutoRefresh bool
}

// Manager runs upload batches. Tasks within a batch run strictly in
// order; the first failure halts the batch and marks the rest skipped.
// Only one batch may be active at a time, and Cancel aborts the whole
// batch, not just the task in flight.
type Manager struct {
	backend Backend
	cfg     Config
	bus     *events.EventBus
	log     *logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewManager creates a Manager. bus may be nil.
func NewManager(backend Backend, cfg Config, bus *events.EventBus, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NewDefaultLogger()
	}
	return &Manager{backend: backend, cfg: cfg, bus: bus, log: log}
}

// Active reports whether a batch is currently running.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// Cancel aborts the running batch, if any. The in-flight upload stops
// and the remaining tasks are marked skipped.
func (m *Manager) Cancel() {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Run executes the batch and blocks until it resolves. The returned
// error is the first task failure (or ErrBatchActive); the BatchResult
// is populated either way.
func (m *Manager) Run(ctx context.Context, tasks []*Task) (*BatchResult, error) {
	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		cancel()
		return nil, ErrBatchActive
	}
	m.cancel = cancel
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.cancel = nil
		m.mu.Unlock()
	}()

	result := &BatchResult{}

	// The token is fetched once up front so every task in the batch
	// rides the same session.
	if _, err := m.backend.EnsureSessionToken(batchCtx); err != nil {
		return result, fmt.Errorf("cannot start batch: %w", err)
	}

	baseline, baselineErr := m.backend.UploadedFiles(batchCtx)
	if baselineErr != nil {
		// Reconciliation needs a before picture. Without one the batch
		// still runs, it just cannot report what is new afterwards.
		m.log.Warn().Err(baselineErr).Msg("baseline inventory fetch failed, skipping reconciliation")
	}

	var failure error
	for _, task := range tasks {
		if failure != nil || batchCtx.Err() != nil {
			task.finish(TaskSkipped, nil)
			continue
		}

		err := m.runTask(batchCtx, task)
		if err == nil {
			result.Uploaded++
			continue
		}

		failure = err
		result.Failed = task
		if api.IsAborted(err) || batchCtx.Err() != nil {
			result.Aborted = true
		}
	}

	m.finishBatch(ctx, result, baselineErr == nil, baseline)
	return result, failure
}

func (m *Manager) runTask(ctx context.Context, task *Task) error {
	task.start()
	m.publishTask(events.EventTransferStarted, task, nil)

	reader, err := task.Payload.Open()
	if err != nil {
		err = fmt.Errorf("cannot open %s: %w", task.Payload.Name, err)
		task.finish(TaskFailed, err)
		m.publishTask(events.EventTransferFailed, task, err)
		return err
	}
	defer reader.Close()

	err = m.backend.Upload(ctx, task.DestRoot, task.DestPath, task.Payload.Name, reader, func(sent int64) {
		task.RecordProgress(sent)
		m.publishTask(events.EventTransferProgress, task, nil)
	})
	if err != nil {
		if api.IsAborted(err) || ctx.Err() != nil {
			task.finish(TaskAborted, err)
			m.publishTask(events.EventTransferAborted, task, err)
		} else {
			task.finish(TaskFailed, err)
			m.publishTask(events.EventTransferFailed, task, err)
		}
		return err
	}

	task.finish(TaskCompleted, nil)
	m.publishTask(events.EventTransferCompleted, task, nil)
	metrics := task.Metrics()
	m.log.Info().
		Str("file", task.Payload.Name).
		Str("size", facstrings.FormatSize(metrics.BytesSent)).
		Str("rate", facstrings.FormatRate(metrics.Speed)).
		Msg("upload complete")
	return nil
}

// finishBatch reconciles the inventory and announces the outcome. It
// uses the parent context because the batch context is already cancelled
// by the time an aborted batch gets here.
func (m *Manager) finishBatch(ctx context.Context, result *BatchResult, baselineOK bool, baseline models.Inventory) {
	defer func() {
		if m.bus != nil {
			m.bus.Publish(&events.BaseEvent{EventType: events.EventBatchFinished, Time: time.Now()})
		}
	}()

	if result.Uploaded == 0 || !baselineOK {
		return
	}

	current, err := m.backend.UploadedFiles(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("post-batch inventory fetch failed")
		return
	}

	result.NewItems = NewItems(baseline, current)
	if m.bus != nil {
		m.bus.Publish(&events.InventoryEvent{
			BaseEvent: events.BaseEvent{EventType: events.EventInventoryUpdated, Time: time.Now()},
			NewItems:  result.NewItems,
		})
	}

	// Auto-refresh picks between refreshing the listing on the caller's
	// behalf and prompting the user to do it themselves.
	if !m.cfg.AutoRefresh && m.bus != nil {
		m.bus.Publish(&events.RefreshPromptEvent{
			BaseEvent: events.BaseEvent{EventType: events.EventRefreshPrompt, Time: time.Now()},
			Uploaded:  result.Uploaded,
		})
	}
}

func (m *Manager) publishTask(eventType events.EventType, task *Task, err error) {
	if m.bus == nil {
		return
	}
	metrics := task.Metrics()
	progress := metrics.Percent / 100
	if metrics.Percent < 0 {
		progress = -1
	}
	m.bus.PublishTransfer(eventType, task.ID, task.Payload.Name, task.Payload.Size,
		progress, metrics.Speed, err)
}
