package imaging

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/api"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/constants"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/events"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/models"
)

// ErrAlreadyWatching is returned when a second watch is started for a
// job that is still being polled.
var ErrAlreadyWatching = errors.New("job is already being watched")

// StatusFetcher fetches one status snapshot for a job.
type StatusFetcher interface {
	ImageStatus(ctx context.Context, jobID string) (*models.JobSnapshot, error)
}

// MonitorConfig holds the polling cadence. Zero values fall back to the
// application defaults.
type MonitorConfig struct {
	// InitialDelay is the wait before the first poll, giving the server
	// time to register the job.
	InitialDelay time.Duration

	// Interval is the fixed delay between polls.
	Interval time.Duration
}

type watchResult struct {
	snapshot *models.JobSnapshot
	err      error
}

// Monitor polls job status until a terminal state. Each job settles at
// most once: the terminal result is cached, repeat watches return it
// without touching the server, and concurrent watches of one job are
// rejected.
type Monitor struct {
	fetcher StatusFetcher
	cfg     MonitorConfig
	bus     *events.EventBus

	mu      sync.Mutex
	active  map[string]bool
	settled map[string]watchResult
}

// NewMonitor creates a Monitor. bus may be nil.
func NewMonitor(fetcher StatusFetcher, cfg MonitorConfig, bus *events.EventBus) *Monitor {
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = constants.DefaultInitialPollDelay
	}
	if cfg.Interval <= 0 {
		cfg.Interval = constants.DefaultPollInterval
	}
	return &Monitor{
		fetcher: fetcher,
		cfg:     cfg,
		bus:     bus,
		active:  make(map[string]bool),
		settled: make(map[string]watchResult),
	}
}

// Watch polls jobID until it reaches a terminal state and returns the
// final snapshot. A job that finished with an error returns the snapshot
// alongside an *api.JobError. Transport failures end the watch with an
// *api.PollingTransportError and are not cached, so the watch can be
// retried. Cancelling ctx stops polling and returns ctx.Err().
func (m *Monitor) Watch(ctx context.Context, jobID string) (*models.JobSnapshot, error) {
	m.mu.Lock()
	if result, ok := m.settled[jobID]; ok {
		m.mu.Unlock()
		return result.snapshot, result.err
	}
	if m.active[jobID] {
		m.mu.Unlock()
		return nil, ErrAlreadyWatching
	}
	m.active[jobID] = true
	m.mu.Unlock()

	snapshot, err := m.poll(ctx, jobID)

	m.mu.Lock()
	delete(m.active, jobID)
	if err == nil || terminalError(err) {
		m.settled[jobID] = watchResult{snapshot: snapshot, err: err}
	}
	m.mu.Unlock()

	return snapshot, err
}

func (m *Monitor) poll(ctx context.Context, jobID string) (*models.JobSnapshot, error) {
	if err := sleep(ctx, m.cfg.InitialDelay); err != nil {
		return nil, err
	}

	for {
		snapshot, err := m.fetcher.ImageStatus(ctx, jobID)
		if err != nil {
			if errors.Is(err, api.ErrJobNotFound) {
				m.publish(events.EventJobNotFound, jobID, nil, "job not found")
				return nil, err
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &api.PollingTransportError{JobID: jobID, Err: err}
		}

		if snapshot.Terminal() {
			if snapshot.Succeeded() {
				m.publish(events.EventJobFinished, jobID, snapshot, "")
				return snapshot, nil
			}
			m.publish(events.EventJobFailed, jobID, snapshot, snapshot.Error)
			return snapshot, &api.JobError{JobID: jobID, Message: snapshot.Error}
		}

		m.publish(events.EventJobProgress, jobID, snapshot, "")

		if err := sleep(ctx, m.cfg.Interval); err != nil {
			return nil, err
		}
	}
}

// terminalError reports whether err settles the job for good. Transport
// failures and cancellations leave the job watchable.
func terminalError(err error) bool {
	if errors.Is(err, api.ErrJobNotFound) {
		return true
	}
	var jobErr *api.JobError
	return errors.As(err, &jobErr)
}

func (m *Monitor) publish(eventType events.EventType, jobID string, snapshot *models.JobSnapshot, message string) {
	if m.bus != nil {
		m.bus.PublishJob(eventType, jobID, snapshot, message)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
