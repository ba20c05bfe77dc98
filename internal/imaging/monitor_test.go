package imaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/api"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/models"
)

// scriptedFetcher returns its snapshots in order, then keeps returning
// the last one.
type scriptedFetcher struct {
	mu        sync.Mutex
	snapshots []*models.JobSnapshot
	errs      []error
	calls     int
}

func (f *scriptedFetcher) ImageStatus(ctx context.Context, jobID string) (*models.JobSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.calls
	f.calls++
	if idx >= len(f.snapshots) {
		idx = len(f.snapshots) - 1
	}
	return f.snapshots[idx], f.errs[idx]
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func fastConfig() MonitorConfig {
	return MonitorConfig{InitialDelay: time.Millisecond, Interval: time.Millisecond}
}

func TestWatchPollsUntilFinished(t *testing.T) {
	fetcher := &scriptedFetcher{
		snapshots: []*models.JobSnapshot{
			{Status: models.StatusRunning, Progress: 10},
			{Status: models.StatusRunning, Progress: 60},
			{Status: models.StatusFinished, Progress: 100, MD5: "abc", Filename: "disk.e01"},
		},
		errs: []error{nil, nil, nil},
	}
	mon := NewMonitor(fetcher, fastConfig(), nil)

	snap, err := mon.Watch(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("Watch() error: %v", err)
	}
	if !snap.Succeeded() || snap.MD5 != "abc" {
		t.Errorf("snapshot = %+v", snap)
	}
	if got := fetcher.callCount(); got != 3 {
		t.Errorf("polled %d times, want 3", got)
	}
}

func TestWatchJobErrorIsTerminal(t *testing.T) {
	fetcher := &scriptedFetcher{
		snapshots: []*models.JobSnapshot{
			{Status: models.StatusError, Error: "source device disappeared"},
		},
		errs: []error{nil},
	}
	mon := NewMonitor(fetcher, fastConfig(), nil)

	snap, err := mon.Watch(context.Background(), "job-1")

	var jobErr *api.JobError
	if !errors.As(err, &jobErr) {
		t.Fatalf("expected *api.JobError, got %v", err)
	}
	if jobErr.Message != "source device disappeared" {
		t.Errorf("Message = %q", jobErr.Message)
	}
	if snap == nil || snap.Status != models.StatusError {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestWatchErrorFieldSettlesWithoutErrorStatus(t *testing.T) {
	fetcher := &scriptedFetcher{
		snapshots: []*models.JobSnapshot{
			{Status: models.StatusRunning, Error: "disk read failed"},
		},
		errs: []error{nil},
	}
	mon := NewMonitor(fetcher, fastConfig(), nil)

	_, err := mon.Watch(context.Background(), "job-1")

	var jobErr *api.JobError
	if !errors.As(err, &jobErr) {
		t.Fatalf("expected *api.JobError, got %v", err)
	}
	if jobErr.Message != "disk read failed" {
		t.Errorf("Message = %q", jobErr.Message)
	}
	if got := fetcher.callCount(); got != 1 {
		t.Errorf("polled %d times, want 1", got)
	}
}

func TestWatchTerminalResultIsCached(t *testing.T) {
	fetcher := &scriptedFetcher{
		snapshots: []*models.JobSnapshot{
			{Status: models.StatusFinished, Progress: 100},
		},
		errs: []error{nil},
	}
	mon := NewMonitor(fetcher, fastConfig(), nil)

	if _, err := mon.Watch(context.Background(), "job-1"); err != nil {
		t.Fatalf("first Watch() error: %v", err)
	}
	polls := fetcher.callCount()

	snap, err := mon.Watch(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("second Watch() error: %v", err)
	}
	if snap == nil || !snap.Succeeded() {
		t.Errorf("cached snapshot = %+v", snap)
	}
	if fetcher.callCount() != polls {
		t.Error("settled job must not be polled again")
	}
}

func TestWatchNotFoundStopsPolling(t *testing.T) {
	fetcher := &scriptedFetcher{
		snapshots: []*models.JobSnapshot{nil},
		errs:      []error{api.ErrJobNotFound},
	}
	mon := NewMonitor(fetcher, fastConfig(), nil)

	_, err := mon.Watch(context.Background(), "gone")
	if !errors.Is(err, api.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
	if got := fetcher.callCount(); got != 1 {
		t.Errorf("polled %d times after not-found, want 1", got)
	}

	// Not-found settles the job; no further polls on repeat watches.
	_, err = mon.Watch(context.Background(), "gone")
	if !errors.Is(err, api.ErrJobNotFound) {
		t.Fatalf("cached result = %v", err)
	}
	if got := fetcher.callCount(); got != 1 {
		t.Errorf("polled %d times, want 1", got)
	}
}

func TestWatchTransportFailureEndsWatchWithoutSettling(t *testing.T) {
	transportErr := errors.New("connection refused")
	fetcher := &scriptedFetcher{
		snapshots: []*models.JobSnapshot{nil, {Status: models.StatusFinished, Progress: 100}},
		errs:      []error{transportErr, nil},
	}
	mon := NewMonitor(fetcher, fastConfig(), nil)

	_, err := mon.Watch(context.Background(), "job-1")

	var pte *api.PollingTransportError
	if !errors.As(err, &pte) {
		t.Fatalf("expected *api.PollingTransportError, got %v", err)
	}
	if !errors.Is(err, transportErr) {
		t.Error("transport error must be wrapped, not replaced")
	}

	// The failure is not terminal for the job; a fresh watch resumes.
	snap, err := mon.Watch(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("retry Watch() error: %v", err)
	}
	if !snap.Succeeded() {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestWatchRejectsConcurrentWatch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fetcher := &blockingFetcher{started: started, release: release}
	mon := NewMonitor(fetcher, fastConfig(), nil)

	done := make(chan error, 1)
	go func() {
		_, err := mon.Watch(context.Background(), "job-1")
		done <- err
	}()

	<-started
	if _, err := mon.Watch(context.Background(), "job-1"); !errors.Is(err, ErrAlreadyWatching) {
		t.Fatalf("expected ErrAlreadyWatching, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Watch() error: %v", err)
	}
}

type blockingFetcher struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (f *blockingFetcher) ImageStatus(ctx context.Context, jobID string) (*models.JobSnapshot, error) {
	f.once.Do(func() { close(f.started) })
	<-f.release
	return &models.JobSnapshot{Status: models.StatusFinished, Progress: 100}, nil
}

func TestWatchCancellation(t *testing.T) {
	fetcher := &scriptedFetcher{
		snapshots: []*models.JobSnapshot{{Status: models.StatusRunning, Progress: 5}},
		errs:      []error{nil},
	}
	mon := NewMonitor(fetcher, MonitorConfig{InitialDelay: time.Millisecond, Interval: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := mon.Watch(ctx, "job-1")
		done <- err
	}()

	// Let the first poll land, then cancel during the long interval sleep.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancellation")
	}

	// Cancellation does not settle the job.
	fetcher.mu.Lock()
	fetcher.snapshots = []*models.JobSnapshot{{Status: models.StatusFinished, Progress: 100}}
	fetcher.errs = []error{nil}
	fetcher.calls = 0
	fetcher.mu.Unlock()

	snap, err := mon.Watch(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("post-cancel Watch() error: %v", err)
	}
	if !snap.Succeeded() {
		t.Errorf("snapshot = %+v", snap)
	}
}
