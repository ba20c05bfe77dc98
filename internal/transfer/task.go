// Package transfer runs upload batches against the carver server:
// strictly sequential, abortable as a unit, with per-task progress
// metrics and post-batch inventory reconciliation.
package transfer

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskState represents the current state of an upload task.
type TaskState string

const (
	TaskPending   TaskState = "pending"   // Waiting for its turn in the batch
	TaskActive    TaskState = "active"    // Bytes moving
	TaskCompleted TaskState = "completed" // Successfully uploaded
	TaskFailed    TaskState = "failed"    // Failed with error
	TaskSkipped   TaskState = "skipped"   // Never started; an earlier task failed
	TaskAborted   TaskState = "aborted"   // Cancelled mid-flight
)

// Payload is the content of one upload. Open is called when the task's
// turn arrives, so a batch of large files holds at most one descriptor.
type Payload struct {
	Name string
	Size int64 // -1 when unknown
	Open func() (io.ReadCloser, error)
}

// FilePayload builds a Payload from a local file path.
func FilePayload(path string) (Payload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Payload{}, fmt.Errorf("cannot stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Payload{}, fmt.Errorf("%s is a directory", path)
	}
	return Payload{
		Name: info.Name(),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// Metrics is a point-in-time view of a task's progress.
type Metrics struct {
	BytesSent  int64
	BytesTotal int64 // -1 when unknown

	// Percent is 0..100, or -1 when the total is unknown.
	Percent float64

	// Speed is bytes/sec, EMA-smoothed.
	Speed float64

	// ETA is the projected remainder, 0 when it cannot be estimated.
	ETA time.Duration
}

// Task is one upload within a batch. All mutation goes through methods;
// the progress callback runs on the uploader's goroutine while the CLI
// reads metrics from its own.
type Task struct {
	ID      string
	Payload Payload

	// DestRoot and DestPath address the server-side target directory.
	DestRoot string
	DestPath string

	mu         sync.RWMutex
	state      TaskState
	err        error
	bytesSent  int64
	bytesTotal int64
	speed      float64
	lastBytes  int64
	lastUpdate time.Time
	startedAt  time.Time
	finishedAt time.Time
}

// NewTask creates a pending task for the given payload and destination.
func NewTask(payload Payload, destRoot, destPath string) *Task {
	total := payload.Size
	if total <= 0 {
		total = -1
	}
	return &Task{
		ID:         uuid.NewString(),
		Payload:    payload,
		DestRoot:   destRoot,
		DestPath:   destPath,
		state:      TaskPending,
		bytesTotal: total,
	}
}

// State returns the current state.
func (t *Task) State() TaskState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Err returns the failure, if any.
func (t *Task) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

func (t *Task) start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = TaskActive
	t.startedAt = time.Now()
	t.lastUpdate = t.startedAt
}

func (t *Task) finish(state TaskState, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
	t.err = err
	t.finishedAt = time.Now()
}

// RecordProgress updates the byte counter and the EMA-smoothed speed.
// sent is cumulative.
func (t *Task) RecordProgress(sent int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.bytesSent = sent

	if t.lastBytes == 0 && sent > 0 {
		t.lastBytes = sent
		t.lastUpdate = now
		return
	}

	if sent > t.lastBytes {
		elapsed := now.Sub(t.lastUpdate).Seconds()
		// Rate samples under 100ms apart are too noisy to smooth.
		if elapsed > 0.1 {
			instant := float64(sent-t.lastBytes) / elapsed
			const alpha = 0.25
			if t.speed > 0 {
				t.speed = alpha*instant + (1-alpha)*t.speed
			} else {
				t.speed = instant
			}
			t.lastBytes = sent
			t.lastUpdate = now
		}
	}
}

// Metrics returns a snapshot of the task's progress.
func (t *Task) Metrics() Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	m := Metrics{
		BytesSent:  t.bytesSent,
		BytesTotal: t.bytesTotal,
		Speed:      t.speed,
	}

	if t.bytesTotal <= 0 {
		m.Percent = -1
		return m
	}

	m.Percent = 100 * float64(t.bytesSent) / float64(t.bytesTotal)
	if m.Percent > 100 {
		m.Percent = 100
	}

	if t.speed > 0 && t.bytesSent < t.bytesTotal {
		remaining := float64(t.bytesTotal - t.bytesSent)
		m.ETA = time.Duration(remaining / t.speed * float64(time.Second))
	}
	return m
}

// Terminal reports whether the task is done, one way or another.
func (t *Task) Terminal() bool {
	switch t.State() {
	case TaskCompleted, TaskFailed, TaskSkipped, TaskAborted:
		return true
	}
	return false
}
