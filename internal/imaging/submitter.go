package imaging

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/events"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/models"
)

// ErrSubmissionInFlight is returned when a submission is attempted while
// a previous one has not resolved yet.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// ErrNotArmed is returned when the confirmation gate blocked submission.
var ErrNotArmed = errors.New("confirmation gate is not armed")

// JobCreator starts an imaging job on the server.
type JobCreator interface {
	CreateImage(ctx context.Context, req *models.AcquisitionRequest) (string, error)
}

const (
	stateIdle int32 = iota
	stateSubmitting
)

// Submitter validates an acquisition request, runs it through the
// confirmation gate, and starts the job. At most one submission is in
// flight at a time; the guard is a compare-and-swap, so concurrent
// callers fail fast instead of double-submitting.
type Submitter struct {
	creator JobCreator
	bus     *events.EventBus
	state   atomic.Int32
}

// NewSubmitter creates a Submitter. bus may be nil when no event stream
// is wanted.
func NewSubmitter(creator JobCreator, bus *events.EventBus) *Submitter {
	return &Submitter{creator: creator, bus: bus}
}

// Submit runs the full submission sequence and returns the new job ID.
// gate is the verdict for this request; a disarmed gate fails with
// ErrNotArmed, wrapping the gate's reason.
func (s *Submitter) Submit(ctx context.Context, req *models.AcquisitionRequest, gate Decision) (string, error) {
	if !s.state.CompareAndSwap(stateIdle, stateSubmitting) {
		return "", ErrSubmissionInFlight
	}
	defer s.state.Store(stateIdle)

	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid acquisition request: %w", err)
	}
	if !gate.Armed {
		return "", fmt.Errorf("%w: %s", ErrNotArmed, gate.Reason)
	}

	jobID, err := s.creator.CreateImage(ctx, req)
	if err != nil {
		return "", err
	}

	if s.bus != nil {
		s.bus.PublishJob(events.EventJobSubmitted, jobID, nil,
			fmt.Sprintf("imaging %s:%s", req.SourceType, req.SourcePath))
	}
	return jobID, nil
}

// Submitting reports whether a submission is currently in flight.
func (s *Submitter) Submitting() bool {
	return s.state.Load() == stateSubmitting
}
