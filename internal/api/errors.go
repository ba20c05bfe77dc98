// Package api provides the client for the carver server's HTTP API.
package api

import (
	"errors"
	"fmt"
)

// ErrJobNotFound indicates the server has no record of the requested job.
// The status endpoint returns 404 for expired and unknown job IDs alike.
var ErrJobNotFound = errors.New("job not found")

// SubmissionError is a structured rejection from the create-image
// endpoint. Code carries the server's error token, Message its
// human-readable detail.
type SubmissionError struct {
	Code    string
	Message string
}

func (e *SubmissionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("submission rejected: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("submission rejected: %s", e.Code)
}

// PollingTransportError wraps a transport failure while polling job
// status. It is distinct from JobError: the job may still be running,
// the agent just could not reach the server.
type PollingTransportError struct {
	JobID string
	Err   error
}

func (e *PollingTransportError) Error() string {
	return fmt.Sprintf("status poll for job %s failed: %v", e.JobID, e.Err)
}

func (e *PollingTransportError) Unwrap() error {
	return e.Err
}

// JobError reports that the server ran the job and it failed.
type JobError struct {
	JobID   string
	Message string
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Message)
}

// TransferError reports a failed upload. Aborted is set when the failure
// was a cancellation rather than a server or transport problem.
type TransferError struct {
	Name    string
	Status  int
	Message string
	Aborted bool
}

func (e *TransferError) Error() string {
	if e.Aborted {
		return fmt.Sprintf("upload of %s aborted", e.Name)
	}
	if e.Status != 0 {
		return fmt.Sprintf("upload of %s failed: server returned %d: %s", e.Name, e.Status, e.Message)
	}
	return fmt.Sprintf("upload of %s failed: %s", e.Name, e.Message)
}

// IsAborted reports whether err is a cancellation-flavored transfer
// failure.
func IsAborted(err error) bool {
	var te *TransferError
	if errors.As(err, &te) {
		return te.Aborted
	}
	return false
}
