package models

// Job status strings as reported by the carver server. Statuses outside
// this set are treated as still in progress.
const (
	StatusQueued   = "queued"
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusError    = "error"
)

// JobSnapshot is one observation of an imaging job, as returned by the
// status endpoint. Hash and download fields are only populated once the
// job finishes.
type JobSnapshot struct {
	Status      string  `json:"status"`
	Progress    float64 `json:"progress"`
	MD5         string  `json:"md5,omitempty"`
	SHA1        string  `json:"sha1,omitempty"`
	DownloadURL string  `json:"download_url,omitempty"`
	Filename    string  `json:"filename,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Terminal reports whether this snapshot ends the job's lifecycle. A
// populated error field settles the job even when the status string has
// not caught up to it.
func (s *JobSnapshot) Terminal() bool {
	return s.Error != "" || s.Status == StatusFinished || s.Status == StatusError
}

// Succeeded reports whether the job completed with an image.
func (s *JobSnapshot) Succeeded() bool {
	return s.Error == "" && s.Status == StatusFinished
}
