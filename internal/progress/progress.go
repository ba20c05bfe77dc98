// Package progress renders operation progress on the CLI: a single bar
// for job watches, an mpb display for upload batches.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter is the interface for reporting progress of a single
// long-running operation.
type Reporter interface {
	Start(total int64, description string)
	Update(current int64)
	Finish()
	Error(err error)
	SetDescription(desc string)
}

// CLIProgress renders a single progress bar on stderr.
type CLIProgress struct {
	bar *progressbar.ProgressBar

	// ShowBytes switches the counter from plain units to byte units.
	ShowBytes bool
}

// NewCLIProgress creates a CLI progress reporter.
func NewCLIProgress() *CLIProgress {
	return &CLIProgress{}
}

// Start initializes the progress bar with total size and description.
// A total of -1 renders a spinner.
func (p *CLIProgress) Start(total int64, description string) {
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(p.ShowBytes),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update moves the bar to the current position.
func (p *CLIProgress) Update(current int64) {
	if p.bar != nil {
		_ = p.bar.Set64(current)
	}
}

// Finish completes the progress bar.
func (p *CLIProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Error displays an error message below the bar.
func (p *CLIProgress) Error(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
	}
}

// SetDescription updates the bar description.
func (p *CLIProgress) SetDescription(desc string) {
	if p.bar != nil {
		p.bar.Describe(desc)
	}
}

// NoOpProgress is a Reporter that does nothing, for quiet operation.
type NoOpProgress struct{}

func NewNoOpProgress() *NoOpProgress { return &NoOpProgress{} }

func (p *NoOpProgress) Start(total int64, description string) {}
func (p *NoOpProgress) Update(current int64)                  {}
func (p *NoOpProgress) Finish()                               {}
func (p *NoOpProgress) Error(err error)                       {}
func (p *NoOpProgress) SetDescription(desc string)            {}

// ProgressReader wraps an io.Reader to report cumulative bytes read.
type ProgressReader struct {
	reader   io.Reader
	reporter Reporter
	current  int64
}

// NewProgressReader creates a progress-reporting reader.
func NewProgressReader(reader io.Reader, reporter Reporter) *ProgressReader {
	return &ProgressReader{reader: reader, reporter: reporter}
}

// Read implements io.Reader with progress reporting.
func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.current += int64(n)
	pr.reporter.Update(pr.current)
	return n, err
}
