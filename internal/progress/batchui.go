package progress

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// BatchUI renders one progress bar per upload in a batch. On a TTY it
// uses mpb; otherwise it falls back to plain line output so piped logs
// stay readable.
type BatchUI struct {
	progress   *mpb.Progress
	bars       sync.Map // task ID -> *TaskBar
	isTerminal bool
	totalFiles int
	started    int
	mu         sync.Mutex
}

// TaskBar tracks one upload's bar.
type TaskBar struct {
	bar        *mpb.Bar
	ui         *BatchUI
	index      int
	name       string
	dest       string
	size       int64
	startTime  time.Time
	lastUpdate time.Time
	lastBytes  int64
}

// NewBatchUI creates a batch display for the given number of uploads.
func NewBatchUI(totalFiles int) *BatchUI {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))

	var p *mpb.Progress
	if isTerminal {
		enableANSIOnWindows(os.Stderr)

		p = mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(300*time.Millisecond),
			mpb.WithWidth(100),
		)
	} else {
		p = mpb.New(mpb.WithOutput(io.Discard))
	}

	return &BatchUI{
		progress:   p,
		isTerminal: isTerminal,
		totalFiles: totalFiles,
	}
}

// AddTaskBar registers a bar for one upload. size may be -1 for unknown.
func (u *BatchUI) AddTaskBar(taskID, name, dest string, size int64) *TaskBar {
	u.mu.Lock()
	u.started++
	index := u.started
	u.mu.Unlock()

	tb := &TaskBar{
		ui:         u,
		index:      index,
		name:       name,
		dest:       dest,
		size:       size,
		startTime:  time.Now(),
		lastUpdate: time.Now(),
	}

	if u.isTerminal {
		total := size
		if total < 0 {
			total = 0
		}
		tb.bar = u.progress.New(total,
			mpb.BarStyle().
				Lbound("[").
				Filler("█").
				Tip("█").
				Padding("░").
				Rbound("]"),
			mpb.PrependDecorators(
				decor.Any(func(s decor.Statistics) string {
					return fmt.Sprintf("[%d/%d] %s (%.1f MiB) → %s",
						tb.index, u.totalFiles,
						name,
						float64(size)/(1024*1024),
						dest)
				}, decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
				decor.Name("  "),
				decor.Percentage(decor.WCSyncSpace),
				decor.Name("  "),
				decor.EwmaSpeed(decor.SizeB1024(0), "% .1f", 30, decor.WCSyncSpace),
				decor.Name("  "),
				decor.Name("ETA ", decor.WCSyncWidth),
				decor.EwmaETA(decor.ET_STYLE_GO, 30),
			),
			mpb.BarRemoveOnComplete(),
		)
	} else {
		fmt.Printf("Uploading [%d/%d]: %s (%.1f MiB) → %s\n",
			tb.index, u.totalFiles, name, float64(size)/(1024*1024), dest)
	}

	u.bars.Store(taskID, tb)
	return tb
}

// Bar returns the bar registered for a task ID, if any.
func (u *BatchUI) Bar(taskID string) (*TaskBar, bool) {
	v, ok := u.bars.Load(taskID)
	if !ok {
		return nil, false
	}
	return v.(*TaskBar), true
}

// Update moves the bar to a cumulative byte count. mpb's EWMA decorators
// need the elapsed time even when no bytes moved, so updates are
// throttled rather than skipped.
func (tb *TaskBar) Update(sent int64) {
	if tb.bar == nil {
		return
	}

	now := time.Now()
	elapsed := now.Sub(tb.lastUpdate)

	const updateInterval = 300 * time.Millisecond
	if elapsed >= updateInterval {
		tb.bar.EwmaIncrBy(int(sent-tb.lastBytes), elapsed)
		tb.lastBytes = sent
		tb.lastUpdate = now
	}
}

// Complete finishes the bar and prints a one-line summary.
func (tb *TaskBar) Complete(err error) {
	elapsed := time.Since(tb.startTime)

	if err == nil {
		if tb.bar != nil {
			tb.bar.SetCurrent(tb.size)
			tb.bar.SetTotal(tb.size, true)
		}

		speed := float64(tb.size) / elapsed.Seconds() / (1024 * 1024)
		msg := fmt.Sprintf("✓ %s → %s (%.1f MiB, %s, %.1f MiB/s)\n",
			tb.name, tb.dest,
			float64(tb.size)/(1024*1024),
			elapsed.Round(time.Second),
			speed)
		tb.ui.write(msg)
		return
	}

	if tb.bar != nil {
		tb.bar.Abort(false)
	}
	tb.ui.write(fmt.Sprintf("✗ %s → %s: %v\n", tb.name, tb.dest, err))
}

// write prints above the bars on a TTY, straight to stdout otherwise.
func (u *BatchUI) write(msg string) {
	if u.isTerminal && u.progress != nil {
		u.progress.Write([]byte(msg))
		return
	}
	fmt.Print(msg)
}

// Wait blocks until all progress bars complete.
func (u *BatchUI) Wait() {
	if u.progress != nil {
		u.progress.Wait()
	}
}

// LogWriter returns an io.Writer that safely prints above the bars.
func (u *BatchUI) LogWriter() io.Writer {
	if u.progress != nil && u.isTerminal {
		return u.progress
	}
	return os.Stderr
}

// IsTerminal reports whether bars are actually rendering.
func (u *BatchUI) IsTerminal() bool {
	return u.isTerminal
}

// enableANSIOnWindows enables Virtual Terminal processing on Windows so
// the bars render. No-op elsewhere.
func enableANSIOnWindows(f *os.File) {
	if runtime.GOOS == "windows" {
		enableWindowsANSI(f)
	}
}
