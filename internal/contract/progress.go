package contract

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// BarProgressReporter is a concrete implementation using progressbar.
type BarProgressReporter struct {
	w           io.Writer
	description string
	bar         *progressbar.ProgressBar
}

var _ ProgressReporter = &BarProgressReporter{} // Compile-time check

// NewBarProgressReporter creates a new BarProgressReporter writing to w.
func NewBarProgressReporter(w io.Writer, total int, description string) *BarProgressReporter {
	p := &BarProgressReporter{w: w, description: description}
	p.SetTotal(total)
	return p
}

// SetTotal reinitializes the progress bar with the new total count.
func (p *BarProgressReporter) SetTotal(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(p.description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionThrottle(100e6),           // rate-limit updates
		progressbar.OptionSetRenderBlankState(true), // show an initial blank bar
	)
}

// Increment increases the progress bar by one.
func (p *BarProgressReporter) Increment() {
	_ = p.bar.Add(1)
}

// Finish completes the progress bar.
func (p *BarProgressReporter) Finish() {
	_ = p.bar.Finish()
}

// NoopProgressReporter discards progress updates.
type NoopProgressReporter struct{}

var _ ProgressReporter = NoopProgressReporter{} // Compile-time check

// SetTotal implements the ProgressReporter interface.
func (NoopProgressReporter) SetTotal(int) {}

// Increment implements the ProgressReporter interface.
func (NoopProgressReporter) Increment() {}

// Finish implements the ProgressReporter interface.
func (NoopProgressReporter) Finish() {}
