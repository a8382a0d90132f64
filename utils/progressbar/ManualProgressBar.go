// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ManualProgressBar implement progress bar functionality that must
// be manually managed. That is, the Display() function must be called
// whenever an updated progress bar should be printed to the screen.
//
// ManualProgressBar does not use concurrency.
type ManualProgressBar struct {
	out             io.Writer
	width           int
	maxProgress     int
	currentProgress int
	bar             strings.Builder
	startTime       time.Time
}

// NewManualProgressBar returns a new ManualProgressBar which is width
// characters wide, reaches 100% after max increments, and is printed
// to stdout
func NewManualProgressBar(width, max int) *ManualProgressBar {
	return NewManualProgressBarTo(os.Stdout, width, max)
}

// NewManualProgressBarTo returns a new ManualProgressBar printed to out
func NewManualProgressBarTo(out io.Writer, width,
	max int) *ManualProgressBar {
	if max < 1 {
		max = 1
	}
	return &ManualProgressBar{
		out:         out,
		width:       width,
		maxProgress: max,
		startTime:   time.Now(),
	}
}

// Increment increments the interal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ManualProgressBar) Increment() {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// Progress returns the fraction of the progress bar that is complete
func (p *ManualProgressBar) Progress() float64 {
	return float64(p.currentProgress) / float64(p.maxProgress)
}

// String returns the progress bar followed by the percentage complete
// and the given status
func (p *ManualProgressBar) String(status string) string {
	p.bar.Reset()
	p.bar.WriteString("|")

	filled := int(p.Progress() * float64(p.width))
	p.bar.WriteString(strings.Repeat("█", filled))
	p.bar.WriteString(strings.Repeat(" ", p.width-filled))

	p.bar.WriteString(fmt.Sprintf("| [%.2f%% | elapsed: %v]", p.Progress()*100,
		time.Since(p.startTime).Truncate(time.Second)))
	if status != "" {
		p.bar.WriteString(" " + status)
	}
	return p.bar.String()
}

// Display redraws the progress bar on the current line with the given
// status
func (p *ManualProgressBar) Display(status string) {
	fmt.Fprintf(p.out, "\n\033[1A\033[K%v", p.String(status))
}

// Close moves past the line the progress bar is drawn on
func (p *ManualProgressBar) Close() {
	fmt.Fprintln(p.out)
}
