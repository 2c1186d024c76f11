package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/modelguard/internal/checker"
)

// CheckProgressReporter shows a progress bar while files are checked.
type CheckProgressReporter struct {
	quiet   bool
	out     io.Writer
	fileBar *progressbar.ProgressBar
}

// NewCheckProgressReporter creates a progress reporter writing to out.
// A quiet reporter does nothing.
func NewCheckProgressReporter(out io.Writer, quiet bool) *CheckProgressReporter {
	return &CheckProgressReporter{
		quiet: quiet,
		out:   out,
	}
}

// OnCheckStart creates the bar for totalFiles files.
func (c *CheckProgressReporter) OnCheckStart(totalFiles int) {
	if c.quiet || totalFiles == 0 {
		return
	}

	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Checking files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// OnFileChecked advances the bar. Used as the CheckFiles callback.
func (c *CheckProgressReporter) OnFileChecked(checker.Result) {
	if c.quiet || c.fileBar == nil {
		return
	}
	c.fileBar.Add(1)
}

// OnCheckComplete finishes the bar and prints the elapsed time.
func (c *CheckProgressReporter) OnCheckComplete(elapsed time.Duration) {
	if c.quiet || c.fileBar == nil {
		return
	}
	c.fileBar.Finish()
	c.fileBar = nil
	fmt.Fprintf(c.out, "Checked in %.2fs\n", elapsed.Seconds())
}
