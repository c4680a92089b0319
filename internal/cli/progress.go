package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mvp-joe/testforge/internal/pipeline"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements pipeline.ProgressReporter with a progress bar.
type CLIProgressReporter struct {
	out       io.Writer
	quiet     bool
	mu        sync.Mutex
	fileBar   *progressbar.ProgressBar
	startTime time.Time
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		out:       out,
		quiet:     quiet,
		startTime: time.Now(),
	}
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files int) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "\nFound %d Python file(s) to process\n", files)
	if files == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fileBar = progressbar.NewOptions(files,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Processing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnFileStart(path string) {}

func (c *CLIProgressReporter) OnFileProcessed(result pipeline.Result) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(summary pipeline.Summary) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	fmt.Fprintf(c.out, "✓ Processed %d file(s) in %.1fs (%d failed)\n",
		summary.Total, time.Since(c.startTime).Seconds(), summary.Errors)
}
