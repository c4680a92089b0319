package pipeline

// ProgressReporter provides callbacks for reporting batch progress.
// Implementations can display progress bars, log messages, or remain silent.
// File callbacks may be invoked from several goroutines at once.
type ProgressReporter interface {
	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(files int)

	// OnFileStart is called before a file is processed.
	OnFileStart(path string)

	// OnFileProcessed is called after each file is processed.
	OnFileProcessed(result Result)

	// OnComplete is called when the batch finishes.
	OnComplete(summary Summary)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryComplete(files int) {}
func (n *NoOpProgressReporter) OnFileStart(path string)       {}
func (n *NoOpProgressReporter) OnFileProcessed(result Result) {}
func (n *NoOpProgressReporter) OnComplete(summary Summary)    {}
