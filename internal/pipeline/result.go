package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/testforge/internal/analyzer"
)

// Status is the outcome of processing one file.
type Status string

const (
	StatusCompleted  Status = "completed"   // generated text was written
	StatusPromptOnly Status = "prompt_only" // no generator, prompt saved for manual use
	StatusError      Status = "error"
)

// Mode selects the wording of the summary.
type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeEvaluate Mode = "evaluate"
)

// Result describes what happened to one source or test file.
type Result struct {
	RunID        string
	Status       Status
	SourcePath   string // file the tests are generated for, or the source given to evaluate
	TestPath     string // test file under evaluation
	OutputFile   string // generated tests or evaluation report
	PromptFile   string
	AnalysisFile string
	Err          error
	Analysis     *analyzer.Record
}

// subject is the file a result is about.
func (r Result) subject(mode Mode) string {
	if mode == ModeEvaluate && r.TestPath != "" {
		return r.TestPath
	}
	if r.SourcePath != "" {
		return r.SourcePath
	}
	return r.TestPath
}

// Summary counts results by status.
type Summary struct {
	Total      int
	Completed  int
	PromptOnly int
	Errors     int
}

// Summarize counts results by status.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusCompleted:
			s.Completed++
		case StatusPromptOnly:
			s.PromptOnly++
		case StatusError:
			s.Errors++
		}
	}
	return s
}

// PrintSummary writes a human-readable report of results to w.
func PrintSummary(w io.Writer, results []Result, mode Mode) {
	rule := strings.Repeat("=", 60)
	thin := strings.Repeat("-", 60)

	title := "TEST GENERATION SUMMARY"
	if mode == ModeEvaluate {
		title = "TEST EVALUATION SUMMARY"
	}

	s := Summarize(results)
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, title, rule)
	fmt.Fprintf(w, "\nTotal processed: %d\n", s.Total)
	fmt.Fprintf(w, "  ✓ Completed:    %d\n", s.Completed)
	fmt.Fprintf(w, "  ○ Prompt only:  %d\n", s.PromptOnly)
	fmt.Fprintf(w, "  ✗ Errors:       %d\n", s.Errors)

	if s.Completed > 0 {
		fmt.Fprintf(w, "\n%s\nCOMPLETED:\n%s\n", thin, thin)
		for _, r := range results {
			if r.Status == StatusCompleted {
				fmt.Fprintf(w, "\n  %s\n  → %s\n", filepath.Base(r.subject(mode)), r.OutputFile)
			}
		}
	}

	if s.PromptOnly > 0 {
		fmt.Fprintf(w, "\n%s\nPROMPTS SAVED (no API key):\n%s\n", thin, thin)
		fmt.Fprintln(w, "\nTo complete, either:")
		fmt.Fprintln(w, "  1. Set an API key (e.g. ANTHROPIC_API_KEY) and re-run")
		fmt.Fprintln(w, "  2. Paste the prompt into a chat assistant manually")
		for _, r := range results {
			if r.Status == StatusPromptOnly {
				fmt.Fprintf(w, "\n  %s\n  → %s\n", filepath.Base(r.subject(mode)), r.PromptFile)
			}
		}
	}

	if s.Errors > 0 {
		fmt.Fprintf(w, "\n%s\nERRORS:\n%s\n", thin, thin)
		for _, r := range results {
			if r.Status != StatusError {
				continue
			}
			if subject := r.subject(mode); subject != "" {
				fmt.Fprintf(w, "\n  %s\n", filepath.Base(subject))
			}
			msg := "Unknown error"
			if r.Err != nil {
				msg = r.Err.Error()
			}
			fmt.Fprintf(w, "  → %s\n", msg)
		}
	}
}
