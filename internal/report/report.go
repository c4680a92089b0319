// Package report writes analysis summaries, prompts, generated tests and
// evaluations as flat files under an output directory.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mvp-joe/testforge/internal/analyzer"
	"gopkg.in/yaml.v3"
)

const (
	fileStampLayout   = "20060102_150405"
	headerStampLayout = "2006-01-02 15:04:05"
)

// Prompt file suffixes.
const (
	PromptSuffix     = "_prompt.txt"
	EvalPromptSuffix = "_eval_prompt.txt"
)

// Writer writes report files into Dir, creating it on first use.
type Writer struct {
	dir string
	now func() time.Time
}

// Option customizes a Writer.
type Option func(*Writer)

// WithClock replaces time.Now, used for file timestamps and headers.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		w.now = now
	}
}

// NewWriter creates a writer for dir.
func NewWriter(dir string, opts ...Option) *Writer {
	w := &Writer{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Stem returns the file name of path without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RelativeStem names the outputs of a file found under root: its path relative
// to root without the extension, with directories joined by "__". A file at the
// root keeps its plain Stem, as does one outside root.
func RelativeStem(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Stem(path)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return strings.Join(strings.Split(filepath.ToSlash(rel), "/"), "__")
}

// analysisDocument is the machine-readable sidecar written next to the summary.
type analysisDocument struct {
	Source   string           `yaml:"source"`
	Analyzed string           `yaml:"analyzed"`
	Summary  string           `yaml:"summary"`
	Analysis *analyzer.Record `yaml:"analysis"`
}

// WriteAnalysis writes <stem>_analysis.txt and a <stem>_analysis.yaml sidecar.
// It returns the path of the text summary.
func (w *Writer) WriteAnalysis(stem, sourcePath string, rec *analyzer.Record) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# Code Analysis: %s\n\n", Stem(sourcePath))
	fmt.Fprintf(&b, "**File**: %s\n", sourcePath)
	fmt.Fprintf(&b, "**Lines**: %d\n", rec.Lines)
	fmt.Fprintf(&b, "**Complexity**: %d\n", rec.Complexity)
	fmt.Fprintf(&b, "**Imports**: %s\n\n", joinOrNone(rec.Imports))

	fmt.Fprintf(&b, "## Functions (%d)\n", len(rec.Functions))
	for _, f := range rec.Functions {
		kind := "function"
		if f.IsMethod {
			kind = "method"
		}
		fmt.Fprintf(&b, "- %s() at line %d (%s, %d params)\n", f.Name, f.Line, kind, f.ParameterCount)
	}

	fmt.Fprintf(&b, "\n## Classes (%d)\n", len(rec.Classes))
	for _, c := range rec.Classes {
		fmt.Fprintf(&b, "- %s at line %d\n", c.Name, c.Line)
		if len(c.Bases) > 0 {
			fmt.Fprintf(&b, "  Bases: %s\n", strings.Join(c.Bases, ", "))
		}
		fmt.Fprintf(&b, "  Methods: %s\n", strings.Join(c.Methods, ", "))
	}

	path, err := w.write(stem+"_analysis.txt", b.String())
	if err != nil {
		return "", err
	}

	doc, err := yaml.Marshal(analysisDocument{
		Source:   sourcePath,
		Analyzed: w.now().Format(time.RFC3339),
		Summary:  rec.Summary(),
		Analysis: rec,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis: %w", err)
	}
	if _, err := w.write(stem+"_analysis.yaml", string(doc)); err != nil {
		return "", err
	}

	return path, nil
}

// WritePrompt writes <stem><suffix> containing the prompt verbatim.
func (w *Writer) WritePrompt(stem, suffix, prompt string) (string, error) {
	return w.write(stem+suffix, prompt)
}

// WriteGeneratedTests writes test_<stem>_<timestamp>.py with a docstring header.
func (w *Writer) WriteGeneratedTests(stem, sourcePath, text string) (string, error) {
	now := w.now()

	var b strings.Builder
	fmt.Fprintf(&b, "\"\"\"\nGenerated Tests for %s\n", Stem(sourcePath))
	fmt.Fprintf(&b, "Generated: %s\n", now.Format(headerStampLayout))
	fmt.Fprintf(&b, "Source: %s\n\"\"\"\n\n", sourcePath)
	b.WriteString(text)

	return w.write(fmt.Sprintf("test_%s_%s.py", stem, now.Format(fileStampLayout)), b.String())
}

// WriteEvaluation writes <stem>_evaluation_<timestamp>.md with a header.
// sourcePath may be empty.
func (w *Writer) WriteEvaluation(testPath, sourcePath, text string) (string, error) {
	stem := Stem(testPath)
	now := w.now()

	var b strings.Builder
	fmt.Fprintf(&b, "# Test Suite Evaluation: %s\n", stem)
	fmt.Fprintf(&b, "**Evaluated:** %s\n", now.Format(headerStampLayout))
	fmt.Fprintf(&b, "**Test File:** %s\n", testPath)
	if sourcePath != "" {
		fmt.Fprintf(&b, "**Source File:** %s\n", sourcePath)
	}
	b.WriteString("\n---\n\n")
	b.WriteString(text)

	return w.write(fmt.Sprintf("%s_evaluation_%s.md", stem, now.Format(fileStampLayout)), b.String())
}

func (w *Writer) write(name, content string) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
