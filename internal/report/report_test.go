package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mvp-joe/testforge/internal/analyzer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Test Plan for report writing:
// - Stem strips directory and extension
// - RelativeStem keeps subdirectories so same-named files get distinct outputs
// - WriteAnalysis writes the text summary and a YAML sidecar that round-trips the record
// - WritePrompt writes the prompt verbatim under <stem><suffix>
// - WriteGeneratedTests uses test_<stem>_<timestamp>.py with a docstring header
// - WriteEvaluation includes the source line only when a source is given
// - Output directories are created on demand

var fixedTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "nested", "out")
	return NewWriter(dir, WithClock(func() time.Time { return fixedTime }))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestStem(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "user_service", Stem("sample-code/user_service.py"))
	assert.Equal(t, "archive.tar", Stem("/tmp/archive.tar.gz"))
	assert.Equal(t, "Makefile", Stem("Makefile"))
}

func TestRelativeStem(t *testing.T) {
	t.Parallel()

	root := filepath.Join("src", "app")
	assert.Equal(t, "util", RelativeStem(root, filepath.Join(root, "util.py")))
	assert.Equal(t, "a__util", RelativeStem(root, filepath.Join(root, "a", "util.py")))
	assert.Equal(t, "b__c__util", RelativeStem(root, filepath.Join(root, "b", "c", "util.py")))
	assert.Equal(t, "other", RelativeStem(root, filepath.Join("elsewhere", "other.py")))
}

func TestWriteAnalysis(t *testing.T) {
	t.Parallel()

	w := newTestWriter(t)
	rec := &analyzer.Record{
		Functions: []analyzer.FunctionRecord{
			{Name: "load", ParameterCount: 1, Line: 3, Decorators: []string{}},
			{Name: "add", ParameterCount: 2, IsMethod: true, Line: 8, Decorators: []string{}},
		},
		Classes: []analyzer.ClassRecord{
			{Name: "Cart", Methods: []string{"add"}, Bases: []string{"Base"}, Line: 6},
		},
		Complexity: 3,
		Imports:    analyzer.ImportSet{"os"},
		Lines:      12,
	}

	path, err := w.WriteAnalysis("cart", "src/cart.py", rec)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(w.Dir(), "cart_analysis.txt"), path)

	text := readFile(t, path)
	assert.True(t, strings.HasPrefix(text, "# Code Analysis: cart\n\n**File**: src/cart.py\n**Lines**: 12\n**Complexity**: 3\n"))
	assert.Contains(t, text, "**Imports**: os\n")
	assert.Contains(t, text, "## Functions (2)\n- load() at line 3 (function, 1 params)\n- add() at line 8 (method, 2 params)\n")
	assert.Contains(t, text, "## Classes (1)\n- Cart at line 6\n  Bases: Base\n  Methods: add\n")

	var doc struct {
		Source   string          `yaml:"source"`
		Analyzed string          `yaml:"analyzed"`
		Analysis analyzer.Record `yaml:"analysis"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(readFile(t, filepath.Join(w.Dir(), "cart_analysis.yaml"))), &doc))
	assert.Equal(t, "src/cart.py", doc.Source)
	assert.Equal(t, "2026-03-14T09:26:53Z", doc.Analyzed)
	assert.Equal(t, *rec, doc.Analysis)
}

func TestWritePrompt(t *testing.T) {
	t.Parallel()

	w := newTestWriter(t)

	path, err := w.WritePrompt("cart", PromptSuffix, "the prompt")
	require.NoError(t, err)
	assert.Equal(t, "cart_prompt.txt", filepath.Base(path))
	assert.Equal(t, "the prompt", readFile(t, path))

	path, err = w.WritePrompt("test_cart", EvalPromptSuffix, "eval")
	require.NoError(t, err)
	assert.Equal(t, "test_cart_eval_prompt.txt", filepath.Base(path))
}

func TestWriteGeneratedTests(t *testing.T) {
	t.Parallel()

	w := newTestWriter(t)
	path, err := w.WriteGeneratedTests("cart", "src/cart.py", "def test_add():\n    pass\n")
	require.NoError(t, err)
	assert.Equal(t, "test_cart_20260314_092653.py", filepath.Base(path))

	want := "\"\"\"\nGenerated Tests for cart\nGenerated: 2026-03-14 09:26:53\nSource: src/cart.py\n\"\"\"\n\ndef test_add():\n    pass\n"
	assert.Equal(t, want, readFile(t, path))
}

func TestWriteEvaluation(t *testing.T) {
	t.Parallel()

	w := newTestWriter(t)

	path, err := w.WriteEvaluation("tests/test_cart.py", "src/cart.py", "Score: 88/100")
	require.NoError(t, err)
	assert.Equal(t, "test_cart_evaluation_20260314_092653.md", filepath.Base(path))

	text := readFile(t, path)
	assert.Equal(t, "# Test Suite Evaluation: test_cart\n**Evaluated:** 2026-03-14 09:26:53\n**Test File:** tests/test_cart.py\n**Source File:** src/cart.py\n\n---\n\nScore: 88/100", text)

	w2 := NewWriter(t.TempDir(), WithClock(func() time.Time { return fixedTime }))
	path, err = w2.WriteEvaluation("test_cart.py", "", "x")
	require.NoError(t, err)
	assert.NotContains(t, readFile(t, path), "Source File")
}

func TestWriter_UnwritableDirectory(t *testing.T) {
	t.Parallel()

	// A regular file where the directory should be.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	w := NewWriter(filepath.Join(blocker, "out"))
	_, err := w.WritePrompt("a", PromptSuffix, "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output directory")
}
