package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mvp-joe/testforge/internal/analyzer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for prompt building:
// - LoadGuidance reads both documents and tolerates missing files
// - LoadGuidance surfaces read errors other than "not exist"
// - BuildGeneration lists public functions and classes, hides private names
// - BuildGeneration prints "None" for empty lists and defaults the framework
// - BuildGeneration embeds the full source and the scoring task
// - BuildEvaluation includes the source section only when source is given

func sampleRecord() *analyzer.Record {
	return &analyzer.Record{
		Functions: []analyzer.FunctionRecord{
			{Name: "load", Line: 1},
			{Name: "__init__", IsMethod: true, Line: 4},
			{Name: "add", IsMethod: true, Line: 6},
			{Name: "_audit", IsMethod: true, Line: 8},
		},
		Classes: []analyzer.ClassRecord{
			{Name: "Inventory", Methods: []string{"__init__", "add", "_audit"}, Line: 3},
		},
		Complexity: 4,
		Imports:    analyzer.ImportSet{"os", "typing"},
	}
}

func TestLoadGuidance(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	agent := filepath.Join(dir, "AGENTS.md")
	require.NoError(t, os.WriteFile(agent, []byte("# Agent"), 0644))

	g, err := LoadGuidance(agent, filepath.Join(dir, "missing", "SKILL.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Agent", g.AgentInstructions)
	assert.Empty(t, g.SkillRubric)

	g, err = LoadGuidance("", "")
	require.NoError(t, err)
	assert.Equal(t, Guidance{}, g)
}

func TestLoadGuidance_ReadError(t *testing.T) {
	t.Parallel()

	// A directory exists but cannot be read as a file.
	dir := t.TempDir()
	_, err := LoadGuidance(dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent instructions")
}

func TestBuildGeneration(t *testing.T) {
	t.Parallel()

	out := BuildGeneration(GenerationInput{
		Guidance: Guidance{AgentInstructions: "AGENT TEXT", SkillRubric: "RUBRIC TEXT"},
		Path:     "sample-code/inventory.py",
		Source:   "def load():\n    pass",
		Analysis: sampleRecord(),
	})

	assert.True(t, strings.HasPrefix(out, "AGENT TEXT\n\n## TEST GENERATION GUIDELINES\nRUBRIC TEXT"))
	assert.Contains(t, out, "**File**: sample-code/inventory.py")
	assert.Contains(t, out, "**Complexity**: 4")
	assert.Contains(t, out, "**Framework**: pytest")
	assert.Contains(t, out, "### Functions to Test:\n- load()\n- add()\n\n")
	assert.NotContains(t, out, "_audit()")
	assert.NotContains(t, out, "__init__()")
	assert.Contains(t, out, "- Inventory with methods: add\n")
	assert.Contains(t, out, "### Imports:\nos, typing")
	assert.Contains(t, out, "```python\ndef load():\n    pass\n```")
	assert.Contains(t, out, "1. **Test Completeness** (30/30 points)")
	assert.Contains(t, out, "5. **Best Practices** (10/10 points)")
	assert.Contains(t, out, "Follow pytest conventions")
	assert.True(t, strings.HasSuffix(out, "Target: 90+ quality score on the rubric above.\n"))
}

func TestBuildGeneration_EmptyLists(t *testing.T) {
	t.Parallel()

	out := BuildGeneration(GenerationInput{
		Path:      "empty.py",
		Source:    "",
		Analysis:  &analyzer.Record{Complexity: 1},
		Framework: "unittest",
	})

	assert.Contains(t, out, "### Functions to Test:\nNone\n")
	assert.Contains(t, out, "### Classes to Test:\nNone\n")
	assert.Contains(t, out, "### Imports:\nNone\n")
	assert.Contains(t, out, "**Framework**: unittest")
	assert.Contains(t, out, "Follow unittest conventions")
}

func TestBuildEvaluation(t *testing.T) {
	t.Parallel()

	without := BuildEvaluation(EvaluationInput{
		Guidance: Guidance{SkillRubric: "RUBRIC"},
		TestCode: "def test_x():\n    assert True\n",
	})
	assert.Contains(t, without, "## TEST EVALUATION RUBRIC\nRUBRIC")
	assert.Contains(t, without, "```python\ndef test_x():\n    assert True\n```")
	assert.NotContains(t, without, "Source Code Being Tested")
	assert.Contains(t, without, "Total score (X/100)")

	with := BuildEvaluation(EvaluationInput{
		TestCode: "def test_x(): pass",
		Source:   "def x(): pass",
	})
	assert.Contains(t, with, "### Source Code Being Tested:\n```python\ndef x(): pass\n```")
}
