package prompt

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/testforge/internal/analyzer"
)

// DefaultFramework is used when GenerationInput.Framework is empty.
const DefaultFramework = "pytest"

// GenerationInput is everything needed to ask for a new test suite.
type GenerationInput struct {
	Guidance  Guidance
	Path      string
	Source    string
	Analysis  *analyzer.Record
	Framework string
}

// BuildGeneration renders the test generation prompt.
// Only public functions and methods are listed; the full source is always embedded.
func BuildGeneration(in GenerationInput) string {
	framework := in.Framework
	if framework == "" {
		framework = DefaultFramework
	}
	rec := in.Analysis
	if rec == nil {
		rec = &analyzer.Record{Complexity: 1}
	}

	var b strings.Builder

	b.WriteString(in.Guidance.AgentInstructions)
	b.WriteString("\n\n## TEST GENERATION GUIDELINES\n")
	b.WriteString(in.Guidance.SkillRubric)
	b.WriteString("\n\n## CODE TO TEST\n\n")

	fmt.Fprintf(&b, "**File**: %s\n", in.Path)
	fmt.Fprintf(&b, "**Complexity**: %d (1 + branches, loops, handlers, boolean operators)\n", rec.Complexity)
	fmt.Fprintf(&b, "**Framework**: %s\n\n", framework)

	b.WriteString("### Functions to Test:\n")
	b.WriteString(orNone(functionLines(rec)))
	b.WriteString("\n\n### Classes to Test:\n")
	b.WriteString(orNone(classLines(rec)))
	b.WriteString("\n\n### Imports:\n")
	b.WriteString(orNone(strings.Join(rec.Imports, ", ")))

	b.WriteString("\n\n### Full Code:\n```python\n")
	b.WriteString(in.Source)
	if !strings.HasSuffix(in.Source, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n\n")

	b.WriteString(strings.ReplaceAll(generationTask, "{framework}", framework))
	return b.String()
}

func functionLines(rec *analyzer.Record) string {
	var lines []string
	for _, f := range rec.PublicFunctions() {
		lines = append(lines, fmt.Sprintf("- %s()", f.Name))
	}
	return strings.Join(lines, "\n")
}

func classLines(rec *analyzer.Record) string {
	var lines []string
	for _, c := range rec.Classes {
		lines = append(lines, fmt.Sprintf("- %s with methods: %s", c.Name, strings.Join(c.PublicMethods(), ", ")))
	}
	return strings.Join(lines, "\n")
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

const generationTask = `## YOUR TASK

Generate a comprehensive test suite for this code that:

1. **Test Completeness** (30/30 points):
   - Test all critical paths (happy path + error cases)
   - Cover edge cases and boundary conditions
   - Test error handling and exceptions
   - Test input validation

2. **Test Quality** (25/25 points):
   - Follow AAA pattern (Arrange, Act, Assert)
   - Use descriptive test names
   - Ensure test isolation
   - Use fixtures for common setup
   - Make tests deterministic

3. **Test Reliability** (20/20 points):
   - Mock external dependencies appropriately
   - Add proper timeouts where needed
   - Ensure tests fail for the right reasons

4. **Testing Layers** (15/15 points):
   - Provide comprehensive unit tests
   - Include integration tests where components interact
   - Balance coverage vs execution time

5. **Best Practices** (10/10 points):
   - Follow {framework} conventions
   - Add clear documentation
   - Include realistic test data
   - Note any security testing

Generate the complete test file with:
- Import statements
- Fixtures for common setup
- Comprehensive test classes
- Detailed test methods with docstrings
- Comments explaining complex test scenarios

Target: 90+ quality score on the rubric above.
`
