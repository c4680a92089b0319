package prompt

import "strings"

// EvaluationInput is everything needed to ask for a test suite review.
type EvaluationInput struct {
	Guidance Guidance
	TestCode string
	Source   string // optional source under test
}

// BuildEvaluation renders the test evaluation prompt.
func BuildEvaluation(in EvaluationInput) string {
	var b strings.Builder

	b.WriteString(in.Guidance.AgentInstructions)
	b.WriteString("\n\n## TEST EVALUATION RUBRIC\n")
	b.WriteString(in.Guidance.SkillRubric)
	b.WriteString("\n\n## TEST CODE TO EVALUATE\n\n")
	writeFence(&b, in.TestCode)

	if in.Source != "" {
		b.WriteString("\n### Source Code Being Tested:\n")
		writeFence(&b, in.Source)
	}

	b.WriteString("\n")
	b.WriteString(evaluationTask)
	return b.String()
}

func writeFence(b *strings.Builder, code string) {
	b.WriteString("```python\n")
	b.WriteString(code)
	if !strings.HasSuffix(code, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")
}

const evaluationTask = `## YOUR TASK

Evaluate this test suite using the rubric above. Provide:

1. **Detailed Scores** for each category:
   - Test Completeness (X/30)
   - Test Quality & Maintainability (X/25)
   - Test Reliability (X/20)
   - Testing Layers (X/15)
   - Best Practices (X/10)

2. For each category:
   - State the score and why
   - Quote specific evidence from the tests
   - Note what's missing or could be improved

3. **Overall Assessment**:
   - Total score (X/100)
   - Quality tier
   - 2-3 key strengths
   - 2-3 critical gaps

4. **Prioritized Recommendations**:
   - High priority (do first)
   - Medium priority (next sprint)
   - Low priority (technical debt)

Be specific with examples and quote code where relevant.
`
