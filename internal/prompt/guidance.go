// Package prompt assembles the text sent to the generation service: agent
// instructions, the scoring rubric, and the serialized analysis of a source file.
package prompt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Guidance holds the free-form documents embedded at the top of every prompt.
type Guidance struct {
	AgentInstructions string // contents of the agent definition (AGENTS.md)
	SkillRubric       string // contents of the test-strategy rubric (SKILL.md)
}

// LoadGuidance reads the agent and skill documents.
// A missing file yields an empty string; any other read failure is returned.
func LoadGuidance(agentPath, skillPath string) (Guidance, error) {
	agent, err := readOptional(agentPath)
	if err != nil {
		return Guidance{}, fmt.Errorf("failed to load agent instructions: %w", err)
	}

	skill, err := readOptional(skillPath)
	if err != nil {
		return Guidance{}, fmt.Errorf("failed to load skill rubric: %w", err)
	}

	return Guidance{AgentInstructions: agent, SkillRubric: skill}, nil
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
