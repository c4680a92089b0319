package cli

import (
	"github.com/mvp-joe/testforge/internal/config"
	"github.com/spf13/cobra"
)

// generationFlags are the overrides shared by generate and evaluate.
type generationFlags struct {
	output string
	apiKey string
	agent  string
	skill  string
	quiet  bool
}

func (f *generationFlags) register(cmd *cobra.Command, outputHelp string) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", outputHelp)
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "API key for the configured provider (or set its env var, e.g. ANTHROPIC_API_KEY)")
	cmd.Flags().StringVarP(&f.agent, "agent", "a", "", "path to agent instructions (default from config, AGENTS.md)")
	cmd.Flags().StringVarP(&f.skill, "skill", "k", "", "path to the test strategy rubric (default from config)")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "disable progress bars and non-essential output")
}

// apply copies explicitly set flags over cfg. outputDir selects which
// configured directory --output replaces.
func (f *generationFlags) apply(cmd *cobra.Command, cfg *config.Config, outputDir *string) {
	if cmd.Flags().Changed("output") {
		*outputDir = f.output
	}
	if cmd.Flags().Changed("api-key") {
		cfg.Generation.APIKey = f.apiKey
	}
	if cmd.Flags().Changed("agent") {
		cfg.Guidance.AgentPath = f.agent
	}
	if cmd.Flags().Changed("skill") {
		cfg.Guidance.SkillPath = f.skill
	}
}
