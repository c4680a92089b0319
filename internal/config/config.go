package config

import (
	"os"
	"strings"
)

// Config represents the complete testforge configuration.
// It can be loaded from .testforge/config.yml with environment variable overrides.
type Config struct {
	Generation GenerationConfig `yaml:"generation" mapstructure:"generation"`
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Guidance   GuidanceConfig   `yaml:"guidance" mapstructure:"guidance"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
}

// GenerationConfig configures the text generation service.
type GenerationConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"`       // "anthropic", "openai", "gemini" or "none"
	Model       string  `yaml:"model" mapstructure:"model"`             // empty means the provider default
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`         // falls back to the provider's env var
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`       // override the provider endpoint
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`   // response token limit
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"` // sampling temperature
	Framework   string  `yaml:"framework" mapstructure:"framework"`     // test framework named in prompts
}

// PathsConfig defines which files to process and where output goes.
type PathsConfig struct {
	SourceDir     string   `yaml:"source_dir" mapstructure:"source_dir"`         // default batch directory
	Include       []string `yaml:"include" mapstructure:"include"`               // glob patterns for source files
	Ignore        []string `yaml:"ignore" mapstructure:"ignore"`                 // glob patterns to skip
	OutputDir     string   `yaml:"output_dir" mapstructure:"output_dir"`         // generated tests, prompts, analyses
	EvaluationDir string   `yaml:"evaluation_dir" mapstructure:"evaluation_dir"` // test evaluations
}

// GuidanceConfig points at the agent instructions and scoring rubric documents.
type GuidanceConfig struct {
	AgentPath string `yaml:"agent_path" mapstructure:"agent_path"`
	SkillPath string `yaml:"skill_path" mapstructure:"skill_path"`
}

// BatchConfig controls directory processing.
type BatchConfig struct {
	Concurrency       int  `yaml:"concurrency" mapstructure:"concurrency"`                 // files processed in parallel
	RequestsPerMinute int  `yaml:"requests_per_minute" mapstructure:"requests_per_minute"` // 0 disables rate limiting
	MaxFileSizeKB     int  `yaml:"max_file_size_kb" mapstructure:"max_file_size_kb"`       // 0 disables the size guard
	CacheSize         int  `yaml:"cache_size" mapstructure:"cache_size"`                   // analysis cache entries
	ContinueOnError   bool `yaml:"continue_on_error" mapstructure:"continue_on_error"`     // record failures instead of aborting
}

// Supported generation providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderNone      = "none"
)

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			Provider:    ProviderAnthropic,
			Model:       "",
			MaxTokens:   4000,
			Temperature: 0.2,
			Framework:   "pytest",
		},
		Paths: PathsConfig{
			SourceDir: "sample-code",
			Include:   []string{"*.py"},
			Ignore: []string{
				"test_*.py",
				"*_test.py",
				"__pycache__/**",
				".venv/**",
				"venv/**",
			},
			OutputDir:     "generated-tests",
			EvaluationDir: "test-evaluations",
		},
		Guidance: GuidanceConfig{
			AgentPath: "AGENTS.md",
			SkillPath: ".github/skills/test-strategy/SKILL.md",
		},
		Batch: BatchConfig{
			Concurrency:       4,
			RequestsPerMinute: 50,
			MaxFileSizeKB:     512,
			CacheSize:         1000,
			ContinueOnError:   true,
		},
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch strings.ToLower(provider) {
	case ProviderAnthropic:
		return "claude-sonnet-4-20250514"
	case ProviderOpenAI:
		return "gpt-4o"
	case ProviderGemini:
		return "gemini-2.0-flash"
	}
	return ""
}

// APIKeyEnvVar returns the conventional environment variable for a provider's key.
func APIKeyEnvVar(provider string) string {
	switch strings.ToLower(provider) {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	}
	return ""
}

// ResolvedModel returns the configured model or the provider default.
func (g GenerationConfig) ResolvedModel() string {
	if g.Model != "" {
		return g.Model
	}
	return DefaultModel(g.Provider)
}

// ResolvedAPIKey returns the configured key or the provider's env var.
func (g GenerationConfig) ResolvedAPIKey() string {
	if g.APIKey != "" {
		return g.APIKey
	}
	if env := APIKeyEnvVar(g.Provider); env != "" {
		return os.Getenv(env)
	}
	return ""
}
