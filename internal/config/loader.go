package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// LoaderOption customizes a Loader.
type LoaderOption func(*loader)

// WithConfigFile makes the loader read an explicit file instead of searching .testforge/.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) {
		l.configFile = path
	}
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string, opts ...LoaderOption) Loader {
	l := &loader{rootDir: rootDir}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (TESTFORGE_*)
// 2. Config file (.testforge/config.yml or .testforge/config.yaml, or an explicit file)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".testforge"))
	}

	// TESTFORGE_GENERATION_PROVIDER -> generation.provider
	v.SetEnvPrefix("TESTFORGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"generation.provider",
		"generation.model",
		"generation.api_key",
		"generation.base_url",
		"generation.max_tokens",
		"generation.temperature",
		"generation.framework",
		"paths.source_dir",
		"paths.output_dir",
		"paths.evaluation_dir",
		"guidance.agent_path",
		"guidance.skill_path",
		"batch.concurrency",
		"batch.requests_per_minute",
		"batch.max_file_size_kb",
		"batch.cache_size",
		"batch.continue_on_error",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine unless it was asked for explicitly.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("generation.provider", defaults.Generation.Provider)
	v.SetDefault("generation.model", defaults.Generation.Model)
	v.SetDefault("generation.api_key", defaults.Generation.APIKey)
	v.SetDefault("generation.base_url", defaults.Generation.BaseURL)
	v.SetDefault("generation.max_tokens", defaults.Generation.MaxTokens)
	v.SetDefault("generation.temperature", defaults.Generation.Temperature)
	v.SetDefault("generation.framework", defaults.Generation.Framework)

	v.SetDefault("paths.source_dir", defaults.Paths.SourceDir)
	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)
	v.SetDefault("paths.output_dir", defaults.Paths.OutputDir)
	v.SetDefault("paths.evaluation_dir", defaults.Paths.EvaluationDir)

	v.SetDefault("guidance.agent_path", defaults.Guidance.AgentPath)
	v.SetDefault("guidance.skill_path", defaults.Guidance.SkillPath)

	v.SetDefault("batch.concurrency", defaults.Batch.Concurrency)
	v.SetDefault("batch.requests_per_minute", defaults.Batch.RequestsPerMinute)
	v.SetDefault("batch.max_file_size_kb", defaults.Batch.MaxFileSizeKB)
	v.SetDefault("batch.cache_size", defaults.Batch.CacheSize)
	v.SetDefault("batch.continue_on_error", defaults.Batch.ContinueOnError)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
