package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidProvider indicates an unsupported generation provider
	ErrInvalidProvider = errors.New("invalid generation provider")

	// ErrInvalidMaxTokens indicates a non-positive token limit
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidTemperature indicates a temperature outside [0, 2]
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrEmptyFramework indicates a missing test framework name
	ErrEmptyFramework = errors.New("empty test framework")

	// ErrEmptyInclude indicates no include patterns
	ErrEmptyInclude = errors.New("empty include patterns")

	// ErrEmptyOutputDir indicates a missing output directory
	ErrEmptyOutputDir = errors.New("empty output directory")

	// ErrInvalidBatchSettings indicates invalid batch configuration
	ErrInvalidBatchSettings = errors.New("invalid batch settings")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateGeneration(&cfg.Generation); err != nil {
		errs = append(errs, err)
	}

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if err := validateBatch(&cfg.Batch); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateGeneration(cfg *GenerationConfig) error {
	var errs []error

	switch strings.ToLower(cfg.Provider) {
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderNone:
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'anthropic', 'openai', 'gemini' or 'none', got '%s'", ErrInvalidProvider, cfg.Provider))
	}

	if cfg.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_tokens must be positive, got %d", ErrInvalidMaxTokens, cfg.MaxTokens))
	}

	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		errs = append(errs, fmt.Errorf("%w: temperature must be between 0 and 2, got %.2f", ErrInvalidTemperature, cfg.Temperature))
	}

	if strings.TrimSpace(cfg.Framework) == "" {
		errs = append(errs, fmt.Errorf("%w: framework is required", ErrEmptyFramework))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	if len(cfg.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one include pattern required", ErrEmptyInclude))
	}

	if strings.TrimSpace(cfg.OutputDir) == "" {
		errs = append(errs, fmt.Errorf("%w: output_dir is required", ErrEmptyOutputDir))
	}

	if strings.TrimSpace(cfg.EvaluationDir) == "" {
		errs = append(errs, fmt.Errorf("%w: evaluation_dir is required", ErrEmptyOutputDir))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateBatch(cfg *BatchConfig) error {
	var errs []error

	if cfg.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidBatchSettings, cfg.Concurrency))
	}

	// Zero disables these limits; negative is never meaningful.
	if cfg.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("%w: requests_per_minute cannot be negative, got %d", ErrInvalidBatchSettings, cfg.RequestsPerMinute))
	}
	if cfg.MaxFileSizeKB < 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_size_kb cannot be negative, got %d", ErrInvalidBatchSettings, cfg.MaxFileSizeKB))
	}
	if cfg.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size cannot be negative, got %d", ErrInvalidBatchSettings, cfg.CacheSize))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// Every wrapped error stays reachable through errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return &validationErrors{errs: errs}
}

type validationErrors struct {
	errs []error
}

func (v *validationErrors) Error() string {
	msgs := make([]string, 0, len(v.errs))
	for _, err := range v.errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (v *validationErrors) Unwrap() []error {
	return v.errs
}
