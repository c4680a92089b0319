// Package llm sends prompts to a hosted text generation service.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mvp-joe/testforge/internal/config"
	"github.com/sirupsen/logrus"
)

// ErrNoAPIKey is returned by NewGenerator when generation is disabled or no key is
// available. Callers treat it as a switch to prompt-only mode, not as a failure.
var ErrNoAPIKey = errors.New("no API key configured")

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewGenerator builds the generator for the configured provider.
func NewGenerator(ctx context.Context, cfg config.GenerationConfig, logger *logrus.Logger) (Generator, error) {
	if logger == nil {
		logger = logrus.New()
	}

	provider := strings.ToLower(cfg.Provider)
	if provider == config.ProviderNone {
		return nil, ErrNoAPIKey
	}

	apiKey := cfg.ResolvedAPIKey()
	if apiKey == "" {
		logger.WithField("provider", provider).Debug("no API key found, generation disabled")
		return nil, ErrNoAPIKey
	}

	model := cfg.ResolvedModel()
	fields := logrus.Fields{"provider": provider, "model": model}

	switch provider {
	case config.ProviderAnthropic:
		base := cfg.BaseURL
		if base == "" {
			base = anthropicBaseURL
		}
		logger.WithFields(fields).Debug("anthropic generator initialized")
		return newChatGenerator(provider, apiKey, base, model, cfg, logger), nil

	case config.ProviderOpenAI:
		logger.WithFields(fields).Debug("openai generator initialized")
		return newChatGenerator(provider, apiKey, cfg.BaseURL, model, cfg, logger), nil

	case config.ProviderGemini:
		g, err := newGeminiGenerator(ctx, apiKey, model, cfg, logger)
		if err != nil {
			return nil, err
		}
		logger.WithFields(fields).Debug("gemini generator initialized")
		return g, nil
	}

	return nil, fmt.Errorf("%w: %s", config.ErrInvalidProvider, cfg.Provider)
}

// Static returns a fixed response and records every prompt it receives.
type Static struct {
	Response string
	Err      error

	mu      sync.Mutex
	prompts []string
}

// Generate implements Generator.
func (s *Static) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	return s.Response, nil
}

// Prompts returns a copy of the prompts received so far.
func (s *Static) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}
