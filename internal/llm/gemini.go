package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/mvp-joe/testforge/internal/config"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

type geminiGenerator struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
	logger      *logrus.Logger
}

func newGeminiGenerator(ctx context.Context, apiKey, model string, cfg config.GenerationConfig, logger *logrus.Logger) (*geminiGenerator, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiGenerator{
		client:      client,
		model:       model,
		maxTokens:   int32(cfg.MaxTokens),
		temperature: float32(cfg.Temperature),
		logger:      logger,
	}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := g.temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: g.maxTokens,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genConfig)
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("gemini returned no content parts")
	}

	g.logger.WithFields(logrus.Fields{
		"provider":        config.ProviderGemini,
		"model":           g.model,
		"prompt_length":   len(prompt),
		"response_length": text.Len(),
	}).Debug("gemini completion")

	return text.String(), nil
}
