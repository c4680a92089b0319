package llm

import (
	"context"
	"fmt"

	"github.com/mvp-joe/testforge/internal/config"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// anthropicBaseURL is Anthropic's OpenAI-compatible endpoint.
const anthropicBaseURL = "https://api.anthropic.com/v1/"

// chatGenerator talks to any OpenAI-compatible chat completion endpoint.
type chatGenerator struct {
	client      *openai.Client
	provider    string
	model       string
	maxTokens   int
	temperature float32
	logger      *logrus.Logger
}

func newChatGenerator(provider, apiKey, baseURL, model string, cfg config.GenerationConfig, logger *logrus.Logger) *chatGenerator {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}

	return &chatGenerator{
		client:      openai.NewClientWithConfig(clientCfg),
		provider:    provider,
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
		logger:      logger,
	}
}

func (g *chatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", g.provider, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", g.provider)
	}

	text := resp.Choices[0].Message.Content
	g.logger.WithFields(logrus.Fields{
		"provider":        g.provider,
		"model":           g.model,
		"prompt_length":   len(prompt),
		"response_length": len(text),
		"tokens_used":     resp.Usage.TotalTokens,
	}).Debug("chat completion")

	return text, nil
}
