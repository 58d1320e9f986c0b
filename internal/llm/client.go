// Package llm wraps the OpenAI chat-completions API behind a small interface
// so the orchestrator can be exercised without network access.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/zenithmode/zenith/internal/models"
)

// Client produces a completion for a single user-role prompt.
type Client interface {
	Complete(ctx context.Context, prompt string, maxTokens int, stop []string) (string, error)
}

type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewOpenAIClient fails at construction time when no credential is configured,
// so a missing key is a startup condition rather than a silent global.
func NewOpenAIClient(apiKey, model string, temperature float64, logger *zap.Logger) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: no api key configured: %w", models.ErrProviderUnavailable)
	}

	return &OpenAIClient{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: float32(temperature),
		logger:      logger,
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string, maxTokens int, stop []string) (string, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   maxTokens,
			Temperature: c.temperature,
			Stop:        stop,
		},
	)
	if err != nil {
		c.logger.Error("OpenAI completion failed", zap.Error(err))
		return "", fmt.Errorf("openai completion: %v: %w", err, models.ErrTransport)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: no choices: %w", models.ErrEmptyResponse)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai completion: blank content: %w", models.ErrEmptyResponse)
	}
	return text, nil
}
