package generation

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIGenerator queries an OpenAI-compatible chat completion endpoint
type OpenAIGenerator struct {
	config *Config
	client *openai.Client
}

// NewOpenAIGenerator creates a generator for config.BaseURL
func NewOpenAIGenerator(config *Config) *OpenAIGenerator {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}

	return &OpenAIGenerator{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// Generate sends the rendered prompt and returns the trimmed reply
func (g *OpenAIGenerator) Generate(ctx context.Context, word, promptTemplate string) (string, error) {
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: g.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: RenderPrompt(promptTemplate, word),
			},
		},
		Temperature:      g.config.Temperature,
		TopP:             g.config.TopP,
		FrequencyPenalty: g.config.FrequencyPenalty,
		MaxTokens:        g.config.MaxTokens,
		Stop:             StopSequences,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ListModels returns the model IDs served by the endpoint
func (g *OpenAIGenerator) ListModels(ctx context.Context) ([]string, error) {
	list, err := g.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}
