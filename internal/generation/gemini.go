package generation

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// GeminiGenerator queries Google Gemini through the genai SDK
type GeminiGenerator struct {
	config *Config
	client *genai.Client
}

// NewGeminiGenerator creates a Gemini-backed generator. config.APIKey must
// hold a Gemini API key; config.BaseURL overrides the API endpoint.
func NewGeminiGenerator(ctx context.Context, config *Config) (*GeminiGenerator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: config.Timeout},
	}
	if config.BaseURL != "" && config.BaseURL != DefaultBaseURL {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{config: config, client: client}, nil
}

// Generate sends the rendered prompt and returns the trimmed reply
func (g *GeminiGenerator) Generate(ctx context.Context, word, promptTemplate string) (string, error) {
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	model := g.config.Model
	if model == "" || model == DefaultModel {
		model = DefaultGeminiModel
	}

	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(g.config.Temperature),
		TopP:              genai.Ptr(g.config.TopP),
		MaxOutputTokens:   int32(g.config.MaxTokens),
		StopSequences:     StopSequences,
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(RenderPrompt(promptTemplate, word)), genConfig)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no response from Gemini")
	}
	return text, nil
}
