package generation

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks codeberg.org/snonux/wortschatz/internal/generation Generator

import (
	"context"
	"fmt"
	"time"
)

// Generator returns the raw model output for one word
type Generator interface {
	Generate(ctx context.Context, word, promptTemplate string) (string, error)
}

// Defaults for a local LM Studio instance
const (
	DefaultBaseURL = "http://localhost:1234/v1"
	DefaultAPIKey  = "lm-studio"
	DefaultModel   = "lmstudio-community/Meta-Llama-3.1-8B-Instruct-GGUF/Meta-Llama-3.1-8B-Instruct-Q8_0.gguf"
	DefaultTimeout = 120 * time.Second

	DefaultGeminiModel = "gemini-2.0-flash"
)

// SystemPrompt keeps the model from adding commentary around the entry
const SystemPrompt = "You are a German language tutor creating Anki flashcards. You must respond ONLY in the exact format requested with NO extra text, explanations, or additional content."

// StopSequences cut the output before the model starts a second entry
var StopSequences = []string{
	"\n\nGerman:",
	"\nGerman:",
	"\n\nWord:",
	"\nNext word:",
	"\n\n---",
	"---",
}

// Config configures the generation backend
type Config struct {
	Provider string // "openai" (any OpenAI-compatible server) or "gemini"
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration

	Temperature      float32
	TopP             float32
	FrequencyPenalty float32
	MaxTokens        int
}

// DefaultConfig returns the settings used against LM Studio
func DefaultConfig() *Config {
	return &Config{
		Provider:         "openai",
		BaseURL:          DefaultBaseURL,
		APIKey:           DefaultAPIKey,
		Model:            DefaultModel,
		Timeout:          DefaultTimeout,
		Temperature:      0.1,
		TopP:             0.9,
		FrequencyPenalty: 0.1,
		MaxTokens:        400,
	}
}

// New creates the generator selected by config.Provider
func New(ctx context.Context, config *Config) (Generator, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case "", "openai", "lmstudio":
		return NewOpenAIGenerator(config), nil
	case "gemini":
		return NewGeminiGenerator(ctx, config)
	default:
		return nil, fmt.Errorf("unknown generation provider: %s", config.Provider)
	}
}
