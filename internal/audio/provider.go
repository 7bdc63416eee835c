package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// GenerateAudio generates audio from text and saves it to the specified file
	GenerateAudio(ctx context.Context, text string, outputFile string) error

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for audio providers
type Config struct {
	Provider     string // "openai" or "espeak"
	OutputFormat string // "mp3" or "wav"
	Language     string // ISO 639-1 code, selects the espeak voice and the OpenAI instruction
	Timeout      time.Duration

	// OpenAI-specific settings
	OpenAIKey         string
	OpenAIBaseURL     string  // empty for api.openai.com
	OpenAIModel       string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice       string  // "alloy", "ash", "coral", "echo", "fable", "nova", "onyx", "sage", "shimmer"
	OpenAISpeed       float64 // 0.25 to 4.0
	OpenAIInstruction string  // Voice instructions for gpt-4o-mini-tts

	// Cache of synthesized files keyed by text and voice settings
	CacheDir    string
	EnableCache bool

	Logger *slog.Logger
}

// DefaultProviderConfig returns the default configuration for German
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:     "openai",
		OutputFormat: "mp3",
		Language:     "de",
		Timeout:      60 * time.Second,
		OpenAIModel:  "gpt-4o-mini-tts",
		OpenAIVoice:  "alloy",
		OpenAISpeed:  1.0,
	}
}

// instructions per language for gpt-4o-mini-tts
var languageInstructions = map[string]string{
	"de": "You are speaking German (Deutsch). Use standard High German pronunciation. Speak slowly and clearly for language learners.",
	"en": "You are speaking English. Speak slowly and clearly for language learners.",
}

// Instruction returns the voice instruction for the configured language,
// unless one was set explicitly
func (c *Config) Instruction() string {
	if c.OpenAIInstruction != "" {
		return c.OpenAIInstruction
	}
	return languageInstructions[c.Language]
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// NewProvider creates the appropriate audio provider based on configuration
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		provider, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		return provider, nil

	case "espeak", "espeak-ng":
		espeakConfig := DefaultConfig()
		espeakConfig.Voice = VoiceFor(config.Language)
		return NewESpeakProvider(espeakConfig)

	default:
		return nil, fmt.Errorf("unknown audio provider: %s", config.Provider)
	}
}

// NewProviderChain creates the configured provider and falls back to
// espeak-ng when the primary fails, if espeak-ng is installed
func NewProviderChain(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	primary, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if primary.Name() != "openai" {
		return primary, nil
	}

	espeakConfig := DefaultConfig()
	espeakConfig.Voice = VoiceFor(config.Language)
	fallback, err := NewESpeakProvider(espeakConfig)
	if err != nil {
		config.logger().Debug("espeak-ng fallback not available", "error", err)
		return primary, nil
	}

	return NewProviderWithFallback(primary, fallback, config.logger()), nil
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
	logger   *slog.Logger
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// GenerateAudio tries primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	err := p.primary.GenerateAudio(ctx, text, outputFile)
	if err != nil {
		p.logger.Warn("primary audio provider failed, falling back",
			"primary", p.primary.Name(), "fallback", p.fallback.Name(), "error", err)
		return p.fallback.GenerateAudio(ctx, text, outputFile)
	}
	return nil
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
