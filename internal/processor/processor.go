package processor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/snonux/wortschatz/internal/anki"
	"codeberg.org/snonux/wortschatz/internal/ankiconnect"
	"codeberg.org/snonux/wortschatz/internal/audio"
	"codeberg.org/snonux/wortschatz/internal/cli"
	"codeberg.org/snonux/wortschatz/internal/generation"
	"codeberg.org/snonux/wortschatz/internal/vocab"
)

// Dependencies lets callers replace the remote collaborators. Nil fields
// are built from the flags.
type Dependencies struct {
	Generator vocab.Generator
	Store     anki.Store
	Audio     audio.Provider
	Logger    *slog.Logger
	Out       io.Writer        // progress and summary, stdout by default
	Now       func() time.Time // timestamp of the CSV export
}

// Processor runs one batch of words through generation, audio, Anki and
// the exports
type Processor struct {
	flags *cli.Flags
	deps  Dependencies

	generationConfig *generation.Config
	ankiConfig       *ankiconnect.Config
	audioConfig      *audio.Config
	noteType         anki.NoteType

	logger *slog.Logger
	out    io.Writer
	now    func() time.Time
}

// NewProcessor creates a new word processor. All client configuration is
// derived from flags here and not read again later.
func NewProcessor(flags *cli.Flags, deps Dependencies) *Processor {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Processor{
		flags:            flags,
		deps:             deps,
		generationConfig: generationConfig(flags),
		ankiConfig:       ankiConfig(flags),
		audioConfig:      audioConfig(flags, logger),
		noteType:         anki.DefaultNoteType(flags.NoteType),
		logger:           logger,
		out:              out,
		now:              now,
	}
}

func generationConfig(flags *cli.Flags) *generation.Config {
	config := generation.DefaultConfig()
	config.Provider = flags.LLMProvider
	config.BaseURL = flags.LLMURL
	config.Model = flags.Model
	config.Timeout = flags.LLMTimeout

	if flags.LLMProvider == "gemini" {
		config.APIKey = cli.GetGeminiKey()
		if config.Model == generation.DefaultModel {
			config.Model = generation.DefaultGeminiModel
		}
	} else {
		config.APIKey = cli.GetLLMKey()
	}
	return config
}

func ankiConfig(flags *cli.Flags) *ankiconnect.Config {
	config := ankiconnect.DefaultConfig()
	config.URL = flags.AnkiURL
	config.Timeout = flags.AnkiTimeout
	return config
}

func audioConfig(flags *cli.Flags, logger *slog.Logger) *audio.Config {
	config := audio.DefaultProviderConfig()
	config.Provider = flags.AudioProvider
	config.Language = flags.Lang
	config.OpenAIKey = cli.GetOpenAIKey()
	config.OpenAIModel = flags.OpenAIModel
	config.OpenAIVoice = flags.OpenAIVoice
	config.OpenAISpeed = flags.OpenAISpeed
	config.OpenAIInstruction = flags.OpenAIInstruction
	config.Logger = logger

	if cacheDir, err := os.UserCacheDir(); err == nil {
		config.CacheDir = filepath.Join(cacheDir, "wortschatz", "tts")
		config.EnableCache = true
	}
	return config
}

func (p *Processor) generator(ctx context.Context) (vocab.Generator, error) {
	if p.deps.Generator != nil {
		return p.deps.Generator, nil
	}
	gen, err := generation.New(ctx, p.generationConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	return gen, nil
}

func (p *Processor) store() anki.Store {
	if p.deps.Store != nil {
		return p.deps.Store
	}
	return ankiconnect.NewClient(p.ankiConfig, p.logger)
}

// audioProvider returns nil when no provider can be created; the run then
// continues without audio.
func (p *Processor) audioProvider() audio.Provider {
	if p.deps.Audio != nil {
		return p.deps.Audio
	}
	provider, err := audio.NewProviderChain(p.audioConfig)
	if err != nil {
		p.logger.Error("audio disabled", "provider", p.audioConfig.Provider, "error", err)
		return nil
	}
	return provider
}
