package cli

import (
	"time"

	"codeberg.org/snonux/wortschatz/internal/anki"
	"codeberg.org/snonux/wortschatz/internal/ankiconnect"
	"codeberg.org/snonux/wortschatz/internal/generation"
	"codeberg.org/snonux/wortschatz/internal/vocab"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	WordFile   string
	Deck       string
	Template   string
	OutputDir  string
	APKG       bool
	Archive    bool
	ListModels bool
	LogLevel   string
	LogFile    string

	// TemplateSet is true when the template path was given explicitly, in
	// which case an unreadable template is an error
	TemplateSet bool

	// Generation flags
	LLMProvider string
	LLMURL      string
	Model       string
	MaxAttempts int
	Parser      string
	LLMTimeout  time.Duration

	// Anki flags
	PushToAnki      bool
	AnkiURL         string
	AnkiTimeout     time.Duration
	NoteType        string
	AllowDuplicates bool
	Tags            []string
	MediaFolder     string

	// Audio flags
	Audio         bool
	AudioSlots    string
	AudioFolder   string
	AudioProvider string
	Lang          string

	// OpenAI TTS flags
	OpenAIModel       string
	OpenAIVoice       string
	OpenAISpeed       float64
	OpenAIInstruction string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Deck:          "test",
		Template:      "prompt.template",
		OutputDir:     ".",
		LogLevel:      "info",
		LLMProvider:   "openai",
		LLMURL:        generation.DefaultBaseURL,
		Model:         generation.DefaultModel,
		MaxAttempts:   vocab.DefaultMaxAttempts,
		Parser:        "line",
		LLMTimeout:    generation.DefaultTimeout,
		AnkiURL:       ankiconnect.DefaultURL,
		AnkiTimeout:   ankiconnect.DefaultTimeout,
		NoteType:      anki.DefaultNoteTypeName,
		Tags:          []string{"auto"},
		AudioSlots:    "all",
		AudioFolder:   "audio",
		AudioProvider: "openai",
		Lang:          "de",
		OpenAIModel:   "gpt-4o-mini-tts",
		OpenAIVoice:   "alloy",
		OpenAISpeed:   1.0,
	}
}
