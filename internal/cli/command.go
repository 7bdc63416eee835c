package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/wortschatz/internal"
	"codeberg.org/snonux/wortschatz/internal/generation"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wortschatz [words...]",
		Short: "German Anki Flashcard Generator",
		Long: `wortschatz generates Anki flashcards for German vocabulary.

Each word is sent to a local LLM (LM Studio by default) which returns the
English meaning and two example sentences. The result can be pushed into
Anki through AnkiConnect, optionally with pronunciation audio. A CSV export
is always written to the output directory.

Examples:
  wortschatz Haus Baum                     # Generate cards, write CSV only
  wortschatz --words words.txt --push-to-anki --deck Deutsch
  wortschatz --words words.txt --audio --push-to-anki --media-folder ~/.local/share/Anki2/User\ 1/collection.media
  wortschatz --list-models                 # Show models of the LLM endpoint`,
		Args:         cobra.ArbitraryArgs,
		Version:      internal.Version,
		SilenceUsage: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.wortschatz.yaml)")

	// Input and output
	cmd.Flags().StringVarP(&flags.WordFile, "words", "w", "", "Read words from file (one per line, # starts a comment)")
	cmd.Flags().StringVarP(&flags.Deck, "deck", "d", flags.Deck, "Anki deck name")
	cmd.Flags().StringVarP(&flags.Template, "template", "t", flags.Template, "Prompt template file with exactly one {} placeholder")
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output directory for the CSV and APKG exports")
	cmd.Flags().BoolVar(&flags.APKG, "apkg", false, "Also write an offline .apkg package")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move previous exports into the archive folder before the run")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List the models of the LLM endpoint and exit")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	cmd.Flags().StringVar(&flags.LogFile, "log-file", "", "Also write logs to this file (rotated)")

	// Generation
	cmd.Flags().StringVar(&flags.LLMProvider, "llm-provider", flags.LLMProvider, "Generation backend: openai (any OpenAI-compatible server) or gemini")
	cmd.Flags().StringVar(&flags.LLMURL, "llm-url", flags.LLMURL, "Base URL of the OpenAI-compatible endpoint")
	cmd.Flags().StringVarP(&flags.Model, "model", "m", flags.Model, "Model used for generation")
	cmd.Flags().IntVar(&flags.MaxAttempts, "max-attempts", flags.MaxAttempts, "Generation attempts per word (0 retries forever)")
	cmd.Flags().StringVar(&flags.Parser, "parser", flags.Parser, "Response parser: line or json")
	cmd.Flags().DurationVar(&flags.LLMTimeout, "llm-timeout", flags.LLMTimeout, "Timeout of one generation request")

	// Anki
	cmd.Flags().BoolVar(&flags.PushToAnki, "push-to-anki", false, "Add the cards to Anki through AnkiConnect")
	cmd.Flags().StringVar(&flags.AnkiURL, "anki-url", flags.AnkiURL, "AnkiConnect URL")
	cmd.Flags().DurationVar(&flags.AnkiTimeout, "anki-timeout", flags.AnkiTimeout, "Timeout of one AnkiConnect request")
	cmd.Flags().StringVar(&flags.NoteType, "note-type", flags.NoteType, "Anki note type")
	cmd.Flags().BoolVar(&flags.AllowDuplicates, "allow-duplicates", false, "Add notes even if the word already exists in the deck")
	cmd.Flags().StringSliceVar(&flags.Tags, "tags", flags.Tags, "Tags added to every note")
	cmd.Flags().StringVar(&flags.MediaFolder, "media-folder", "", "Anki collection.media folder audio files are copied into")

	// Audio
	cmd.Flags().BoolVar(&flags.Audio, "audio", false, "Generate pronunciation audio")
	cmd.Flags().StringVar(&flags.AudioSlots, "audio-slots", flags.AudioSlots, "Audio for: headword or all (headword and both examples)")
	cmd.Flags().StringVar(&flags.AudioFolder, "audio-folder", flags.AudioFolder, "Folder for generated audio files")
	cmd.Flags().StringVar(&flags.AudioProvider, "audio-provider", flags.AudioProvider, "Audio provider: openai or espeak")
	cmd.Flags().StringVar(&flags.Lang, "lang", flags.Lang, "Language code of the vocabulary (espeak voice, TTS instruction)")

	// OpenAI TTS
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	cmd.Flags().StringVar(&flags.OpenAIVoice, "openai-voice", flags.OpenAIVoice, "OpenAI voice: alloy, ash, coral, echo, fable, onyx, nova, sage, shimmer")
	cmd.Flags().Float64Var(&flags.OpenAISpeed, "openai-speed", flags.OpenAISpeed, "OpenAI speech speed (0.25 to 4.0, may be ignored by gpt-4o-mini-tts)")
	cmd.Flags().StringVar(&flags.OpenAIInstruction, "openai-instruction", "", "Voice instructions for gpt-4o-mini-tts (default depends on --lang)")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

// flagKeys maps viper keys to flag names
var flagKeys = map[string]string{
	"words.file":               "words",
	"anki.deck":                "deck",
	"llm.template":             "template",
	"output.directory":         "output",
	"output.apkg":              "apkg",
	"log.level":                "log-level",
	"log.file":                 "log-file",
	"llm.provider":             "llm-provider",
	"llm.url":                  "llm-url",
	"llm.model":                "model",
	"llm.max_attempts":         "max-attempts",
	"llm.parser":               "parser",
	"llm.timeout":              "llm-timeout",
	"anki.push":                "push-to-anki",
	"anki.url":                 "anki-url",
	"anki.timeout":             "anki-timeout",
	"anki.note_type":           "note-type",
	"anki.allow_duplicates":    "allow-duplicates",
	"anki.tags":                "tags",
	"anki.media_folder":        "media-folder",
	"audio.enabled":            "audio",
	"audio.slots":              "audio-slots",
	"audio.folder":             "audio-folder",
	"audio.provider":           "audio-provider",
	"audio.lang":               "lang",
	"audio.openai_model":       "openai-model",
	"audio.openai_voice":       "openai-voice",
	"audio.openai_speed":       "openai-speed",
	"audio.openai_instruction": "openai-instruction",
}

func bindFlagsToViper(cmd *cobra.Command) {
	for key, name := range flagKeys {
		viper.BindPFlag(key, cmd.Flags().Lookup(name))
	}
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	// A missing .env is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".wortschatz" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wortschatz")
	}

	// Environment variables, e.g. WORTSCHATZ_ANKI_DECK for anki.deck
	viper.SetEnvPrefix("WORTSCHATZ")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// ApplyConfig copies values from the environment and the config file into
// flags. Flags given on the command line win, then the environment, then the
// config file; untouched keys keep the flag defaults.
func ApplyConfig(flags *Flags) {
	str := func(key string, dst *string) {
		if viper.IsSet(key) {
			*dst = viper.GetString(key)
		}
	}
	boolean := func(key string, dst *bool) {
		if viper.IsSet(key) {
			*dst = viper.GetBool(key)
		}
	}

	str("words.file", &flags.WordFile)
	str("anki.deck", &flags.Deck)
	str("output.directory", &flags.OutputDir)
	boolean("output.apkg", &flags.APKG)
	str("log.level", &flags.LogLevel)
	str("log.file", &flags.LogFile)

	if viper.IsSet("llm.template") {
		flags.Template = viper.GetString("llm.template")
		flags.TemplateSet = true
	}
	str("llm.provider", &flags.LLMProvider)
	str("llm.url", &flags.LLMURL)
	str("llm.model", &flags.Model)
	str("llm.parser", &flags.Parser)
	if viper.IsSet("llm.max_attempts") {
		flags.MaxAttempts = viper.GetInt("llm.max_attempts")
	}
	if viper.IsSet("llm.timeout") {
		flags.LLMTimeout = viper.GetDuration("llm.timeout")
	}

	boolean("anki.push", &flags.PushToAnki)
	str("anki.url", &flags.AnkiURL)
	str("anki.note_type", &flags.NoteType)
	boolean("anki.allow_duplicates", &flags.AllowDuplicates)
	str("anki.media_folder", &flags.MediaFolder)
	if viper.IsSet("anki.timeout") {
		flags.AnkiTimeout = viper.GetDuration("anki.timeout")
	}
	if viper.IsSet("anki.tags") {
		flags.Tags = viper.GetStringSlice("anki.tags")
	}

	boolean("audio.enabled", &flags.Audio)
	str("audio.slots", &flags.AudioSlots)
	str("audio.folder", &flags.AudioFolder)
	str("audio.provider", &flags.AudioProvider)
	str("audio.lang", &flags.Lang)
	str("audio.openai_model", &flags.OpenAIModel)
	str("audio.openai_voice", &flags.OpenAIVoice)
	str("audio.openai_instruction", &flags.OpenAIInstruction)
	if viper.IsSet("audio.openai_speed") {
		flags.OpenAISpeed = viper.GetFloat64("audio.openai_speed")
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("audio.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("llm.gemini_key")
}

// GetLLMKey returns the key for the OpenAI-compatible generation endpoint.
// LM Studio accepts any key.
func GetLLMKey() string {
	if key := viper.GetString("llm.api_key"); key != "" {
		return key
	}
	return generation.DefaultAPIKey
}
