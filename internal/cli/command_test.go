package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "test-config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	return cfgPath
}

func TestCreateRootCommand(t *testing.T) {
	resetViper(t)

	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "wortschatz [words...]" {
		t.Errorf("Expected Use to be 'wortschatz [words...]', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "German Anki Flashcard Generator") {
		t.Errorf("Expected Short description to contain 'German Anki Flashcard Generator'")
	}

	if err := cmd.Args(cmd, []string{"Haus", "Baum", "Katze"}); err != nil {
		t.Errorf("several words should be accepted: %v", err)
	}

	// Test that flags are set up
	flagNames := []string{
		"config", "words", "deck", "template", "output", "apkg", "archive",
		"list-models", "log-level", "log-file",
		"llm-provider", "llm-url", "model", "max-attempts", "parser", "llm-timeout",
		"push-to-anki", "anki-url", "anki-timeout", "note-type", "allow-duplicates",
		"tags", "media-folder",
		"audio", "audio-slots", "audio-folder", "audio-provider", "lang",
		"openai-model", "openai-voice", "openai-speed", "openai-instruction",
	}

	for _, name := range flagNames {
		t.Run("flag_"+name, func(t *testing.T) {
			var flag *pflag.Flag
			if name == "config" {
				flag = cmd.PersistentFlags().Lookup(name)
			} else {
				flag = cmd.Flags().Lookup(name)
			}
			if flag == nil {
				t.Errorf("Expected flag %s to exist", name)
			}
		})
	}
}

func TestSetupFlags(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	defaults := map[string]string{
		"deck":         "test",
		"template":     "prompt.template",
		"output":       ".",
		"max-attempts": "25",
		"parser":       "line",
		"audio-slots":  "all",
		"audio-folder": "audio",
		"tags":         "[auto]",
		"anki-url":     "http://localhost:8765",
	}
	for name, want := range defaults {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Fatalf("%s flag not found", name)
		}
		if flag.DefValue != want {
			t.Errorf("default of --%s = %s, want %s", name, flag.DefValue, want)
		}
	}

	if err := cmd.ParseFlags([]string{"--words", "list.txt", "--push-to-anki", "--tags", "a,b"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	if flags.WordFile != "list.txt" || !flags.PushToAnki {
		t.Errorf("flags not parsed: %+v", flags)
	}
	if !reflect.DeepEqual(flags.Tags, []string{"a", "b"}) {
		t.Errorf("Tags = %v, want [a b]", flags.Tags)
	}
}

func TestInitConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "with config file",
			content: `anki:
  deck: Deutsch
llm:
  max_attempts: 5`,
		},
		{
			name: "without config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper for each test
			resetViper(t)

			cfgFile := ""
			if tt.content != "" {
				cfgFile = writeConfig(t, tt.content)
			}

			InitConfig(cfgFile)

			// Test environment variable prefix
			t.Setenv("WORTSCHATZ_TEST_VAR", "test-value")
			if viper.GetString("test_var") != "test-value" {
				t.Error("Environment variable not properly loaded")
			}

			t.Setenv("WORTSCHATZ_ANKI_URL", "http://anki:8765")
			if viper.GetString("anki.url") != "http://anki:8765" {
				t.Error("nested key not read from environment")
			}

			if cfgFile != "" && viper.GetString("anki.deck") != "Deutsch" {
				t.Errorf("anki.deck = %q, want Deutsch", viper.GetString("anki.deck"))
			}
		})
	}
}

func TestApplyConfig(t *testing.T) {
	resetViper(t)

	cfgFile := writeConfig(t, `anki:
  deck: Deutsch
  push: true
  tags: [vokabeln, a1]
llm:
  max_attempts: 5
  timeout: 30s
audio:
  enabled: true
  slots: headword`)
	InitConfig(cfgFile)

	flags := NewFlags()
	ApplyConfig(flags)

	if flags.Deck != "Deutsch" || !flags.PushToAnki {
		t.Errorf("anki settings not applied: deck=%q push=%v", flags.Deck, flags.PushToAnki)
	}
	if !reflect.DeepEqual(flags.Tags, []string{"vokabeln", "a1"}) {
		t.Errorf("Tags = %v", flags.Tags)
	}
	if flags.MaxAttempts != 5 || flags.LLMTimeout.String() != "30s" {
		t.Errorf("llm settings not applied: attempts=%d timeout=%s", flags.MaxAttempts, flags.LLMTimeout)
	}
	if !flags.Audio || flags.AudioSlots != "headword" {
		t.Errorf("audio settings not applied: %v %q", flags.Audio, flags.AudioSlots)
	}

	// Keys absent everywhere keep their defaults
	if flags.Parser != "line" || flags.NoteType != "German" {
		t.Errorf("defaults overwritten: parser=%q note type=%q", flags.Parser, flags.NoteType)
	}
	if flags.TemplateSet {
		t.Error("TemplateSet should be false when no template was configured")
	}
}

func TestApplyConfigPrecedence(t *testing.T) {
	resetViper(t)

	flags := NewFlags()
	cmd := CreateRootCommand(flags)
	InitConfig(writeConfig(t, "anki:\n  deck: FromConfig\n"))

	ApplyConfig(flags)
	if flags.Deck != "FromConfig" {
		t.Errorf("config: Deck = %q", flags.Deck)
	}

	t.Setenv("WORTSCHATZ_ANKI_DECK", "FromEnv")
	ApplyConfig(flags)
	if flags.Deck != "FromEnv" {
		t.Errorf("env over config: Deck = %q", flags.Deck)
	}

	if err := cmd.Flags().Set("deck", "FromFlag"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("template", "mine.template"); err != nil {
		t.Fatal(err)
	}
	ApplyConfig(flags)
	if flags.Deck != "FromFlag" {
		t.Errorf("flag over env: Deck = %q", flags.Deck)
	}
	if flags.Template != "mine.template" || !flags.TemplateSet {
		t.Errorf("explicit template not recorded: %q %v", flags.Template, flags.TemplateSet)
	}
}

func TestGetOpenAIKey(t *testing.T) {
	tests := []struct {
		name      string
		envKey    string
		configKey string
		expected  string
	}{
		{
			name:      "from environment",
			envKey:    "env-test-key",
			configKey: "config-test-key",
			expected:  "env-test-key",
		},
		{
			name:      "from config when no env",
			envKey:    "",
			configKey: "config-test-key",
			expected:  "config-test-key",
		},
		{
			name:      "empty when neither set",
			envKey:    "",
			configKey: "",
			expected:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)

			// Set up environment
			t.Setenv("OPENAI_API_KEY", tt.envKey)

			// Set up config
			if tt.configKey != "" {
				viper.Set("audio.openai_key", tt.configKey)
			}

			got := GetOpenAIKey()
			if got != tt.expected {
				t.Errorf("GetOpenAIKey() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetGeminiAndLLMKey(t *testing.T) {
	resetViper(t)

	t.Setenv("GEMINI_API_KEY", "")
	viper.Set("llm.gemini_key", "gemini-config")
	if got := GetGeminiKey(); got != "gemini-config" {
		t.Errorf("GetGeminiKey() = %q", got)
	}
	t.Setenv("GEMINI_API_KEY", "gemini-env")
	if got := GetGeminiKey(); got != "gemini-env" {
		t.Errorf("GetGeminiKey() = %q", got)
	}

	if got := GetLLMKey(); got != "lm-studio" {
		t.Errorf("GetLLMKey() default = %q", got)
	}
	viper.Set("llm.api_key", "secret")
	if got := GetLLMKey(); got != "secret" {
		t.Errorf("GetLLMKey() = %q", got)
	}
}

func TestBindFlagsToViper(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	// Set some flag values
	cmd.Flags().Set("output", "/test/output")
	cmd.Flags().Set("audio-slots", "headword")
	cmd.Flags().Set("openai-model", "tts-1-hd")

	bindFlagsToViper(cmd)

	// Test that values are bound
	if viper.GetString("output.directory") != "/test/output" {
		t.Errorf("Expected output.directory to be /test/output, got %s", viper.GetString("output.directory"))
	}

	if viper.GetString("audio.slots") != "headword" {
		t.Errorf("Expected audio.slots to be headword, got %s", viper.GetString("audio.slots"))
	}

	if viper.GetString("audio.openai_model") != "tts-1-hd" {
		t.Errorf("Expected audio.openai_model to be tts-1-hd, got %s", viper.GetString("audio.openai_model"))
	}

	// Unchanged flags fall back to their defaults
	if viper.GetString("anki.deck") != "test" {
		t.Errorf("Expected anki.deck default test, got %s", viper.GetString("anki.deck"))
	}
}
