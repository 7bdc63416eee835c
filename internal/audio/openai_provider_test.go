package audio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func TestNewOpenAIProvider(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "missing API key",
			config:  &Config{OpenAIKey: ""},
			wantErr: true,
			errMsg:  "OpenAI API key is required",
		},
		{
			name:   "valid config with cache",
			config: &Config{OpenAIKey: "test-key", EnableCache: true, CacheDir: filepath.Join(t.TempDir(), "cache")},
		},
		{
			name:   "valid config without cache",
			config: &Config{OpenAIKey: "test-key"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewOpenAIProvider(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewOpenAIProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if err.Error() != tt.errMsg {
					t.Errorf("NewOpenAIProvider() error = %v, want %v", err.Error(), tt.errMsg)
				}
				return
			}
			if provider.Name() != "openai" {
				t.Errorf("Name() = %v, want %v", provider.Name(), "openai")
			}
			if tt.config.EnableCache {
				if _, err := os.Stat(tt.config.CacheDir); err != nil {
					t.Errorf("cache directory not created: %v", err)
				}
			}
		})
	}
}

func TestOpenAIProviderIsAvailable(t *testing.T) {
	provider := &OpenAIProvider{config: &Config{OpenAIKey: "test-key"}}
	if err := provider.IsAvailable(); err != nil {
		t.Errorf("IsAvailable() error = %v", err)
	}

	provider = &OpenAIProvider{config: &Config{}}
	if err := provider.IsAvailable(); err == nil {
		t.Error("IsAvailable() without key expected error")
	}
}

func TestPreprocessText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple word", "Haus", "Haus"},
		{"word with punctuation", "Haus!", "Haus"},
		{"quoted word", `"Haus?"`, "Haus"},
		{"headword with article", "  das   Haus  ", "das Haus"},
		{"sentence keeps punctuation", "Das Haus ist groß.", "Das Haus ist groß."},
		{"question keeps punctuation", "Wo ist das  Haus?", "Wo ist das Haus?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preprocessText(tt.input); got != tt.expected {
				t.Errorf("preprocessText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGetCacheFilePath(t *testing.T) {
	provider := &OpenAIProvider{
		config: &Config{
			OpenAIModel: "tts-1",
			OpenAIVoice: "alloy",
			OpenAISpeed: 1.0,
		},
		cacheDir: "test_cache",
	}

	path1 := provider.getCacheFilePath("Haus")
	if !strings.HasPrefix(path1, "test_cache"+string(filepath.Separator)) || !strings.HasSuffix(path1, ".mp3") {
		t.Errorf("unexpected cache path %s", path1)
	}
	if path1 != provider.getCacheFilePath("Haus") {
		t.Error("Same input should produce same cache path")
	}
	if path1 == provider.getCacheFilePath("Baum") {
		t.Error("Different input should produce different cache path")
	}

	provider.config.OpenAIVoice = "nova"
	if path1 == provider.getCacheFilePath("Haus") {
		t.Error("Different voice should produce different cache path")
	}

	provider.config.OpenAIModel = "gpt-4o-mini-tts"
	provider.config.OpenAIInstruction = "Test instruction"
	path5 := provider.getCacheFilePath("Haus")
	provider.config.OpenAIInstruction = "Different instruction"
	if path5 == provider.getCacheFilePath("Haus") {
		t.Error("Different instruction should produce different cache path for gpt-4o-mini-tts")
	}
}

func TestCopyFile(t *testing.T) {
	tempDir := t.TempDir()

	srcPath := filepath.Join(tempDir, "source.txt")
	if err := os.WriteFile(srcPath, []byte("test content"), 0644); err != nil {
		t.Fatalf("Failed to create source file: %v", err)
	}

	dstPath := filepath.Join(tempDir, "subdir", "dest.txt")
	if err := copyFile(srcPath, dstPath); err != nil {
		t.Fatalf("copyFile() error = %v", err)
	}

	data, err := os.ReadFile(dstPath)
	if err != nil || string(data) != "test content" {
		t.Errorf("copied content = %q, %v", data, err)
	}

	if err := copyFile(filepath.Join(tempDir, "nonexistent.txt"), dstPath); err == nil {
		t.Error("copyFile() expected error for non-existent source")
	}
}

func TestClearCacheAndStats(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "cache")
	provider := &OpenAIProvider{enableCache: true, cacheDir: cacheDir}

	os.MkdirAll(filepath.Join(cacheDir, "ab"), 0755)
	os.WriteFile(filepath.Join(cacheDir, "ab", "test1.mp3"), []byte("data1"), 0644)
	os.WriteFile(filepath.Join(cacheDir, "ab", "test2.mp3"), []byte("data22"), 0644)

	count, size, err := provider.GetCacheStats()
	if err != nil || count != 2 || size != 11 {
		t.Errorf("GetCacheStats() = %d, %d, %v; want 2, 11, nil", count, size, err)
	}

	if err := provider.ClearCache(); err != nil {
		t.Errorf("ClearCache() error = %v", err)
	}
	if _, err := os.Stat(cacheDir); !os.IsNotExist(err) {
		t.Error("Cache directory should be removed")
	}
}

func speechServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if body["model"] != "gpt-4o-mini-tts" || body["voice"] != "alloy" {
			t.Errorf("unexpected request %v", body)
		}
		if instr, _ := body["instructions"].(string); !strings.Contains(instr, "German") {
			t.Errorf("instructions = %q, want German instruction", instr)
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte{0xFF, 0xFB, 0x90, 0x00})
	}))
}

func TestOpenAIProvider_GenerateAudio(t *testing.T) {
	var hits int32
	server := speechServer(t, &hits)
	defer server.Close()

	config := DefaultProviderConfig()
	config.OpenAIKey = "test-key"
	config.OpenAIBaseURL = server.URL + "/v1"
	config.EnableCache = true
	config.CacheDir = filepath.Join(t.TempDir(), "cache")
	config.Logger = quietLogger()

	provider, err := NewOpenAIProvider(config)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	first := filepath.Join(dir, "haus.mp3")
	if err := provider.GenerateAudio(context.Background(), "das Haus", first); err != nil {
		t.Fatalf("GenerateAudio() error = %v", err)
	}
	data, _ := os.ReadFile(first)
	if len(data) != 4 {
		t.Errorf("audio file has %d bytes, want 4", len(data))
	}

	// The second request for the same text comes from the cache
	second := filepath.Join(dir, "haus_again.mp3")
	if err := provider.GenerateAudio(context.Background(), "das Haus", second); err != nil {
		t.Fatalf("GenerateAudio() cached error = %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("speech endpoint hit %d times, want 1", got)
	}
}

func TestOpenAIProvider_GenerateAudioErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	config := DefaultProviderConfig()
	config.OpenAIKey = "bad-key"
	config.OpenAIBaseURL = server.URL + "/v1"
	config.Logger = quietLogger()
	provider, err := NewOpenAIProvider(config)
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "x.mp3")
	if err := provider.GenerateAudio(context.Background(), "Haus", out); err == nil {
		t.Error("expected API error")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no output file should be left behind on error")
	}

	if err := provider.GenerateAudio(context.Background(), "", out); err == nil {
		t.Error("expected validation error for empty text")
	}
}
