package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// FakeAudioProvider writes a small fake MP3 for every request
type FakeAudioProvider struct {
	mu     sync.Mutex
	Calls  []string
	Errors map[string]error
}

// GenerateAudio records the text and writes AudioData to outputFile
func (p *FakeAudioProvider) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	p.mu.Lock()
	p.Calls = append(p.Calls, text)
	err := p.Errors[text]
	p.mu.Unlock()

	if err != nil {
		return err
	}
	if err := os.WriteFile(outputFile, AudioData(), 0644); err != nil {
		return fmt.Errorf("failed to write fake audio: %w", err)
	}
	return nil
}

// Name returns the provider name
func (p *FakeAudioProvider) Name() string {
	return "fake"
}

// IsAvailable always succeeds
func (p *FakeAudioProvider) IsAvailable() error {
	return nil
}
