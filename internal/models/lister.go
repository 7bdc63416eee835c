package models

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Lister lists the models of an OpenAI-compatible endpoint
type Lister struct {
	baseURL string
	client  *openai.Client
}

// NewLister creates a lister for baseURL, e.g. http://localhost:1234/v1
func NewLister(baseURL, apiKey string, timeout time.Duration) *Lister {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	config.HTTPClient = &http.Client{Timeout: timeout}

	return &Lister{
		baseURL: config.BaseURL,
		client:  openai.NewClientWithConfig(config),
	}
}

// Categories groups model IDs by use
type Categories struct {
	Chat      []string
	Embedding []string
	Speech    []string
}

// Categorize sorts model IDs into chat, embedding and speech models
func Categorize(ids []string) Categories {
	var c Categories
	for _, id := range ids {
		lower := strings.ToLower(id)
		switch {
		case strings.Contains(lower, "tts") || strings.Contains(lower, "audio") || strings.Contains(lower, "whisper"):
			c.Speech = append(c.Speech, id)
		case strings.Contains(lower, "embed"):
			c.Embedding = append(c.Embedding, id)
		default:
			c.Chat = append(c.Chat, id)
		}
	}

	sort.Strings(c.Chat)
	sort.Strings(c.Embedding)
	sort.Strings(c.Speech)
	return c
}

// ListAvailableModels prints the endpoint's models to w, marking current
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer, current string) error {
	list, err := l.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models at %s: %w", l.baseURL, err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	c := Categorize(ids)

	fmt.Fprintf(w, "Models available at %s:\n", l.baseURL)
	printSection(w, "Chat models (usable with --model)", c.Chat, current)
	printSection(w, "Embedding models", c.Embedding, current)
	printSection(w, "Speech models", c.Speech, current)

	return nil
}

func printSection(w io.Writer, title string, ids []string, current string) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, id := range ids {
		marker := " "
		if id == current {
			marker = "*"
		}
		fmt.Fprintf(w, " %s %s\n", marker, id)
	}
}
