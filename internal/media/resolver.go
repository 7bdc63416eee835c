package media

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/wortschatz/internal/audio"
	"codeberg.org/snonux/wortschatz/internal/vocab"
)

// Asset is one synthesized audio file ready to be attached to a note
type Asset struct {
	Slot      Slot
	Text      string
	LocalPath string
	Filename  string
	Field     string
}

// Resolver synthesizes the audio files for a record
type Resolver struct {
	Provider audio.Provider
	Folder   string
	Format   string
	Reuse    bool // keep an existing non-empty file instead of synthesizing again
	Logger   *slog.Logger
}

// NewResolver creates a resolver writing into folder
func NewResolver(provider audio.Provider, folder string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		Provider: provider,
		Folder:   folder,
		Format:   "mp3",
		Reuse:    true,
		Logger:   logger,
	}
}

// Resolve returns an asset for every slot that could be synthesized. Slots
// that fail are logged and left out of the map; Resolve itself never fails
// the card.
func (r *Resolver) Resolve(ctx context.Context, rec vocab.Record, slots []Slot) map[Slot]Asset {
	assets := make(map[Slot]Asset, len(slots))
	if len(slots) == 0 || r.Provider == nil {
		return assets
	}

	if err := os.MkdirAll(r.Folder, 0755); err != nil {
		r.Logger.Error("failed to create audio folder", "folder", r.Folder, "error", err)
		return assets
	}

	for _, slot := range slots {
		text := slotText(rec, slot)
		if text == "" {
			continue
		}

		filename := Filename(rec.German, slot, r.Format)
		path := filepath.Join(r.Folder, filename)

		if !r.Reuse || !nonEmptyFile(path) {
			if err := r.Provider.GenerateAudio(ctx, text, path); err != nil {
				r.Logger.Error("audio synthesis failed",
					"word", rec.German, "slot", string(slot), "provider", r.Provider.Name(), "error", err)
				continue
			}
		} else {
			r.Logger.Debug("reusing audio file", "path", path)
		}

		assets[slot] = Asset{
			Slot:      slot,
			Text:      text,
			LocalPath: path,
			Filename:  filename,
			Field:     slot.Field(),
		}
	}

	return assets
}

// Ordered returns the assets in card slot order
func Ordered(assets map[Slot]Asset) []Asset {
	out := make([]Asset, 0, len(assets))
	for _, slot := range AllSlots {
		if a, ok := assets[slot]; ok {
			out = append(out, a)
		}
	}
	return out
}

func slotText(rec vocab.Record, slot Slot) string {
	switch slot {
	case SlotHeadword:
		return SpokenHeadword(rec.German)
	case SlotExample1:
		return strings.TrimSpace(rec.Example1DE)
	case SlotExample2:
		return strings.TrimSpace(rec.Example2DE)
	default:
		return ""
	}
}

func nonEmptyFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}
