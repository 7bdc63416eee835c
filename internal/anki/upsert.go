package anki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/wortschatz/internal/ankiconnect"
	"codeberg.org/snonux/wortschatz/internal/media"
	"codeberg.org/snonux/wortschatz/internal/vocab"
)

// Status is the outcome of one upsert
type Status int

const (
	Created Status = iota
	SkippedDuplicate
	Failed
)

func (s Status) String() string {
	switch s {
	case Created:
		return "created"
	case SkippedDuplicate:
		return "skipped-duplicate"
	default:
		return "failed"
	}
}

// DuplicateScope limits duplicate detection to the target deck
const DuplicateScope = "deck"

// NoteRequest is everything needed to add one record as a note
type NoteRequest struct {
	Deck            string
	NoteType        NoteType
	Record          vocab.Record
	Assets          []media.Asset
	Tags            []string
	AllowDuplicates bool
	MediaFolder     string // Anki's collection.media folder; empty disables media
}

// UpsertResult reports what happened to a record
type UpsertResult struct {
	Status Status
	NoteID int64  // set when Created
	Reason string // set when Failed
	Note   ankiconnect.Note
}

// Upserter adds records as notes unless an equivalent note already exists.
// The duplicate check and the insert are separate calls; a note added by
// someone else in between is caught by AnkiConnect's own duplicate check.
type Upserter struct {
	Store  Store
	Logger *slog.Logger
}

// NewUpserter creates an upserter for store
func NewUpserter(store Store, logger *slog.Logger) *Upserter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Upserter{Store: store, Logger: logger}
}

// DuplicateQuery returns the Anki search for notes with the same headword in deck
func DuplicateQuery(deck, term string) string {
	return fmt.Sprintf(`deck:"%s" "%s:%s"`, escapeSearch(deck), vocab.FieldGerman, escapeSearch(term))
}

var searchEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`*`, `\*`,
	`_`, `\_`,
)

func escapeSearch(s string) string {
	return searchEscaper.Replace(s)
}

// Upsert adds req.Record as a note. It never returns an error; failures are
// reported through the result status.
func (u *Upserter) Upsert(ctx context.Context, req NoteRequest) UpsertResult {
	term := req.Record.German

	if !req.AllowDuplicates {
		ids, err := u.Store.FindNotes(ctx, DuplicateQuery(req.Deck, term))
		switch {
		case err != nil:
			u.Logger.Warn("duplicate check degraded, adding anyway", "word", term, "error", err)
		case len(ids) > 0:
			u.Logger.Info("note already exists, skipping", "word", term, "deck", req.Deck, "notes", ids)
			return UpsertResult{Status: SkippedDuplicate}
		}
	}

	note := ankiconnect.Note{
		DeckName:  req.Deck,
		ModelName: req.NoteType.Name,
		Fields:    noteFields(req.NoteType, req.Record),
		Options: ankiconnect.NoteOptions{
			AllowDuplicate: req.AllowDuplicates,
			DuplicateScope: DuplicateScope,
		},
		Tags:  req.Tags,
		Audio: u.attachAudio(term, req.Assets, req.MediaFolder),
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}

	id, err := u.Store.AddNote(ctx, note)
	if err != nil {
		var apiErr *ankiconnect.APIError
		if errors.As(err, &apiErr) && strings.Contains(strings.ToLower(apiErr.Message), "duplicate") {
			u.Logger.Info("anki refused duplicate note", "word", term, "deck", req.Deck)
			return UpsertResult{Status: SkippedDuplicate, Note: note}
		}
		u.Logger.Error("failed to add note", "word", term, "error", err)
		return UpsertResult{Status: Failed, Reason: err.Error(), Note: note}
	}

	u.Logger.Info("added note", "word", term, "deck", req.Deck, "note_id", id)
	return UpsertResult{Status: Created, NoteID: id, Note: note}
}

// noteFields fills every note type field; audio fields stay empty so that
// AnkiConnect can append the [sound:] tags of the attached files.
func noteFields(nt NoteType, rec vocab.Record) map[string]string {
	values := rec.Map()
	fields := make(map[string]string, len(nt.Fields))
	for _, name := range nt.Fields {
		fields[name] = values[name]
	}
	return fields
}

func (u *Upserter) attachAudio(term string, assets []media.Asset, mediaFolder string) []ankiconnect.AudioAttachment {
	if len(assets) == 0 {
		return nil
	}
	if mediaFolder == "" {
		u.Logger.Warn("no Anki media folder configured, adding note without audio", "word", term)
		return nil
	}
	if err := os.MkdirAll(mediaFolder, 0755); err != nil {
		u.Logger.Warn("failed to create media folder, adding note without audio", "folder", mediaFolder, "error", err)
		return nil
	}

	var attachments []ankiconnect.AudioAttachment
	for _, asset := range assets {
		if !fileExists(asset.LocalPath) {
			u.Logger.Warn("audio file missing, skipping", "word", term, "path", asset.LocalPath)
			continue
		}

		dest := filepath.Join(mediaFolder, asset.Filename)
		if !fileExists(dest) {
			if err := copyFile(asset.LocalPath, dest); err != nil {
				u.Logger.Warn("failed to copy audio into media folder", "word", term, "path", asset.LocalPath, "error", err)
				continue
			}
		}

		attachments = append(attachments, ankiconnect.AudioAttachment{
			Filename: asset.Filename,
			Path:     dest,
			Fields:   []string{asset.Field},
		})
	}
	return attachments
}
