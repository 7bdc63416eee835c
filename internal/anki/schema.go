package anki

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"codeberg.org/snonux/wortschatz/internal/ankiconnect"
)

// Store is the subset of AnkiConnect used to sync schema and notes.
// *ankiconnect.Client satisfies it.
type Store interface {
	ModelNames(ctx context.Context) ([]string, error)
	ModelFieldNames(ctx context.Context, model string) ([]string, error)
	CreateModel(ctx context.Context, params ankiconnect.CreateModelParams) error
	DeckNames(ctx context.Context) ([]string, error)
	CreateDeck(ctx context.Context, deck string) error
	FindNotes(ctx context.Context, query string) ([]int64, error)
	AddNote(ctx context.Context, note ankiconnect.Note) (int64, error)
}

// SchemaMismatchError means a note type with the expected name exists but
// has different fields. Writing notes against it would lose data.
type SchemaMismatchError struct {
	Name     string
	Expected []string
	Actual   []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("note type %q has fields [%s], expected [%s]; rename or delete it in Anki, or choose another --note-type",
		e.Name, strings.Join(e.Actual, ", "), strings.Join(e.Expected, ", "))
}

// Synchronizer makes sure the deck and note type exist before notes are added
type Synchronizer struct {
	Store  Store
	Logger *slog.Logger
}

// NewSynchronizer creates a synchronizer for store
func NewSynchronizer(store Store, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{Store: store, Logger: logger}
}

// EnsureSchema creates the note type if it is missing. An existing note type
// is accepted only if its field list matches exactly and in order; it is
// never modified.
func (s *Synchronizer) EnsureSchema(ctx context.Context, nt NoteType) error {
	names, err := s.Store.ModelNames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list note types: %w", err)
	}

	if !slices.Contains(names, nt.Name) {
		if err := s.Store.CreateModel(ctx, nt.CreateParams()); err != nil {
			return fmt.Errorf("failed to create note type %q: %w", nt.Name, err)
		}
		s.Logger.Info("created note type", "name", nt.Name, "fields", len(nt.Fields))
		return nil
	}

	fields, err := s.Store.ModelFieldNames(ctx, nt.Name)
	if err != nil {
		return fmt.Errorf("failed to read fields of note type %q: %w", nt.Name, err)
	}

	if !slices.Equal(fields, nt.Fields) {
		return &SchemaMismatchError{Name: nt.Name, Expected: nt.Fields, Actual: fields}
	}

	s.Logger.Debug("note type up to date", "name", nt.Name)
	return nil
}

// EnsureDeck creates deck if it does not exist yet
func (s *Synchronizer) EnsureDeck(ctx context.Context, deck string) error {
	names, err := s.Store.DeckNames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list decks: %w", err)
	}

	if slices.Contains(names, deck) {
		return nil
	}

	if err := s.Store.CreateDeck(ctx, deck); err != nil {
		return fmt.Errorf("failed to create deck %q: %w", deck, err)
	}
	s.Logger.Info("created deck", "deck", deck)
	return nil
}
