package anki

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/wortschatz/internal/media"
	"codeberg.org/snonux/wortschatz/internal/testutil"
	"codeberg.org/snonux/wortschatz/internal/vocab"
)

func hausRecord() vocab.Record {
	return vocab.Record{
		German:     "Haus",
		English:    "house",
		Example1DE: "Das Haus ist groß.",
		Example1EN: "The house is big.",
		Example2DE: "Wir kaufen ein Haus.",
		Example2EN: "We are buying a house.",
	}
}

func hausAssets(t *testing.T) []media.Asset {
	t.Helper()
	dir := t.TempDir()

	var assets []media.Asset
	for _, slot := range media.AllSlots {
		filename := media.Filename("Haus", slot, "mp3")
		path := filepath.Join(dir, filename)
		testutil.CreateTestFile(t, path, testutil.AudioData())
		assets = append(assets, media.Asset{
			Slot:      slot,
			LocalPath: path,
			Filename:  filename,
			Field:     slot.Field(),
		})
	}
	return assets
}

func hausRequest(t *testing.T, mediaFolder string) NoteRequest {
	return NoteRequest{
		Deck:        "test",
		NoteType:    DefaultNoteType(""),
		Record:      hausRecord(),
		Assets:      hausAssets(t),
		Tags:        []string{"auto"},
		MediaFolder: mediaFolder,
	}
}

func TestDuplicateQuery(t *testing.T) {
	tests := []struct {
		deck string
		term string
		want string
	}{
		{"test", "Haus", `deck:"test" "German:Haus"`},
		{"Deutsch::A1", "der Baum", `deck:"Deutsch::A1" "German:der Baum"`},
		{"test", `sagen "hallo"`, `deck:"test" "German:sagen \"hallo\""`},
		{"my_deck", "a*b", `deck:"my\_deck" "German:a\*b"`},
		{"test", `back\slash`, `deck:"test" "German:back\\slash"`},
		{"test", "der Mann (pl. Männer)", `deck:"test" "German:der Mann (pl. Männer)"`},
		{"test", "a_b", `deck:"test" "German:a\_b"`},
		{"test", `sag "ja" (_*)`, `deck:"test" "German:sag \"ja\" (\_\*)"`},
	}

	for _, tt := range tests {
		if got := DuplicateQuery(tt.deck, tt.term); got != tt.want {
			t.Errorf("DuplicateQuery(%q, %q) = %s, want %s", tt.deck, tt.term, got, tt.want)
		}
	}
}

func TestUpsert_Created(t *testing.T) {
	fake, client := newFakeStore(t)
	mediaFolder := filepath.Join(t.TempDir(), "collection.media")
	req := hausRequest(t, mediaFolder)

	result := NewUpserter(client, quietLogger()).Upsert(context.Background(), req)

	if result.Status != Created {
		t.Fatalf("Status = %s, reason %q", result.Status, result.Reason)
	}
	if result.NoteID == 0 {
		t.Error("NoteID not set")
	}
	if fake.Count("addNote") != 1 {
		t.Errorf("addNote called %d times, want 1", fake.Count("addNote"))
	}
	if len(fake.Queries) != 1 || fake.Queries[0] != `deck:"test" "German:Haus"` {
		t.Errorf("duplicate queries = %v", fake.Queries)
	}

	note := fake.Notes[len(fake.Notes)-1]
	if note.Fields["English"] != "house" || note.Fields["Example 2 (EN)"] != "We are buying a house." {
		t.Errorf("note fields = %v", note.Fields)
	}
	for _, field := range []string{FieldAudioGerman, FieldAudioExample1, FieldAudioExample2} {
		if v, ok := note.Fields[field]; !ok || v != "" {
			t.Errorf("audio field %q = %q, %v; want present and empty", field, v, ok)
		}
	}
	if note.Options.DuplicateScope != "deck" || note.Options.AllowDuplicate {
		t.Errorf("options = %+v", note.Options)
	}
	if len(note.Tags) != 1 || note.Tags[0] != "auto" {
		t.Errorf("tags = %v", note.Tags)
	}

	if len(note.Audio) != 3 {
		t.Fatalf("audio attachments = %d, want 3", len(note.Audio))
	}
	for _, a := range note.Audio {
		testutil.AssertFileExists(t, filepath.Join(mediaFolder, a.Filename))
		if len(a.Fields) != 1 {
			t.Errorf("attachment %s fields = %v", a.Filename, a.Fields)
		}
	}
}

func TestUpsert_SkipsExistingNote(t *testing.T) {
	fake, client := newFakeStore(t)
	fake.AddExisting("test", "German", map[string]string{"German": "Haus"})
	mediaFolder := filepath.Join(t.TempDir(), "collection.media")

	result := NewUpserter(client, quietLogger()).Upsert(context.Background(), hausRequest(t, mediaFolder))

	if result.Status != SkippedDuplicate {
		t.Fatalf("Status = %s, want skipped-duplicate", result.Status)
	}
	if fake.Count("addNote") != 0 {
		t.Errorf("addNote called %d times, want 0", fake.Count("addNote"))
	}
	testutil.AssertFileNotExists(t, mediaFolder)
}

func TestUpsert_DuplicateSearchSyntax(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		term     string
		want     Status
	}{
		{"parentheses", "der Mann (pl. Männer)", "der Mann (pl. Männer)", SkippedDuplicate},
		{"quotes", `sag "ja"`, `sag "ja"`, SkippedDuplicate},
		{"underscore", "a_b", "a_b", SkippedDuplicate},
		{"underscore is no wildcard", "axb", "a_b", Created},
		{"star is no wildcard", "Hausboot", "Haus*", Created},
		{"whole field only", "das Haus", "Haus", Created},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, client := newFakeStore(t)
			fake.AddExisting("test", "German", map[string]string{"German": tt.existing})

			req := hausRequest(t, "")
			req.Record.German = tt.term
			result := NewUpserter(client, quietLogger()).Upsert(context.Background(), req)

			if result.Status != tt.want {
				t.Fatalf("Status = %s (%s), want %s", result.Status, result.Reason, tt.want)
			}
			wantAdds := 0
			if tt.want == Created {
				wantAdds = 1
			}
			if fake.Count("addNote") != wantAdds {
				t.Errorf("addNote called %d times, want %d", fake.Count("addNote"), wantAdds)
			}
		})
	}
}

func TestUpsert_AllowDuplicates(t *testing.T) {
	fake, client := newFakeStore(t)
	fake.AddExisting("test", "German", map[string]string{"German": "Haus"})

	req := hausRequest(t, "")
	req.AllowDuplicates = true
	result := NewUpserter(client, quietLogger()).Upsert(context.Background(), req)

	if result.Status != Created {
		t.Fatalf("Status = %s, want created", result.Status)
	}
	if fake.Count("findNotes") != 0 {
		t.Error("duplicate check should be skipped when duplicates are allowed")
	}
	if !result.Note.Options.AllowDuplicate {
		t.Error("allowDuplicate not passed through")
	}
}

func TestUpsert_NoMediaFolder(t *testing.T) {
	fake, client := newFakeStore(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	result := NewUpserter(client, logger).Upsert(context.Background(), hausRequest(t, ""))

	if result.Status != Created {
		t.Fatalf("Status = %s, want created", result.Status)
	}
	note := fake.Notes[len(fake.Notes)-1]
	if len(note.Audio) != 0 {
		t.Errorf("expected no audio without a media folder, got %d", len(note.Audio))
	}
	if note.Fields[FieldAudioGerman] != "" {
		t.Errorf("audio field = %q, want empty", note.Fields[FieldAudioGerman])
	}
	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "no Anki media folder configured") {
		t.Errorf("missing media folder warning, logs:\n%s", logs.String())
	}
}

func TestUpsert_MissingLocalFileSkipped(t *testing.T) {
	_, client := newFakeStore(t)
	mediaFolder := t.TempDir()
	req := hausRequest(t, mediaFolder)
	if err := os.Remove(req.Assets[1].LocalPath); err != nil {
		t.Fatal(err)
	}

	result := NewUpserter(client, quietLogger()).Upsert(context.Background(), req)

	if result.Status != Created {
		t.Fatalf("Status = %s, want created", result.Status)
	}
	if len(result.Note.Audio) != 2 {
		t.Errorf("audio attachments = %d, want 2", len(result.Note.Audio))
	}
	testutil.AssertFileNotExists(t, filepath.Join(mediaFolder, req.Assets[1].Filename))
}

func TestUpsert_ExistingMediaNotOverwritten(t *testing.T) {
	_, client := newFakeStore(t)
	mediaFolder := t.TempDir()
	req := hausRequest(t, mediaFolder)

	existing := filepath.Join(mediaFolder, req.Assets[0].Filename)
	testutil.CreateTestFile(t, existing, []byte("original"))

	NewUpserter(client, quietLogger()).Upsert(context.Background(), req)

	data, err := os.ReadFile(existing)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "original" {
		t.Error("existing media file was overwritten")
	}
}

func TestUpsert_DuplicateCheckDegraded(t *testing.T) {
	fake, client := newFakeStore(t)
	fake.Errors["findNotes"] = "invalid search"

	result := NewUpserter(client, quietLogger()).Upsert(context.Background(), hausRequest(t, ""))

	if result.Status != Created {
		t.Fatalf("Status = %s, want created", result.Status)
	}
}

func TestUpsert_StoreRefusesDuplicate(t *testing.T) {
	fake, client := newFakeStore(t)
	fake.AddExisting("test", "German", map[string]string{"German": "Haus"})
	fake.Errors["findNotes"] = "invalid search"

	result := NewUpserter(client, quietLogger()).Upsert(context.Background(), hausRequest(t, ""))

	if result.Status != SkippedDuplicate {
		t.Fatalf("Status = %s, want skipped-duplicate", result.Status)
	}
}

func TestUpsert_AddNoteFails(t *testing.T) {
	fake, client := newFakeStore(t)
	fake.Errors["addNote"] = "model was not found: German"

	result := NewUpserter(client, quietLogger()).Upsert(context.Background(), hausRequest(t, ""))

	if result.Status != Failed {
		t.Fatalf("Status = %s, want failed", result.Status)
	}
	if result.Reason == "" {
		t.Error("Reason not set")
	}
}
