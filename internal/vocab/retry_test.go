package vocab_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.uber.org/mock/gomock"

	"codeberg.org/snonux/wortschatz/internal/generation/mocks"
	"codeberg.org/snonux/wortschatz/internal/vocab"
)

const fullOutput = `German: der Baum
English: tree
Example 1 (DE): Der Baum ist hoch.
Example 1 (EN): The tree is tall.
Example 2 (DE): Im Garten steht ein Baum.
Example 2 (EN): There is a tree in the garden.`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestController_FirstAttemptComplete(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)
	gen.EXPECT().Generate(gomock.Any(), "Baum", "tmpl {}").Return(fullOutput, nil).Times(1)

	c := vocab.NewController(gen, quietLogger())
	rec, err := c.Obtain(context.Background(), "Baum", "tmpl {}")
	if err != nil {
		t.Fatalf("Obtain() error = %v", err)
	}
	if rec.German != "der Baum" {
		t.Errorf("German = %q, want %q", rec.German, "der Baum")
	}
}

func TestController_RetriesUntilComplete(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)
	gomock.InOrder(
		gen.EXPECT().Generate(gomock.Any(), "Baum", gomock.Any()).Return("German: der Baum", nil),
		gen.EXPECT().Generate(gomock.Any(), "Baum", gomock.Any()).Return("", errors.New("connection refused")),
		gen.EXPECT().Generate(gomock.Any(), "Baum", gomock.Any()).Return(fullOutput, nil),
	)

	c := vocab.NewController(gen, quietLogger())
	rec, err := c.Obtain(context.Background(), "Baum", "{}")
	if err != nil {
		t.Fatalf("Obtain() error = %v", err)
	}
	if !rec.Complete() {
		t.Errorf("Obtain() returned incomplete record %+v", rec)
	}
}

func TestController_ExhaustsAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)
	gen.EXPECT().Generate(gomock.Any(), "Haus", gomock.Any()).Return("English: house", nil).Times(3)

	c := vocab.NewController(gen, quietLogger())
	c.Policy = vocab.RetryPolicy{MaxAttempts: 3}

	rec, err := c.Obtain(context.Background(), "Haus", "{}")
	if !errors.Is(err, vocab.ErrAttemptsExhausted) {
		t.Fatalf("Obtain() error = %v, want ErrAttemptsExhausted", err)
	}
	if rec != (vocab.Record{}) {
		t.Errorf("Obtain() returned %+v alongside an error, want zero record", rec)
	}
}

func TestController_NeverReturnsIncompleteRecord(t *testing.T) {
	outputs := []string{
		"",
		"German: Haus",
		"German: Haus\nEnglish: house\nExample 1 (DE): x\nExample 1 (EN): y\nExample 2 (DE): z",
		"garbage",
	}

	for _, out := range outputs {
		out := out
		gen := vocab.GeneratorFunc(func(ctx context.Context, word, tmpl string) (string, error) {
			return out, nil
		})
		c := vocab.NewController(gen, quietLogger())
		c.Policy = vocab.RetryPolicy{MaxAttempts: 2}

		rec, err := c.Obtain(context.Background(), "Haus", "{}")
		if err == nil && !rec.Complete() {
			t.Errorf("output %q: got incomplete record without error", out)
		}
		if err == nil {
			t.Errorf("output %q: expected exhaustion error", out)
		}
	}
}

func TestController_StopsOnCancelledContext(t *testing.T) {
	calls := 0
	gen := vocab.GeneratorFunc(func(ctx context.Context, word, tmpl string) (string, error) {
		calls++
		return "", ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := vocab.NewController(gen, quietLogger())
	c.Policy = vocab.RetryPolicy{MaxAttempts: 0}

	_, err := c.Obtain(ctx, "Haus", "{}")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Obtain() error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("generator called %d times after cancellation", calls)
	}
}

func TestController_UsesConfiguredParser(t *testing.T) {
	gen := vocab.GeneratorFunc(func(ctx context.Context, word, tmpl string) (string, error) {
		return `{"German": "Haus", "English": "house", "Example 1 (DE)": "a", "Example 1 (EN)": "b", "Example 2 (DE)": "c", "Example 2 (EN)": "d"}`, nil
	})

	c := vocab.NewController(gen, quietLogger())
	c.Parser = vocab.JSONParser{}
	c.Policy = vocab.RetryPolicy{MaxAttempts: 1}

	rec, err := c.Obtain(context.Background(), "Haus", "{}")
	if err != nil {
		t.Fatalf("Obtain() error = %v", err)
	}
	if rec.English != "house" {
		t.Errorf("English = %q, want %q", rec.English, "house")
	}
}
