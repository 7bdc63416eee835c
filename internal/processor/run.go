package processor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"codeberg.org/snonux/wortschatz/internal"
	"codeberg.org/snonux/wortschatz/internal/anki"
	"codeberg.org/snonux/wortschatz/internal/ankiconnect"
	"codeberg.org/snonux/wortschatz/internal/archive"
	"codeberg.org/snonux/wortschatz/internal/batch"
	"codeberg.org/snonux/wortschatz/internal/media"
	"codeberg.org/snonux/wortschatz/internal/vocab"
)

// Stats summarizes a run
type Stats struct {
	Words            int
	Accepted         int // complete records, exported
	Created          int
	SkippedDuplicate int
	Failed           int
	NotPushed        int // accepted but not sent to Anki
	Dropped          int // no complete record after all attempts
	WithAudio        int

	CSVPath    string
	APKGPath   string
	ArchiveDir string
}

type versionProber interface {
	Version(ctx context.Context) (int, error)
}

// Run processes the words given as args or read from the word file. It
// fails before any generation or archiving when the word source or an
// explicit template is unusable. Otherwise the CSV export is always written.
func (p *Processor) Run(ctx context.Context, args []string) (*Stats, error) {
	flags := p.flags
	stats := &Stats{}

	words, err := batch.ResolveWords(flags.WordFile, args)
	if err != nil {
		return nil, err
	}
	stats.Words = len(words)

	template, fallback, err := batch.ReadPromptTemplate(flags.Template, flags.TemplateSet)
	if err != nil {
		return nil, err
	}
	if fallback {
		p.logger.Info("prompt template not found, using built-in template", "path", flags.Template)
	}

	gen, err := p.generator(ctx)
	if err != nil {
		return nil, err
	}

	if flags.Archive {
		dir, err := archive.ArchiveExports(flags.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("failed to archive exports: %w", err)
		}
		if dir != "" {
			stats.ArchiveDir = dir
			fmt.Fprintf(p.out, "Archived previous exports to %s\n", dir)
		}
	}

	controller := vocab.NewController(gen, p.logger)
	controller.Parser = vocab.NewParser(flags.Parser)
	controller.Policy = vocab.RetryPolicy{MaxAttempts: flags.MaxAttempts}

	var upserter *anki.Upserter
	if flags.PushToAnki {
		store := p.store()
		if p.prepareStore(ctx, store) {
			upserter = anki.NewUpserter(store, p.logger)
		}
	}

	var resolver *media.Resolver
	var slots []media.Slot
	if flags.Audio {
		slots = media.SlotsFor(flags.AudioSlots)
		if provider := p.audioProvider(); provider != nil && len(slots) > 0 {
			resolver = media.NewResolver(provider, flags.AudioFolder, p.logger)
		}
	}

	exporter := anki.NewExporter(&anki.ExporterOptions{
		OutputDir:      flags.OutputDir,
		IncludeHeaders: true,
	})
	var apkg *anki.APKGGenerator
	if flags.APKG {
		apkg = anki.NewAPKGGenerator(flags.Deck, p.noteType)
	}

	// A record that reached the audio and push phase is finished even when
	// the run is cancelled meanwhile. Per-call timeouts still apply.
	workCtx := context.WithoutCancel(ctx)

	var runErr error
	for i, word := range words {
		fmt.Fprintf(p.out, "Processing %d/%d: %s\n", i+1, len(words), word)

		rec, err := controller.Obtain(ctx, word, template)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Warn("run cancelled, writing what was collected", "word", word)
				runErr = ctx.Err()
				break
			}
			p.logger.Error("dropping word", "word", word, "error", err)
			stats.Dropped++
			continue
		}

		var assets []media.Asset
		if resolver != nil {
			assets = media.Ordered(resolver.Resolve(workCtx, rec, slots))
		}

		switch {
		case upserter != nil:
			p.push(workCtx, upserter, rec, assets, stats)
		case flags.PushToAnki:
			stats.NotPushed++
		}

		card := anki.Card{Record: rec, Assets: assets, Tags: flags.Tags}
		if exporter.AddCard(card) && apkg != nil {
			apkg.AddCard(card)
		}
	}

	if runErr == nil && ctx.Err() != nil {
		p.logger.Warn("run cancelled, writing what was collected")
		runErr = ctx.Err()
	}

	stats.Accepted, stats.WithAudio = exporter.Stats()
	if !flags.PushToAnki {
		stats.NotPushed = stats.Accepted
	}

	csvPath, err := exporter.WriteCSV(p.now())
	if err != nil {
		return stats, err
	}
	stats.CSVPath = csvPath

	if apkg != nil && stats.Accepted > 0 {
		path := filepath.Join(flags.OutputDir, internal.SanitizeFilename(flags.Deck)+".apkg")
		if err := apkg.GenerateAPKG(path); err != nil {
			p.logger.Error("failed to create Anki package", "path", path, "error", err)
		} else {
			stats.APKGPath = path
		}
	}

	p.printSummary(stats)
	return stats, runErr
}

// prepareStore checks that Anki is reachable and that deck and note type
// are usable. It returns false only when writing notes would corrupt data,
// i.e. on a note type mismatch. Transport problems are logged; the upserts
// then fail individually.
func (p *Processor) prepareStore(ctx context.Context, store anki.Store) bool {
	if prober, ok := store.(versionProber); ok {
		version, err := prober.Version(ctx)
		if err != nil {
			p.logger.Error("AnkiConnect not reachable, is Anki running with the AnkiConnect add-on?",
				"url", p.ankiConfig.URL, "error", err)
		} else {
			p.logger.Debug("AnkiConnect reachable", "version", version)
		}
	}

	synchronizer := anki.NewSynchronizer(store, p.logger)
	if err := synchronizer.EnsureDeck(ctx, p.flags.Deck); err != nil {
		p.logger.Error("failed to ensure deck", "deck", p.flags.Deck, "error", err)
	}

	err := synchronizer.EnsureSchema(ctx, p.noteType)
	var mismatch *anki.SchemaMismatchError
	switch {
	case errors.As(err, &mismatch):
		p.logger.Error("note type does not match, not adding any notes in this run", "error", err)
		return false
	case err != nil && ankiconnect.IsTransport(err):
		p.logger.Error("failed to check note type, Anki unreachable", "note_type", p.noteType.Name, "error", err)
	case err != nil:
		p.logger.Error("failed to check note type", "note_type", p.noteType.Name, "error", err)
	}
	return true
}

func (p *Processor) push(ctx context.Context, upserter *anki.Upserter, rec vocab.Record, assets []media.Asset, stats *Stats) {
	result := upserter.Upsert(ctx, anki.NoteRequest{
		Deck:            p.flags.Deck,
		NoteType:        p.noteType,
		Record:          rec,
		Assets:          assets,
		Tags:            p.flags.Tags,
		AllowDuplicates: p.flags.AllowDuplicates,
		MediaFolder:     p.flags.MediaFolder,
	})

	switch result.Status {
	case anki.Created:
		stats.Created++
		fmt.Fprintf(p.out, "  Added note %d\n", result.NoteID)
	case anki.SkippedDuplicate:
		stats.SkippedDuplicate++
		fmt.Fprintf(p.out, "  Skipped: %s already in deck %s\n", rec.German, p.flags.Deck)
	default:
		stats.Failed++
		fmt.Fprintf(p.out, "  Failed: %s\n", result.Reason)
	}
}
