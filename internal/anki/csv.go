package anki

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/snonux/wortschatz/internal/vocab"
)

// CSVTimeLayout is the timestamp part of export filenames
const CSVTimeLayout = "20060102_1504"

// CSVFilename returns the export filename for t, e.g. anki_cards_20250131_1405.csv
func CSVFilename(t time.Time) string {
	return fmt.Sprintf("anki_cards_%s.csv", t.Format(CSVTimeLayout))
}

// ExporterOptions configures the CSV export
type ExporterOptions struct {
	OutputDir      string
	IncludeHeaders bool
}

// DefaultExporterOptions returns sensible defaults
func DefaultExporterOptions() *ExporterOptions {
	return &ExporterOptions{
		OutputDir:      ".",
		IncludeHeaders: true,
	}
}

// Exporter collects the accepted cards of a run
type Exporter struct {
	options *ExporterOptions
	cards   []Card
}

// NewExporter creates an exporter
func NewExporter(options *ExporterOptions) *Exporter {
	if options == nil {
		options = DefaultExporterOptions()
	}
	return &Exporter{options: options}
}

// AddCard appends a card. Incomplete records are ignored.
func (e *Exporter) AddCard(card Card) bool {
	if !card.Record.Complete() {
		return false
	}
	e.cards = append(e.cards, card)
	return true
}

// Cards returns the collected cards in insertion order
func (e *Exporter) Cards() []Card {
	return e.cards
}

// WriteCSV writes all cards to a timestamped CSV file and returns its path.
// The file is written even when there are no cards.
func (e *Exporter) WriteCSV(now time.Time) (string, error) {
	if err := os.MkdirAll(e.options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(e.options.OutputDir, CSVFilename(now))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if e.options.IncludeHeaders {
		if err := writer.Write(vocab.FieldNames); err != nil {
			return "", fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for _, card := range e.cards {
		if err := writer.Write(card.Record.Fields()); err != nil {
			return "", fmt.Errorf("failed to write card %q: %w", card.Record.German, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}

	return path, nil
}

// Stats returns the number of cards and how many carry audio
func (e *Exporter) Stats() (total, withAudio int) {
	total = len(e.cards)
	for _, card := range e.cards {
		if len(card.Assets) > 0 {
			withAudio++
		}
	}
	return
}
