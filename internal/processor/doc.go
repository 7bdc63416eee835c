// Package processor runs a batch of German words end to end. For each word
// it obtains a complete vocabulary record from the LLM, synthesizes audio
// if requested and adds the note to Anki through AnkiConnect. Accepted
// records are always written to a CSV export and optionally to an .apkg
// package. The package is the coordinator between all other components.
package processor
