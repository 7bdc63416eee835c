// Package media derives audio filenames from vocabulary records and
// synthesizes the per-slot pronunciation files for a card.
package media
