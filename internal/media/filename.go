package media

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slot names one audio position on a card
type Slot string

const (
	SlotHeadword Slot = "headword"
	SlotExample1 Slot = "example1"
	SlotExample2 Slot = "example2"
)

// AllSlots lists every slot in card order
var AllSlots = []Slot{SlotHeadword, SlotExample1, SlotExample2}

// Suffix returns the filename suffix for the slot
func (s Slot) Suffix() string {
	switch s {
	case SlotExample1:
		return "ex1"
	case SlotExample2:
		return "ex2"
	default:
		return "word"
	}
}

// Field returns the note field that receives the slot's audio
func (s Slot) Field() string {
	switch s {
	case SlotExample1:
		return "Audio Example 1"
	case SlotExample2:
		return "Audio Example 2"
	default:
		return "Audio German"
	}
}

// SlotsFor maps the --audio-slots setting to a slot list
func SlotsFor(mode string) []Slot {
	switch mode {
	case "none", "off":
		return nil
	case "headword":
		return []Slot{SlotHeadword}
	default:
		return AllSlots
	}
}

const unsafeChars = `()[]{}/\:*?"<>|'`

var (
	underscoreRun = regexp.MustCompile(`_+`)
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	spaceRun      = regexp.MustCompile(`\s+`)
)

// BaseName returns a filesystem-safe stem for term. The same term always
// yields the same stem; the md5 suffix keeps terms that clean to the same
// text apart.
func BaseName(term string) string {
	normalized := norm.NFC.String(strings.TrimSpace(term))

	var b strings.Builder
	for _, r := range normalized {
		if unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(unsafeChars, r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}

	clean := strings.Trim(underscoreRun.ReplaceAllString(b.String(), "_"), "_")

	hash := md5.Sum([]byte(normalized))
	hashStr := hex.EncodeToString(hash[:])[:8]

	if clean == "" {
		return hashStr
	}
	return clean + "_" + hashStr
}

// Filename returns the media filename for term in slot
func Filename(term string, slot Slot, format string) string {
	if format == "" {
		format = "mp3"
	}
	return BaseName(term) + "_" + slot.Suffix() + "." + format
}

// SpokenHeadword strips parenthetical annotations such as plural hints
// so that only the word itself is read aloud.
func SpokenHeadword(term string) string {
	stripped := parenthetical.ReplaceAllString(term, " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(stripped, " "))
}
