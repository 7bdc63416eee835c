package internal

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// NewRunID returns a fresh identifier for one invocation, attached to
// every log line of the run
func NewRunID() string {
	return uuid.NewString()
}

// SanitizeFilename creates a safe filename from a string. Letters of any
// script are kept.
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
