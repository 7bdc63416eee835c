package generation

import (
	"fmt"
	"strings"
)

// Placeholder marks where the word is inserted into a prompt template
const Placeholder = "{}"

// DefaultPromptTemplate is used when no template file is configured
const DefaultPromptTemplate = `Create an Anki flashcard for the German word "{}".
Respond with exactly these six lines and nothing else:
German: <the word with article if it is a noun>
English: <the English meaning>
Example 1 (DE): <a simple German example sentence>
Example 1 (EN): <its English translation>
Example 2 (DE): <another German example sentence>
Example 2 (EN): <its English translation>`

// ValidateTemplate checks that the template has exactly one placeholder
func ValidateTemplate(template string) error {
	switch n := strings.Count(template, Placeholder); n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("prompt template has no %s placeholder", Placeholder)
	default:
		return fmt.Errorf("prompt template has %d %s placeholders, want exactly one", n, Placeholder)
	}
}

// RenderPrompt substitutes word into the template placeholder
func RenderPrompt(template, word string) string {
	return strings.Replace(template, Placeholder, word, 1)
}
