package batch

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"codeberg.org/snonux/wortschatz/internal/generation"
)

// ErrNoWords is returned when a word source yields nothing to process
var ErrNoWords = errors.New("no words to process")

// ReadWordFile reads one word or phrase per line. Blank lines and lines
// starting with # are skipped; order is preserved.
func ReadWordFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read word file: %w", err)
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if word, ok := parseLine(scanner.Text()); ok {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word file: %w", err)
	}

	return words, nil
}

// ParseInlineWords cleans words given on the command line the same way
// as lines of a word file
func ParseInlineWords(args []string) []string {
	var words []string
	for _, arg := range args {
		if word, ok := parseLine(arg); ok {
			words = append(words, word)
		}
	}
	return words
}

func parseLine(line string) (string, bool) {
	line = strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
	if line == "" || strings.HasPrefix(line, "#") {
		return "", false
	}
	return line, true
}

// ResolveWords picks the word source: inline args or a word file, never both
func ResolveWords(wordFile string, args []string) ([]string, error) {
	if wordFile != "" && len(args) > 0 {
		return nil, fmt.Errorf("words given both as arguments and via --words %s, use one", wordFile)
	}

	var words []string
	if len(args) > 0 {
		words = ParseInlineWords(args)
	} else {
		if wordFile == "" {
			return nil, fmt.Errorf("%w: pass words as arguments or use --words", ErrNoWords)
		}
		var err error
		if words, err = ReadWordFile(wordFile); err != nil {
			return nil, err
		}
	}

	if len(words) == 0 {
		return nil, ErrNoWords
	}
	return words, nil
}

// ReadPromptTemplate loads and validates the prompt template at path. An
// empty path yields the built-in template. A missing file is an error only
// when required is set; otherwise the built-in template is used and
// fallback is reported as true.
func ReadPromptTemplate(path string, required bool) (template string, fallback bool, err error) {
	if path == "" {
		return generation.DefaultPromptTemplate, true, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return generation.DefaultPromptTemplate, true, nil
		}
		return "", false, fmt.Errorf("failed to read prompt template: %w", err)
	}

	template = string(data)
	if err := generation.ValidateTemplate(template); err != nil {
		return "", false, fmt.Errorf("%s: %w", path, err)
	}
	return template, false, nil
}
