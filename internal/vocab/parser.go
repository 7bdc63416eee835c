package vocab

import (
	"encoding/json"
	"strings"
)

// Parser turns raw model output into a record. Parsers never fail: fields
// that cannot be found stay empty and the caller checks completeness.
type Parser interface {
	Parse(raw string) Record
}

// ParserFunc adapts a plain function to the Parser interface
type ParserFunc func(raw string) Record

// Parse calls f(raw)
func (f ParserFunc) Parse(raw string) Record {
	return f(raw)
}

// NewParser returns the parser registered under name ("line" or "json").
// Unknown names fall back to the line parser.
func NewParser(name string) Parser {
	if strings.EqualFold(name, "json") {
		return JSONParser{}
	}
	return LineParser{}
}

// LineParser reads "<Field>: value" lines. For every field the first
// matching line wins; later lines with the same prefix are ignored.
type LineParser struct{}

// Parse implements Parser
func (LineParser) Parse(raw string) Record {
	var rec Record
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	for _, name := range FieldNames {
		prefix := name + ":"
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, prefix) {
				rec.set(name, strings.TrimSpace(line[len(prefix):]))
				break
			}
		}
	}

	return rec
}

// JSONParser expects a single JSON object keyed by the field names,
// optionally wrapped in a markdown code fence. Anything it cannot decode
// yields an empty record.
type JSONParser struct{}

// Parse implements Parser
func (JSONParser) Parse(raw string) Record {
	var data map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &data); err != nil {
		return Record{}
	}

	var rec Record
	for _, name := range FieldNames {
		if s, ok := data[name].(string); ok {
			rec.set(name, strings.TrimSpace(s))
		}
	}
	return rec
}

// stripCodeFence removes a surrounding ```json ... ``` block if present
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
