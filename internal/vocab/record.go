package vocab

import "strings"

// Field names as they appear in model output, in the CSV header and in the
// Anki note type. The order is significant.
const (
	FieldGerman     = "German"
	FieldEnglish    = "English"
	FieldExample1DE = "Example 1 (DE)"
	FieldExample1EN = "Example 1 (EN)"
	FieldExample2DE = "Example 2 (DE)"
	FieldExample2EN = "Example 2 (EN)"
)

// FieldNames lists the record fields in canonical order
var FieldNames = []string{
	FieldGerman,
	FieldEnglish,
	FieldExample1DE,
	FieldExample1EN,
	FieldExample2DE,
	FieldExample2EN,
}

// Record is the structured vocabulary data for one word
type Record struct {
	German     string `json:"German"`
	English    string `json:"English"`
	Example1DE string `json:"Example 1 (DE)"`
	Example1EN string `json:"Example 1 (EN)"`
	Example2DE string `json:"Example 2 (DE)"`
	Example2EN string `json:"Example 2 (EN)"`
}

// Fields returns the field values in the order of FieldNames
func (r Record) Fields() []string {
	return []string{r.German, r.English, r.Example1DE, r.Example1EN, r.Example2DE, r.Example2EN}
}

// Map returns the record keyed by field name
func (r Record) Map() map[string]string {
	values := r.Fields()
	m := make(map[string]string, len(FieldNames))
	for i, name := range FieldNames {
		m[name] = values[i]
	}
	return m
}

// Get returns the value of the named field, or "" for unknown names
func (r Record) Get(name string) string {
	switch name {
	case FieldGerman:
		return r.German
	case FieldEnglish:
		return r.English
	case FieldExample1DE:
		return r.Example1DE
	case FieldExample1EN:
		return r.Example1EN
	case FieldExample2DE:
		return r.Example2DE
	case FieldExample2EN:
		return r.Example2EN
	}
	return ""
}

// set assigns the named field. Unknown names are ignored.
func (r *Record) set(name, value string) {
	switch name {
	case FieldGerman:
		r.German = value
	case FieldEnglish:
		r.English = value
	case FieldExample1DE:
		r.Example1DE = value
	case FieldExample1EN:
		r.Example1EN = value
	case FieldExample2DE:
		r.Example2DE = value
	case FieldExample2EN:
		r.Example2EN = value
	}
}

// Complete reports whether every field carries a non-blank value.
// Incomplete records must never be exported or pushed to Anki.
func (r Record) Complete() bool {
	return len(r.Missing()) == 0
}

// Missing returns the names of blank fields in canonical order
func (r Record) Missing() []string {
	var missing []string
	for i, v := range r.Fields() {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, FieldNames[i])
		}
	}
	return missing
}
