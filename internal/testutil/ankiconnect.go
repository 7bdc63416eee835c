package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
)

// FakeNote is a note stored by FakeAnkiConnect
type FakeNote struct {
	ID        int64
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Tags      []string          `json:"tags"`
	Audio     []struct {
		Filename string   `json:"filename"`
		Path     string   `json:"path"`
		Fields   []string `json:"fields"`
	} `json:"audio"`
	Options struct {
		AllowDuplicate bool   `json:"allowDuplicate"`
		DuplicateScope string `json:"duplicateScope"`
	} `json:"options"`
}

// FakeAnkiConnect is an in-memory AnkiConnect server. findNotes only
// understands the duplicate search deck:"<deck>" "German:<term>" and
// evaluates it like Anki does: backslash escapes, _ and * as wildcards and
// whole-field matching. Any other query is answered with an error.
type FakeAnkiConnect struct {
	*httptest.Server

	mu      sync.Mutex
	Models  map[string][]string
	Decks   map[string]bool
	Notes   []FakeNote
	Actions []string
	Queries []string

	// Errors makes an action answer with the given AnkiConnect error
	Errors map[string]string

	nextID int64
}

// NewFakeAnkiConnect starts a fake server that is closed with the test
func NewFakeAnkiConnect(t *testing.T) *FakeAnkiConnect {
	t.Helper()

	f := &FakeAnkiConnect{
		Models: map[string][]string{"Basic": {"Front", "Back"}},
		Decks:  map[string]bool{"Default": true},
		Errors: map[string]string{},
		nextID: 1700000000000,
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

// Count returns how often action was invoked
func (f *FakeAnkiConnect) Count(action string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, a := range f.Actions {
		if a == action {
			n++
		}
	}
	return n
}

// AddExisting stores a note as if it had been created earlier
func (f *FakeAnkiConnect) AddExisting(deck, model string, fields map[string]string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	f.Notes = append(f.Notes, FakeNote{ID: f.nextID, DeckName: deck, ModelName: model, Fields: fields})
	return f.nextID
}

func (f *FakeAnkiConnect) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action  string          `json:"action"`
		Version int             `json:"version"`
		Params  json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.Actions = append(f.Actions, req.Action)

	if msg, ok := f.Errors[req.Action]; ok {
		writeEnvelope(w, nil, msg)
		return
	}

	result, errMsg := f.dispatch(req.Action, req.Params)
	writeEnvelope(w, result, errMsg)
}

func (f *FakeAnkiConnect) dispatch(action string, raw json.RawMessage) (any, string) {
	switch action {
	case "version":
		return 6, ""

	case "modelNames":
		names := make([]string, 0, len(f.Models))
		for name := range f.Models {
			names = append(names, name)
		}
		return names, ""

	case "modelFieldNames":
		var p struct {
			ModelName string `json:"modelName"`
		}
		_ = json.Unmarshal(raw, &p)
		fields, ok := f.Models[p.ModelName]
		if !ok {
			return nil, "model was not found: " + p.ModelName
		}
		return fields, ""

	case "createModel":
		var p struct {
			ModelName     string   `json:"modelName"`
			InOrderFields []string `json:"inOrderFields"`
		}
		_ = json.Unmarshal(raw, &p)
		if _, ok := f.Models[p.ModelName]; ok {
			return nil, "Model name already exists"
		}
		f.Models[p.ModelName] = p.InOrderFields
		return map[string]any{"name": p.ModelName}, ""

	case "deckNames":
		names := make([]string, 0, len(f.Decks))
		for name := range f.Decks {
			names = append(names, name)
		}
		return names, ""

	case "createDeck":
		var p struct {
			Deck string `json:"deck"`
		}
		_ = json.Unmarshal(raw, &p)
		f.Decks[p.Deck] = true
		f.nextID++
		return f.nextID, ""

	case "findNotes":
		var p struct {
			Query string `json:"query"`
		}
		_ = json.Unmarshal(raw, &p)
		f.Queries = append(f.Queries, p.Query)
		deck, term, ok := parseDuplicateQuery(p.Query)
		if !ok {
			return nil, "invalid search: " + p.Query
		}
		ids := []int64{}
		for _, n := range f.Notes {
			if deck.MatchString(n.DeckName) && term.MatchString(n.Fields["German"]) {
				ids = append(ids, n.ID)
			}
		}
		return ids, ""

	case "addNote":
		var p struct {
			Note FakeNote `json:"note"`
		}
		_ = json.Unmarshal(raw, &p)
		if !p.Note.Options.AllowDuplicate {
			for _, n := range f.Notes {
				if n.DeckName == p.Note.DeckName && n.Fields["German"] == p.Note.Fields["German"] {
					return nil, "cannot create note because it is a duplicate"
				}
			}
		}
		f.nextID++
		p.Note.ID = f.nextID
		f.Notes = append(f.Notes, p.Note)
		return f.nextID, ""

	default:
		return nil, "unsupported action"
	}
}

var duplicateQueryRe = regexp.MustCompile(`^deck:"((?:[^"\\]|\\.)*)" "German:((?:[^"\\]|\\.)*)"$`)

func parseDuplicateQuery(query string) (deck, term *regexp.Regexp, ok bool) {
	m := duplicateQueryRe.FindStringSubmatch(query)
	if m == nil {
		return nil, nil, false
	}
	return searchPattern(m[1]), searchPattern(m[2]), true
}

// searchPattern turns an Anki search term into an anchored regexp
func searchPattern(term string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	runes := []rune(term)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; {
		case r == '\\' && i+1 < len(runes):
			i++
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
		case r == '*':
			b.WriteString(".*")
		case r == '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

func writeEnvelope(w http.ResponseWriter, result any, errMsg string) {
	envelope := map[string]any{"result": result, "error": nil}
	if errMsg != "" {
		envelope["error"] = errMsg
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope)
}
