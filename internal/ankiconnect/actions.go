package ankiconnect

import "context"

// CardTemplate is one card type of a note type
type CardTemplate struct {
	Name  string `json:"Name"`
	Front string `json:"Front"`
	Back  string `json:"Back"`
}

// CreateModelParams describes a new note type
type CreateModelParams struct {
	ModelName     string         `json:"modelName"`
	InOrderFields []string       `json:"inOrderFields"`
	CSS           string         `json:"css"`
	CardTemplates []CardTemplate `json:"cardTemplates"`
}

// AudioAttachment asks AnkiConnect to store a local file in the media
// collection and reference it from Fields
type AudioAttachment struct {
	Filename string   `json:"filename"`
	Path     string   `json:"path"`
	Fields   []string `json:"fields"`
}

// NoteOptions controls duplicate handling on insert
type NoteOptions struct {
	AllowDuplicate bool   `json:"allowDuplicate"`
	DuplicateScope string `json:"duplicateScope"`
}

// Note is the payload of addNote
type Note struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Options   NoteOptions       `json:"options"`
	Tags      []string          `json:"tags"`
	Audio     []AudioAttachment `json:"audio,omitempty"`
}

// Version returns the API version the server speaks
func (c *Client) Version(ctx context.Context) (int, error) {
	var v int
	err := c.invoke(ctx, "version", nil, &v)
	return v, err
}

// ModelNames lists the note types in the collection
func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	var names []string
	err := c.invoke(ctx, "modelNames", nil, &names)
	return names, err
}

// ModelFieldNames lists the fields of a note type in order
func (c *Client) ModelFieldNames(ctx context.Context, model string) ([]string, error) {
	var fields []string
	err := c.invoke(ctx, "modelFieldNames", map[string]any{"modelName": model}, &fields)
	return fields, err
}

// CreateModel creates a note type
func (c *Client) CreateModel(ctx context.Context, params CreateModelParams) error {
	return c.invoke(ctx, "createModel", params, nil)
}

// DeckNames lists the decks in the collection
func (c *Client) DeckNames(ctx context.Context) ([]string, error) {
	var names []string
	err := c.invoke(ctx, "deckNames", nil, &names)
	return names, err
}

// CreateDeck creates a deck; creating an existing deck is a no-op on the server
func (c *Client) CreateDeck(ctx context.Context, deck string) error {
	return c.invoke(ctx, "createDeck", map[string]any{"deck": deck}, nil)
}

// FindNotes returns the IDs of notes matching an Anki search query
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	var ids []int64
	err := c.invoke(ctx, "findNotes", map[string]any{"query": query}, &ids)
	return ids, err
}

// AddNote inserts a note and returns its ID
func (c *Client) AddNote(ctx context.Context, note Note) (int64, error) {
	var id *int64
	if err := c.invoke(ctx, "addNote", map[string]any{"note": note}, &id); err != nil {
		return 0, err
	}
	if id == nil {
		return 0, &APIError{Action: "addNote", Message: "note was not added"}
	}
	return *id, nil
}
