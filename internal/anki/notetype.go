package anki

import (
	"codeberg.org/snonux/wortschatz/internal/ankiconnect"
	"codeberg.org/snonux/wortschatz/internal/vocab"
)

// DefaultNoteTypeName is the note type created in the collection
const DefaultNoteTypeName = "German"

// Audio field names, filled by AnkiConnect from the attached files
const (
	FieldAudioGerman   = "Audio German"
	FieldAudioExample1 = "Audio Example 1"
	FieldAudioExample2 = "Audio Example 2"
)

// NoteType is the schema of the cards this tool writes
type NoteType struct {
	Name      string
	Fields    []string
	CSS       string
	Templates []ankiconnect.CardTemplate
}

// DefaultNoteType returns the nine-field German vocabulary note type
func DefaultNoteType(name string) NoteType {
	if name == "" {
		name = DefaultNoteTypeName
	}

	fields := make([]string, 0, len(vocab.FieldNames)+3)
	fields = append(fields, vocab.FieldNames...)
	fields = append(fields, FieldAudioGerman, FieldAudioExample1, FieldAudioExample2)

	return NoteType{
		Name:   name,
		Fields: fields,
		CSS:    cardCSS,
		Templates: []ankiconnect.CardTemplate{
			{Name: "German to English", Front: forwardFront, Back: forwardBack},
			{Name: "English to German", Front: reverseFront, Back: reverseBack},
		},
	}
}

// CreateParams converts the note type into a createModel request
func (n NoteType) CreateParams() ankiconnect.CreateModelParams {
	return ankiconnect.CreateModelParams{
		ModelName:     n.Name,
		InOrderFields: n.Fields,
		CSS:           n.CSS,
		CardTemplates: n.Templates,
	}
}

const forwardFront = `<div class="front">
<div class="german">{{German}}</div>
{{#Audio German}}<div class="audio">{{Audio German}}</div>{{/Audio German}}
</div>`

const forwardBack = `{{FrontSide}}

<hr id="answer">

<div class="back">
<div class="english">{{English}}</div>
` + examplesBlock + `
</div>`

const reverseFront = `<div class="front">
<div class="english">{{English}}</div>
</div>`

const reverseBack = `{{FrontSide}}

<hr id="answer">

<div class="back">
<div class="german">{{German}}</div>
{{#Audio German}}<div class="audio">{{Audio German}}</div>{{/Audio German}}
` + examplesBlock + `
</div>`

const examplesBlock = `<div class="example">
<div class="de">{{Example 1 (DE)}}</div>
<div class="en">{{Example 1 (EN)}}</div>
{{#Audio Example 1}}<div class="audio">{{Audio Example 1}}</div>{{/Audio Example 1}}
</div>
<div class="example">
<div class="de">{{Example 2 (DE)}}</div>
<div class="en">{{Example 2 (EN)}}</div>
{{#Audio Example 2}}<div class="audio">{{Audio Example 2}}</div>{{/Audio Example 2}}
</div>`

const cardCSS = `.card {
  font-family: Arial, sans-serif;
  font-size: 20px;
  text-align: center;
  color: #333;
  background-color: white;
}

.front, .back {
  padding: 20px;
}

.german {
  font-size: 32px;
  font-weight: bold;
  color: #c0392b;
  margin: 20px 0;
}

.english {
  font-size: 28px;
  font-weight: bold;
  color: #2c3e50;
  margin: 20px 0;
}

.example {
  margin: 15px auto;
  max-width: 500px;
}

.example .en {
  font-size: 16px;
  color: #7f8c8d;
  font-style: italic;
}

.audio {
  margin: 10px 0;
}

hr#answer {
  margin: 30px 0;
  border: 0;
  border-top: 1px solid #ecf0f1;
}`
