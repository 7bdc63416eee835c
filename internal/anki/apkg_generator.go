package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/wortschatz/internal/media"
)

// APKGGenerator writes an offline Anki package (.apkg) of the accepted
// cards, for importing without a running AnkiConnect.
type APKGGenerator struct {
	deckName     string
	deckID       int64
	modelID      int64
	noteType     NoteType
	cards        []Card
	mediaFiles   map[string]int // media filename -> number inside the package
	mediaCounter int
}

// NewAPKGGenerator creates a package generator for deckName
func NewAPKGGenerator(deckName string, noteType NoteType) *APKGGenerator {
	now := time.Now().UnixMilli()
	return &APKGGenerator{
		deckName:   deckName,
		deckID:     now,
		modelID:    now + 1,
		noteType:   noteType,
		mediaFiles: make(map[string]int),
	}
}

// AddCard adds a card to the package
func (g *APKGGenerator) AddCard(card Card) {
	g.cards = append(g.cards, card)
}

// GenerateAPKG creates the .apkg file at outputPath
func (g *APKGGenerator) GenerateAPKG(outputPath string) error {
	tempDir, err := os.MkdirTemp("", "wortschatz_apkg_*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	// Media first, the notes reference the numbered files
	if err := g.copyMediaFiles(tempDir); err != nil {
		return fmt.Errorf("failed to copy media files: %w", err)
	}

	if err := g.createMediaMapping(tempDir); err != nil {
		return fmt.Errorf("failed to create media mapping: %w", err)
	}

	dbPath := filepath.Join(tempDir, "collection.anki2")
	if err := g.createDatabase(dbPath); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := g.createZipPackage(tempDir, outputPath); err != nil {
		return fmt.Errorf("failed to create zip package: %w", err)
	}

	return nil
}

func (g *APKGGenerator) createDatabase(dbPath string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := g.createTables(db); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if err := g.insertCollection(db); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := g.insertNotesAndCards(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to insert notes and cards: %w", err)
	}
	return tx.Commit()
}

// createTables creates the Anki 2.1 schema (version 11)
func (g *APKGGenerator) createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE col (
			id integer PRIMARY KEY,
			crt integer NOT NULL,
			mod integer NOT NULL,
			scm integer NOT NULL,
			ver integer NOT NULL,
			dty integer NOT NULL,
			usn integer NOT NULL,
			ls integer NOT NULL,
			conf text NOT NULL,
			models text NOT NULL,
			decks text NOT NULL,
			dconf text NOT NULL,
			tags text NOT NULL
		)`,
		`CREATE TABLE notes (
			id integer PRIMARY KEY,
			guid text NOT NULL,
			mid integer NOT NULL,
			mod integer NOT NULL,
			usn integer NOT NULL,
			tags text NOT NULL,
			flds text NOT NULL,
			sfld text NOT NULL,
			csum integer NOT NULL,
			flags integer NOT NULL,
			data text NOT NULL
		)`,
		`CREATE TABLE cards (
			id integer PRIMARY KEY,
			nid integer NOT NULL,
			did integer NOT NULL,
			ord integer NOT NULL,
			mod integer NOT NULL,
			usn integer NOT NULL,
			type integer NOT NULL,
			queue integer NOT NULL,
			due integer NOT NULL,
			ivl integer NOT NULL,
			factor integer NOT NULL,
			reps integer NOT NULL,
			lapses integer NOT NULL,
			left integer NOT NULL,
			odue integer NOT NULL,
			odid integer NOT NULL,
			flags integer NOT NULL,
			data text NOT NULL
		)`,
		`CREATE TABLE revlog (
			id integer PRIMARY KEY,
			cid integer NOT NULL,
			usn integer NOT NULL,
			ease integer NOT NULL,
			ivl integer NOT NULL,
			lastIvl integer NOT NULL,
			factor integer NOT NULL,
			time integer NOT NULL,
			type integer NOT NULL
		)`,
		`CREATE TABLE graves (
			usn integer NOT NULL,
			oid integer NOT NULL,
			type integer NOT NULL
		)`,
		// Create indexes
		`CREATE INDEX ix_notes_csum ON notes (csum)`,
		`CREATE INDEX ix_notes_usn ON notes (usn)`,
		`CREATE INDEX ix_cards_usn ON cards (usn)`,
		`CREATE INDEX ix_cards_nid ON cards (nid)`,
		`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
		`CREATE INDEX ix_revlog_usn ON revlog (usn)`,
		`CREATE INDEX ix_revlog_cid ON revlog (cid)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

func deckJSON(id int64, name, desc string, now int64) map[string]any {
	return map[string]any{
		"id":               id,
		"name":             name,
		"mod":              now,
		"desc":             desc,
		"collapsed":        false,
		"dyn":              0,
		"conf":             1,
		"usn":              0,
		"newToday":         []int{0, 0},
		"revToday":         []int{0, 0},
		"lrnToday":         []int{0, 0},
		"timeToday":        []int{0, 0},
		"browserCollapsed": false,
		"extendNew":        10,
		"extendRev":        50,
	}
}

func (g *APKGGenerator) insertCollection(db *sql.DB) error {
	now := time.Now().Unix()

	decks := map[string]any{
		"1":                         deckJSON(1, "Default", "", now),
		fmt.Sprintf("%d", g.deckID): deckJSON(g.deckID, g.deckName, "German vocabulary generated by wortschatz", now),
	}
	decksJSON, err := json.Marshal(decks)
	if err != nil {
		return err
	}

	models := map[string]any{
		fmt.Sprintf("%d", g.modelID): g.modelJSON(now),
	}
	modelsJSON, err := json.Marshal(models)
	if err != nil {
		return err
	}

	conf := map[string]any{
		"nextPos":       1,
		"estTimes":      true,
		"activeDecks":   []int64{1},
		"sortType":      "noteFld",
		"sortBackwards": false,
		"addToCur":      true,
		"curDeck":       1,
		"newSpread":     0,
		"dueCounts":     true,
		"collapseTime":  1200,
		"timeLim":       0,
		"schedVer":      1,
		"curModel":      fmt.Sprintf("%d", g.modelID),
		"dayLearnFirst": false,
	}
	confJSON, err := json.Marshal(conf)
	if err != nil {
		return err
	}

	dconf := map[string]any{
		"1": map[string]any{
			"id":   1,
			"name": "Default",
			"dyn":  0,
			"new": map[string]any{
				"delays":        []int{1, 10},
				"ints":          []int{1, 4, 7},
				"initialFactor": 2500,
				"perDay":        20,
				"order":         1,
				"bury":          true,
				"separate":      true,
			},
			"lapse": map[string]any{
				"delays":      []int{10},
				"mult":        0,
				"minInt":      1,
				"leechFails":  8,
				"leechAction": 0,
			},
			"rev": map[string]any{
				"perDay":   100,
				"ease4":    1.3,
				"fuzz":     0.05,
				"maxIvl":   36500,
				"ivlFct":   1,
				"bury":     true,
				"minSpace": 1,
			},
			"timer":    0,
			"maxTaken": 60,
			"usn":      0,
			"mod":      now,
			"autoplay": true,
			"replayq":  true,
		},
	}
	dconfJSON, err := json.Marshal(dconf)
	if err != nil {
		return err
	}

	_, err = db.Exec(`INSERT INTO col VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		1,        // id
		now,      // crt
		now*1000, // mod
		now*1000, // scm
		11,       // ver
		0,        // dty
		0,        // usn
		0,        // ls
		string(confJSON),
		string(modelsJSON),
		string(decksJSON),
		string(dconfJSON),
		"{}",
	)
	return err
}

// modelJSON renders the note type the way Anki stores it in col.models
func (g *APKGGenerator) modelJSON(now int64) map[string]any {
	flds := make([]map[string]any, 0, len(g.noteType.Fields))
	for i, name := range g.noteType.Fields {
		flds = append(flds, map[string]any{
			"name":   name,
			"ord":    i,
			"sticky": false,
			"rtl":    false,
			"font":   "Arial",
			"size":   20,
			"media":  []string{},
		})
	}

	tmpls := make([]map[string]any, 0, len(g.noteType.Templates))
	for i, t := range g.noteType.Templates {
		tmpls = append(tmpls, map[string]any{
			"name":  t.Name,
			"ord":   i,
			"qfmt":  t.Front,
			"afmt":  t.Back,
			"did":   nil,
			"bqfmt": "",
			"bafmt": "",
		})
	}

	return map[string]any{
		"id":    g.modelID,
		"name":  g.noteType.Name,
		"type":  0,
		"mod":   now,
		"usn":   -1,
		"sortf": 0,
		"did":   g.deckID,
		// German front needs field 0, English front needs field 1
		"req":  [][]any{{0, "any", []int{0}}, {1, "any", []int{1}}},
		"vers": []int{},
		"tags": []string{},
		"latexPre": `\documentclass[12pt]{article}
\special{papersize=3in,5in}
\usepackage[utf8]{inputenc}
\usepackage{amssymb,amsmath}
\pagestyle{empty}
\setlength{\parindent}{0in}
\begin{document}`,
		"latexPost": `\end{document}`,
		"flds":      flds,
		"tmpls":     tmpls,
		"css":       g.noteType.CSS,
	}
}

// fieldValues returns the note fields joined with Anki's field separator
func (g *APKGGenerator) fieldValues(card Card) string {
	values := card.Record.Map()
	for _, asset := range card.Assets {
		if _, ok := g.mediaFiles[asset.Filename]; ok {
			values[asset.Field] = fmt.Sprintf("[sound:%s]", asset.Filename)
		}
	}

	fields := make([]string, len(g.noteType.Fields))
	for i, name := range g.noteType.Fields {
		fields[i] = values[name]
	}
	return strings.Join(fields, "\x1f")
}

func (g *APKGGenerator) insertNotesAndCards(tx *sql.Tx) error {
	now := time.Now()
	base := now.UnixMilli()

	noteQuery := `INSERT INTO notes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	cardQuery := `INSERT INTO cards VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for i, card := range g.cards {
		// Leave room for one card per template after each note ID
		stride := int64(len(g.noteType.Templates) + 1)
		noteID := base + int64(i)*stride

		tags := ""
		if len(card.Tags) > 0 {
			tags = " " + strings.Join(card.Tags, " ") + " "
		}

		_, err := tx.Exec(noteQuery,
			noteID,              // id
			uuid.NewString(),    // guid
			g.modelID,           // mid
			now.Unix(),          // mod
			-1,                  // usn
			tags,                // tags
			g.fieldValues(card), // flds
			card.Record.German,  // sfld
			0,                   // csum
			0,                   // flags
			"",                  // data
		)
		if err != nil {
			return fmt.Errorf("failed to insert note %q: %w", card.Record.German, err)
		}

		for ord := range g.noteType.Templates {
			cardID := noteID + int64(ord) + 1
			_, err = tx.Exec(cardQuery,
				cardID,     // id
				noteID,     // nid
				g.deckID,   // did
				ord,        // ord
				now.Unix(), // mod
				-1,         // usn
				0,          // type (new)
				0,          // queue (new)
				cardID,     // due
				0,          // ivl
				0,          // factor
				0,          // reps
				0,          // lapses
				0,          // left
				0,          // odue
				0,          // odid
				0,          // flags
				"",         // data
			)
			if err != nil {
				return fmt.Errorf("failed to insert card %d of %q: %w", ord, card.Record.German, err)
			}
		}
	}

	return nil
}

// copyMediaFiles copies every existing audio file into the package under a
// numeric name
func (g *APKGGenerator) copyMediaFiles(tempDir string) error {
	for _, card := range g.cards {
		for _, asset := range card.Assets {
			if err := g.addMedia(tempDir, asset); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *APKGGenerator) addMedia(tempDir string, asset media.Asset) error {
	if _, exists := g.mediaFiles[asset.Filename]; exists || !fileExists(asset.LocalPath) {
		return nil
	}

	target := filepath.Join(tempDir, fmt.Sprintf("%d", g.mediaCounter))
	if err := copyFile(asset.LocalPath, target); err != nil {
		return fmt.Errorf("failed to copy audio file %s: %w", asset.LocalPath, err)
	}
	g.mediaFiles[asset.Filename] = g.mediaCounter
	g.mediaCounter++
	return nil
}

// createMediaMapping writes the "media" file mapping numbers to filenames
func (g *APKGGenerator) createMediaMapping(tempDir string) error {
	mapping := make(map[string]string, len(g.mediaFiles))
	for filename, num := range g.mediaFiles {
		mapping[fmt.Sprintf("%d", num)] = filename
	}

	data, err := json.Marshal(mapping)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(tempDir, "media"), data, 0644)
}

func (g *APKGGenerator) createZipPackage(tempDir, outputPath string) error {
	zipFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer zipFile.Close()

	archive := zip.NewWriter(zipFile)

	err = filepath.Walk(tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(tempDir, path)
		if err != nil {
			return err
		}

		writer, err := archive.Create(relPath)
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(writer, file)
		return err
	})
	if err != nil {
		archive.Close()
		return err
	}
	return archive.Close()
}
