// Package ankidb provides read-only access to the relational database
// embedded in a legacy flashcard package (collection.anki2). Only the
// three logical tables the import pipeline needs are exposed: the single
// collection configuration row, notes, and cards.
package ankidb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // registers the sqlite driver

	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
)

// fieldSep separates field values inside a legacy note's flds blob.
const fieldSep = "\x1f"

// Model is one legacy note-type definition from the collection row.
// Field names and templates are ordered by their legacy ordinal.
type Model struct {
	ID         int64
	Name       string
	FieldNames []string
	Templates  []TemplateDef
}

// TemplateDef is one card template definition inside a Model.
type TemplateDef struct {
	Ordinal int
	Name    string
	Front   string
	Back    string
}

// DeckDef is one legacy deck definition from the collection row.
type DeckDef struct {
	ID   int64
	Name string
}

// NoteRow is one row of the legacy notes table with its field blob split.
type NoteRow struct {
	ID          int64
	ModelID     int64
	FieldValues []string
	Tags        []string
}

// CardRow is one row of the legacy cards table, joined with its parent
// note so the model id is available for template resolution.
type CardRow struct {
	ID      int64
	NoteID  int64
	DeckID  int64
	ModelID int64
	Ordinal int
}

// DB wraps a read-only connection to an extracted legacy database file.
type DB struct {
	conn *sql.DB
}

// Open opens the legacy database at path. A missing or unreadable file is
// a format problem with the uploaded archive, reported as domain.ErrFormat.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("legacy database not found at %s: %w", path, domain.ErrFormat)
	}

	conn, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open legacy database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("legacy database unreadable: %w", domain.ErrFormat)
	}

	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Collection reads the single configuration row and decodes the JSON
// model and deck definitions it carries.
func (db *DB) Collection() ([]Model, []DeckDef, error) {
	var modelsJSON, decksJSON string
	err := db.conn.QueryRow(`SELECT models, decks FROM col LIMIT 1`).Scan(&modelsJSON, &decksJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("legacy database has no collection row: %w", domain.ErrFormat)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read collection row: %w", err)
	}

	models, err := parseModels(modelsJSON)
	if err != nil {
		return nil, nil, err
	}

	decks, err := parseDecks(decksJSON)
	if err != nil {
		return nil, nil, err
	}

	return models, decks, nil
}

// Notes scans the legacy notes table. Field blobs are split on the legacy
// separator byte; tag strings are split on spaces with empties dropped.
func (db *DB) Notes() ([]NoteRow, error) {
	rows, err := db.conn.Query(`SELECT id, mid, flds, tags FROM notes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("scan legacy notes: %w", err)
	}
	defer rows.Close()

	notes := []NoteRow{}
	for rows.Next() {
		var (
			n    NoteRow
			flds string
			tags string
		)
		if err := rows.Scan(&n.ID, &n.ModelID, &flds, &tags); err != nil {
			return nil, fmt.Errorf("scan legacy note: %w", err)
		}

		n.FieldValues = strings.Split(flds, fieldSep)
		n.Tags = splitTags(tags)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate legacy notes: %w", err)
	}

	return notes, nil
}

// FirstDeckForNote returns the legacy deck id of any one card referencing
// noteID. The second result is false when the note has no cards at all,
// an orphan the import skips.
func (db *DB) FirstDeckForNote(noteID int64) (int64, bool, error) {
	var deckID int64
	err := db.conn.QueryRow(`SELECT did FROM cards WHERE nid = ? LIMIT 1`, noteID).Scan(&deckID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("look up deck for note %d: %w", noteID, err)
	}

	return deckID, true, nil
}

// Cards scans the legacy cards table joined with notes to recover each
// card's model id.
func (db *DB) Cards() ([]CardRow, error) {
	rows, err := db.conn.Query(
		`SELECT c.id, c.nid, c.did, c.ord, n.mid
		 FROM cards c
		 JOIN notes n ON c.nid = n.id
		 ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("scan legacy cards: %w", err)
	}
	defer rows.Close()

	cards := []CardRow{}
	for rows.Next() {
		var c CardRow
		if err := rows.Scan(&c.ID, &c.NoteID, &c.DeckID, &c.Ordinal, &c.ModelID); err != nil {
			return nil, fmt.Errorf("scan legacy card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate legacy cards: %w", err)
	}

	return cards, nil
}

// ---------------------------------------------------------------------------
// Collection JSON decoding
// ---------------------------------------------------------------------------

type rawField struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
}

type rawTemplate struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
	Qfmt string `json:"qfmt"`
	Afmt string `json:"afmt"`
}

type rawModel struct {
	Name  string        `json:"name"`
	Flds  []rawField    `json:"flds"`
	Tmpls []rawTemplate `json:"tmpls"`
}

type rawDeck struct {
	Name string `json:"name"`
}

func parseModels(modelsJSON string) ([]Model, error) {
	byID := map[string]rawModel{}
	if err := json.Unmarshal([]byte(modelsJSON), &byID); err != nil {
		return nil, fmt.Errorf("decode model definitions: %w", domain.ErrFormat)
	}

	models := make([]Model, 0, len(byID))
	for idStr, raw := range byID {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("model id %q: %w", idStr, domain.ErrFormat)
		}

		sort.Slice(raw.Flds, func(i, j int) bool { return raw.Flds[i].Ord < raw.Flds[j].Ord })
		sort.Slice(raw.Tmpls, func(i, j int) bool { return raw.Tmpls[i].Ord < raw.Tmpls[j].Ord })

		m := Model{ID: id, Name: raw.Name}
		for _, f := range raw.Flds {
			m.FieldNames = append(m.FieldNames, f.Name)
		}
		for _, t := range raw.Tmpls {
			m.Templates = append(m.Templates, TemplateDef{
				Ordinal: t.Ord,
				Name:    t.Name,
				Front:   t.Qfmt,
				Back:    t.Afmt,
			})
		}

		models = append(models, m)
	}

	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

func parseDecks(decksJSON string) ([]DeckDef, error) {
	byID := map[string]rawDeck{}
	if err := json.Unmarshal([]byte(decksJSON), &byID); err != nil {
		return nil, fmt.Errorf("decode deck definitions: %w", domain.ErrFormat)
	}

	decks := make([]DeckDef, 0, len(byID))
	for idStr, raw := range byID {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("deck id %q: %w", idStr, domain.ErrFormat)
		}
		decks = append(decks, DeckDef{ID: id, Name: raw.Name})
	}

	sort.Slice(decks, func(i, j int) bool { return decks[i].ID < decks[j].ID })
	return decks, nil
}

func splitTags(s string) []string {
	parts := strings.Fields(s)
	if parts == nil {
		return []string{}
	}
	return parts
}
