// Package note implements the Note repository using PostgreSQL.
// Field values are stored as jsonb, tags as a text array.
package note

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
)

// Repo provides note persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new note repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const noteColumns = `id, deck_id, note_type_id, fields, tags, created_at, updated_at`

const getNoteSQL = `
SELECT ` + noteColumns + `
FROM notes
WHERE id = $1`

const listByDeckSQL = `
SELECT ` + noteColumns + `
FROM notes
WHERE deck_id = $1
ORDER BY created_at ASC`

// Create inserts a new note.
func (r *Repo) Create(ctx context.Context, n domain.Note) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	fieldsJSON, err := json.Marshal(n.Fields)
	if err != nil {
		return fmt.Errorf("marshal note fields: %w", err)
	}

	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err = querier.Exec(ctx,
		`INSERT INTO notes (`+noteColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.DeckID, n.NoteTypeID, fieldsJSON, tags, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return postgres.MapError(err, "note", n.ID)
	}

	return nil
}

// GetByID returns a note by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Note, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	n, err := scanNote(querier.QueryRow(ctx, getNoteSQL, id))
	if err != nil {
		return domain.Note{}, postgres.MapError(err, "note", id)
	}

	return n, nil
}

// ListByDeck returns all notes in a deck, oldest first.
func (r *Repo) ListByDeck(ctx context.Context, deckID uuid.UUID) ([]domain.Note, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByDeckSQL, deckID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	return notes, nil
}

// Delete removes a note by ID. Its cards cascade.
// Returns domain.ErrNotFound if the note does not exist.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return postgres.MapError(err, "note", id)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func scanNote(row pgx.Row) (domain.Note, error) {
	var (
		n          domain.Note
		fieldsJSON []byte
	)

	if err := row.Scan(&n.ID, &n.DeckID, &n.NoteTypeID, &fieldsJSON, &n.Tags, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return domain.Note{}, err
	}

	if err := json.Unmarshal(fieldsJSON, &n.Fields); err != nil {
		return domain.Note{}, fmt.Errorf("unmarshal note fields: %w", err)
	}

	return n, nil
}
