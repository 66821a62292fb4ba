// Package notetype implements the NoteType and CardTemplate repository
// using PostgreSQL. Field schemas are stored as jsonb.
package notetype

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

// Repo provides note type and card template persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new note type repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const noteTypeColumns = `id, user_id, name, fields, created_at, updated_at`

const getNoteTypeSQL = `
SELECT ` + noteTypeColumns + `
FROM note_types
WHERE id = $1`

// A user-scoped type shadows a global type of the same name, hence the
// NULLS LAST ordering.
const findByNameInScopeSQL = `
SELECT ` + noteTypeColumns + `
FROM note_types
WHERE name = $1 AND (user_id = $2 OR user_id IS NULL)
ORDER BY user_id NULLS LAST
LIMIT 1`

const templateColumns = `id, note_type_id, name, front_template, back_template, created_at, updated_at`

const getTemplateSQL = `
SELECT ` + templateColumns + `
FROM card_templates
WHERE id = $1`

const listTemplatesSQL = `
SELECT ` + templateColumns + `
FROM card_templates
WHERE note_type_id = $1
ORDER BY created_at ASC, name ASC`

// Create inserts a new note type.
// A duplicate (scope, name) results in domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, nt domain.NoteType) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	fieldsJSON, err := json.Marshal(nt.Fields)
	if err != nil {
		return fmt.Errorf("marshal note type fields: %w", err)
	}

	_, err = querier.Exec(ctx,
		`INSERT INTO note_types (`+noteTypeColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		nt.ID, nt.UserID, nt.Name, fieldsJSON, nt.CreatedAt, nt.UpdatedAt,
	)
	if err != nil {
		return postgres.MapError(err, "note_type", nt.ID)
	}

	return nil
}

// GetByID returns a note type by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.NoteType, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	nt, err := scanNoteType(querier.QueryRow(ctx, getNoteTypeSQL, id))
	if err != nil {
		return domain.NoteType{}, postgres.MapError(err, "note_type", id)
	}

	return nt, nil
}

// FindByNameInScope looks up a note type by name visible to userID: either
// scoped to that user or global. Returns domain.ErrNotFound when no type
// with that name is visible.
func (r *Repo) FindByNameInScope(ctx context.Context, userID uuid.UUID, name string) (domain.NoteType, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	nt, err := scanNoteType(querier.QueryRow(ctx, findByNameInScopeSQL, name, userID))
	if err != nil {
		return domain.NoteType{}, postgres.MapError(err, "note_type", uuid.Nil)
	}

	return nt, nil
}

// CreateTemplate inserts a card template for a note type.
// A duplicate (note_type_id, name) results in domain.ErrAlreadyExists.
func (r *Repo) CreateTemplate(ctx context.Context, tpl domain.CardTemplate) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx,
		`INSERT INTO card_templates (`+templateColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tpl.ID, tpl.NoteTypeID, tpl.Name, tpl.FrontTemplate, tpl.BackTemplate, tpl.CreatedAt, tpl.UpdatedAt,
	)
	if err != nil {
		return postgres.MapError(err, "card_template", tpl.ID)
	}

	return nil
}

// GetTemplate returns a card template by primary key.
func (r *Repo) GetTemplate(ctx context.Context, id uuid.UUID) (domain.CardTemplate, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tpl, err := scanTemplate(querier.QueryRow(ctx, getTemplateSQL, id))
	if err != nil {
		return domain.CardTemplate{}, postgres.MapError(err, "card_template", id)
	}

	return tpl, nil
}

// ListTemplates returns all templates of a note type in creation order.
func (r *Repo) ListTemplates(ctx context.Context, noteTypeID uuid.UUID) ([]domain.CardTemplate, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listTemplatesSQL, noteTypeID)
	if err != nil {
		return nil, fmt.Errorf("list card templates: %w", err)
	}
	defer rows.Close()

	templates := []domain.CardTemplate{}
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card template: %w", err)
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card templates: %w", err)
	}

	return templates, nil
}

func scanNoteType(row pgx.Row) (domain.NoteType, error) {
	var (
		nt         domain.NoteType
		fieldsJSON []byte
	)

	if err := row.Scan(&nt.ID, &nt.UserID, &nt.Name, &fieldsJSON, &nt.CreatedAt, &nt.UpdatedAt); err != nil {
		return domain.NoteType{}, err
	}

	if err := json.Unmarshal(fieldsJSON, &nt.Fields); err != nil {
		return domain.NoteType{}, fmt.Errorf("unmarshal note type fields: %w", err)
	}

	return nt, nil
}

func scanTemplate(row pgx.Row) (domain.CardTemplate, error) {
	var tpl domain.CardTemplate
	if err := row.Scan(&tpl.ID, &tpl.NoteTypeID, &tpl.Name, &tpl.FrontTemplate, &tpl.BackTemplate, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
		return domain.CardTemplate{}, err
	}
	return tpl, nil
}
