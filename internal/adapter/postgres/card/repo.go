// Package card implements the Card repository using PostgreSQL.
// Simple lookups use raw SQL; the queue tier queries carry an optional
// deck filter and are built with squirrel.
package card

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
)

// psql builds queries with PostgreSQL $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides card persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new card repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const cardColumns = `c.id, c.note_id, c.card_template_id, c.created_at`

const getCardSQL = `
SELECT ` + cardColumns + `
FROM cards c
WHERE c.id = $1`

const getRenderableSQL = `
SELECT c.id, c.note_id, c.card_template_id, c.created_at,
       n.id, n.deck_id, n.note_type_id, n.fields, n.tags, n.created_at, n.updated_at,
       t.id, t.note_type_id, t.name, t.front_template, t.back_template, t.created_at, t.updated_at
FROM cards c
JOIN notes n ON n.id = c.note_id
JOIN card_templates t ON t.id = c.card_template_id
WHERE c.id = $1`

const listByNoteSQL = `
SELECT ` + cardColumns + `
FROM cards c
WHERE c.note_id = $1
ORDER BY c.created_at ASC`

// Create inserts a new card.
// A duplicate (note, template) pair results in domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, c domain.Card) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx,
		`INSERT INTO cards (id, note_id, card_template_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		c.ID, c.NoteID, c.CardTemplateID, c.CreatedAt,
	)
	if err != nil {
		return postgres.MapError(err, "card", c.ID)
	}

	return nil
}

// CreateBatch inserts cards in one round trip. Used by the import pipeline
// where a single legacy package can carry thousands of cards.
func (r *Repo) CreateBatch(ctx context.Context, cards []domain.Card) error {
	if len(cards) == 0 {
		return nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	batch := &pgx.Batch{}
	for _, c := range cards {
		batch.Queue(
			`INSERT INTO cards (id, note_id, card_template_id, created_at)
			 VALUES ($1, $2, $3, $4)`,
			c.ID, c.NoteID, c.CardTemplateID, c.CreatedAt,
		)
	}

	results := querier.SendBatch(ctx, batch)
	defer results.Close()

	for _, c := range cards {
		if _, err := results.Exec(); err != nil {
			return postgres.MapError(err, "card", c.ID)
		}
	}

	return nil
}

// GetByID returns a card by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Card, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	c, err := scanCard(querier.QueryRow(ctx, getCardSQL, id))
	if err != nil {
		return domain.Card{}, postgres.MapError(err, "card", id)
	}

	return c, nil
}

// GetRenderable returns a card joined with its note and template.
func (r *Repo) GetRenderable(ctx context.Context, id uuid.UUID) (domain.RenderableCard, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var (
		rc         domain.RenderableCard
		fieldsJSON []byte
	)

	err := querier.QueryRow(ctx, getRenderableSQL, id).Scan(
		&rc.Card.ID, &rc.Card.NoteID, &rc.Card.CardTemplateID, &rc.Card.CreatedAt,
		&rc.Note.ID, &rc.Note.DeckID, &rc.Note.NoteTypeID, &fieldsJSON, &rc.Note.Tags, &rc.Note.CreatedAt, &rc.Note.UpdatedAt,
		&rc.Template.ID, &rc.Template.NoteTypeID, &rc.Template.Name, &rc.Template.FrontTemplate, &rc.Template.BackTemplate, &rc.Template.CreatedAt, &rc.Template.UpdatedAt,
	)
	if err != nil {
		return domain.RenderableCard{}, postgres.MapError(err, "card", id)
	}

	if err := json.Unmarshal(fieldsJSON, &rc.Note.Fields); err != nil {
		return domain.RenderableCard{}, fmt.Errorf("unmarshal note fields: %w", err)
	}

	return rc, nil
}

// ListByNote returns all cards of one note in creation order.
func (r *Repo) ListByNote(ctx context.Context, noteID uuid.UUID) ([]domain.Card, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByNoteSQL, noteID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	return collectCards(rows)
}

// ---------------------------------------------------------------------------
// Queue tier queries
// ---------------------------------------------------------------------------

// SelectDue returns cards whose review state for userID is due at or before
// now and has accumulated schedule (repetition or interval above zero).
// Freshly imported zero-state rows are excluded; they surface as new cards.
func (r *Repo) SelectDue(ctx context.Context, userID uuid.UUID, deckID *uuid.UUID, now time.Time, limit int) ([]domain.Card, error) {
	q := psql.Select("c.id", "c.note_id", "c.card_template_id", "c.created_at").
		From("cards c").
		Join("review_states rs ON rs.card_id = c.id AND rs.user_id = ?", userID).
		Where(sq.LtOrEq{"rs.due_at": now}).
		Where(sq.Or{sq.Gt{"rs.repetition": 0}, sq.Gt{"rs.interval_days": 0}}).
		OrderBy("rs.due_at ASC").
		Limit(uint64(limit))
	q = scopeToDeck(q, deckID)

	return r.selectCards(ctx, q, "select due cards")
}

// SelectNew returns cards userID has never studied: no review state row, or
// an imported zero-state row. Order is randomized so new cards do not always
// surface in creation order.
func (r *Repo) SelectNew(ctx context.Context, userID uuid.UUID, deckID *uuid.UUID, limit int) ([]domain.Card, error) {
	q := psql.Select("c.id", "c.note_id", "c.card_template_id", "c.created_at").
		From("cards c").
		LeftJoin("review_states rs ON rs.card_id = c.id AND rs.user_id = ?", userID).
		Where(sq.Or{
			sq.Eq{"rs.id": nil},
			sq.And{sq.Eq{"rs.repetition": 0}, sq.Eq{"rs.interval_days": 0}},
		}).
		OrderBy("random()").
		Limit(uint64(limit))
	q = scopeToDeck(q, deckID)

	return r.selectCards(ctx, q, "select new cards")
}

// SelectAhead returns not-yet-due cards for cram mode, cycling fairly
// through the backlog: least recently reviewed first, then soonest due.
func (r *Repo) SelectAhead(ctx context.Context, userID uuid.UUID, deckID *uuid.UUID, now time.Time, limit int) ([]domain.Card, error) {
	q := psql.Select("c.id", "c.note_id", "c.card_template_id", "c.created_at").
		From("cards c").
		Join("review_states rs ON rs.card_id = c.id AND rs.user_id = ?", userID).
		Where(sq.Gt{"rs.due_at": now}).
		OrderBy("rs.last_reviewed_at ASC NULLS FIRST", "rs.due_at ASC").
		Limit(uint64(limit))
	q = scopeToDeck(q, deckID)

	return r.selectCards(ctx, q, "select ahead cards")
}

func scopeToDeck(q sq.SelectBuilder, deckID *uuid.UUID) sq.SelectBuilder {
	if deckID == nil {
		return q
	}
	return q.Join("notes n ON n.id = c.note_id").Where(sq.Eq{"n.deck_id": *deckID})
}

func (r *Repo) selectCards(ctx context.Context, q sq.SelectBuilder, op string) ([]domain.Card, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	cards, err := collectCards(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cards, nil
}

func collectCards(rows pgx.Rows) ([]domain.Card, error) {
	cards := []domain.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}

func scanCard(row pgx.Row) (domain.Card, error) {
	var c domain.Card
	if err := row.Scan(&c.ID, &c.NoteID, &c.CardTemplateID, &c.CreatedAt); err != nil {
		return domain.Card{}, err
	}
	return c, nil
}
