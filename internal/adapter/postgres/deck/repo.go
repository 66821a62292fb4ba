// Package deck implements the Deck repository using PostgreSQL.
package deck

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
)

// Repo provides deck persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new deck repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const deckColumns = `id, owner_user_id, title, description, is_public, created_at, updated_at`

const getDeckSQL = `
SELECT ` + deckColumns + `
FROM decks
WHERE id = $1 AND owner_user_id = $2`

const listDecksSQL = `
SELECT ` + deckColumns + `
FROM decks
WHERE owner_user_id = $1
ORDER BY created_at ASC`

const countNotesSQL = `
SELECT count(*) FROM notes WHERE deck_id = $1`

// Create inserts a new deck. The ID and timestamps on the argument are used
// as-is so callers inside a transaction control what gets persisted.
func (r *Repo) Create(ctx context.Context, d domain.Deck) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx,
		`INSERT INTO decks (`+deckColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.OwnerUserID, d.Title, d.Description, d.IsPublic, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return postgres.MapError(err, "deck", d.ID)
	}

	return nil
}

// GetByID returns a deck by primary key filtered by owner.
func (r *Repo) GetByID(ctx context.Context, userID, deckID uuid.UUID) (domain.Deck, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getDeckSQL, deckID, userID)

	d, err := scanDeck(row)
	if err != nil {
		return domain.Deck{}, postgres.MapError(err, "deck", deckID)
	}

	return d, nil
}

// ListByOwner returns all decks owned by a user, oldest first.
func (r *Repo) ListByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Deck, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listDecksSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	defer rows.Close()

	decks := []domain.Deck{}
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deck: %w", err)
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decks: %w", err)
	}

	return decks, nil
}

// CountNotes returns the number of notes currently in a deck.
func (r *Repo) CountNotes(ctx context.Context, deckID uuid.UUID) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countNotesSQL, deckID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count deck notes: %w", err)
	}

	return count, nil
}

// Delete removes a deck by ID. Notes and cards cascade.
// Returns domain.ErrNotFound if the deck does not exist or belongs to another user.
func (r *Repo) Delete(ctx context.Context, userID, deckID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx,
		`DELETE FROM decks WHERE id = $1 AND owner_user_id = $2`,
		deckID, userID,
	)
	if err != nil {
		return postgres.MapError(err, "deck", deckID)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deck %s: %w", deckID, domain.ErrNotFound)
	}

	return nil
}

func scanDeck(row pgx.Row) (domain.Deck, error) {
	var d domain.Deck
	if err := row.Scan(&d.ID, &d.OwnerUserID, &d.Title, &d.Description, &d.IsPublic, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return domain.Deck{}, err
	}
	return d, nil
}
