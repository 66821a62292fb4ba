// Package reviewstate implements the ReviewState repository using PostgreSQL.
// At most one row exists per (user, card); writes go through an upsert.
package reviewstate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
)

// Repo provides review state persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new review state repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const stateColumns = `id, user_id, card_id, ease_factor, interval_days, repetition, due_at, last_reviewed_at, created_at, updated_at`

const getStateSQL = `
SELECT ` + stateColumns + `
FROM review_states
WHERE user_id = $1 AND card_id = $2`

// FOR UPDATE pins the row for the rest of the transaction so concurrent
// submits on the same (user, card) serialize instead of losing updates.
const getStateForUpdateSQL = getStateSQL + `
FOR UPDATE`

const upsertStateSQL = `
INSERT INTO review_states (` + stateColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (user_id, card_id) DO UPDATE SET
    ease_factor      = EXCLUDED.ease_factor,
    interval_days    = EXCLUDED.interval_days,
    repetition       = EXCLUDED.repetition,
    due_at           = EXCLUDED.due_at,
    last_reviewed_at = EXCLUDED.last_reviewed_at,
    updated_at       = EXCLUDED.updated_at`

const createIfAbsentSQL = `
INSERT INTO review_states (` + stateColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (user_id, card_id) DO NOTHING`

const masterySQL = `
SELECT count(*) FILTER (WHERE interval_days > $2), count(*)
FROM review_states
WHERE user_id = $1`

// Get returns the review state for a (user, card) pair.
// Returns domain.ErrNotFound when the user has never studied the card.
func (r *Repo) Get(ctx context.Context, userID, cardID uuid.UUID) (domain.ReviewState, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	s, err := scanState(querier.QueryRow(ctx, getStateSQL, userID, cardID))
	if err != nil {
		return domain.ReviewState{}, postgres.MapError(err, "review_state", cardID)
	}

	return s, nil
}

// GetForUpdate is Get with a row-level lock. Must run inside a transaction;
// outside one the lock releases immediately and provides no protection.
func (r *Repo) GetForUpdate(ctx context.Context, userID, cardID uuid.UUID) (domain.ReviewState, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	s, err := scanState(querier.QueryRow(ctx, getStateForUpdateSQL, userID, cardID))
	if err != nil {
		return domain.ReviewState{}, postgres.MapError(err, "review_state", cardID)
	}

	return s, nil
}

// CreateIfAbsent inserts the state unless a (user, card) row already
// exists. Inside a transaction a concurrent insert for the same pair
// blocks until the other transaction commits, so a following
// GetForUpdate always finds — and locks — a row.
func (r *Repo) CreateIfAbsent(ctx context.Context, s domain.ReviewState) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, createIfAbsentSQL,
		s.ID, s.UserID, s.CardID, s.EaseFactor, s.IntervalDays, s.Repetition,
		s.DueAt, s.LastReviewedAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return postgres.MapError(err, "review_state", s.ID)
	}

	return nil
}

// Upsert writes a review state, inserting or replacing the (user, card) row.
func (r *Repo) Upsert(ctx context.Context, s domain.ReviewState) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, upsertStateSQL,
		s.ID, s.UserID, s.CardID, s.EaseFactor, s.IntervalDays, s.Repetition,
		s.DueAt, s.LastReviewedAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return postgres.MapError(err, "review_state", s.ID)
	}

	return nil
}

// CreateBatch inserts fresh review states in one round trip. Used by the
// import pipeline, which creates one zero state per imported card.
func (r *Repo) CreateBatch(ctx context.Context, states []domain.ReviewState) error {
	if len(states) == 0 {
		return nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	batch := &pgx.Batch{}
	for _, s := range states {
		batch.Queue(
			`INSERT INTO review_states (`+stateColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			s.ID, s.UserID, s.CardID, s.EaseFactor, s.IntervalDays, s.Repetition,
			s.DueAt, s.LastReviewedAt, s.CreatedAt, s.UpdatedAt,
		)
	}

	results := querier.SendBatch(ctx, batch)
	defer results.Close()

	for _, s := range states {
		if _, err := results.Exec(); err != nil {
			return postgres.MapError(err, "review_state", s.ID)
		}
	}

	return nil
}

// Mastery returns how many of the user's review states have an interval
// above matureDays, along with the total state count.
func (r *Repo) Mastery(ctx context.Context, userID uuid.UUID, matureDays int) (mature, total int, err error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if err := querier.QueryRow(ctx, masterySQL, userID, matureDays).Scan(&mature, &total); err != nil {
		return 0, 0, fmt.Errorf("count mastery: %w", err)
	}

	return mature, total, nil
}

func scanState(row pgx.Row) (domain.ReviewState, error) {
	var s domain.ReviewState
	if err := row.Scan(&s.ID, &s.UserID, &s.CardID, &s.EaseFactor, &s.IntervalDays,
		&s.Repetition, &s.DueAt, &s.LastReviewedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return domain.ReviewState{}, err
	}
	return s, nil
}
