// Package reviewlog implements the append-only ReviewLog repository using
// PostgreSQL. Rows are never updated or deleted by normal flow.
package reviewlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
)

// Repo provides review log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new review log repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const countPerDaySQL = `
SELECT date_trunc('day', reviewed_at) AS day, count(*)
FROM review_logs
WHERE user_id = $1 AND reviewed_at >= $2 AND reviewed_at < $3
GROUP BY day
ORDER BY day ASC`

// A card counts as introduced on the day of its earliest-ever log row,
// regardless of quality: a failed first review still introduces the card.
const countIntroducedSQL = `
SELECT count(*)
FROM (
    SELECT card_id, min(reviewed_at) AS first_reviewed_at
    FROM review_logs
    WHERE user_id = $1
    GROUP BY card_id
) firsts
WHERE first_reviewed_at >= $2 AND first_reviewed_at < $3`

// Create appends a review log row.
func (r *Repo) Create(ctx context.Context, l domain.ReviewLog) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx,
		`INSERT INTO review_logs (id, user_id, card_id, quality, ease_factor, interval_days, repetition, reviewed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.ID, l.UserID, l.CardID, l.Quality, l.EaseFactor, l.IntervalDays, l.Repetition, l.ReviewedAt,
	)
	if err != nil {
		return postgres.MapError(err, "review_log", l.ID)
	}

	return nil
}

// CountPerDay returns per-day review counts for [from, to), oldest first.
// Days with no reviews are absent from the result.
func (r *Repo) CountPerDay(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.DayReviewCount, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, countPerDaySQL, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("count reviews per day: %w", err)
	}
	defer rows.Close()

	counts := []domain.DayReviewCount{}
	for rows.Next() {
		var c domain.DayReviewCount
		if err := rows.Scan(&c.Date, &c.Count); err != nil {
			return nil, fmt.Errorf("scan day count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day counts: %w", err)
	}

	return counts, nil
}

// CountIntroduced returns how many cards had their first-ever review inside
// [from, to). Used for the daily new-card quota.
func (r *Repo) CountIntroduced(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countIntroducedSQL, userID, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("count introduced cards: %w", err)
	}

	return count, nil
}
