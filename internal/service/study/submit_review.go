package study

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
	"github.com/tsuyanki/tsuyanki-backend/internal/service/study/sm2"
	"github.com/tsuyanki/tsuyanki-backend/pkg/ctxutil"
)

// SubmitReview records one review and advances the card's schedule.
// Inside the transaction an untouched state row is seeded first
// (insert-if-absent), then locked, so concurrent submissions for the
// same (user, card) serialize on the row lock even when neither has
// been reviewed before: the later one reads the state the earlier one
// wrote.
func (s *Service) SubmitReview(ctx context.Context, input SubmitReviewInput) (domain.ReviewResult, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ReviewResult{}, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return domain.ReviewResult{}, err
	}

	card, err := s.cards.GetByID(ctx, input.CardID)
	if err != nil {
		return domain.ReviewResult{}, fmt.Errorf("get card: %w", err)
	}

	now := s.now().UTC()
	params := s.sm2Params()

	var next domain.ReviewState

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		seed := domain.ReviewState{
			ID:         uuid.New(),
			UserID:     userID,
			CardID:     card.ID,
			EaseFactor: params.DefaultEaseFactor,
			DueAt:      now,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.states.CreateIfAbsent(txCtx, seed); err != nil {
			return fmt.Errorf("seed review state: %w", err)
		}

		prev, err := s.states.GetForUpdate(txCtx, userID, card.ID)
		if err != nil {
			return fmt.Errorf("lock review state: %w", err)
		}

		sched := sm2.Apply(params, sm2.State{
			EaseFactor:   prev.EaseFactor,
			IntervalDays: prev.IntervalDays,
			Repetition:   prev.Repetition,
		}, input.Quality, now)

		next = prev
		next.EaseFactor = sched.State.EaseFactor
		next.IntervalDays = sched.State.IntervalDays
		next.Repetition = sched.State.Repetition
		next.DueAt = sched.DueAt
		next.LastReviewedAt = &now
		next.UpdatedAt = now

		if err := s.states.Upsert(txCtx, next); err != nil {
			return fmt.Errorf("upsert review state: %w", err)
		}

		err = s.logs.Create(txCtx, domain.ReviewLog{
			ID:           uuid.New(),
			UserID:       userID,
			CardID:       card.ID,
			Quality:      input.Quality,
			EaseFactor:   next.EaseFactor,
			IntervalDays: next.IntervalDays,
			Repetition:   next.Repetition,
			ReviewedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("create review log: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.ReviewResult{}, err
	}

	s.log.InfoContext(ctx, "review submitted",
		slog.String("user_id", userID.String()),
		slog.String("card_id", card.ID.String()),
		slog.Int("quality", input.Quality),
		slog.Int("interval_days", next.IntervalDays),
		slog.Time("due_at", next.DueAt),
	)

	return domain.ReviewResult{
		CardID:       card.ID,
		NextDueAt:    next.DueAt,
		IntervalDays: next.IntervalDays,
	}, nil
}
