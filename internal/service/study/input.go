package study

import (
	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
	"github.com/tsuyanki/tsuyanki-backend/internal/service/study/sm2"
)

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	CardID  uuid.UUID
	Quality int
}

// Validate checks all fields and collects all errors.
func (i *SubmitReviewInput) Validate() error {
	var errs []domain.FieldError

	if i.CardID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "card_id", Message: "required"})
	}
	if !sm2.ValidQuality(i.Quality) {
		errs = append(errs, domain.FieldError{Field: "quality", Message: "must be between 0 and 5"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// GetQueueInput holds the parameters for fetching the study queue.
// A nil DeckID selects across all of the user's decks. IgnoreLimits
// switches to cram mode: the daily new-card quota is lifted and cards
// scheduled for the future become eligible.
type GetQueueInput struct {
	DeckID       *uuid.UUID
	Limit        int
	IgnoreLimits bool
}

// Validate checks all fields and collects all errors.
func (i *GetQueueInput) Validate() error {
	var errs []domain.FieldError

	if i.Limit < 0 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be non-negative"})
	}
	if i.DeckID != nil && *i.DeckID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "deck_id", Message: "must be a valid id"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// GetCardInput holds the parameters for rendering a single card.
type GetCardInput struct {
	CardID uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i *GetCardInput) Validate() error {
	if i.CardID == uuid.Nil {
		return domain.NewValidationError("card_id", "required")
	}
	return nil
}
