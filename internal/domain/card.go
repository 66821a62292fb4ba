package domain

import (
	"time"

	"github.com/google/uuid"
)

// Card is one reviewable unit generated from a note by one of its
// note type's templates. Cards carry no per-user state themselves;
// that lives in ReviewState.
type Card struct {
	ID             uuid.UUID
	NoteID         uuid.UUID
	CardTemplateID uuid.UUID
	CreatedAt      time.Time
}

// ReviewState is the per-(user, card) spaced-repetition state.
// At most one row exists per pair; absence means the user has never
// studied the card.
type ReviewState struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	CardID         uuid.UUID
	EaseFactor     float64
	IntervalDays   int
	Repetition     int
	DueAt          time.Time
	LastReviewedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RenderableCard bundles a card with the note and template needed to
// render it.
type RenderableCard struct {
	Card     Card
	Note     Note
	Template CardTemplate
}

// ReviewLog is an append-only record of one submitted review, with a
// snapshot of the state the review produced. Rows are never mutated.
type ReviewLog struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	CardID       uuid.UUID
	Quality      int
	EaseFactor   float64
	IntervalDays int
	Repetition   int
	ReviewedAt   time.Time
}

// Default scheduling constants. MatureIntervalDays is the threshold
// above which a card counts toward mastery statistics.
const (
	DefaultEaseFactor  = 2.5
	MinEaseFactor      = 1.3
	MatureIntervalDays = 21
)
