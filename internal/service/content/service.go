// Package content holds the plain write path for decks and notes: the
// entities the importer creates in bulk can also be created and read
// one at a time here.
package content

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type deckRepo interface {
	Create(ctx context.Context, d domain.Deck) error
	GetByID(ctx context.Context, userID, deckID uuid.UUID) (domain.Deck, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Deck, error)
	Delete(ctx context.Context, userID, deckID uuid.UUID) error
}

type noteTypeRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.NoteType, error)
	ListTemplates(ctx context.Context, noteTypeID uuid.UUID) ([]domain.CardTemplate, error)
}

type noteRepo interface {
	Create(ctx context.Context, n domain.Note) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Note, error)
}

type cardRepo interface {
	CreateBatch(ctx context.Context, cards []domain.Card) error
	ListByNote(ctx context.Context, noteID uuid.UUID) ([]domain.Card, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements deck and note management.
type Service struct {
	decks     deckRepo
	noteTypes noteTypeRepo
	notes     noteRepo
	cards     cardRepo
	tx        txManager
	log       *slog.Logger

	// now is swappable in tests; NewService sets it to time.Now.
	now func() time.Time
}

// NewService creates a new content service.
func NewService(
	log *slog.Logger,
	decks deckRepo,
	noteTypes noteTypeRepo,
	notes noteRepo,
	cards cardRepo,
	tx txManager,
) *Service {
	return &Service{
		decks:     decks,
		noteTypes: noteTypes,
		notes:     notes,
		cards:     cards,
		tx:        tx,
		log:       log.With("service", "content"),
		now:       time.Now,
	}
}
