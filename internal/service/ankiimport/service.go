// Package ankiimport ingests legacy .apkg study packages: the zip
// container is unpacked into a scratch directory, the embedded SQLite
// collection is read, and decks, note types, notes, cards and zeroed
// review states are persisted in a single transaction. Media files are
// copied after the commit, best-effort.
package ankiimport

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/config"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type deckRepo interface {
	Create(ctx context.Context, d domain.Deck) error
	CountNotes(ctx context.Context, deckID uuid.UUID) (int, error)
	Delete(ctx context.Context, userID, deckID uuid.UUID) error
}

type noteTypeRepo interface {
	Create(ctx context.Context, nt domain.NoteType) error
	FindByNameInScope(ctx context.Context, userID uuid.UUID, name string) (domain.NoteType, error)
	CreateTemplate(ctx context.Context, tpl domain.CardTemplate) error
	ListTemplates(ctx context.Context, noteTypeID uuid.UUID) ([]domain.CardTemplate, error)
}

type noteRepo interface {
	Create(ctx context.Context, n domain.Note) error
}

type cardRepo interface {
	CreateBatch(ctx context.Context, cards []domain.Card) error
}

type reviewStateRepo interface {
	CreateBatch(ctx context.Context, states []domain.ReviewState) error
}

type mediaStore interface {
	Save(name string, r io.Reader) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	LockUserImport(ctx context.Context, userKey string) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Result summarizes a completed import.
type Result struct {
	DecksImported int
	NotesImported int
}

// Service implements the legacy-package import pipeline.
type Service struct {
	decks     deckRepo
	noteTypes noteTypeRepo
	notes     noteRepo
	cards     cardRepo
	states    reviewStateRepo
	media     mediaStore
	tx        txManager
	log       *slog.Logger
	cfg       config.ImportConfig

	// now is swappable in tests; NewService sets it to time.Now.
	now func() time.Time
}

// NewService creates a new import service.
func NewService(
	log *slog.Logger,
	decks deckRepo,
	noteTypes noteTypeRepo,
	notes noteRepo,
	cards cardRepo,
	states reviewStateRepo,
	media mediaStore,
	tx txManager,
	cfg config.ImportConfig,
) *Service {
	return &Service{
		decks:     decks,
		noteTypes: noteTypes,
		notes:     notes,
		cards:     cards,
		states:    states,
		media:     media,
		tx:        tx,
		log:       log.With("service", "ankiimport"),
		cfg:       cfg,
		now:       time.Now,
	}
}
