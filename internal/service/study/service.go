// Package study implements the spaced-repetition business logic: queue
// selection, review submission and study statistics.
package study

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
	"github.com/tsuyanki/tsuyanki-backend/internal/service/study/sm2"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type cardRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Card, error)
	GetRenderable(ctx context.Context, id uuid.UUID) (domain.RenderableCard, error)
	SelectDue(ctx context.Context, userID uuid.UUID, deckID *uuid.UUID, now time.Time, limit int) ([]domain.Card, error)
	SelectNew(ctx context.Context, userID uuid.UUID, deckID *uuid.UUID, limit int) ([]domain.Card, error)
	SelectAhead(ctx context.Context, userID uuid.UUID, deckID *uuid.UUID, now time.Time, limit int) ([]domain.Card, error)
}

type reviewStateRepo interface {
	CreateIfAbsent(ctx context.Context, s domain.ReviewState) error
	GetForUpdate(ctx context.Context, userID, cardID uuid.UUID) (domain.ReviewState, error)
	Upsert(ctx context.Context, s domain.ReviewState) error
	Mastery(ctx context.Context, userID uuid.UUID, matureDays int) (mature, total int, err error)
}

type reviewLogRepo interface {
	Create(ctx context.Context, l domain.ReviewLog) error
	CountPerDay(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.DayReviewCount, error)
	CountIntroduced(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error)
}

type deckRepo interface {
	GetByID(ctx context.Context, userID, deckID uuid.UUID) (domain.Deck, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the study business logic.
type Service struct {
	cards  cardRepo
	states reviewStateRepo
	logs   reviewLogRepo
	decks  deckRepo
	tx     txManager
	log    *slog.Logger

	cfg          domain.SRSConfig
	mediaBaseURL string

	// now is swappable in tests; NewService sets it to time.Now.
	now func() time.Time
}

// NewService creates a new Study service.
func NewService(
	log *slog.Logger,
	cards cardRepo,
	states reviewStateRepo,
	logs reviewLogRepo,
	decks deckRepo,
	tx txManager,
	cfg domain.SRSConfig,
	mediaBaseURL string,
) *Service {
	return &Service{
		cards:        cards,
		states:       states,
		logs:         logs,
		decks:        decks,
		tx:           tx,
		log:          log.With("service", "study"),
		cfg:          cfg,
		mediaBaseURL: mediaBaseURL,
		now:          time.Now,
	}
}

func (s *Service) sm2Params() sm2.Params {
	p := sm2.Params{
		DefaultEaseFactor: s.cfg.DefaultEaseFactor,
		MinEaseFactor:     s.cfg.MinEaseFactor,
	}
	if p.DefaultEaseFactor == 0 {
		p.DefaultEaseFactor = domain.DefaultEaseFactor
	}
	if p.MinEaseFactor == 0 {
		p.MinEaseFactor = domain.MinEaseFactor
	}
	return p
}
