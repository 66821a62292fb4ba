package study

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
)

// Hand-written func-field mocks for the consumer interfaces. Unset
// funcs panic, which surfaces unexpected calls as test failures.

type cardRepoMock struct {
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (domain.Card, error)
	GetRenderableFunc func(ctx context.Context, id uuid.UUID) (domain.RenderableCard, error)
	SelectDueFunc     func(ctx context.Context, userID uuid.UUID, deckID *uuid.UUID, now time.Time, limit int) ([]domain.Card, error)
	SelectNewFunc     func(ctx context.Context, userID uuid.UUID, deckID *uuid.UUID, limit int) ([]domain.Card, error)
	SelectAheadFunc   func(ctx context.Context, userID uuid.UUID, deckID *uuid.UUID, now time.Time, limit int) ([]domain.Card, error)
}

func (m *cardRepoMock) GetByID(ctx context.Context, id uuid.UUID) (domain.Card, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *cardRepoMock) GetRenderable(ctx context.Context, id uuid.UUID) (domain.RenderableCard, error) {
	return m.GetRenderableFunc(ctx, id)
}

func (m *cardRepoMock) SelectDue(ctx context.Context, userID uuid.UUID, deckID *uuid.UUID, now time.Time, limit int) ([]domain.Card, error) {
	return m.SelectDueFunc(ctx, userID, deckID, now, limit)
}

func (m *cardRepoMock) SelectNew(ctx context.Context, userID uuid.UUID, deckID *uuid.UUID, limit int) ([]domain.Card, error) {
	return m.SelectNewFunc(ctx, userID, deckID, limit)
}

func (m *cardRepoMock) SelectAhead(ctx context.Context, userID uuid.UUID, deckID *uuid.UUID, now time.Time, limit int) ([]domain.Card, error) {
	return m.SelectAheadFunc(ctx, userID, deckID, now, limit)
}

type reviewStateRepoMock struct {
	CreateIfAbsentFunc func(ctx context.Context, s domain.ReviewState) error
	GetForUpdateFunc   func(ctx context.Context, userID, cardID uuid.UUID) (domain.ReviewState, error)
	UpsertFunc         func(ctx context.Context, s domain.ReviewState) error
	MasteryFunc        func(ctx context.Context, userID uuid.UUID, matureDays int) (int, int, error)
}

func (m *reviewStateRepoMock) CreateIfAbsent(ctx context.Context, s domain.ReviewState) error {
	return m.CreateIfAbsentFunc(ctx, s)
}

func (m *reviewStateRepoMock) GetForUpdate(ctx context.Context, userID, cardID uuid.UUID) (domain.ReviewState, error) {
	return m.GetForUpdateFunc(ctx, userID, cardID)
}

func (m *reviewStateRepoMock) Upsert(ctx context.Context, s domain.ReviewState) error {
	return m.UpsertFunc(ctx, s)
}

func (m *reviewStateRepoMock) Mastery(ctx context.Context, userID uuid.UUID, matureDays int) (int, int, error) {
	return m.MasteryFunc(ctx, userID, matureDays)
}

type reviewLogRepoMock struct {
	CreateFunc          func(ctx context.Context, l domain.ReviewLog) error
	CountPerDayFunc     func(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.DayReviewCount, error)
	CountIntroducedFunc func(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error)
}

func (m *reviewLogRepoMock) Create(ctx context.Context, l domain.ReviewLog) error {
	return m.CreateFunc(ctx, l)
}

func (m *reviewLogRepoMock) CountPerDay(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.DayReviewCount, error) {
	return m.CountPerDayFunc(ctx, userID, from, to)
}

func (m *reviewLogRepoMock) CountIntroduced(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	return m.CountIntroducedFunc(ctx, userID, from, to)
}

type deckRepoMock struct {
	GetByIDFunc func(ctx context.Context, userID, deckID uuid.UUID) (domain.Deck, error)
}

func (m *deckRepoMock) GetByID(ctx context.Context, userID, deckID uuid.UUID) (domain.Deck, error) {
	return m.GetByIDFunc(ctx, userID, deckID)
}

// txManagerMock runs the function directly; there is no real
// transaction in unit tests.
type txManagerMock struct{}

func (txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
