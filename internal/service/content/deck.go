package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
	"github.com/tsuyanki/tsuyanki-backend/pkg/ctxutil"
)

// CreateDeck creates a deck owned by the calling user.
func (s *Service) CreateDeck(ctx context.Context, input CreateDeckInput) (domain.Deck, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.Deck{}, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return domain.Deck{}, err
	}

	now := s.now().UTC()
	deck := domain.Deck{
		ID:          uuid.New(),
		OwnerUserID: userID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		IsPublic:    input.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.decks.Create(ctx, deck); err != nil {
		return domain.Deck{}, fmt.Errorf("create deck: %w", err)
	}

	s.log.InfoContext(ctx, "deck created",
		slog.String("user_id", userID.String()),
		slog.String("deck_id", deck.ID.String()),
	)

	return deck, nil
}

// ListDecks returns the caller's decks in creation order.
func (s *Service) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	decks, err := s.decks.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	return decks, nil
}

// DeleteDeck removes a deck. Notes, cards and review state go with it
// through the schema's cascading deletes.
func (s *Service) DeleteDeck(ctx context.Context, deckID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if deckID == uuid.Nil {
		return domain.NewValidationError("deck_id", "required")
	}

	if err := s.decks.Delete(ctx, userID, deckID); err != nil {
		return fmt.Errorf("delete deck: %w", err)
	}

	s.log.InfoContext(ctx, "deck deleted",
		slog.String("user_id", userID.String()),
		slog.String("deck_id", deckID.String()),
	)

	return nil
}
