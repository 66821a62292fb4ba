package study

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
	"github.com/tsuyanki/tsuyanki-backend/internal/service/render"
	"github.com/tsuyanki/tsuyanki-backend/pkg/ctxutil"
)

// RenderedCard is a card prepared for display: both sides rendered
// against the note's field values, media references resolved to URLs.
type RenderedCard struct {
	CardID       uuid.UUID
	NoteID       uuid.UUID
	DeckID       uuid.UUID
	TemplateName string
	Front        string
	Back         string
	Tags         []string
}

// GetCard renders one card for study. The front hides answer-typed
// fields behind an input box; the back reveals them and can embed the
// rendered front.
func (s *Service) GetCard(ctx context.Context, input GetCardInput) (RenderedCard, error) {
	if _, ok := ctxutil.UserIDFromCtx(ctx); !ok {
		return RenderedCard{}, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return RenderedCard{}, err
	}

	rc, err := s.cards.GetRenderable(ctx, input.CardID)
	if err != nil {
		return RenderedCard{}, fmt.Errorf("get renderable card: %w", err)
	}

	front := render.Render(rc.Template.FrontTemplate, rc.Note.Fields, render.Options{})
	back := render.Render(rc.Template.BackTemplate, rc.Note.Fields, render.Options{
		RevealAnswer:  true,
		FrontTemplate: rc.Template.FrontTemplate,
	})

	return RenderedCard{
		CardID:       rc.Card.ID,
		NoteID:       rc.Note.ID,
		DeckID:       rc.Note.DeckID,
		TemplateName: rc.Template.Name,
		Front:        render.ResolveMedia(front, s.mediaBaseURL),
		Back:         render.ResolveMedia(back, s.mediaBaseURL),
		Tags:         rc.Note.Tags,
	}, nil
}
