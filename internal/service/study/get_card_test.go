package study

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
	"github.com/tsuyanki/tsuyanki-backend/pkg/ctxutil"
)

func renderableFixture() domain.RenderableCard {
	return domain.RenderableCard{
		Card: domain.Card{ID: uuid.New(), NoteID: uuid.New(), CardTemplateID: uuid.New()},
		Note: domain.Note{
			ID:     uuid.New(),
			DeckID: uuid.New(),
			Fields: map[string]string{
				"Expression": "猫",
				"Meaning":    "cat",
				"Audio":      "[sound:neko.mp3]",
			},
			Tags: []string{"animal"},
		},
		Template: domain.CardTemplate{
			ID:            uuid.New(),
			Name:          "Card 1",
			FrontTemplate: "{{Expression}}{{Audio}}",
			BackTemplate:  "{{FrontSide}}<hr>{{Meaning}}",
		},
	}
}

func TestGetCard_RendersBothSides(t *testing.T) {
	t.Parallel()

	rc := renderableFixture()
	cards := &cardRepoMock{
		GetRenderableFunc: func(ctx context.Context, id uuid.UUID) (domain.RenderableCard, error) {
			if id != rc.Card.ID {
				t.Errorf("card ID: got %v, want %v", id, rc.Card.ID)
			}
			return rc, nil
		},
	}

	svc := newTestService(cards, nil, nil, nil)
	svc.mediaBaseURL = "/storage/media"
	ctx := ctxutil.WithUserID(context.Background(), uuid.New())

	got, err := svc.GetCard(ctx, GetCardInput{CardID: rc.Card.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(got.Front, "猫") {
		t.Errorf("front missing expression: %q", got.Front)
	}
	if !strings.Contains(got.Front, `<audio controls src="/storage/media/neko.mp3"></audio>`) {
		t.Errorf("front missing resolved audio: %q", got.Front)
	}
	if strings.Contains(got.Front, "cat") {
		t.Errorf("front leaks the answer: %q", got.Front)
	}
	// The back embeds the rendered front before the divider.
	if !strings.Contains(got.Back, "猫") || !strings.Contains(got.Back, "<hr>cat") {
		t.Errorf("back: %q", got.Back)
	}
	if got.TemplateName != "Card 1" || got.DeckID != rc.Note.DeckID {
		t.Errorf("metadata: got %+v", got)
	}
}

func TestGetCard_NotFound(t *testing.T) {
	t.Parallel()

	cards := &cardRepoMock{
		GetRenderableFunc: func(ctx context.Context, id uuid.UUID) (domain.RenderableCard, error) {
			return domain.RenderableCard{}, domain.ErrNotFound
		},
	}

	svc := newTestService(cards, nil, nil, nil)
	ctx := ctxutil.WithUserID(context.Background(), uuid.New())

	_, err := svc.GetCard(ctx, GetCardInput{CardID: uuid.New()})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetCard_MissingID(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil, nil, nil, nil)
	ctx := ctxutil.WithUserID(context.Background(), uuid.New())

	_, err := svc.GetCard(ctx, GetCardInput{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
