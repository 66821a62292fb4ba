package content

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
	"github.com/tsuyanki/tsuyanki-backend/pkg/ctxutil"
)

var testNow = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

// Hand-written func-field mocks, one per consumer interface.

type deckRepoMock struct {
	CreateFunc      func(ctx context.Context, d domain.Deck) error
	GetByIDFunc     func(ctx context.Context, userID, deckID uuid.UUID) (domain.Deck, error)
	ListByOwnerFunc func(ctx context.Context, userID uuid.UUID) ([]domain.Deck, error)
	DeleteFunc      func(ctx context.Context, userID, deckID uuid.UUID) error
}

func (m *deckRepoMock) Create(ctx context.Context, d domain.Deck) error { return m.CreateFunc(ctx, d) }
func (m *deckRepoMock) GetByID(ctx context.Context, userID, deckID uuid.UUID) (domain.Deck, error) {
	return m.GetByIDFunc(ctx, userID, deckID)
}
func (m *deckRepoMock) ListByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Deck, error) {
	return m.ListByOwnerFunc(ctx, userID)
}
func (m *deckRepoMock) Delete(ctx context.Context, userID, deckID uuid.UUID) error {
	return m.DeleteFunc(ctx, userID, deckID)
}

type noteTypeRepoMock struct {
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (domain.NoteType, error)
	ListTemplatesFunc func(ctx context.Context, noteTypeID uuid.UUID) ([]domain.CardTemplate, error)
}

func (m *noteTypeRepoMock) GetByID(ctx context.Context, id uuid.UUID) (domain.NoteType, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *noteTypeRepoMock) ListTemplates(ctx context.Context, noteTypeID uuid.UUID) ([]domain.CardTemplate, error) {
	return m.ListTemplatesFunc(ctx, noteTypeID)
}

type noteRepoMock struct {
	CreateFunc  func(ctx context.Context, n domain.Note) error
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (domain.Note, error)
}

func (m *noteRepoMock) Create(ctx context.Context, n domain.Note) error { return m.CreateFunc(ctx, n) }
func (m *noteRepoMock) GetByID(ctx context.Context, id uuid.UUID) (domain.Note, error) {
	return m.GetByIDFunc(ctx, id)
}

type cardRepoMock struct {
	CreateBatchFunc func(ctx context.Context, cards []domain.Card) error
	ListByNoteFunc  func(ctx context.Context, noteID uuid.UUID) ([]domain.Card, error)
}

func (m *cardRepoMock) CreateBatch(ctx context.Context, cards []domain.Card) error {
	return m.CreateBatchFunc(ctx, cards)
}
func (m *cardRepoMock) ListByNote(ctx context.Context, noteID uuid.UUID) ([]domain.Card, error) {
	return m.ListByNoteFunc(ctx, noteID)
}

type txManagerMock struct{}

func (txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(decks *deckRepoMock, noteTypes *noteTypeRepoMock, notes *noteRepoMock, cards *cardRepoMock) *Service {
	return &Service{
		decks:     decks,
		noteTypes: noteTypes,
		notes:     notes,
		cards:     cards,
		tx:        txManagerMock{},
		log:       slog.Default(),
		now:       func() time.Time { return testNow },
	}
}

func TestCreateDeck_Success(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	var created domain.Deck
	decks := &deckRepoMock{
		CreateFunc: func(ctx context.Context, d domain.Deck) error {
			created = d
			return nil
		},
	}

	svc := newTestService(decks, nil, nil, nil)
	ctx := ctxutil.WithUserID(context.Background(), userID)

	deck, err := svc.CreateDeck(ctx, CreateDeckInput{Title: "  JLPT N5  ", Description: "vocab"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deck.Title != "JLPT N5" {
		t.Errorf("title: got %q, want trimmed", deck.Title)
	}
	if created.OwnerUserID != userID {
		t.Errorf("owner: got %v, want %v", created.OwnerUserID, userID)
	}
	if !created.CreatedAt.Equal(testNow) {
		t.Errorf("created at: got %v", created.CreatedAt)
	}
}

func TestCreateDeck_BlankTitle(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil, nil, nil, nil)
	ctx := ctxutil.WithUserID(context.Background(), uuid.New())

	_, err := svc.CreateDeck(ctx, CreateDeckInput{Title: "   "})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateNote_OneCardPerTemplate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	deckID := uuid.New()
	nt := domain.NoteType{
		ID:     uuid.New(),
		UserID: &userID,
		Name:   "Vocabulary",
		Fields: []domain.FieldDef{
			{Name: "Expression", Type: "text", Required: true},
			{Name: "Meaning", Type: "text"},
		},
	}
	templates := []domain.CardTemplate{
		{ID: uuid.New(), NoteTypeID: nt.ID, Name: "Card 1"},
		{ID: uuid.New(), NoteTypeID: nt.ID, Name: "Card 2"},
	}

	var createdNote domain.Note
	var createdCards []domain.Card

	decks := &deckRepoMock{
		GetByIDFunc: func(ctx context.Context, uid, did uuid.UUID) (domain.Deck, error) {
			return domain.Deck{ID: did, OwnerUserID: uid}, nil
		},
	}
	noteTypes := &noteTypeRepoMock{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (domain.NoteType, error) { return nt, nil },
		ListTemplatesFunc: func(ctx context.Context, id uuid.UUID) ([]domain.CardTemplate, error) {
			return templates, nil
		},
	}
	notes := &noteRepoMock{
		CreateFunc: func(ctx context.Context, n domain.Note) error {
			createdNote = n
			return nil
		},
	}
	cards := &cardRepoMock{
		CreateBatchFunc: func(ctx context.Context, cs []domain.Card) error {
			createdCards = cs
			return nil
		},
	}

	svc := newTestService(decks, noteTypes, notes, cards)
	ctx := ctxutil.WithUserID(context.Background(), userID)

	result, err := svc.CreateNote(ctx, CreateNoteInput{
		DeckID:     deckID,
		NoteTypeID: nt.ID,
		Fields:     map[string]string{"Expression": "猫", "Meaning": "cat"},
		Tags:       []string{"animal"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Cards) != 2 {
		t.Fatalf("cards: got %d, want 2", len(result.Cards))
	}
	if createdNote.DeckID != deckID {
		t.Errorf("note deck: got %v, want %v", createdNote.DeckID, deckID)
	}
	for i, c := range createdCards {
		if c.NoteID != createdNote.ID {
			t.Errorf("card %d note: got %v, want %v", i, c.NoteID, createdNote.ID)
		}
		if c.CardTemplateID != templates[i].ID {
			t.Errorf("card %d template: got %v, want %v", i, c.CardTemplateID, templates[i].ID)
		}
	}
}

func TestCreateNote_MissingRequiredField(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	nt := domain.NoteType{
		ID:     uuid.New(),
		Fields: []domain.FieldDef{{Name: "Expression", Type: "text", Required: true}},
	}

	decks := &deckRepoMock{
		GetByIDFunc: func(ctx context.Context, uid, did uuid.UUID) (domain.Deck, error) {
			return domain.Deck{}, nil
		},
	}
	noteTypes := &noteTypeRepoMock{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (domain.NoteType, error) { return nt, nil },
	}

	svc := newTestService(decks, noteTypes, nil, nil)
	ctx := ctxutil.WithUserID(context.Background(), userID)

	_, err := svc.CreateNote(ctx, CreateNoteInput{
		DeckID:     uuid.New(),
		NoteTypeID: nt.ID,
		Fields:     map[string]string{"Bogus": "x"},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateNote_ForeignNoteTypeHidden(t *testing.T) {
	t.Parallel()

	otherUser := uuid.New()
	nt := domain.NoteType{
		ID:     uuid.New(),
		UserID: &otherUser,
		Fields: []domain.FieldDef{{Name: "Expression", Type: "text"}},
	}

	decks := &deckRepoMock{
		GetByIDFunc: func(ctx context.Context, uid, did uuid.UUID) (domain.Deck, error) {
			return domain.Deck{}, nil
		},
	}
	noteTypes := &noteTypeRepoMock{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (domain.NoteType, error) { return nt, nil },
	}

	svc := newTestService(decks, noteTypes, nil, nil)
	ctx := ctxutil.WithUserID(context.Background(), uuid.New())

	_, err := svc.CreateNote(ctx, CreateNoteInput{
		DeckID:     uuid.New(),
		NoteTypeID: nt.ID,
		Fields:     map[string]string{"Expression": "猫"},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetNote_ChecksDeckOwnership(t *testing.T) {
	t.Parallel()

	noteID := uuid.New()
	notes := &noteRepoMock{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (domain.Note, error) {
			return domain.Note{ID: id, DeckID: uuid.New()}, nil
		},
	}
	decks := &deckRepoMock{
		GetByIDFunc: func(ctx context.Context, uid, did uuid.UUID) (domain.Deck, error) {
			return domain.Deck{}, domain.ErrNotFound
		},
	}

	svc := newTestService(decks, nil, notes, nil)
	ctx := ctxutil.WithUserID(context.Background(), uuid.New())

	_, err := svc.GetNote(ctx, noteID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for foreign note, got %v", err)
	}
}

func TestGetNote_Success(t *testing.T) {
	t.Parallel()

	noteID := uuid.New()
	deckID := uuid.New()
	wantCards := []domain.Card{{ID: uuid.New(), NoteID: noteID}}

	notes := &noteRepoMock{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (domain.Note, error) {
			return domain.Note{ID: id, DeckID: deckID}, nil
		},
	}
	decks := &deckRepoMock{
		GetByIDFunc: func(ctx context.Context, uid, did uuid.UUID) (domain.Deck, error) {
			return domain.Deck{ID: did}, nil
		},
	}
	cards := &cardRepoMock{
		ListByNoteFunc: func(ctx context.Context, id uuid.UUID) ([]domain.Card, error) {
			return wantCards, nil
		},
	}

	svc := newTestService(decks, nil, notes, cards)
	ctx := ctxutil.WithUserID(context.Background(), uuid.New())

	got, err := svc.GetNote(ctx, noteID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Note.ID != noteID || len(got.Cards) != 1 {
		t.Errorf("result: got %+v", got)
	}
}

func TestDeleteDeck_PropagatesNotFound(t *testing.T) {
	t.Parallel()

	decks := &deckRepoMock{
		DeleteFunc: func(ctx context.Context, uid, did uuid.UUID) error {
			return domain.ErrNotFound
		},
	}

	svc := newTestService(decks, nil, nil, nil)
	ctx := ctxutil.WithUserID(context.Background(), uuid.New())

	if err := svc.DeleteDeck(ctx, uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
