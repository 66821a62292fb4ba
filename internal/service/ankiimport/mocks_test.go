package ankiimport

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
)

// recorder is an in-memory stand-in for the persistence layer. Every
// write is recorded; individual calls can be made to fail.
type recorder struct {
	decks     []domain.Deck
	noteTypes []domain.NoteType
	templates []domain.CardTemplate
	notes     []domain.Note
	cards     []domain.Card
	states    []domain.ReviewState

	deletedDecks []uuid.UUID

	// existingNoteTypes answers FindByNameInScope by name.
	existingNoteTypes map[string]domain.NoteType
	// existingTemplates answers ListTemplates by note type id.
	existingTemplates map[uuid.UUID][]domain.CardTemplate

	failNoteCreate bool
}

func newRecorder() *recorder {
	return &recorder{
		existingNoteTypes: map[string]domain.NoteType{},
		existingTemplates: map[uuid.UUID][]domain.CardTemplate{},
	}
}

func (r *recorder) Create(ctx context.Context, d domain.Deck) error {
	r.decks = append(r.decks, d)
	return nil
}

func (r *recorder) CountNotes(ctx context.Context, deckID uuid.UUID) (int, error) {
	n := 0
	for _, note := range r.notes {
		if note.DeckID == deckID {
			n++
		}
	}
	return n, nil
}

func (r *recorder) Delete(ctx context.Context, userID, deckID uuid.UUID) error {
	r.deletedDecks = append(r.deletedDecks, deckID)
	return nil
}

// noteTypeRecorder adapts recorder to the noteTypeRepo interface;
// method sets collide with deckRepo's Create otherwise.
type noteTypeRecorder struct{ r *recorder }

func (a noteTypeRecorder) Create(ctx context.Context, nt domain.NoteType) error {
	a.r.noteTypes = append(a.r.noteTypes, nt)
	return nil
}

func (a noteTypeRecorder) FindByNameInScope(ctx context.Context, userID uuid.UUID, name string) (domain.NoteType, error) {
	if nt, ok := a.r.existingNoteTypes[name]; ok {
		return nt, nil
	}
	for _, nt := range a.r.noteTypes {
		if nt.Name == name {
			return nt, nil
		}
	}
	return domain.NoteType{}, domain.ErrNotFound
}

func (a noteTypeRecorder) CreateTemplate(ctx context.Context, tpl domain.CardTemplate) error {
	a.r.templates = append(a.r.templates, tpl)
	return nil
}

func (a noteTypeRecorder) ListTemplates(ctx context.Context, noteTypeID uuid.UUID) ([]domain.CardTemplate, error) {
	var out []domain.CardTemplate
	out = append(out, a.r.existingTemplates[noteTypeID]...)
	for _, tpl := range a.r.templates {
		if tpl.NoteTypeID == noteTypeID {
			out = append(out, tpl)
		}
	}
	return out, nil
}

type noteRecorder struct{ r *recorder }

func (a noteRecorder) Create(ctx context.Context, n domain.Note) error {
	if a.r.failNoteCreate {
		return domain.ErrValidation
	}
	a.r.notes = append(a.r.notes, n)
	return nil
}

type cardRecorder struct{ r *recorder }

func (a cardRecorder) CreateBatch(ctx context.Context, cards []domain.Card) error {
	a.r.cards = append(a.r.cards, cards...)
	return nil
}

type stateRecorder struct{ r *recorder }

func (a stateRecorder) CreateBatch(ctx context.Context, states []domain.ReviewState) error {
	a.r.states = append(a.r.states, states...)
	return nil
}

// mediaRecorder records saved media contents by name.
type mediaRecorder struct {
	saved map[string]string
}

func (m *mediaRecorder) Save(name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if m.saved == nil {
		m.saved = map[string]string{}
	}
	m.saved[name] = string(data)
	return nil
}

// txRecorder runs the callback directly and notes whether it failed,
// standing in for commit/rollback.
type txRecorder struct {
	rolledBack bool
	locked     []string
}

func (t *txRecorder) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		t.rolledBack = true
		return err
	}
	return nil
}

func (t *txRecorder) LockUserImport(ctx context.Context, userKey string) error {
	t.locked = append(t.locked, userKey)
	return nil
}
