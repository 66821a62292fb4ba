package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
	"github.com/tsuyanki/tsuyanki-backend/pkg/ctxutil"
)

// NoteWithCards is a note together with its generated cards.
type NoteWithCards struct {
	Note  domain.Note
	Cards []domain.Card
}

// CreateNote creates a note and one card per template of its note
// type, atomically. Field values for fields the type does not declare
// are rejected; missing required fields are rejected too.
func (s *Service) CreateNote(ctx context.Context, input CreateNoteInput) (NoteWithCards, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return NoteWithCards{}, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return NoteWithCards{}, err
	}

	if _, err := s.decks.GetByID(ctx, userID, input.DeckID); err != nil {
		return NoteWithCards{}, fmt.Errorf("get deck: %w", err)
	}

	nt, err := s.noteTypes.GetByID(ctx, input.NoteTypeID)
	if err != nil {
		return NoteWithCards{}, fmt.Errorf("get note type: %w", err)
	}
	if nt.UserID != nil && *nt.UserID != userID {
		return NoteWithCards{}, fmt.Errorf("note type %s: %w", nt.ID, domain.ErrNotFound)
	}

	if err := validateFields(nt, input.Fields); err != nil {
		return NoteWithCards{}, err
	}

	templates, err := s.noteTypes.ListTemplates(ctx, nt.ID)
	if err != nil {
		return NoteWithCards{}, fmt.Errorf("list templates: %w", err)
	}

	now := s.now().UTC()
	result := NoteWithCards{
		Note: domain.Note{
			ID:         uuid.New(),
			DeckID:     input.DeckID,
			NoteTypeID: nt.ID,
			Fields:     input.Fields,
			Tags:       input.Tags,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
	for _, tpl := range templates {
		result.Cards = append(result.Cards, domain.Card{
			ID:             uuid.New(),
			NoteID:         result.Note.ID,
			CardTemplateID: tpl.ID,
			CreatedAt:      now,
		})
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.notes.Create(txCtx, result.Note); err != nil {
			return fmt.Errorf("create note: %w", err)
		}
		if err := s.cards.CreateBatch(txCtx, result.Cards); err != nil {
			return fmt.Errorf("create cards: %w", err)
		}
		return nil
	})
	if err != nil {
		return NoteWithCards{}, err
	}

	s.log.InfoContext(ctx, "note created",
		slog.String("user_id", userID.String()),
		slog.String("note_id", result.Note.ID.String()),
		slog.Int("cards", len(result.Cards)),
	)

	return result, nil
}

// GetNote returns a note with its cards. The caller must own the deck
// the note belongs to.
func (s *Service) GetNote(ctx context.Context, noteID uuid.UUID) (NoteWithCards, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return NoteWithCards{}, domain.ErrUnauthorized
	}
	if noteID == uuid.Nil {
		return NoteWithCards{}, domain.NewValidationError("note_id", "required")
	}

	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return NoteWithCards{}, fmt.Errorf("get note: %w", err)
	}

	// Ownership check through the containing deck.
	if _, err := s.decks.GetByID(ctx, userID, note.DeckID); err != nil {
		return NoteWithCards{}, fmt.Errorf("get deck: %w", err)
	}

	cards, err := s.cards.ListByNote(ctx, noteID)
	if err != nil {
		return NoteWithCards{}, fmt.Errorf("list cards: %w", err)
	}

	return NoteWithCards{Note: note, Cards: cards}, nil
}

// validateFields checks the submitted values against the note type's
// schema: unknown field names and missing required fields both fail.
func validateFields(nt domain.NoteType, fields map[string]string) error {
	var errs []domain.FieldError

	known := make(map[string]bool, len(nt.Fields))
	for _, def := range nt.Fields {
		known[def.Name] = true
		if def.Required && fields[def.Name] == "" {
			errs = append(errs, domain.FieldError{Field: def.Name, Message: "required"})
		}
	}
	for name := range fields {
		if !known[name] {
			errs = append(errs, domain.FieldError{Field: name, Message: "not declared by the note type"})
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
