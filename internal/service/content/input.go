package content

import (
	"strings"

	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
)

// maxTitleLength bounds deck titles the same way the schema does.
const maxTitleLength = 255

// CreateDeckInput holds the parameters for creating a deck.
type CreateDeckInput struct {
	Title       string
	Description string
	IsPublic    bool
}

// Validate checks all fields and collects all errors.
func (i *CreateDeckInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.Title) == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
	}
	if len(i.Title) > maxTitleLength {
		errs = append(errs, domain.FieldError{Field: "title", Message: "too long"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// CreateNoteInput holds the parameters for creating a note.
type CreateNoteInput struct {
	DeckID     uuid.UUID
	NoteTypeID uuid.UUID
	Fields     map[string]string
	Tags       []string
}

// Validate checks all fields and collects all errors.
func (i *CreateNoteInput) Validate() error {
	var errs []domain.FieldError

	if i.DeckID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "deck_id", Message: "required"})
	}
	if i.NoteTypeID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "note_type_id", Message: "required"})
	}
	if len(i.Fields) == 0 {
		errs = append(errs, domain.FieldError{Field: "fields", Message: "at least one field value required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
