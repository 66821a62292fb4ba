package domain

import (
	"time"

	"github.com/google/uuid"
)

// FieldDef describes a single field in a note type's schema.
type FieldDef struct {
	Name     string
	Type     string
	Required bool
}

// NoteType defines the field schema shared by a family of notes.
// UserID is nil for globally available types; otherwise the type is
// scoped to one user. The (name, scope) pair is the identity used when
// matching during legacy imports.
type NoteType struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	Name      string
	Fields    []FieldDef
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FieldNames returns the schema's field names in declaration order.
func (nt *NoteType) FieldNames() []string {
	names := make([]string, len(nt.Fields))
	for i, f := range nt.Fields {
		names[i] = f.Name
	}
	return names
}

// CardTemplate holds the front/back markup templates for one generated
// card of a note type. A note type has one template per card it generates.
type CardTemplate struct {
	ID            uuid.UUID
	NoteTypeID    uuid.UUID
	Name          string
	FrontTemplate string
	BackTemplate  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Note holds the field values of a single note. Keys should match the
// note type's field names; lookups at render time fall back to
// case-insensitive matching, so mismatched casing is tolerated here.
type Note struct {
	ID         uuid.UUID
	DeckID     uuid.UUID
	NoteTypeID uuid.UUID
	Fields     map[string]string
	Tags       []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

