package ankiimport

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/adapter/ankidb"
)

// session carries the state of one import call through the pipeline
// stages. A fresh session is built per call, so concurrent imports
// never share scratch directories or id maps.
type session struct {
	userID uuid.UUID
	now    time.Time

	// dir is the scratch directory the archive is unpacked into.
	dir string

	// manifest maps archive entry names to original media file names.
	manifest map[string]string

	db     *ankidb.DB
	models map[int64]ankidb.Model

	remap remapContext

	// defaultDeckID tracks the deck named "Default" that legacy
	// packages create automatically, so an empty one can be removed
	// after import.
	defaultDeckID *uuid.UUID

	decksImported int
	notesImported int
}

// remapContext translates legacy integer ids into the ids assigned
// during this import. Template keys combine the legacy model id and
// the template ordinal, since legacy templates have no id of their own.
type remapContext struct {
	decks     map[int64]uuid.UUID
	noteTypes map[int64]uuid.UUID
	notes     map[int64]uuid.UUID
	templates map[string]uuid.UUID
}

func newRemapContext() remapContext {
	return remapContext{
		decks:     make(map[int64]uuid.UUID),
		noteTypes: make(map[int64]uuid.UUID),
		notes:     make(map[int64]uuid.UUID),
		templates: make(map[string]uuid.UUID),
	}
}

// templateKey builds the remap key for one legacy template.
func templateKey(modelID int64, ordinal int) string {
	return fmt.Sprintf("%d_%d", modelID, ordinal)
}
