package ankiimport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/adapter/ankidb"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
	"github.com/tsuyanki/tsuyanki-backend/pkg/ctxutil"
)

// importedDeckDescription marks decks created by the importer.
const importedDeckDescription = "Imported from Anki"

// ImportInput holds the parameters for importing a legacy package.
type ImportInput struct {
	ArchivePath string
}

// Validate checks all fields.
func (i *ImportInput) Validate() error {
	if i.ArchivePath == "" {
		return domain.NewValidationError("archive_path", "required")
	}
	return nil
}

// Import runs the full pipeline for one package. All database writes
// happen in a single transaction serialized per user, so a failing
// package leaves nothing behind. Media files are copied only after
// the transaction commits.
func (s *Service) Import(ctx context.Context, input ImportInput) (Result, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return Result{}, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return Result{}, err
	}

	sess := &session{
		userID: userID,
		now:    s.now().UTC(),
		models: make(map[int64]ankidb.Model),
		remap:  newRemapContext(),
	}

	if err := s.prepareWorkspace(sess); err != nil {
		return Result{}, err
	}
	defer func() {
		if err := os.RemoveAll(sess.dir); err != nil {
			s.log.Warn("removing scratch dir", "dir", sess.dir, "error", err)
		}
	}()

	if err := s.extractArchive(input.ArchivePath, sess); err != nil {
		return Result{}, err
	}
	if err := s.loadManifest(sess); err != nil {
		return Result{}, err
	}

	db, err := ankidb.Open(filepath.Join(sess.dir, collectionFile))
	if err != nil {
		return Result{}, err
	}
	defer db.Close()
	sess.db = db

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tx.LockUserImport(txCtx, userID.String()); err != nil {
			return err
		}
		if err := s.importCollection(txCtx, sess); err != nil {
			return err
		}
		if err := s.importNotes(txCtx, sess); err != nil {
			return err
		}
		if err := s.importCards(txCtx, sess); err != nil {
			return err
		}
		return s.dropEmptyDefaultDeck(txCtx, sess)
	})
	if err != nil {
		return Result{}, err
	}

	s.copyMedia(sess)

	s.log.InfoContext(ctx, "package imported",
		slog.String("user_id", userID.String()),
		slog.Int("decks", sess.decksImported),
		slog.Int("notes", sess.notesImported),
	)

	return Result{
		DecksImported: sess.decksImported,
		NotesImported: sess.notesImported,
	}, nil
}

// importCollection persists decks and note types from the collection
// metadata and fills the corresponding remap tables.
func (s *Service) importCollection(ctx context.Context, sess *session) error {
	models, decks, err := sess.db.Collection()
	if err != nil {
		return err
	}

	for _, d := range decks {
		id := uuid.New()
		err := s.decks.Create(ctx, domain.Deck{
			ID:          id,
			OwnerUserID: sess.userID,
			Title:       d.Name,
			Description: importedDeckDescription,
			IsPublic:    false,
			CreatedAt:   sess.now,
			UpdatedAt:   sess.now,
		})
		if err != nil {
			return fmt.Errorf("create deck %q: %w", d.Name, err)
		}

		sess.remap.decks[d.ID] = id
		sess.decksImported++

		if d.Name == "Default" && sess.defaultDeckID == nil {
			defaultID := id
			sess.defaultDeckID = &defaultID
		}
	}

	for _, m := range models {
		sess.models[m.ID] = m
		if err := s.importNoteType(ctx, sess, m); err != nil {
			return err
		}
	}

	return nil
}

// importNoteType matches a legacy model against the user's (or global)
// note types by name, creating it when absent, and reconciles its
// templates by name.
func (s *Service) importNoteType(ctx context.Context, sess *session, m ankidb.Model) error {
	nt, err := s.noteTypes.FindByNameInScope(ctx, sess.userID, m.Name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		nt = domain.NoteType{
			ID:        uuid.New(),
			UserID:    &sess.userID,
			Name:      m.Name,
			CreatedAt: sess.now,
			UpdatedAt: sess.now,
		}
		for _, fn := range m.FieldNames {
			nt.Fields = append(nt.Fields, domain.FieldDef{Name: fn, Type: "text", Required: false})
		}
		if err := s.noteTypes.Create(ctx, nt); err != nil {
			return fmt.Errorf("create note type %q: %w", m.Name, err)
		}
	case err != nil:
		return fmt.Errorf("find note type %q: %w", m.Name, err)
	}

	sess.remap.noteTypes[m.ID] = nt.ID

	existing, err := s.noteTypes.ListTemplates(ctx, nt.ID)
	if err != nil {
		return fmt.Errorf("list templates of %q: %w", m.Name, err)
	}
	byName := make(map[string]uuid.UUID, len(existing))
	for _, tpl := range existing {
		byName[tpl.Name] = tpl.ID
	}

	for _, def := range m.Templates {
		id, ok := byName[def.Name]
		if !ok {
			id = uuid.New()
			err := s.noteTypes.CreateTemplate(ctx, domain.CardTemplate{
				ID:            id,
				NoteTypeID:    nt.ID,
				Name:          def.Name,
				FrontTemplate: def.Front,
				BackTemplate:  def.Back,
				CreatedAt:     sess.now,
				UpdatedAt:     sess.now,
			})
			if err != nil {
				return fmt.Errorf("create template %q of %q: %w", def.Name, m.Name, err)
			}
		}
		sess.remap.templates[templateKey(m.ID, def.Ordinal)] = id
	}

	return nil
}

// importNotes persists notes, zipping legacy field values against the
// model's field names. A note's deck is the deck of its first card;
// notes no card references are skipped entirely.
func (s *Service) importNotes(ctx context.Context, sess *session) error {
	rows, err := sess.db.Notes()
	if err != nil {
		return err
	}

	for _, row := range rows {
		model, ok := sess.models[row.ModelID]
		if !ok {
			continue
		}

		legacyDeckID, ok, err := sess.db.FirstDeckForNote(row.ID)
		if err != nil {
			return err
		}
		if !ok {
			// Orphan: no card references this note.
			continue
		}
		deckID, ok := sess.remap.decks[legacyDeckID]
		if !ok {
			continue
		}

		// Legacy rows may carry fewer values than the model declares;
		// the missing tail is stored as empty strings.
		fields := make(map[string]string, len(model.FieldNames))
		for i, name := range model.FieldNames {
			fields[name] = ""
			if i < len(row.FieldValues) {
				fields[name] = row.FieldValues[i]
			}
		}

		id := uuid.New()
		err = s.notes.Create(ctx, domain.Note{
			ID:         id,
			DeckID:     deckID,
			NoteTypeID: sess.remap.noteTypes[row.ModelID],
			Fields:     fields,
			Tags:       row.Tags,
			CreatedAt:  sess.now,
			UpdatedAt:  sess.now,
		})
		if err != nil {
			return fmt.Errorf("create note: %w", err)
		}

		sess.remap.notes[row.ID] = id
		sess.notesImported++
	}

	return nil
}

// importCards persists cards and a zeroed review state per card, in
// two batched round trips. Cards of skipped notes or unknown templates
// are dropped with their notes.
func (s *Service) importCards(ctx context.Context, sess *session) error {
	rows, err := sess.db.Cards()
	if err != nil {
		return err
	}

	var (
		cards  []domain.Card
		states []domain.ReviewState
	)
	for _, row := range rows {
		noteID, ok := sess.remap.notes[row.NoteID]
		if !ok {
			continue
		}
		tplID, ok := sess.remap.templates[templateKey(row.ModelID, row.Ordinal)]
		if !ok {
			continue
		}

		cardID := uuid.New()
		cards = append(cards, domain.Card{
			ID:             cardID,
			NoteID:         noteID,
			CardTemplateID: tplID,
			CreatedAt:      sess.now,
		})
		states = append(states, domain.ReviewState{
			ID:         uuid.New(),
			UserID:     sess.userID,
			CardID:     cardID,
			EaseFactor: domain.DefaultEaseFactor,
			DueAt:      sess.now,
			CreatedAt:  sess.now,
			UpdatedAt:  sess.now,
		})
	}

	if err := s.cards.CreateBatch(ctx, cards); err != nil {
		return fmt.Errorf("create cards: %w", err)
	}
	if err := s.states.CreateBatch(ctx, states); err != nil {
		return fmt.Errorf("create review states: %w", err)
	}

	return nil
}

// dropEmptyDefaultDeck removes the auto-created "Default" deck when the
// package put no notes into it, and excludes it from the count.
func (s *Service) dropEmptyDefaultDeck(ctx context.Context, sess *session) error {
	if sess.defaultDeckID == nil {
		return nil
	}

	n, err := s.decks.CountNotes(ctx, *sess.defaultDeckID)
	if err != nil {
		return fmt.Errorf("count notes in default deck: %w", err)
	}
	if n > 0 {
		return nil
	}

	if err := s.decks.Delete(ctx, sess.userID, *sess.defaultDeckID); err != nil {
		return fmt.Errorf("delete empty default deck: %w", err)
	}
	sess.decksImported--

	return nil
}
