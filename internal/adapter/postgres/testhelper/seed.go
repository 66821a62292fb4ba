package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser inserts a user row and returns its ID.
func SeedUser(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()

	suffix := uniqueSuffix()
	id := uuid.New()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, email, display_name, created_at, updated_at)
		 VALUES ($1, $2, $3, now(), now())`,
		id, "testuser-"+suffix+"@example.com", "Test User "+suffix,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser: %v", err)
	}

	return id
}

// SeedDeck inserts a deck owned by ownerID and returns the filled domain.Deck.
func SeedDeck(t *testing.T, pool *pgxpool.Pool, ownerID uuid.UUID) domain.Deck {
	t.Helper()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	deck := domain.Deck{
		ID:          uuid.New(),
		OwnerUserID: ownerID,
		Title:       "Deck " + suffix,
		Description: "Seeded deck " + suffix,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO decks (id, owner_user_id, title, description, is_public, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		deck.ID, deck.OwnerUserID, deck.Title, deck.Description, deck.IsPublic, deck.CreatedAt, deck.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDeck: %v", err)
	}

	return deck
}

// SeedNoteType inserts a note type with an Expression/Meaning field schema
// plus one front/back card template. userID nil seeds a global note type.
func SeedNoteType(t *testing.T, pool *pgxpool.Pool, userID *uuid.UUID) (domain.NoteType, domain.CardTemplate) {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	noteType := domain.NoteType{
		ID:     uuid.New(),
		UserID: userID,
		Name:   "Basic " + suffix,
		Fields: []domain.FieldDef{
			{Name: "Expression", Type: "text", Required: true},
			{Name: "Meaning", Type: "text"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	fieldsJSON, err := json.Marshal(noteType.Fields)
	if err != nil {
		t.Fatalf("testhelper: SeedNoteType marshal fields: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO note_types (id, user_id, name, fields, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		noteType.ID, noteType.UserID, noteType.Name, fieldsJSON, noteType.CreatedAt, noteType.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedNoteType insert note_type: %v", err)
	}

	tpl := domain.CardTemplate{
		ID:            uuid.New(),
		NoteTypeID:    noteType.ID,
		Name:          "Card 1",
		FrontTemplate: "{{Expression}}",
		BackTemplate:  "{{FrontSide}}<hr>{{Meaning}}",
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO card_templates (id, note_type_id, name, front_template, back_template)
		 VALUES ($1, $2, $3, $4, $5)`,
		tpl.ID, tpl.NoteTypeID, tpl.Name, tpl.FrontTemplate, tpl.BackTemplate,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedNoteType insert card_template: %v", err)
	}

	return noteType, tpl
}

// SeedNoteWithCard inserts a note with the given field values and one card
// generated from templateID.
func SeedNoteWithCard(t *testing.T, pool *pgxpool.Pool, deckID, noteTypeID, templateID uuid.UUID, fields map[string]string) (domain.Note, domain.Card) {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	note := domain.Note{
		ID:         uuid.New(),
		DeckID:     deckID,
		NoteTypeID: noteTypeID,
		Fields:     fields,
		Tags:       []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	fieldsJSON, err := json.Marshal(note.Fields)
	if err != nil {
		t.Fatalf("testhelper: SeedNoteWithCard marshal fields: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO notes (id, deck_id, note_type_id, fields, tags, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		note.ID, note.DeckID, note.NoteTypeID, fieldsJSON, note.Tags, note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedNoteWithCard insert note: %v", err)
	}

	card := domain.Card{
		ID:             uuid.New(),
		NoteID:         note.ID,
		CardTemplateID: templateID,
		CreatedAt:      now,
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO cards (id, note_id, card_template_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		card.ID, card.NoteID, card.CardTemplateID, card.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedNoteWithCard insert card: %v", err)
	}

	return note, card
}

// SeedReviewState inserts a review state row. Zero values in state are kept,
// so callers can seed brand-new states as well as mature ones.
func SeedReviewState(t *testing.T, pool *pgxpool.Pool, userID, cardID uuid.UUID, easeFactor float64, intervalDays, repetition int, dueAt time.Time, lastReviewedAt *time.Time) domain.ReviewState {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	state := domain.ReviewState{
		ID:             uuid.New(),
		UserID:         userID,
		CardID:         cardID,
		EaseFactor:     easeFactor,
		IntervalDays:   intervalDays,
		Repetition:     repetition,
		DueAt:          dueAt,
		LastReviewedAt: lastReviewedAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO review_states (id, user_id, card_id, ease_factor, interval_days, repetition, due_at, last_reviewed_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		state.ID, state.UserID, state.CardID, state.EaseFactor, state.IntervalDays,
		state.Repetition, state.DueAt, state.LastReviewedAt, state.CreatedAt, state.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedReviewState: %v", err)
	}

	return state
}

// SeedReviewLog inserts a review log row with the given quality at reviewedAt.
func SeedReviewLog(t *testing.T, pool *pgxpool.Pool, userID, cardID uuid.UUID, quality int, reviewedAt time.Time) domain.ReviewLog {
	t.Helper()

	log := domain.ReviewLog{
		ID:           uuid.New(),
		UserID:       userID,
		CardID:       cardID,
		Quality:      quality,
		EaseFactor:   domain.DefaultEaseFactor,
		IntervalDays: 1,
		Repetition:   1,
		ReviewedAt:   reviewedAt,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO review_logs (id, user_id, card_id, quality, ease_factor, interval_days, repetition, reviewed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		log.ID, log.UserID, log.CardID, log.Quality, log.EaseFactor, log.IntervalDays, log.Repetition, log.ReviewedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedReviewLog: %v", err)
	}

	return log
}
