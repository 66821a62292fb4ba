package testhelper

import (
	"context"
	"testing"
)

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	userID := SeedUser(t, pool)
	deck := SeedDeck(t, pool, userID)

	// Verify the deck exists in DB via SELECT.
	var title string
	err := pool.QueryRow(
		context.Background(),
		`SELECT title FROM decks WHERE id = $1`,
		deck.ID,
	).Scan(&title)
	if err != nil {
		t.Fatalf("expected deck in DB, got error: %v", err)
	}

	if title != deck.Title {
		t.Fatalf("expected title %q, got %q", deck.Title, title)
	}
}
