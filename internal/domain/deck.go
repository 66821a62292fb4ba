package domain

import (
	"time"

	"github.com/google/uuid"
)

// Deck is a user-owned container of notes.
type Deck struct {
	ID          uuid.UUID
	OwnerUserID uuid.UUID
	Title       string
	Description string
	IsPublic    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Tag is a free-form label attached to notes.
type Tag struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
}
