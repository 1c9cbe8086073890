package model

import "time"

// Deck groups a set of flashcards owned by a single user.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owner of the deck.
//  Title       – deck title (1–100 chars after trimming).
//  Description – optional free-form description.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Deck struct {
	ID          uint64    // decks.id
	UserID      uint64    // decks.user_id
	Title       string    // decks.title
	Description *string   // decks.description (nullable)
	CreatedAt   time.Time // decks.created_at
	UpdatedAt   time.Time // decks.updated_at
}
