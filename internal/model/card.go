package model

import "time"

// Card is a single flashcard inside a deck. The front carries the
// prompt (or concept name for flash review) and the back the answer.
// Deleting a deck cascades to its cards, and deleting a card cascades
// to its reviews.
type Card struct {
	ID        uint64    // cards.id
	DeckID    uint64    // cards.deck_id
	FrontText string    // cards.front_text
	BackText  string    // cards.back_text
	CreatedAt time.Time // cards.created_at
	UpdatedAt time.Time // cards.updated_at
}
