package model

import "time"

// Rating values stored in card_reviews.rating.
const (
	RatingEasy  = "EASY"
	RatingHard  = "HARD"
	RatingAgain = "AGAIN"
)

// ValidRating reports whether s is one of the accepted rating values.
func ValidRating(s string) bool {
	return s == RatingEasy || s == RatingHard || s == RatingAgain
}

// CardReview is one submitted rating event. A card may be reviewed
// multiple times within the same session; repeats accumulate as
// separate rows. Rows are cascade-deleted when the referenced card is
// deleted.
type CardReview struct {
	ID         uint64    // card_reviews.id
	SessionID  uint64    // card_reviews.session_id
	CardID     uint64    // card_reviews.card_id
	Rating     string    // card_reviews.rating
	ReviewedAt time.Time // card_reviews.reviewed_at
}
