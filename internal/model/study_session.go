package model

import "time"

// Session type values stored in study_sessions.session_type.
const (
	SessionTypeStudy       = "STUDY"
	SessionTypeFlashReview = "FLASH_REVIEW"
)

// RetakeMissedCards marks a follow-up session built from the cards
// rated HARD or AGAIN in its parent session.
const RetakeMissedCards = "MISSED_CARDS"

// StudySession records a single study or flash-review run over a deck.
// CompletedAt is set at most once. ConceptsViewed is only meaningful
// for FLASH_REVIEW sessions. ParentSessionID links a retake session to
// the session it was built from.
//
// Fields:
//  ID              – primary key identifier.
//  DeckID          – deck that was studied.
//  SessionType     – STUDY or FLASH_REVIEW.
//  StartedAt       – when the run started.
//  CompletedAt     – when the run finished (null while in progress).
//  ConceptsViewed  – number of concepts shown (flash review only).
//  ParentSessionID – origin session for a retake (null otherwise).
//  RetakeType      – kind of retake, e.g. MISSED_CARDS (null otherwise).
type StudySession struct {
	ID              uint64     // study_sessions.id
	DeckID          uint64     // study_sessions.deck_id
	SessionType     string     // study_sessions.session_type
	StartedAt       time.Time  // study_sessions.started_at
	CompletedAt     *time.Time // study_sessions.completed_at (nullable)
	ConceptsViewed  *uint32    // study_sessions.concepts_viewed (nullable)
	ParentSessionID *uint64    // study_sessions.parent_session_id (nullable)
	RetakeType      *string    // study_sessions.retake_type (nullable)
}
