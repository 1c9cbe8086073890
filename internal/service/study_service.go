package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/matiloti/flashcards-backend-sub001/internal/model"
	"github.com/matiloti/flashcards-backend-sub001/internal/queue"
	"github.com/matiloti/flashcards-backend-sub001/internal/repository"
)

// DeckStore is the slice of the deck repository the study service
// depends on.
type DeckStore interface {
	GetByID(ctx context.Context, id uint64) (model.Deck, error)
}

// CardStore is the slice of the card repository the study service
// depends on.
type CardStore interface {
	GetByID(ctx context.Context, id uint64) (model.Card, error)
	ListByDeck(ctx context.Context, deckID uint64) ([]model.Card, error)
}

// StudyStore persists sessions and reviews and serves the aggregate
// queries behind summaries and retakes.
type StudyStore interface {
	CreateSession(ctx context.Context, s *model.StudySession) error
	GetSession(ctx context.Context, id uint64) (model.StudySession, error)
	CompleteSession(ctx context.Context, id uint64, conceptsViewed *uint32) (bool, error)
	InsertReview(ctx context.Context, sessionID, cardID uint64, rating string) error
	CountByRating(ctx context.Context, sessionID uint64) (map[string]int, error)
	FindMissedCards(ctx context.Context, sessionID uint64) ([]model.Card, error)
	CountMissedCards(ctx context.Context, sessionID uint64) (int, error)
	CountTotalReviews(ctx context.Context, sessionID uint64) (int, error)
}

// Publisher emits domain events after state changes. Publishing is
// best-effort; a broker outage never fails the request.
type Publisher interface {
	SessionCompleted(ctx context.Context, ev queue.SessionCompletedEvent) error
}

// SessionSummary is the aggregate returned when a session completes.
// Counts default to zero for rating buckets with no reviews and
// TotalCards is their sum.
type SessionSummary struct {
	SessionID   uint64
	DeckID      uint64
	SessionType string
	EasyCount   int
	HardCount   int
	AgainCount  int
	TotalCards  int
	CompletedAt time.Time
}

// RetakeResult describes a freshly started retake session: the child
// session row, its cards in presentation order, and the parent-session
// figures the client shows alongside ("you missed N of M reviews").
type RetakeResult struct {
	Session       model.StudySession
	Cards         []model.Card
	MissedCount   int
	ParentReviews int
}

// StudyService tracks study and flash-review runs over decks.
type StudyService struct {
	decks DeckStore
	cards CardStore
	study StudyStore
	pub   Publisher
}

// NewStudyService wires a study service. pub may be nil, in which case
// completion events are not emitted.
func NewStudyService(decks DeckStore, cards CardStore, study StudyStore, pub Publisher) *StudyService {
	return &StudyService{decks: decks, cards: cards, study: study, pub: pub}
}

// StartSession begins a STUDY or FLASH_REVIEW run over a deck and
// returns the full card set in a randomized presentation order. The
// shuffle is a one-time permutation per session and is not persisted.
func (s *StudyService) StartSession(ctx context.Context, userID, deckID uint64, sessionType string) (model.StudySession, []model.Card, error) {
	deck, err := s.ownedDeck(ctx, userID, deckID)
	if err != nil {
		return model.StudySession{}, nil, err
	}
	cards, err := s.cards.ListByDeck(ctx, deck.ID)
	if err != nil {
		return model.StudySession{}, nil, err
	}
	if len(cards) == 0 {
		return model.StudySession{}, nil, ErrEmptyDeck
	}
	sess := model.StudySession{DeckID: deck.ID, SessionType: sessionType}
	if err := s.study.CreateSession(ctx, &sess); err != nil {
		return model.StudySession{}, nil, err
	}
	shuffle(cards)
	return sess, cards, nil
}

// SubmitReview records one rating event for a card within a session.
// The card must exist and belong to the session's deck; a card from a
// different deck is rejected so a rating can never pull another user's
// card into a retake. Repeat ratings of the same card accumulate;
// there is no dedup.
func (s *StudyService) SubmitReview(ctx context.Context, userID, sessionID, cardID uint64, rating string) error {
	if !model.ValidRating(rating) {
		return ErrInvalidRating
	}
	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCardNotFound
		}
		return err
	}
	if card.DeckID != sess.DeckID {
		return ErrForbidden
	}
	return s.study.InsertReview(ctx, sessionID, cardID, rating)
}

// CompleteSession stamps the completion time once and aggregates the
// stored reviews into per-rating counts. A second completion attempt
// is rejected for both session variants; the atomic update in the
// store backs the check even under concurrent calls.
func (s *StudyService) CompleteSession(ctx context.Context, userID, sessionID uint64, conceptsViewed *uint32) (SessionSummary, error) {
	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return SessionSummary{}, err
	}
	if sess.CompletedAt != nil {
		return SessionSummary{}, ErrSessionCompleted
	}
	// concepts_viewed only means something for flash review.
	if sess.SessionType != model.SessionTypeFlashReview {
		conceptsViewed = nil
	}
	ok, err := s.study.CompleteSession(ctx, sessionID, conceptsViewed)
	if err != nil {
		return SessionSummary{}, err
	}
	if !ok {
		return SessionSummary{}, ErrSessionCompleted
	}
	// Re-read for the store-assigned completion timestamp.
	sess, err = s.study.GetSession(ctx, sessionID)
	if err != nil {
		return SessionSummary{}, err
	}
	counts, err := s.study.CountByRating(ctx, sessionID)
	if err != nil {
		return SessionSummary{}, err
	}
	sum := SessionSummary{
		SessionID:   sess.ID,
		DeckID:      sess.DeckID,
		SessionType: sess.SessionType,
		EasyCount:   counts[model.RatingEasy],
		HardCount:   counts[model.RatingHard],
		AgainCount:  counts[model.RatingAgain],
	}
	sum.TotalCards = sum.EasyCount + sum.HardCount + sum.AgainCount
	if sess.CompletedAt != nil {
		sum.CompletedAt = *sess.CompletedAt
	}
	if s.pub != nil {
		_ = s.pub.SessionCompleted(ctx, queue.SessionCompletedEvent{
			SessionID:   sum.SessionID,
			DeckID:      sum.DeckID,
			UserID:      userID,
			SessionType: sum.SessionType,
			EasyCount:   sum.EasyCount,
			HardCount:   sum.HardCount,
			AgainCount:  sum.AgainCount,
			TotalCards:  sum.TotalCards,
			CompletedAt: sum.CompletedAt.UTC().Format(time.RFC3339),
		})
	}
	return sum, nil
}

// StartRetake builds a follow-up session from the cards rated HARD or
// AGAIN in an earlier session. Cards deleted since the original run
// are silently excluded (their reviews are gone through the cascade),
// and a card rated HARD then AGAIN appears once.
func (s *StudyService) StartRetake(ctx context.Context, userID, sessionID uint64) (RetakeResult, error) {
	parent, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return RetakeResult{}, err
	}
	missed, err := s.study.FindMissedCards(ctx, parent.ID)
	if err != nil {
		return RetakeResult{}, err
	}
	if len(missed) == 0 {
		return RetakeResult{}, ErrNoMissedCards
	}
	missedCount, err := s.study.CountMissedCards(ctx, parent.ID)
	if err != nil {
		return RetakeResult{}, err
	}
	totalReviews, err := s.study.CountTotalReviews(ctx, parent.ID)
	if err != nil {
		return RetakeResult{}, err
	}

	retakeType := model.RetakeMissedCards
	child := model.StudySession{
		DeckID:          parent.DeckID,
		SessionType:     model.SessionTypeStudy,
		ParentSessionID: &parent.ID,
		RetakeType:      &retakeType,
	}
	if err := s.study.CreateSession(ctx, &child); err != nil {
		return RetakeResult{}, err
	}
	shuffle(missed)
	return RetakeResult{
		Session:       child,
		Cards:         missed,
		MissedCount:   missedCount,
		ParentReviews: totalReviews,
	}, nil
}

// ownedDeck loads a deck and checks ownership.
func (s *StudyService) ownedDeck(ctx context.Context, userID, deckID uint64) (model.Deck, error) {
	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Deck{}, ErrDeckNotFound
		}
		return model.Deck{}, err
	}
	if deck.UserID != userID {
		return model.Deck{}, ErrForbidden
	}
	return deck, nil
}

// ownedSession loads a session and checks that its deck still exists
// and belongs to the caller. A vanished deck surfaces as deck-not-found.
func (s *StudyService) ownedSession(ctx context.Context, userID, sessionID uint64) (model.StudySession, error) {
	sess, err := s.study.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.StudySession{}, ErrSessionNotFound
		}
		return model.StudySession{}, err
	}
	if _, err := s.ownedDeck(ctx, userID, sess.DeckID); err != nil {
		return model.StudySession{}, err
	}
	return sess, nil
}

func shuffle(cards []model.Card) {
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
