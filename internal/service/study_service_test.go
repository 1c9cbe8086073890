package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matiloti/flashcards-backend-sub001/internal/model"
	"github.com/matiloti/flashcards-backend-sub001/internal/queue"
	"github.com/matiloti/flashcards-backend-sub001/internal/repository"
)

// fakeStudyDB is a single in-memory backend implementing DeckStore,
// CardStore and StudyStore. deleteCard mimics the cascade: removing a
// card drops its review rows too.
type fakeStudyDB struct {
	decks    map[uint64]model.Deck
	cards    map[uint64]model.Card
	sessions map[uint64]*model.StudySession
	reviews  []model.CardReview
	seq      uint64
}

func newFakeStudyDB() *fakeStudyDB {
	return &fakeStudyDB{
		decks:    map[uint64]model.Deck{},
		cards:    map[uint64]model.Card{},
		sessions: map[uint64]*model.StudySession{},
	}
}

func (f *fakeStudyDB) addDeck(userID uint64) model.Deck {
	f.seq++
	d := model.Deck{ID: f.seq, UserID: userID, Title: "deck"}
	f.decks[d.ID] = d
	return d
}

func (f *fakeStudyDB) addCard(deckID uint64) model.Card {
	f.seq++
	c := model.Card{ID: f.seq, DeckID: deckID, FrontText: "front", BackText: "back"}
	f.cards[c.ID] = c
	return c
}

func (f *fakeStudyDB) deleteCard(id uint64) {
	delete(f.cards, id)
	kept := f.reviews[:0]
	for _, r := range f.reviews {
		if r.CardID != id {
			kept = append(kept, r)
		}
	}
	f.reviews = kept
}

// fakeDeckStore exposes the deck half of fakeStudyDB under the
// DeckStore interface parallel to how DeckRepo and CardRepo are
// distinct types in production.
type fakeDeckStore struct{ db *fakeStudyDB }

func (f fakeDeckStore) GetByID(_ context.Context, id uint64) (model.Deck, error) {
	d, ok := f.db.decks[id]
	if !ok {
		return model.Deck{}, repository.ErrNotFound
	}
	return d, nil
}

func (f *fakeStudyDB) GetByID(_ context.Context, id uint64) (model.Card, error) {
	c, ok := f.cards[id]
	if !ok {
		return model.Card{}, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeStudyDB) ListByDeck(_ context.Context, deckID uint64) ([]model.Card, error) {
	out := []model.Card{}
	for _, c := range f.cards {
		if c.DeckID == deckID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStudyDB) CreateSession(_ context.Context, s *model.StudySession) error {
	f.seq++
	s.ID = f.seq
	s.StartedAt = time.Now().UTC()
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeStudyDB) GetSession(_ context.Context, id uint64) (model.StudySession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return model.StudySession{}, repository.ErrNotFound
	}
	return *s, nil
}

func (f *fakeStudyDB) CompleteSession(_ context.Context, id uint64, conceptsViewed *uint32) (bool, error) {
	s, ok := f.sessions[id]
	if !ok || s.CompletedAt != nil {
		return false, nil
	}
	now := time.Now().UTC()
	s.CompletedAt = &now
	if conceptsViewed != nil {
		s.ConceptsViewed = conceptsViewed
	}
	return true, nil
}

func (f *fakeStudyDB) InsertReview(_ context.Context, sessionID, cardID uint64, rating string) error {
	f.seq++
	f.reviews = append(f.reviews, model.CardReview{
		ID: f.seq, SessionID: sessionID, CardID: cardID, Rating: rating, ReviewedAt: time.Now().UTC(),
	})
	return nil
}

func (f *fakeStudyDB) CountByRating(_ context.Context, sessionID uint64) (map[string]int, error) {
	counts := map[string]int{}
	for _, r := range f.reviews {
		if r.SessionID == sessionID {
			counts[r.Rating]++
		}
	}
	return counts, nil
}

func (f *fakeStudyDB) missedIDs(sessionID uint64) []uint64 {
	seen := map[uint64]bool{}
	ids := []uint64{}
	for _, r := range f.reviews {
		if r.SessionID != sessionID || (r.Rating != model.RatingHard && r.Rating != model.RatingAgain) {
			continue
		}
		if _, exists := f.cards[r.CardID]; !exists || seen[r.CardID] {
			continue
		}
		seen[r.CardID] = true
		ids = append(ids, r.CardID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (f *fakeStudyDB) FindMissedCards(_ context.Context, sessionID uint64) ([]model.Card, error) {
	out := []model.Card{}
	for _, id := range f.missedIDs(sessionID) {
		out = append(out, f.cards[id])
	}
	return out, nil
}

func (f *fakeStudyDB) CountMissedCards(_ context.Context, sessionID uint64) (int, error) {
	return len(f.missedIDs(sessionID)), nil
}

func (f *fakeStudyDB) CountTotalReviews(_ context.Context, sessionID uint64) (int, error) {
	n := 0
	for _, r := range f.reviews {
		if r.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

// capturePublisher records completion events instead of hitting a broker.
type capturePublisher struct {
	events []queue.SessionCompletedEvent
}

func (p *capturePublisher) SessionCompleted(_ context.Context, ev queue.SessionCompletedEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func newStudyFixture() (*StudyService, *fakeStudyDB, *capturePublisher) {
	db := newFakeStudyDB()
	pub := &capturePublisher{}
	return NewStudyService(fakeDeckStore{db}, db, db, pub), db, pub
}

func cardIDs(cards []model.Card) []uint64 {
	ids := make([]uint64, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ----- tests -----

func TestStartSessionUnknownDeck(t *testing.T) {
	svc, _, _ := newStudyFixture()
	_, _, err := svc.StartSession(context.Background(), 1, 999, model.SessionTypeStudy)
	assert.ErrorIs(t, err, ErrDeckNotFound)
}

func TestStartSessionEmptyDeck(t *testing.T) {
	svc, db, _ := newStudyFixture()
	deck := db.addDeck(1)
	_, _, err := svc.StartSession(context.Background(), 1, deck.ID, model.SessionTypeStudy)
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestStartSessionForeignDeck(t *testing.T) {
	svc, db, _ := newStudyFixture()
	deck := db.addDeck(1)
	db.addCard(deck.ID)
	_, _, err := svc.StartSession(context.Background(), 2, deck.ID, model.SessionTypeStudy)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestStartSessionReturnsWholeDeck(t *testing.T) {
	svc, db, _ := newStudyFixture()
	deck := db.addDeck(1)
	want := []uint64{}
	for i := 0; i < 5; i++ {
		want = append(want, db.addCard(deck.ID).ID)
	}

	sess, cards, err := svc.StartSession(context.Background(), 1, deck.ID, model.SessionTypeFlashReview)
	require.NoError(t, err)
	assert.Equal(t, model.SessionTypeFlashReview, sess.SessionType)
	assert.Equal(t, deck.ID, sess.DeckID)
	assert.Nil(t, sess.CompletedAt)
	// The shuffle is a permutation: every card exactly once.
	assert.Equal(t, want, cardIDs(cards))
}

func TestSubmitReviewValidation(t *testing.T) {
	svc, db, _ := newStudyFixture()
	deck := db.addDeck(1)
	card := db.addCard(deck.ID)
	sess, _, err := svc.StartSession(context.Background(), 1, deck.ID, model.SessionTypeStudy)
	require.NoError(t, err)

	err = svc.SubmitReview(context.Background(), 1, sess.ID, card.ID, "MEDIUM")
	assert.ErrorIs(t, err, ErrInvalidRating)

	err = svc.SubmitReview(context.Background(), 1, 999, card.ID, model.RatingEasy)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = svc.SubmitReview(context.Background(), 1, sess.ID, 999, model.RatingEasy)
	assert.ErrorIs(t, err, ErrCardNotFound)

	require.NoError(t, svc.SubmitReview(context.Background(), 1, sess.ID, card.ID, model.RatingEasy))
}

func TestSubmitReviewRejectsCardFromAnotherDeck(t *testing.T) {
	svc, db, _ := newStudyFixture()
	ctx := context.Background()

	mine := db.addDeck(1)
	db.addCard(mine.ID)
	theirs := db.addDeck(2)
	foreign := db.addCard(theirs.ID)

	sess, _, err := svc.StartSession(ctx, 1, mine.ID, model.SessionTypeStudy)
	require.NoError(t, err)

	// Rating a card outside the session's deck must fail, whether it
	// belongs to another user or just to a different deck of mine.
	err = svc.SubmitReview(ctx, 1, sess.ID, foreign.ID, model.RatingHard)
	assert.ErrorIs(t, err, ErrForbidden)

	other := db.addCard(db.addDeck(1).ID)
	err = svc.SubmitReview(ctx, 1, sess.ID, other.ID, model.RatingHard)
	assert.ErrorIs(t, err, ErrForbidden)

	// Nothing was recorded, so a retake can never surface the foreign
	// card's text.
	_, err = svc.StartRetake(ctx, 1, sess.ID)
	assert.ErrorIs(t, err, ErrNoMissedCards)
}

func TestCompleteSessionAggregatesCounts(t *testing.T) {
	svc, db, _ := newStudyFixture()
	ctx := context.Background()
	deck := db.addDeck(1)
	a, b := db.addCard(deck.ID), db.addCard(deck.ID)
	sess, _, err := svc.StartSession(ctx, 1, deck.ID, model.SessionTypeStudy)
	require.NoError(t, err)

	require.NoError(t, svc.SubmitReview(ctx, 1, sess.ID, a.ID, model.RatingEasy))
	require.NoError(t, svc.SubmitReview(ctx, 1, sess.ID, b.ID, model.RatingEasy))
	require.NoError(t, svc.SubmitReview(ctx, 1, sess.ID, a.ID, model.RatingHard))

	sum, err := svc.CompleteSession(ctx, 1, sess.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.EasyCount)
	assert.Equal(t, 1, sum.HardCount)
	assert.Equal(t, 0, sum.AgainCount) // absent bucket defaults to zero
	assert.Equal(t, 3, sum.TotalCards)
	assert.False(t, sum.CompletedAt.IsZero())
}

func TestCompleteSessionTwiceRejected(t *testing.T) {
	for _, sessionType := range []string{model.SessionTypeStudy, model.SessionTypeFlashReview} {
		svc, db, _ := newStudyFixture()
		ctx := context.Background()
		deck := db.addDeck(1)
		db.addCard(deck.ID)
		sess, _, err := svc.StartSession(ctx, 1, deck.ID, sessionType)
		require.NoError(t, err)

		_, err = svc.CompleteSession(ctx, 1, sess.ID, nil)
		require.NoError(t, err)
		_, err = svc.CompleteSession(ctx, 1, sess.ID, nil)
		assert.ErrorIs(t, err, ErrSessionCompleted, "session type %s", sessionType)
	}
}

func TestCompleteFlashReviewStoresConceptsViewed(t *testing.T) {
	svc, db, _ := newStudyFixture()
	ctx := context.Background()
	deck := db.addDeck(1)
	db.addCard(deck.ID)
	sess, _, err := svc.StartSession(ctx, 1, deck.ID, model.SessionTypeFlashReview)
	require.NoError(t, err)

	viewed := uint32(7)
	_, err = svc.CompleteSession(ctx, 1, sess.ID, &viewed)
	require.NoError(t, err)

	stored, err := db.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ConceptsViewed)
	assert.Equal(t, uint32(7), *stored.ConceptsViewed)
}

func TestCompleteStudySessionDiscardsConceptsViewed(t *testing.T) {
	svc, db, _ := newStudyFixture()
	ctx := context.Background()
	deck := db.addDeck(1)
	db.addCard(deck.ID)
	sess, _, err := svc.StartSession(ctx, 1, deck.ID, model.SessionTypeStudy)
	require.NoError(t, err)

	viewed := uint32(5)
	_, err = svc.CompleteSession(ctx, 1, sess.ID, &viewed)
	require.NoError(t, err)

	stored, err := db.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ConceptsViewed)
}

func TestCompleteSessionAfterDeckDeleted(t *testing.T) {
	svc, db, _ := newStudyFixture()
	ctx := context.Background()
	deck := db.addDeck(1)
	db.addCard(deck.ID)
	sess, _, err := svc.StartSession(ctx, 1, deck.ID, model.SessionTypeStudy)
	require.NoError(t, err)

	delete(db.decks, deck.ID)
	_, err = svc.CompleteSession(ctx, 1, sess.ID, nil)
	assert.ErrorIs(t, err, ErrDeckNotFound)
}

func TestCompleteSessionPublishesEvent(t *testing.T) {
	svc, db, pub := newStudyFixture()
	ctx := context.Background()
	deck := db.addDeck(1)
	card := db.addCard(deck.ID)
	sess, _, err := svc.StartSession(ctx, 1, deck.ID, model.SessionTypeStudy)
	require.NoError(t, err)
	require.NoError(t, svc.SubmitReview(ctx, 1, sess.ID, card.ID, model.RatingAgain))

	_, err = svc.CompleteSession(ctx, 1, sess.ID, nil)
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, sess.ID, ev.SessionID)
	assert.Equal(t, uint64(1), ev.UserID)
	assert.Equal(t, 1, ev.AgainCount)
	assert.Equal(t, 1, ev.TotalCards)
}

func TestRetakeDistinctAndExcludesDeleted(t *testing.T) {
	svc, db, _ := newStudyFixture()
	ctx := context.Background()
	deck := db.addDeck(1)
	hardTwice := db.addCard(deck.ID) // rated HARD then AGAIN: must appear once
	deleted := db.addCard(deck.ID)   // rated AGAIN then deleted: must disappear
	easy := db.addCard(deck.ID)      // rated EASY: not missed

	sess, _, err := svc.StartSession(ctx, 1, deck.ID, model.SessionTypeStudy)
	require.NoError(t, err)
	require.NoError(t, svc.SubmitReview(ctx, 1, sess.ID, hardTwice.ID, model.RatingHard))
	require.NoError(t, svc.SubmitReview(ctx, 1, sess.ID, hardTwice.ID, model.RatingAgain))
	require.NoError(t, svc.SubmitReview(ctx, 1, sess.ID, deleted.ID, model.RatingAgain))
	require.NoError(t, svc.SubmitReview(ctx, 1, sess.ID, easy.ID, model.RatingEasy))

	db.deleteCard(deleted.ID)

	res, err := svc.StartRetake(ctx, 1, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{hardTwice.ID}, cardIDs(res.Cards))
	assert.Equal(t, 1, res.MissedCount)
	// Reviews of the deleted card vanished with it.
	assert.Equal(t, 3, res.ParentReviews)

	require.NotNil(t, res.Session.ParentSessionID)
	assert.Equal(t, sess.ID, *res.Session.ParentSessionID)
	require.NotNil(t, res.Session.RetakeType)
	assert.Equal(t, model.RetakeMissedCards, *res.Session.RetakeType)
	assert.Equal(t, model.SessionTypeStudy, res.Session.SessionType)
}

func TestRetakeWithoutMissedCards(t *testing.T) {
	svc, db, _ := newStudyFixture()
	ctx := context.Background()
	deck := db.addDeck(1)
	card := db.addCard(deck.ID)
	sess, _, err := svc.StartSession(ctx, 1, deck.ID, model.SessionTypeStudy)
	require.NoError(t, err)
	require.NoError(t, svc.SubmitReview(ctx, 1, sess.ID, card.ID, model.RatingEasy))

	_, err = svc.StartRetake(ctx, 1, sess.ID)
	assert.ErrorIs(t, err, ErrNoMissedCards)
}
