package repository

import (
	"context"
	"database/sql"

	"github.com/matiloti/flashcards-backend-sub001/internal/model"
)

// StudyRepo persists study sessions and card reviews and computes the
// aggregate counts used in session summaries.
type StudyRepo struct{ DB *sql.DB }

func NewStudyRepo(db *sql.DB) *StudyRepo { return &StudyRepo{DB: db} }

// CreateSession inserts a session row and populates the generated ID
// and started_at timestamp.
func (r *StudyRepo) CreateSession(ctx context.Context, s *model.StudySession) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO study_sessions (deck_id, session_type, parent_session_id, retake_type) VALUES (?,?,?,?)",
		s.DeckID, s.SessionType, nullableID(s.ParentSessionID), nullableStr(s.RetakeType))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)

	// Read back started_at so callers see the DB-assigned timestamp.
	return r.DB.QueryRowContext(ctx,
		"SELECT started_at FROM study_sessions WHERE id=?", s.ID).Scan(&s.StartedAt)
}

// GetSession fetches a session by id.
func (r *StudyRepo) GetSession(ctx context.Context, id uint64) (model.StudySession, error) {
	var (
		s        model.StudySession
		done     sql.NullTime
		concepts sql.NullInt64
		parent   sql.NullInt64
		retake   sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, deck_id, session_type, started_at, completed_at, concepts_viewed, parent_session_id, retake_type FROM study_sessions WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.DeckID, &s.SessionType, &s.StartedAt, &done, &concepts, &parent, &retake)
	if err == sql.ErrNoRows {
		return model.StudySession{}, ErrNotFound
	}
	if err != nil {
		return model.StudySession{}, err
	}
	if done.Valid {
		t := done.Time
		s.CompletedAt = &t
	}
	if concepts.Valid {
		n := uint32(concepts.Int64)
		s.ConceptsViewed = &n
	}
	if parent.Valid {
		p := uint64(parent.Int64)
		s.ParentSessionID = &p
	}
	if retake.Valid {
		v := retake.String
		s.RetakeType = &v
	}
	return s, nil
}

// CompleteSession stamps completed_at exactly once. The guard in the
// WHERE clause makes the operation atomic: the second and any later
// completion attempt affects zero rows and returns false.
func (r *StudyRepo) CompleteSession(ctx context.Context, id uint64, conceptsViewed *uint32) (bool, error) {
	var concepts sql.NullInt64
	if conceptsViewed != nil {
		concepts = sql.NullInt64{Int64: int64(*conceptsViewed), Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE study_sessions SET completed_at=NOW(), concepts_viewed=COALESCE(?, concepts_viewed) WHERE id=? AND completed_at IS NULL",
		concepts, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// InsertReview records a single rating event. Repeat ratings of the
// same card accumulate as separate rows.
func (r *StudyRepo) InsertReview(ctx context.Context, sessionID, cardID uint64, rating string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO card_reviews (session_id, card_id, rating) VALUES (?,?,?)",
		sessionID, cardID, rating)
	return err
}

// CountByRating groups stored reviews of a session per rating bucket.
// Buckets with no reviews are simply absent from the map.
func (r *StudyRepo) CountByRating(ctx context.Context, sessionID uint64) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT rating, COUNT(*) FROM card_reviews WHERE session_id=? GROUP BY rating", sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			rating string
			n      int
		)
		if err := rows.Scan(&rating, &n); err != nil {
			return nil, err
		}
		counts[rating] = n
	}
	return counts, rows.Err()
}

// FindMissedCards returns the distinct cards rated HARD or AGAIN in a
// session. The join restricts the result to cards that still exist;
// reviews of deleted cards disappear through the cascade, so deleted
// cards are silently excluded.
func (r *StudyRepo) FindMissedCards(ctx context.Context, sessionID uint64) ([]model.Card, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DISTINCT c.id, c.deck_id, c.front_text, c.back_text, c.created_at, c.updated_at
		 FROM card_reviews cr
		 JOIN cards c ON c.id = cr.card_id
		 WHERE cr.session_id=? AND cr.rating IN (?,?)
		 ORDER BY c.id`,
		sessionID, model.RatingHard, model.RatingAgain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := []model.Card{}
	for rows.Next() {
		cd, err := scanCard(rows.Scan)
		if err != nil {
			return nil, err
		}
		cards = append(cards, cd)
	}
	return cards, rows.Err()
}

// CountMissedCards counts the distinct still-existing cards rated HARD
// or AGAIN in a session.
func (r *StudyRepo) CountMissedCards(ctx context.Context, sessionID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT cr.card_id)
		 FROM card_reviews cr
		 JOIN cards c ON c.id = cr.card_id
		 WHERE cr.session_id=? AND cr.rating IN (?,?)`,
		sessionID, model.RatingHard, model.RatingAgain).Scan(&n)
	return n, err
}

// CountTotalReviews counts all review rows of a session.
func (r *StudyRepo) CountTotalReviews(ctx context.Context, sessionID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM card_reviews WHERE session_id=?", sessionID).Scan(&n)
	return n, err
}

func nullableID(v *uint64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullableStr(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
