package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/matiloti/flashcards-backend-sub001/internal/model"
	"github.com/matiloti/flashcards-backend-sub001/internal/service"
)

// StudyHandler serves session start, review submission, completion and
// missed-card retakes.
type StudyHandler struct {
	Study *service.StudyService
}

func NewStudyHandler(study *service.StudyService) *StudyHandler {
	return &StudyHandler{Study: study}
}

type sessionResp struct {
	ID              uint64    `json:"id"`
	DeckID          uint64    `json:"deck_id"`
	SessionType     string    `json:"session_type"`
	StartedAt       time.Time `json:"started_at"`
	ParentSessionID *uint64   `json:"parent_session_id,omitempty"`
	RetakeType      *string   `json:"retake_type,omitempty"`
}

type studyCardResp struct {
	ID        uint64 `json:"id"`
	FrontText string `json:"front_text"`
	BackText  string `json:"back_text"`
}

func toSessionResp(s model.StudySession) sessionResp {
	return sessionResp{
		ID:              s.ID,
		DeckID:          s.DeckID,
		SessionType:     s.SessionType,
		StartedAt:       s.StartedAt,
		ParentSessionID: s.ParentSessionID,
		RetakeType:      s.RetakeType,
	}
}

func toStudyCards(cards []model.Card) []studyCardResp {
	out := make([]studyCardResp, 0, len(cards))
	for _, cd := range cards {
		out = append(out, studyCardResp{ID: cd.ID, FrontText: cd.FrontText, BackText: cd.BackText})
	}
	return out
}

// StartStudy handles POST /v1/decks/:id/study: begins a STUDY session
// and returns the deck's cards in presentation order.
func (h *StudyHandler) StartStudy(c echo.Context) error {
	return h.start(c, model.SessionTypeStudy)
}

// StartFlashReview handles POST /v1/decks/:id/flash-review: begins a
// FLASH_REVIEW concept session over the same deck.
func (h *StudyHandler) StartFlashReview(c echo.Context) error {
	return h.start(c, model.SessionTypeFlashReview)
}

func (h *StudyHandler) start(c echo.Context, sessionType string) error {
	deckID, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid deck id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sess, cards, err := h.Study.StartSession(ctx, currentUserID(c), deckID, sessionType)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"session": toSessionResp(sess),
		"cards":   toStudyCards(cards),
	})
}

// SubmitReview handles POST /v1/study/:sessionId/reviews. Each call
// records one rating event; rating the same card again adds another
// event rather than replacing the first.
func (h *StudyHandler) SubmitReview(c echo.Context) error {
	sessionID, ok := pathID(c, "sessionId")
	if !ok {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid session id")
	}
	var req struct {
		CardID uint64 `json:"card_id"`
		Rating string `json:"rating"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
	}
	if req.CardID == 0 {
		return failField(c, http.StatusBadRequest, "VALIDATION_ERROR", "card id is required", "card_id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Study.SubmitReview(ctx, currentUserID(c), sessionID, req.CardID, req.Rating); err != nil {
		return domainError(c, err)
	}
	return c.NoContent(http.StatusCreated)
}

// Complete handles POST /v1/study/:sessionId/complete: stamps the
// completion time and returns the aggregated rating counts. A second
// call is rejected with 409.
func (h *StudyHandler) Complete(c echo.Context) error {
	sessionID, ok := pathID(c, "sessionId")
	if !ok {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid session id")
	}
	var req struct {
		ConceptsViewed *uint32 `json:"concepts_viewed"`
	}
	_ = c.Bind(&req) // body is optional; only flash review sends it

	ctx, cancel := reqCtx(c)
	defer cancel()

	sum, err := h.Study.CompleteSession(ctx, currentUserID(c), sessionID, req.ConceptsViewed)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"session_id":   sum.SessionID,
		"deck_id":      sum.DeckID,
		"session_type": sum.SessionType,
		"easy_count":   sum.EasyCount,
		"hard_count":   sum.HardCount,
		"again_count":  sum.AgainCount,
		"total_cards":  sum.TotalCards,
		"completed_at": sum.CompletedAt,
	})
}

// Retake handles POST /v1/study/:sessionId/retake: starts a follow-up
// session over the cards rated HARD or AGAIN in the given session.
func (h *StudyHandler) Retake(c echo.Context) error {
	sessionID, ok := pathID(c, "sessionId")
	if !ok {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid session id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Study.StartRetake(ctx, currentUserID(c), sessionID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"session":        toSessionResp(res.Session),
		"cards":          toStudyCards(res.Cards),
		"missed_count":   res.MissedCount,
		"parent_reviews": res.ParentReviews,
	})
}
