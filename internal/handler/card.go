package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/matiloti/flashcards-backend-sub001/internal/model"
	"github.com/matiloti/flashcards-backend-sub001/internal/repository"
)

// CardHandler serves card CRUD inside a deck.
type CardHandler struct {
	Decks *repository.DeckRepo
	Cards *repository.CardRepo
}

func NewCardHandler(decks *repository.DeckRepo, cards *repository.CardRepo) *CardHandler {
	return &CardHandler{Decks: decks, Cards: cards}
}

type cardReq struct {
	FrontText string `json:"front_text"`
	BackText  string `json:"back_text"`
}

type cardResp struct {
	ID        uint64    `json:"id"`
	DeckID    uint64    `json:"deck_id"`
	FrontText string    `json:"front_text"`
	BackText  string    `json:"back_text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCardResp(cd model.Card) cardResp {
	return cardResp{
		ID:        cd.ID,
		DeckID:    cd.DeckID,
		FrontText: cd.FrontText,
		BackText:  cd.BackText,
		CreatedAt: cd.CreatedAt,
		UpdatedAt: cd.UpdatedAt,
	}
}

// ownedCard loads a card and verifies the caller owns its deck.
func (h *CardHandler) ownedCard(c echo.Context, cardID uint64) (model.Card, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	card, err := h.Cards.GetByID(ctx, cardID)
	if err != nil {
		return model.Card{}, err
	}
	deck, err := h.Decks.GetByID(ctx, card.DeckID)
	if err != nil {
		return model.Card{}, err
	}
	if deck.UserID != currentUserID(c) {
		return model.Card{}, repository.ErrForbidden
	}
	return card, nil
}

// Create handles POST /v1/decks/:id/cards.
func (h *CardHandler) Create(c echo.Context) error {
	deckID, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid deck id")
	}
	var req cardReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
	}
	req.FrontText = strings.TrimSpace(req.FrontText)
	req.BackText = strings.TrimSpace(req.BackText)
	if req.FrontText == "" {
		return failField(c, http.StatusBadRequest, "VALIDATION_ERROR", "front text is required", "front_text")
	}
	if req.BackText == "" {
		return failField(c, http.StatusBadRequest, "VALIDATION_ERROR", "back text is required", "back_text")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	deck, err := h.Decks.GetByID(ctx, deckID)
	if err != nil {
		return domainError(c, err)
	}
	if deck.UserID != currentUserID(c) {
		return domainError(c, repository.ErrForbidden)
	}

	card := model.Card{DeckID: deckID, FrontText: req.FrontText, BackText: req.BackText}
	if err := h.Cards.Create(ctx, &card); err != nil {
		return domainError(c, err)
	}
	created, err := h.Cards.GetByID(ctx, card.ID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, toCardResp(created))
}

// List handles GET /v1/decks/:id/cards.
func (h *CardHandler) List(c echo.Context) error {
	deckID, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid deck id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	deck, err := h.Decks.GetByID(ctx, deckID)
	if err != nil {
		return domainError(c, err)
	}
	if deck.UserID != currentUserID(c) {
		return domainError(c, repository.ErrForbidden)
	}
	cards, err := h.Cards.ListByDeck(ctx, deckID)
	if err != nil {
		return domainError(c, err)
	}
	items := make([]cardResp, 0, len(cards))
	for _, cd := range cards {
		items = append(items, toCardResp(cd))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Update handles PATCH /v1/cards/:id.
func (h *CardHandler) Update(c echo.Context) error {
	cardID, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid card id")
	}
	var req cardReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
	}
	card, err := h.ownedCard(c, cardID)
	if err != nil {
		return domainError(c, err)
	}

	front := strings.TrimSpace(req.FrontText)
	if front == "" {
		front = card.FrontText
	}
	back := strings.TrimSpace(req.BackText)
	if back == "" {
		back = card.BackText
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Cards.Update(ctx, cardID, front, back); err != nil {
		return domainError(c, err)
	}
	updated, err := h.Cards.GetByID(ctx, cardID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toCardResp(updated))
}

// Delete handles DELETE /v1/cards/:id. The card's reviews go with it,
// which is how past sessions stop offering it for retakes.
func (h *CardHandler) Delete(c echo.Context) error {
	cardID, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid card id")
	}
	if _, err := h.ownedCard(c, cardID); err != nil {
		return domainError(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Cards.Delete(ctx, cardID); err != nil {
		return domainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
