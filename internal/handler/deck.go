package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/matiloti/flashcards-backend-sub001/internal/model"
	"github.com/matiloti/flashcards-backend-sub001/internal/repository"
)

// DeckHandler serves deck CRUD. Decks are thin glue around the study
// core: plain rows with an ownership check on every operation.
type DeckHandler struct {
	Decks *repository.DeckRepo
}

func NewDeckHandler(decks *repository.DeckRepo) *DeckHandler {
	return &DeckHandler{Decks: decks}
}

type deckReq struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// deckUpdateReq is the PATCH body. Pointer fields make an absent field
// distinguishable from a provided empty one: nil keeps the stored
// value, an empty title is a validation error, and an empty
// description clears it back to NULL.
type deckUpdateReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type deckResp struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	CardCount   int       `json:"card_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toDeckResp(d model.Deck, cardCount int) deckResp {
	return deckResp{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		CardCount:   cardCount,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

func validDeckTitle(title string) bool {
	n := utf8.RuneCountInString(title)
	return n >= 1 && n <= 100
}

// mergeDeckPatch folds a partial update into the stored deck. ok is
// false when a provided title fails validation.
func mergeDeckPatch(deck model.Deck, req deckUpdateReq) (title string, desc *string, ok bool) {
	title = deck.Title
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
		if !validDeckTitle(title) {
			return "", nil, false
		}
	}
	desc = deck.Description
	if req.Description != nil {
		d := strings.TrimSpace(*req.Description)
		if d == "" {
			desc = nil
		} else {
			desc = &d
		}
	}
	return title, desc, true
}

// ownedDeck loads a deck and verifies the caller owns it.
func (h *DeckHandler) ownedDeck(c echo.Context, id uint64) (model.Deck, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	deck, err := h.Decks.GetByID(ctx, id)
	if err != nil {
		return model.Deck{}, err
	}
	if deck.UserID != currentUserID(c) {
		return model.Deck{}, repository.ErrForbidden
	}
	return deck, nil
}

// Create handles POST /v1/decks.
func (h *DeckHandler) Create(c echo.Context) error {
	var req deckReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if !validDeckTitle(req.Title) {
		return failField(c, http.StatusBadRequest, "VALIDATION_ERROR", "title must be 1-100 characters", "title")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	deck := model.Deck{UserID: currentUserID(c), Title: req.Title, Description: req.Description}
	if err := h.Decks.Create(ctx, &deck); err != nil {
		return domainError(c, err)
	}
	created, err := h.Decks.GetByID(ctx, deck.ID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, toDeckResp(created, 0))
}

// List handles GET /v1/decks and returns the caller's decks.
func (h *DeckHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	decks, err := h.Decks.ListByUser(ctx, currentUserID(c))
	if err != nil {
		return domainError(c, err)
	}
	items := make([]deckResp, 0, len(decks))
	for _, d := range decks {
		n, err := h.Decks.CountCards(ctx, d.ID)
		if err != nil {
			return domainError(c, err)
		}
		items = append(items, toDeckResp(d, n))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/decks/:id.
func (h *DeckHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid deck id")
	}
	deck, err := h.ownedDeck(c, id)
	if err != nil {
		return domainError(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	n, err := h.Decks.CountCards(ctx, id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toDeckResp(deck, n))
}

// Update handles PATCH /v1/decks/:id.
func (h *DeckHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid deck id")
	}
	var req deckUpdateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
	}
	deck, err := h.ownedDeck(c, id)
	if err != nil {
		return domainError(c, err)
	}

	title, desc, ok := mergeDeckPatch(deck, req)
	if !ok {
		return failField(c, http.StatusBadRequest, "VALIDATION_ERROR", "title must be 1-100 characters", "title")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Decks.Update(ctx, id, title, desc); err != nil {
		return domainError(c, err)
	}
	updated, err := h.Decks.GetByID(ctx, id)
	if err != nil {
		return domainError(c, err)
	}
	n, err := h.Decks.CountCards(ctx, id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toDeckResp(updated, n))
}

// Delete handles DELETE /v1/decks/:id. Cards and their reviews are
// removed through the cascading foreign keys; past study sessions of
// the deck are retained.
func (h *DeckHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid deck id")
	}
	if _, err := h.ownedDeck(c, id); err != nil {
		return domainError(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Decks.Delete(ctx, id); err != nil {
		return domainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
