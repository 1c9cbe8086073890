// Package handler contains the HTTP handlers. Handlers bind request
// DTOs, delegate to services or repositories, and translate domain
// errors into the stable JSON error shape {error, message, field?}.
// Storage-layer detail never reaches a response body.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/matiloti/flashcards-backend-sub001/internal/middleware"
	"github.com/matiloti/flashcards-backend-sub001/internal/repository"
	"github.com/matiloti/flashcards-backend-sub001/internal/service"
)

// errorBody is the wire shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func fail(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, errorBody{Error: code, Message: msg})
}

func failField(c echo.Context, status int, code, msg, field string) error {
	return c.JSON(status, errorBody{Error: code, Message: msg, Field: field})
}

// domainError maps service and repository sentinels onto HTTP
// responses. Anything unknown becomes an opaque 500.
func domainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		return failField(c, http.StatusBadRequest, "VALIDATION_ERROR", "a valid email is required", "email")
	case errors.Is(err, service.ErrInvalidPassword):
		return failField(c, http.StatusBadRequest, "VALIDATION_ERROR", "password must be at least 8 characters", "password")
	case errors.Is(err, service.ErrInvalidDisplayName):
		return failField(c, http.StatusBadRequest, "VALIDATION_ERROR", "display name must be 2-50 characters", "displayName")
	case errors.Is(err, service.ErrInvalidRating):
		return failField(c, http.StatusBadRequest, "VALIDATION_ERROR", "rating must be EASY, HARD or AGAIN", "rating")
	case errors.Is(err, service.ErrEmailExists):
		return failField(c, http.StatusConflict, "EMAIL_EXISTS", "email is already registered", "email")
	case errors.Is(err, service.ErrInvalidCredentials):
		// Identical payload for unknown email and wrong password.
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	case errors.Is(err, service.ErrTokenInvalid):
		return fail(c, http.StatusUnauthorized, "TOKEN_INVALID", "invalid or expired refresh token")
	case errors.Is(err, service.ErrEmptyDeck):
		return fail(c, http.StatusBadRequest, "EMPTY_DECK", "deck has no cards")
	case errors.Is(err, service.ErrNoMissedCards):
		return fail(c, http.StatusBadRequest, "NO_MISSED_CARDS", "session has no missed cards to retake")
	case errors.Is(err, service.ErrSessionCompleted):
		return fail(c, http.StatusConflict, "SESSION_COMPLETED", "session is already completed")
	case errors.Is(err, service.ErrDeckNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "deck not found")
	case errors.Is(err, service.ErrCardNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "card not found")
	case errors.Is(err, service.ErrSessionNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "session not found")
	case errors.Is(err, service.ErrUserNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "user not found")
	case errors.Is(err, service.ErrForbidden), errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "FORBIDDEN", "resource belongs to another user")
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "resource not found")
	default:
		return fail(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

// currentUserID reads the authenticated user injected by the JWT
// middleware. Routes behind the middleware always carry it; a zero
// return means the handler is misrouted.
func currentUserID(c echo.Context) uint64 {
	if v, ok := c.Get(middleware.CtxUserID).(uint64); ok {
		return v
	}
	return 0
}
