package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Me handles GET /v1/users/me and returns the authenticated user's
// profile.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.Profile(ctx, currentUserID(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// UpdateMe handles PATCH /v1/users/me. The display name is the only
// mutable profile field.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	var req struct {
		DisplayName string `json:"display_name"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.UpdateDisplayName(ctx, currentUserID(c), req.DisplayName)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}
