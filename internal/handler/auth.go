package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/matiloti/flashcards-backend-sub001/internal/model"
	"github.com/matiloti/flashcards-backend-sub001/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// ----- DTOs -----

type registerReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID            uint64    `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"display_name"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(u model.User) userPart {
	return userPart{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

func toAuthResp(res service.AuthResult) authResp {
	return authResp{
		User:    toUserPart(res.User),
		Access:  tokenPart{Token: res.Access.Token, Expires: res.Access.Exp},
		Refresh: tokenPart{Token: res.Refresh.Raw, Expires: res.Refresh.Exp}, // raw back to client
	}
}

// reqCtx bounds the duration of database work for one request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// clientMeta captures the device description and client IP persisted
// with each refresh token. RealIP prefers the first X-Forwarded-For
// entry over the transport-level remote address.
func clientMeta(c echo.Context) (deviceInfo, ip string) {
	return c.Request().UserAgent(), c.RealIP()
}

// Register: create user and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	device, ip := clientMeta(c)
	res, err := h.Auth.Register(ctx, req.Email, req.Password, req.DisplayName, device, ip)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, toAuthResp(res))
}

// Login: verify credentials and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	device, ip := clientMeta(c)
	res, err := h.Auth.Login(ctx, req.Email, req.Password, device, ip)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toAuthResp(res))
}

// Refresh: rotate the presented refresh token and issue a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	device, ip := clientMeta(c)
	res, err := h.Auth.Refresh(ctx, req.RefreshToken, device, ip)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toAuthResp(res))
}

// Logout: best-effort revoke of the presented refresh token. A missing
// or blank token is a silent no-op so logout is idempotent.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req) // invalid JSON just leaves the token empty

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, req.RefreshToken); err != nil {
		return domainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type sessionInfo struct {
	ID         uint64    `json:"id"`
	DeviceInfo *string   `json:"device_info,omitempty"`
	IPAddress  *string   `json:"ip_address,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Sessions: list the caller's active sessions across devices. Token
// hashes never appear in the response.
func (h *AuthHandler) Sessions(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	tokens, err := h.Auth.ActiveSessions(ctx, currentUserID(c))
	if err != nil {
		return domainError(c, err)
	}
	items := make([]sessionInfo, 0, len(tokens))
	for _, t := range tokens {
		items = append(items, sessionInfo{
			ID:         t.ID,
			DeviceInfo: t.DeviceInfo,
			IPAddress:  t.IPAddress,
			CreatedAt:  t.CreatedAt,
			ExpiresAt:  t.ExpiresAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// LogoutAll: revoke every refresh token of the authenticated user,
// terminating all sessions across devices.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	n, err := h.Auth.LogoutAll(ctx, currentUserID(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"revoked": n})
}
