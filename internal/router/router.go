package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"github.com/matiloti/flashcards-backend-sub001/internal/config"
	"github.com/matiloti/flashcards-backend-sub001/internal/handler"
	"github.com/matiloti/flashcards-backend-sub001/internal/middleware"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Auth  *handler.AuthHandler
	Decks *handler.DeckHandler
	Cards *handler.CardHandler
	Study *handler.StudyHandler
}

// Middlewares carries the cross-cutting middleware built in main:
// RateLimit guards the unauthenticated auth endpoints, Cache serves
// repeated deck-browse GETs from Redis. Either may be a pass-through
// when Redis is unavailable.
type Middlewares struct {
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the full API surface. Unauthenticated token
// operations live under /v1/auth behind the rate limiter; everything
// else lives under /v1 behind the JWT middleware, which rejects
// requests lacking a valid access token with a structured 401.
func RegisterAPI(e *echo.Echo, cfg config.Config, h Handlers, mw Middlewares) {
	// Operations that establish or exchange a session. Logout is also
	// here: it authenticates by refresh token, not by access token.
	auth := e.Group("/v1/auth")
	if mw.RateLimit != nil {
		auth.Use(mw.RateLimit)
	}
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	// Everything below requires a valid Bearer access token.
	api := e.Group("/v1")
	api.Use(middleware.JWTAuth(cfg.JWTSecret, cfg.JWTIssuer))

	// "Log out everywhere" needs to know who the caller is, so unlike
	// plain logout it sits behind the JWT middleware.
	api.GET("/auth/sessions", h.Auth.Sessions)
	api.POST("/auth/logout-all", h.Auth.LogoutAll)

	api.GET("/users/me", h.Auth.Me)
	api.PATCH("/users/me", h.Auth.UpdateMe)

	// Deck browsing GETs go through the response cache when available.
	if mw.Cache != nil {
		api.GET("/decks", h.Decks.List, mw.Cache)
		api.GET("/decks/:id", h.Decks.Get, mw.Cache)
		api.GET("/decks/:id/cards", h.Cards.List, mw.Cache)
	} else {
		api.GET("/decks", h.Decks.List)
		api.GET("/decks/:id", h.Decks.Get)
		api.GET("/decks/:id/cards", h.Cards.List)
	}
	api.POST("/decks", h.Decks.Create)
	api.PATCH("/decks/:id", h.Decks.Update)
	api.DELETE("/decks/:id", h.Decks.Delete)

	api.POST("/decks/:id/cards", h.Cards.Create)
	api.PATCH("/cards/:id", h.Cards.Update)
	api.DELETE("/cards/:id", h.Cards.Delete)

	api.POST("/decks/:id/study", h.Study.StartStudy)
	api.POST("/decks/:id/flash-review", h.Study.StartFlashReview)
	api.POST("/study/:sessionId/reviews", h.Study.SubmitReview)
	api.POST("/study/:sessionId/complete", h.Study.Complete)
	api.POST("/study/:sessionId/retake", h.Study.Retake)
}
