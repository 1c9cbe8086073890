package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/matiloti/flashcards-backend-sub001/internal/utils"
)

// Context keys set by JWTAuth for downstream handlers.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
)

// unauthorizedBody is the stable 401 payload returned to any request
// that reaches a protected route without valid credentials. Bad
// signature, wrong issuer, expiry and a missing header all produce the
// same body.
var unauthorizedBody = map[string]string{
	"error":   "UNAUTHORIZED",
	"message": "Authentication required",
}

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the subject and email claims into the request
// context. Validation is purely local (signature + issuer + expiry);
// no store lookup is ever performed, which is what makes access tokens
// stateless and individually irrevocable. Handlers read the caller via
// c.Get(CtxUserID).
func JWTAuth(secret, issuer string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, unauthorizedBody)
			}
			claims, err := utils.ParseAccessToken(secret, issuer, raw)
			if err != nil {
				// Treated uniformly as "unauthenticated"; the route-level
				// decision is this 401 since every route in the group is
				// protected.
				return c.JSON(http.StatusUnauthorized, unauthorizedBody)
			}
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxEmail, claims.Email)
			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer ..."
// header, returning "" when absent.
func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		return ""
	}
	return auth[len(prefix):]
}
