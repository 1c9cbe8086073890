package utils // package utils provides helpers for token creation, validation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing of refresh tokens
	"encoding/hex"  // hex encoding for token material
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrTokenInvalid is returned by ParseAccessToken for any failure:
// bad signature, wrong signing method, wrong issuer, malformed or
// expired token. Callers get no further detail.
var ErrTokenInvalid = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its
// expiry. Access tokens are short-lived, self-contained and stateless;
// validating one never touches the database, which also means one can
// never be individually revoked before it expires.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// AccessClaims is the decoded payload of a valid access token.
type AccessClaims struct {
	UserID uint64 // subject claim, the user's row ID
	Email  string // email claim, normalized at registration
}

// RefreshToken represents a long-lived opaque token used to obtain new
// access tokens. Raw carries no embedded claims; it is purely a lookup
// key. Only a SHA-256 hash of Raw is ever persisted.
type RefreshToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user. Claims are
// subject (decimal user ID), email, issuer, issued-at and expiry.
func NewAccessToken(secret, issuer string, userID uint64, email string, ttlSec int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlSec) * time.Second)
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(userID, 10),
		"email": email,
		"iss":   issuer,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature, signing method, issuer and
// expiry of a serialized access token and returns its claims. Every
// failure collapses into ErrTokenInvalid.
func ParseAccessToken(secret, issuer, raw string) (AccessClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return AccessClaims{}, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return AccessClaims{}, ErrTokenInvalid
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return AccessClaims{}, ErrTokenInvalid
	}
	uid, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || uid == 0 {
		return AccessClaims{}, ErrTokenInvalid
	}
	email, _ := claims["email"].(string)
	return AccessClaims{UserID: uid, Email: email}, nil
}

// NewRefreshToken returns an opaque refresh token and its expiration
// time: 32 bytes of cryptographically secure randomness hex-encoded to
// 64 characters.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	raw, err := randomHex(32)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashRefreshRaw returns the SHA-256 hash of the raw refresh token as
// a hex string. Storing only the hash means a leaked database dump
// cannot be replayed against the refresh endpoint.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string built from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
