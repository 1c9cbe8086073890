package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "flashcards-backend"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken(testSecret, testIssuer, 42, "user@example.com", 900)
	require.NoError(t, err)
	require.NotEmpty(t, at.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), at.Exp, 5*time.Second)

	claims, err := ParseAccessToken(testSecret, testIssuer, at.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	at, err := NewAccessToken(testSecret, testIssuer, 1, "a@b.c", 900)
	require.NoError(t, err)

	_, err = ParseAccessToken("other-secret", testIssuer, at.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseAccessTokenWrongIssuer(t *testing.T) {
	at, err := NewAccessToken(testSecret, "someone-else", 1, "a@b.c", 900)
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, testIssuer, at.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseAccessTokenExpired(t *testing.T) {
	at, err := NewAccessToken(testSecret, testIssuer, 1, "a@b.c", -60)
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, testIssuer, at.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseAccessTokenGarbage(t *testing.T) {
	_, err := ParseAccessToken(testSecret, testIssuer, "not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNewRefreshToken(t *testing.T) {
	rt, err := NewRefreshToken(30)
	require.NoError(t, err)
	// 32 random bytes hex-encoded.
	assert.Len(t, rt.Raw, 64)
	assert.WithinDuration(t, time.Now().UTC().Add(30*24*time.Hour), rt.Exp, 5*time.Second)

	other, err := NewRefreshToken(30)
	require.NoError(t, err)
	assert.NotEqual(t, rt.Raw, other.Raw)
}

func TestHashRefreshRaw(t *testing.T) {
	h := HashRefreshRaw("some-token")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashRefreshRaw("some-token"))
	assert.NotEqual(t, h, HashRefreshRaw("other-token"))
}
