// Package service implements the domain operations behind the HTTP
// handlers: authentication and token lifecycle, and study-session
// tracking. Domain failures are sentinel error values so handlers can
// translate them to stable HTTP error payloads without string
// matching.
package service

import "errors"

var (
	// ErrEmailExists signals a registration attempt with an already
	// registered email (compared case-insensitively).
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidEmail signals a missing or malformed email address.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrInvalidPassword signals a password that violates the policy
	// (minimum 8 characters). Checked before any hashing happens.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidDisplayName signals a display name whose trimmed
	// length is outside 2-50 characters.
	ErrInvalidDisplayName = errors.New("invalid display name")

	// ErrInvalidCredentials is returned for every login failure.
	// Unknown email and wrong password are deliberately not
	// distinguishable, which blocks account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenInvalid is returned when a presented refresh token has
	// no active record, whether it is unknown, revoked, expired or
	// lost a concurrent rotation race.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrDeckNotFound signals a study operation on a missing deck.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrEmptyDeck signals an attempt to start a session on a deck
	// with no cards.
	ErrEmptyDeck = errors.New("deck has no cards")

	// ErrCardNotFound signals a review submission against a missing
	// card.
	ErrCardNotFound = errors.New("card not found")

	// ErrSessionNotFound signals a study operation on a missing
	// session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionCompleted signals a second completion attempt. Both
	// session variants reject double completion.
	ErrSessionCompleted = errors.New("session already completed")

	// ErrNoMissedCards signals a retake attempt on a session with no
	// remaining HARD/AGAIN cards.
	ErrNoMissedCards = errors.New("no missed cards to retake")

	// ErrInvalidRating signals a review submission with a rating
	// outside EASY/HARD/AGAIN.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrForbidden signals an operation on a resource owned by a
	// different user.
	ErrForbidden = errors.New("forbidden")

	// ErrUserNotFound signals a lookup of a missing user.
	ErrUserNotFound = errors.New("user not found")
)
