package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/matiloti/flashcards-backend-sub001/internal/config"
	"github.com/matiloti/flashcards-backend-sub001/internal/model"
	"github.com/matiloti/flashcards-backend-sub001/internal/repository"
	"github.com/matiloti/flashcards-backend-sub001/internal/utils"
)

// minPasswordLen is the only password policy enforced at registration.
const minPasswordLen = 8

// UserStore is the slice of the user repository the auth service
// depends on. Implementations store bcrypt hashes, never plaintext.
type UserStore interface {
	Create(ctx context.Context, email, displayName, passwordHash string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateDisplayName(ctx context.Context, id uint64, displayName string) error
}

// TokenStore is the slice of the refresh-token repository the auth
// service depends on. Only token hashes cross this boundary.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time, deviceInfo, ip string) error
	FindActive(ctx context.Context, tokenHash string) (uint64, error)
	Revoke(ctx context.Context, tokenHash string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uint64) (int64, error)
	ListActiveForUser(ctx context.Context, userID uint64) ([]model.RefreshToken, error)
	PurgeExpiredAndRevoked(ctx context.Context, retention time.Duration) (int64, error)
}

// AuthResult is returned by Register, Login and Refresh: the user
// snapshot plus a freshly minted token pair.
type AuthResult struct {
	User    model.User
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// AuthService orchestrates registration, login, refresh rotation and
// logout over the password hasher, token issuer and the two stores.
type AuthService struct {
	cfg    config.Config
	users  UserStore
	tokens TokenStore
}

func NewAuthService(cfg config.Config, users UserStore, tokens TokenStore) *AuthService {
	return &AuthService{cfg: cfg, users: users, tokens: tokens}
}

// NormalizeEmail trims surrounding whitespace and lowercases an email
// address. Every email entering the service goes through this first.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user and immediately issues a token pair. Policy
// checks run before the (expensive) password hash.
func (s *AuthService) Register(ctx context.Context, email, password, displayName, deviceInfo, ip string) (AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return AuthResult{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return AuthResult{}, ErrInvalidPassword
	}
	displayName = strings.TrimSpace(displayName)
	if n := utf8.RuneCountInString(displayName); n < 2 || n > 50 {
		return AuthResult{}, ErrInvalidDisplayName
	}

	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return AuthResult{}, err
	}
	uid, err := s.users.Create(ctx, email, displayName, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return AuthResult{}, ErrEmailExists
		}
		return AuthResult{}, err
	}
	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return AuthResult{}, err
	}
	return s.issuePair(ctx, u, deviceInfo, ip)
}

// Login verifies credentials and issues a new token pair. Lookup and
// verification failures collapse into one error so the response cannot
// reveal whether the email is registered.
func (s *AuthService) Login(ctx context.Context, email, password, deviceInfo, ip string) (AuthResult, error) {
	email = NormalizeEmail(email)
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.issuePair(ctx, u, deviceInfo, ip)
}

// Refresh rotates a refresh token: the presented token is revoked and
// a brand-new pair is issued. The atomic revoke-if-active update in
// the store decides concurrent uses of the same token; only the winner
// gets a new pair, so a stolen token cannot be replayed beyond one use.
func (s *AuthService) Refresh(ctx context.Context, rawToken, deviceInfo, ip string) (AuthResult, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return AuthResult{}, ErrTokenInvalid
	}
	hash := utils.HashRefreshRaw(rawToken)

	userID, err := s.tokens.FindActive(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrTokenInvalid
		}
		return AuthResult{}, err
	}
	ok, err := s.tokens.Revoke(ctx, hash)
	if err != nil {
		return AuthResult{}, err
	}
	if !ok {
		// Someone else rotated this token between lookup and revoke.
		return AuthResult{}, ErrTokenInvalid
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return AuthResult{}, err
	}
	return s.issuePair(ctx, u, deviceInfo, ip)
}

// Logout revokes the presented refresh token. A blank token and an
// unknown token are both silent no-ops, making logout idempotent.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil
	}
	_, err := s.tokens.Revoke(ctx, utils.HashRefreshRaw(rawToken))
	return err
}

// LogoutAll revokes every active refresh token of a user ("log out
// everywhere") and returns how many sessions were terminated.
func (s *AuthService) LogoutAll(ctx context.Context, userID uint64) (int64, error) {
	return s.tokens.RevokeAllForUser(ctx, userID)
}

// ActiveSessions lists a user's active refresh tokens with their device
// metadata, answering "where am I logged in".
func (s *AuthService) ActiveSessions(ctx context.Context, userID uint64) ([]model.RefreshToken, error) {
	return s.tokens.ListActiveForUser(ctx, userID)
}

// Profile returns the user behind an authenticated request.
func (s *AuthService) Profile(ctx context.Context, userID uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return u, nil
}

// UpdateDisplayName changes the caller's display name, applying the
// same 2-50 character policy as registration.
func (s *AuthService) UpdateDisplayName(ctx context.Context, userID uint64, displayName string) (model.User, error) {
	displayName = strings.TrimSpace(displayName)
	if n := utf8.RuneCountInString(displayName); n < 2 || n > 50 {
		return model.User{}, ErrInvalidDisplayName
	}
	if err := s.users.UpdateDisplayName(ctx, userID, displayName); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return s.Profile(ctx, userID)
}

// issuePair mints an access token and a refresh token for u and
// persists the refresh token hash with the current device and IP.
func (s *AuthService) issuePair(ctx context.Context, u model.User, deviceInfo, ip string) (AuthResult, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, u.ID, u.Email, s.cfg.AccessTTLSec)
	if err != nil {
		return AuthResult{}, err
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return AuthResult{}, err
	}
	if err := s.tokens.Store(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp, deviceInfo, ip); err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: u, Access: access, Refresh: refresh}, nil
}
