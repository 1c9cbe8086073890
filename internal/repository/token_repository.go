package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/matiloti/flashcards-backend-sub001/internal/model"
)

// TokenRepo persists and validates refresh tokens. Only the SHA-256
// hash of a token ever reaches this layer.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token row. DeviceInfo and ip may be empty;
// empty strings are stored as NULL.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time, deviceInfo, ip string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at, device_info, ip_address) VALUES (?,?,?,?,?)",
		userID, tokenHash, exp, nullable(deviceInfo), nullable(ip))
	return err
}

// FindActive returns the owning user ID if a non-revoked, non-expired
// token row exists for the hash. Missing, revoked and expired rows all
// come back as ErrNotFound so callers cannot tell them apart.
func (r *TokenRepo) FindActive(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		userID    uint64
		expiresAt time.Time
		revoked   bool
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&userID, &expiresAt, &revoked)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if revoked || time.Now().UTC().After(expiresAt) {
		return 0, ErrNotFound
	}
	return userID, nil
}

// Revoke marks a token as revoked. The WHERE clause makes the update
// atomic: exactly one caller can win for a given active token, which
// resolves concurrent rotation races at the storage layer. Returns
// false when the token was already revoked, expired or never existed.
func (r *TokenRepo) Revoke(ctx context.Context, tokenHash string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked=1, revoked_at=NOW() WHERE token_hash=? AND revoked=0 AND expires_at > NOW()",
		tokenHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RevokeAllForUser revokes every active token of a user and returns
// how many were revoked. Used for "log out everywhere".
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked=1, revoked_at=NOW() WHERE user_id=? AND revoked=0",
		userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListActiveForUser returns a user's active refresh tokens, newest
// first. This backs the "where am I logged in" session listing; the
// hash is included for completeness but never leaves the handler layer.
func (r *TokenRepo) ListActiveForUser(ctx context.Context, userID uint64) ([]model.RefreshToken, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, revoked, revoked_at, device_info, ip_address, created_at
		 FROM refresh_tokens
		 WHERE user_id=? AND revoked=0 AND expires_at > NOW()
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := []model.RefreshToken{}
	for rows.Next() {
		var (
			t         model.RefreshToken
			revokedAt sql.NullTime
			device    sql.NullString
			ip        sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt,
			&t.Revoked, &revokedAt, &device, &ip, &t.CreatedAt); err != nil {
			return nil, err
		}
		if revokedAt.Valid {
			v := revokedAt.Time
			t.RevokedAt = &v
		}
		if device.Valid {
			v := device.String
			t.DeviceInfo = &v
		}
		if ip.Valid {
			v := ip.String
			t.IPAddress = &v
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// PurgeExpiredAndRevoked deletes rows whose expiry or revocation lies
// more than the retention window in the past. Runs from the periodic
// maintenance sweep, never on the request path.
func (r *TokenRepo) PurgeExpiredAndRevoked(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at < ? OR (revoked=1 AND revoked_at < ?)",
		cutoff, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// nullable maps an empty string to a NULL column value.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
