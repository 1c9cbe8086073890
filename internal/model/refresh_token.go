package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a user and carries metadata for expiry and
// revocation. The plain token is never stored; only its SHA-256 hash.
// A token is active iff it is not revoked and not past its expiry.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – owner of the token.
//  TokenHash  – SHA-256 hex digest of the opaque token value.
//  ExpiresAt  – expiration timestamp.
//  Revoked    – whether the token has been revoked.
//  RevokedAt  – when the token was revoked (null while active).
//  DeviceInfo – optional client device description captured at issue time.
//  IPAddress  – optional client IP captured at issue time.
//  CreatedAt  – timestamp of creation.
type RefreshToken struct {
	ID         uint64     // refresh_tokens.id
	UserID     uint64     // refresh_tokens.user_id
	TokenHash  string     // refresh_tokens.token_hash
	ExpiresAt  time.Time  // refresh_tokens.expires_at
	Revoked    bool       // refresh_tokens.revoked
	RevokedAt  *time.Time // refresh_tokens.revoked_at (nullable)
	DeviceInfo *string    // refresh_tokens.device_info (nullable)
	IPAddress  *string    // refresh_tokens.ip_address (nullable)
	CreatedAt  time.Time  // refresh_tokens.created_at
}
