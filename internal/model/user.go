package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column. The struct is
// a value snapshot returned by the repository layer; handlers define
// separate response types with JSON tags so the password hash can
// never leak past the storage boundary.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Email         – unique email address, stored lowercased.
//  DisplayName   – user-chosen display name (2–50 chars after trimming).
//  PasswordHash  – bcrypt hashed password.
//  EmailVerified – whether the email address has been confirmed.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64    // users.id
	Email         string    // users.email
	DisplayName   string    // users.display_name
	PasswordHash  string    // users.password_hash
	EmailVerified bool      // users.email_verified
	CreatedAt     time.Time // users.created_at
	UpdatedAt     time.Time // users.updated_at
}
