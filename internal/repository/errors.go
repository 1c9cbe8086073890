// Package repository defines error values that are reused across
// multiple repositories. These sentinel values let higher layers such
// as services and handlers distinguish failure scenarios without
// inspecting driver errors: ErrNotFound maps to HTTP 404, ErrForbidden
// to 403 and ErrEmailExists to 409.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist. The
// token repository also returns it for revoked or expired refresh
// tokens so callers cannot distinguish those cases from a token that
// never existed.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by another user.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when a user row cannot be inserted
// because the email address is already registered.
var ErrEmailExists = errors.New("email already exists")
