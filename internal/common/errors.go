// Package common defines shared constants and sentinel errors used across
// client and server layers of GophNotes. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Account errors.
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("unauthenticated")

	// Note errors. Ownership mismatch and absence are reported the same way.
	ErrValidation          = errors.New("validation error")
	ErrNotFoundOrForbidden = errors.New("note not found or unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Export is not configured on this server.
	ErrExportDisabled = errors.New("export disabled")
)
