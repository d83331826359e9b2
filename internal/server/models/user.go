package models

// User is a registered account. It is never updated after creation.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

// Identity is the authenticated caller bound to a request. It is produced by
// the auth service and passed explicitly into note operations.
type Identity struct {
	UserID   int64
	Username string
}
