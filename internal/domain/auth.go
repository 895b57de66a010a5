package domain

// Identity is the authenticated caller resolved from a verified token.
// It is immutable for the lifetime of a request.
type Identity struct {
	UserID int64
	Role   Role
}
