package domain

import "context"

// SessionRow is one active login.
type SessionRow struct {
	Token  string
	UserID int64
}

// SessionRepository defines the data-access contract for session operations.
// Session rows are owned exclusively by the session manager.
type SessionRepository interface {
	// Create inserts a new session binding token to userID.
	Create(ctx context.Context, userID int64, token string) error

	// GetByToken looks up the session by token.
	// Returns (nil, nil) when the token does not match any session.
	GetByToken(ctx context.Context, token string) (*SessionRow, error)

	// Delete removes the session and reports whether a row was deleted.
	Delete(ctx context.Context, token string) (bool, error)
}
