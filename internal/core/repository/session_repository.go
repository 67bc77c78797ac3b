package repository

import (
	"context"
	"errors"

	database "github.com/duynhne/room-service/internal/core"
	"github.com/duynhne/room-service/internal/core/domain"
)

// SessionRepository implements domain.SessionRepository over the persistence adapter.
type SessionRepository struct {
	db database.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session for the given user.
func (r *SessionRepository) Create(ctx context.Context, userID int64, token string) error {
	query := `INSERT INTO sessions (token, user_id) VALUES ($1, $2)`
	_, err := r.db.Exec(ctx, query, token, userID)
	return err
}

// GetByToken looks up the session by token.
// Returns (nil, nil) when the token does not match any session.
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*domain.SessionRow, error) {
	query := `SELECT token, user_id FROM sessions WHERE token = $1`

	var row domain.SessionRow
	err := r.db.QueryRow(ctx, query, token).Scan(&row.Token, &row.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// Delete removes the session and reports whether a row was deleted.
func (r *SessionRepository) Delete(ctx context.Context, token string) (bool, error) {
	query := `DELETE FROM sessions WHERE token = $1`
	affected, err := r.db.Exec(ctx, query, token)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
