package repository

import (
	"context"
	"errors"
	"fmt"

	database "github.com/duynhne/room-service/internal/core"
	"github.com/duynhne/room-service/internal/core/domain"
)

// UserRepository implements domain.UserRepository over the persistence adapter.
type UserRepository struct {
	db database.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail returns the user registered with email.
// Returns (nil, nil) when no user is found.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.UserRow, error) {
	query := `SELECT id, name, surname, email, password_hash FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

// GetByID returns the user with the given id.
// Returns (nil, nil) when no user is found.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.UserRow, error) {
	query := `SELECT id, name, surname, email, password_hash FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.UserRow, error) {
	var row domain.UserRow
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&row.ID, &row.Name, &row.Surname, &row.Email, &row.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// ExistsByEmail returns true when a user with the given email already exists.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// Create inserts a new user and returns the generated user ID.
// A concurrent registration of the same email surfaces as domain.ErrUserExists
// through the unique index on users.email.
func (r *UserRepository) Create(ctx context.Context, name, surname, email, passwordHash string) (int64, error) {
	query := `INSERT INTO users (name, surname, email, password_hash) VALUES ($1, $2, $3, $4) RETURNING id`

	var userID int64
	err := r.db.QueryRow(ctx, query, name, surname, email, passwordHash).Scan(&userID)
	if err != nil {
		if errors.Is(err, database.ErrUniqueViolation) {
			return 0, fmt.Errorf("insert user %q: %w", email, domain.ErrUserExists)
		}
		return 0, err
	}

	return userID, nil
}

// UpdateLastLogin sets the last_login timestamp to now for the given user.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	query := `UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
