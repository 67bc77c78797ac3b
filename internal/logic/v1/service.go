package v1

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/room-service/internal/core/credential"
	"github.com/duynhne/room-service/internal/core/domain"
	"github.com/duynhne/room-service/internal/logger"
	"github.com/duynhne/room-service/middleware"
)

// AuthService implements registration, login and logout.
// It depends on repository interfaces (injected via constructor) and
// MUST NOT access the database or SQL directly.
type AuthService struct {
	users    domain.UserRepository
	sessions *SessionManager
	hasher   *credential.Hasher
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(users domain.UserRepository, sessions *SessionManager, hasher *credential.Hasher) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
	}
}

// Register creates a new user. Registering an email twice yields ErrUserExists
// and leaves the first user untouched.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (user *domain.User, err error) {
	defer func() { recordOutcome("register", err) }()

	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", req.Email),
	))
	defer span.End()

	email := normalizeEmail(req.Email)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register user %q: %w", email, ErrUserExists)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, credential.ErrPasswordTooLong) {
			return nil, fmt.Errorf("register user %q: %w: %w", email, ErrInvalidInput, err)
		}
		span.RecordError(err)
		return nil, err
	}

	// A concurrent register for the same email surfaces here as ErrUserExists
	// from the unique constraint.
	userID, err := s.users.Create(ctx, req.Name, req.Surname, email, passwordHash)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("user.id", userID),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("user.registered")

	return &domain.User{
		ID:      userID,
		Name:    req.Name,
		Surname: req.Surname,
		Email:   email,
	}, nil
}

// Login verifies credentials and issues a new session. A wrong password never
// creates a session row.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (resp *domain.AuthResponse, err error) {
	defer func() { recordOutcome("login", err) }()

	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", req.Email),
	))
	defer span.End()

	email := normalizeEmail(req.Email)

	row, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", email, err)
	}
	if row == nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", email, ErrUserNotFound)
	}

	ok, err := s.hasher.Verify(req.Password, row.PasswordHash)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("verify password for user %d: %w", row.ID, err)
	}
	if !ok {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", email, ErrInvalidCredentials)
	}

	token, err := s.sessions.Issue(ctx, row.ID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// Best-effort, don't fail login.
	if updateErr := s.users.UpdateLastLogin(ctx, row.ID); updateErr != nil {
		span.RecordError(fmt.Errorf("update last_login: %w", updateErr))
		logger.FromContext(ctx).Warn().Err(updateErr).Int64("user_id", row.ID).Msg("Failed to update last_login")
	}

	span.SetAttributes(
		attribute.Int64("user.id", row.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return &domain.AuthResponse{
		Token: token,
		User:  toUser(row),
	}, nil
}

// Logout revokes the session behind token. An empty or unknown token yields
// ErrNotLoggedIn; callers treat it as a successful no-op.
func (s *AuthService) Logout(ctx context.Context, token string) (err error) {
	defer func() { recordOutcome("logout", err) }()

	ctx, span := middleware.StartSpan(ctx, "auth.logout", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("logout: %w", ErrNotLoggedIn)
	}

	if err := s.sessions.Revoke(ctx, token); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			span.SetAttributes(attribute.Bool("session.revoked", false))
			return fmt.Errorf("logout: %w", ErrNotLoggedIn)
		}
		span.RecordError(err)
		return err
	}

	span.AddEvent("user.logged_out")
	return nil
}

// IsLoggedIn reports whether token resolves to a live session.
func (s *AuthService) IsLoggedIn(ctx context.Context, token string) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, nil
	}
	_, ok, err := s.sessions.Verify(ctx, token)
	return ok, err
}

// GetUserByToken retrieves user info from a session token (for /auth/me endpoint).
func (s *AuthService) GetUserByToken(ctx context.Context, token string) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.get_user_by_token", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("lookup session: %w", ErrNotLoggedIn)
	}

	userID, ok, err := s.sessions.Verify(ctx, token)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !ok {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return nil, fmt.Errorf("lookup session: %w", ErrNotLoggedIn)
	}

	row, err := s.users.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %d: %w", userID, err)
	}
	if row == nil {
		// Sessions cascade with their user, so this only happens mid-delete.
		return nil, fmt.Errorf("lookup user %d: %w", userID, ErrNotLoggedIn)
	}

	span.SetAttributes(
		attribute.Int64("user.id", row.ID),
		attribute.Bool("session.valid", true),
	)

	user := toUser(row)
	return &user, nil
}

func toUser(row *domain.UserRow) domain.User {
	return domain.User{
		ID:      row.ID,
		Name:    row.Name,
		Surname: row.Surname,
		Email:   row.Email,
	}
}

// normalizeEmail trims and lowercases email so uniqueness is
// case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
