package v1

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/room-service/internal/core/domain"
	"github.com/duynhne/room-service/middleware"
)

// tokenBytes is the entropy of a session token: 256 bits, hex encoded.
const tokenBytes = 32

// SessionManager issues, verifies and revokes opaque session tokens.
// It holds no state; every session lives in the sessions table.
type SessionManager struct {
	sessions domain.SessionRepository
}

// NewSessionManager creates a new SessionManager.
func NewSessionManager(sessions domain.SessionRepository) *SessionManager {
	return &SessionManager{sessions: sessions}
}

// Issue creates and persists a new token bound to userID.
func (m *SessionManager) Issue(ctx context.Context, userID int64) (string, error) {
	ctx, span := middleware.StartSpan(ctx, "session.issue", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	token, err := newToken()
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	if err := m.sessions.Create(ctx, userID, token); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// Verify returns the user bound to token, and false when no session matches.
func (m *SessionManager) Verify(ctx context.Context, token string) (int64, bool, error) {
	ctx, span := middleware.StartSpan(ctx, "session.verify", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	row, err := m.sessions.GetByToken(ctx, token)
	if err != nil {
		span.RecordError(err)
		return 0, false, fmt.Errorf("query session: %w", err)
	}
	if row == nil {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return 0, false, nil
	}

	span.SetAttributes(
		attribute.Bool("session.valid", true),
		attribute.Int64("user.id", row.UserID),
	)
	return row.UserID, true, nil
}

// Revoke deletes the session. A token with no session yields
// ErrSessionNotFound, so revoking twice reports Revoked then NotFound.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	ctx, span := middleware.StartSpan(ctx, "session.revoke", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	deleted, err := m.sessions.Delete(ctx, token)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete session: %w", err)
	}
	if !deleted {
		span.SetAttributes(attribute.Bool("session.revoked", false))
		return fmt.Errorf("revoke session: %w", ErrSessionNotFound)
	}

	span.SetAttributes(attribute.Bool("session.revoked", true))
	return nil
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
