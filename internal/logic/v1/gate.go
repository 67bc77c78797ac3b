package v1

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/room-service/internal/core/domain"
	"github.com/duynhne/room-service/internal/logger"
	"github.com/duynhne/room-service/middleware"
)

// Gate is the authorization check consulted before every room operation.
type Gate struct {
	sessions *SessionManager
	rooms    domain.RoomRepository
}

// NewGate creates a new Gate.
func NewGate(sessions *SessionManager, rooms domain.RoomRepository) *Gate {
	return &Gate{sessions: sessions, rooms: rooms}
}

// RequireSession resolves token to the logged-in user. A missing token and an
// unknown token are the same outcome: ErrNotLoggedIn.
func (g *Gate) RequireSession(ctx context.Context, token string) (int64, error) {
	if strings.TrimSpace(token) == "" {
		return 0, fmt.Errorf("no session token: %w", ErrNotLoggedIn)
	}

	userID, ok, err := g.sessions.Verify(ctx, token)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("unknown session token: %w", ErrNotLoggedIn)
	}
	return userID, nil
}

// RequireOwner succeeds only when roomID exists and is owned by userID.
// A missing room is reported as ErrNotOwner so non-owners cannot probe which
// room ids exist.
func (g *Gate) RequireOwner(ctx context.Context, roomID, userID int64) error {
	ctx, span := middleware.StartSpan(ctx, "gate.require_owner", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("room.id", roomID),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	owns, err := g.rooms.IsOwner(ctx, roomID, userID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !owns {
		span.SetAttributes(attribute.Bool("gate.owner", false))
		logger.FromContext(ctx).Debug().Int64("room_id", roomID).Int64("user_id", userID).Msg("Ownership check failed")
		return fmt.Errorf("room %d: %w", roomID, ErrNotOwner)
	}

	span.SetAttributes(attribute.Bool("gate.owner", true))
	return nil
}
