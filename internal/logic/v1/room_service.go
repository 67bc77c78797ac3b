package v1

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/room-service/internal/core/domain"
	"github.com/duynhne/room-service/middleware"
)

// RoomService implements room membership operations for an already
// authenticated caller. Callers resolve the session through Gate first.
type RoomService struct {
	rooms domain.RoomRepository
	codes domain.InvitationCodeRepository
	gate  *Gate
}

// NewRoomService creates a new RoomService.
func NewRoomService(rooms domain.RoomRepository, codes domain.InvitationCodeRepository, gate *Gate) *RoomService {
	return &RoomService{
		rooms: rooms,
		codes: codes,
		gate:  gate,
	}
}

// Create makes userID the owner and first member of a new room.
func (s *RoomService) Create(ctx context.Context, userID int64, req domain.CreateRoomRequest) (roomID int64, err error) {
	defer func() { recordOutcome("create_room", err) }()

	ctx, span := middleware.StartSpan(ctx, "room.create", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return 0, fmt.Errorf("room name is empty: %w", ErrInvalidInput)
	}

	roomID, err = s.rooms.Create(ctx, userID, name, req.Description)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("create room: %w", err)
	}

	span.SetAttributes(attribute.Int64("room.id", roomID))
	span.AddEvent("room.created")
	return roomID, nil
}

// List returns every room userID belongs to, owned or joined.
func (s *RoomService) List(ctx context.Context, userID int64) ([]domain.Room, error) {
	ctx, span := middleware.StartSpan(ctx, "room.list", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	rooms, err := s.rooms.ListForMember(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	span.SetAttributes(attribute.Int("room.count", len(rooms)))
	return rooms, nil
}

// Join admits userID to the room the invitation code resolves to.
func (s *RoomService) Join(ctx context.Context, userID int64, code string) (roomID int64, err error) {
	defer func() { recordOutcome("join_room", err) }()

	ctx, span := middleware.StartSpan(ctx, "room.join", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	code = strings.TrimSpace(code)
	if code == "" {
		return 0, fmt.Errorf("empty invitation code: %w", ErrInvalidCode)
	}

	roomID, err = s.rooms.Join(ctx, userID, code)
	if err != nil {
		if !IsOutcome(err) {
			span.RecordError(err)
		}
		return 0, err
	}

	span.SetAttributes(attribute.Int64("room.id", roomID))
	span.AddEvent("room.joined")
	return roomID, nil
}

// Leave removes userID from roomID. The owner cannot leave.
func (s *RoomService) Leave(ctx context.Context, userID, roomID int64) (err error) {
	defer func() { recordOutcome("leave_room", err) }()

	ctx, span := middleware.StartSpan(ctx, "room.leave", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", userID),
		attribute.Int64("room.id", roomID),
	))
	defer span.End()

	if err := s.rooms.Leave(ctx, userID, roomID); err != nil {
		if !IsOutcome(err) {
			span.RecordError(err)
		}
		return err
	}

	span.AddEvent("room.left")
	return nil
}

// Delete removes roomID with its memberships and invitation code. Only the
// owner may delete.
func (s *RoomService) Delete(ctx context.Context, userID, roomID int64) (err error) {
	defer func() { recordOutcome("delete_room", err) }()

	ctx, span := middleware.StartSpan(ctx, "room.delete", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", userID),
		attribute.Int64("room.id", roomID),
	))
	defer span.End()

	if err := s.gate.RequireOwner(ctx, roomID, userID); err != nil {
		return err
	}

	// The repository re-checks ownership inside its transaction, so a room
	// deleted between the gate and here still yields ErrNotOwner.
	if err := s.rooms.Delete(ctx, userID, roomID); err != nil {
		if !IsOutcome(err) {
			span.RecordError(err)
		}
		return err
	}

	span.AddEvent("room.deleted")
	return nil
}

// InvitationCode returns the room's invitation code, allocating one on the
// first request. Only the owner may fetch it.
func (s *RoomService) InvitationCode(ctx context.Context, userID, roomID int64) (code string, err error) {
	defer func() { recordOutcome("invitation_code", err) }()

	ctx, span := middleware.StartSpan(ctx, "room.invitation_code", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", userID),
		attribute.Int64("room.id", roomID),
	))
	defer span.End()

	if err := s.gate.RequireOwner(ctx, roomID, userID); err != nil {
		return "", err
	}

	code, err = s.codes.GetOrCreate(ctx, roomID)
	if err != nil {
		if !IsOutcome(err) {
			span.RecordError(err)
		}
		return "", err
	}
	return code, nil
}
