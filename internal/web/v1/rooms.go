package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/room-service/internal/core/domain"
	"github.com/duynhne/room-service/internal/logger"
	logicv1 "github.com/duynhne/room-service/internal/logic/v1"
)

// userIDKey is the gin context key holding the caller's resolved user id.
const userIDKey = "user_id"

// RequireSession resolves the caller's session token and aborts with 401
// NotLoggedIn when there is none.
func (h *Handler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := h.gate.RequireSession(c.Request.Context(), h.sessionToken(c))
		if err != nil {
			respondError(c, err, "Session required")
			return
		}

		trace.SpanFromContext(c.Request.Context()).SetAttributes(attribute.Int64("user.id", userID))
		c.Set(userIDKey, userID)

		l := logger.FromContext(c.Request.Context()).With().Int64("user_id", userID).Logger()
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
		c.Next()
	}
}

func callerID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

func roomIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("room id %q: %w", c.Param("id"), logicv1.ErrInvalidInput)
	}
	return id, nil
}

// ListRooms returns the caller's rooms.
// GET /api/v1/rooms
func (h *Handler) ListRooms(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	rooms, err := h.rooms.List(ctx, callerID(c))
	if err != nil {
		span.RecordError(err)
		respondError(c, err, "List rooms failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": logicv1.OutcomeSuccess, "rooms": rooms})
}

// CreateRoom creates a room owned by the caller.
// POST /api/v1/rooms
func (h *Handler) CreateRoom(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	var req domain.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		logger.FromContext(ctx).Warn().Err(err).Msg("Invalid request")
		respondInvalidBody(c, err)
		return
	}

	roomID, err := h.rooms.Create(ctx, callerID(c), req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err, "Create room failed")
		return
	}

	logger.FromContext(ctx).Info().Int64("room_id", roomID).Msg("Room created")
	c.JSON(http.StatusOK, gin.H{"status": logicv1.OutcomeSuccess, "room_id": roomID})
}

// DeleteRoom deletes a room the caller owns.
// DELETE /api/v1/rooms/:id
func (h *Handler) DeleteRoom(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	roomID, err := roomIDParam(c)
	if err != nil {
		respondError(c, err, "Invalid room id")
		return
	}

	if err := h.rooms.Delete(ctx, callerID(c), roomID); err != nil {
		span.RecordError(err)
		respondError(c, err, "Delete room failed")
		return
	}

	logger.FromContext(ctx).Info().Int64("room_id", roomID).Msg("Room deleted")
	c.JSON(http.StatusOK, gin.H{"status": logicv1.OutcomeSuccess})
}

// LeaveRoom removes the caller from a room.
// POST /api/v1/rooms/:id/leave
func (h *Handler) LeaveRoom(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	roomID, err := roomIDParam(c)
	if err != nil {
		respondError(c, err, "Invalid room id")
		return
	}

	if err := h.rooms.Leave(ctx, callerID(c), roomID); err != nil {
		span.RecordError(err)
		respondError(c, err, "Leave room failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": logicv1.OutcomeSuccess})
}

// GetInvitationCode returns the invitation code of a room the caller owns.
// GET /api/v1/rooms/:id/invitation_code
func (h *Handler) GetInvitationCode(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	roomID, err := roomIDParam(c)
	if err != nil {
		respondError(c, err, "Invalid room id")
		return
	}

	code, err := h.rooms.InvitationCode(ctx, callerID(c), roomID)
	if err != nil {
		span.RecordError(err)
		respondError(c, err, "Get invitation code failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": logicv1.OutcomeSuccess, "code": code})
}

// JoinRoom admits the caller to the room behind an invitation code.
// POST /api/v1/join/:code
func (h *Handler) JoinRoom(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	roomID, err := h.rooms.Join(ctx, callerID(c), c.Param("code"))
	if err != nil {
		span.RecordError(err)
		respondError(c, err, "Join room failed")
		return
	}

	logger.FromContext(ctx).Info().Int64("room_id", roomID).Msg("Room joined")
	c.JSON(http.StatusOK, gin.H{"status": logicv1.OutcomeSuccess, "room_id": roomID})
}
