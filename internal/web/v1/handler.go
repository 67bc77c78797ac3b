package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/room-service/config"
	"github.com/duynhne/room-service/internal/core/domain"
	"github.com/duynhne/room-service/internal/logger"
	logicv1 "github.com/duynhne/room-service/internal/logic/v1"
	"github.com/duynhne/room-service/middleware"
)

// Outcomes of POST /auth/is_logged_in.
const (
	StatusLoggedIn  = "LoggedIn"
	StatusLoggedOut = "LoggedOut"
)

// Handler groups HTTP handlers for the room API v1.
// Dependencies are injected via the constructor, no global state.
type Handler struct {
	auth   *logicv1.AuthService
	rooms  *logicv1.RoomService
	gate   *logicv1.Gate
	cookie config.AuthConfig
}

// NewHandler creates a new Handler.
func NewHandler(auth *logicv1.AuthService, rooms *logicv1.RoomService, gate *logicv1.Gate, cookie config.AuthConfig) *Handler {
	return &Handler{
		auth:   auth,
		rooms:  rooms,
		gate:   gate,
		cookie: cookie,
	}
}

// RegisterRoutes registers all API v1 routes on the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/logout", h.Logout)
	rg.POST("/auth/is_logged_in", h.IsLoggedIn)
	rg.GET("/auth/me", h.GetMe)

	authed := rg.Group("")
	authed.Use(h.RequireSession())
	{
		authed.GET("/rooms", h.ListRooms)
		authed.POST("/rooms", h.CreateRoom)
		authed.DELETE("/rooms/:id", h.DeleteRoom)
		authed.POST("/rooms/:id/leave", h.LeaveRoom)
		authed.GET("/rooms/:id/invitation_code", h.GetInvitationCode)
		authed.POST("/join/:code", h.JoinRoom)
	}
}

// Register handles HTTP request for user registration.
func (h *Handler) Register(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	log := logger.FromContext(ctx)

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		log.Warn().Err(err).Msg("Invalid request")
		respondInvalidBody(c, err)
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	user, err := h.auth.Register(ctx, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err, "Registration failed")
		return
	}

	log.Info().Int64("user_id", user.ID).Msg("Registration successful")
	c.JSON(http.StatusOK, gin.H{"status": logicv1.OutcomeSuccess, "user": user})
}

// Login handles HTTP request for user login. The token is returned both in
// the body and as the session cookie.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	log := logger.FromContext(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		log.Warn().Err(err).Msg("Invalid request")
		respondInvalidBody(c, err)
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	resp, err := h.auth.Login(ctx, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err, "Login failed")
		return
	}

	h.setSessionCookie(c, resp.Token)
	log.Info().Int64("user_id", resp.User.ID).Msg("Login successful")
	c.JSON(http.StatusOK, gin.H{
		"status": logicv1.OutcomeSuccess,
		"token":  resp.Token,
		"user":   resp.User,
	})
}

// Logout revokes the caller's session. It always answers 200 and clears the
// cookie; a caller without a session gets status NotLoggedIn.
func (h *Handler) Logout(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	err := h.auth.Logout(ctx, h.sessionToken(c))
	h.clearSessionCookie(c)

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": logicv1.OutcomeSuccess})
	case errors.Is(err, logicv1.ErrNotLoggedIn):
		c.JSON(http.StatusOK, gin.H{"status": logicv1.OutcomeNotLoggedIn})
	default:
		span.RecordError(err)
		respondError(c, err, "Logout failed")
	}
}

// IsLoggedIn reports whether the caller's token resolves to a session.
func (h *Handler) IsLoggedIn(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	ok, err := h.auth.IsLoggedIn(ctx, h.sessionToken(c))
	if err != nil {
		span.RecordError(err)
		respondError(c, err, "Session check failed")
		return
	}

	status := StatusLoggedOut
	if ok {
		status = StatusLoggedIn
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// GetMe handles HTTP request to get current user from session token.
// GET /api/v1/auth/me
func (h *Handler) GetMe(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	user, err := h.auth.GetUserByToken(ctx, h.sessionToken(c))
	if err != nil {
		span.RecordError(err)
		respondError(c, err, "Token lookup failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": logicv1.OutcomeSuccess, "user": user})
}

// sessionToken reads the session cookie, falling back to a Bearer token.
func (h *Handler) sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(h.cookie.CookieName); err == nil && token != "" {
		return token
	}

	const bearerPrefix = "Bearer "
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > len(bearerPrefix) && strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(authHeader[len(bearerPrefix):])
	}
	return ""
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, token, 0, "/", "", h.cookie.CookieSecure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, "", -1, "/", "", h.cookie.CookieSecure, true)
}

func startRequestSpan(c *gin.Context) (context.Context, trace.Span) {
	return middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.FullPath()),
	))
}
