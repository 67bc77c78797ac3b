package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

const (
	TraceIDHeader     = "X-Trace-ID"
	TraceParentHeader = "traceparent"
)

// traceIDKey is the gin context key holding the request's trace id.
const traceIDKey = "trace_id"

// GetTraceID returns the trace id for the request: the active span's id when
// tracing is on, then W3C traceparent, then X-Trace-ID, else a fresh one.
func GetTraceID(c *gin.Context) string {
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	if id, ok := parseTraceParent(c.GetHeader(TraceParentHeader)); ok {
		return id
	}

	if traceID := strings.TrimSpace(c.GetHeader(TraceIDHeader)); traceID != "" {
		return traceID
	}

	return generateTraceID()
}

// parseTraceParent extracts the trace id from a version-traceid-parentid-flags
// header value.
func parseTraceParent(traceParent string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(traceParent), "-")
	if len(parts) < 4 {
		return "", false
	}
	id := parts[1]
	if len(id) != 32 || id == strings.Repeat("0", 32) {
		return "", false
	}
	if _, err := hex.DecodeString(id); err != nil {
		return "", false
	}
	return strings.ToLower(id), true
}

func generateTraceID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// LoggingMiddleware attaches a request-scoped zerolog logger carrying the
// trace id and logs one line per request once it completes.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		traceID := GetTraceID(c)
		c.Set(traceIDKey, traceID)

		logger := log.With().Str("trace_id", traceID).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
		c.Header(TraceIDHeader, traceID)

		c.Next()

		statusCode := c.Writer.Status()

		var event *zerolog.Event
		switch {
		case statusCode >= 500:
			event = logger.Error()
		case statusCode >= 400:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		event.
			Str("method", method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Msg("HTTP request")
	}
}
