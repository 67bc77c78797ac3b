package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseTraceParent(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"valid", "00-4BF92F3577B34DA6A3CE929D0E0E4736-00f067aa0ba902b7-01", "4bf92f3577b34da6a3ce929d0e0e4736", true},
		{"empty", "", "", false},
		{"too few parts", "00-4bf92f3577b34da6a3ce929d0e0e4736", "", false},
		{"short id", "00-abc-00f067aa0ba902b7-01", "", false},
		{"all zero id", "00-00000000000000000000000000000000-00f067aa0ba902b7-01", "", false},
		{"not hex", "00-zzf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseTraceParent(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTraceRequest(headers map[string]string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return c, w
}

func TestGetTraceIDPrefersTraceParent(t *testing.T) {
	c, _ := newTraceRequest(map[string]string{
		TraceParentHeader: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
		TraceIDHeader:     "from-header",
	})
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(c))
}

func TestGetTraceIDFallsBackToHeader(t *testing.T) {
	c, _ := newTraceRequest(map[string]string{TraceIDHeader: "from-header"})
	assert.Equal(t, "from-header", GetTraceID(c))
}

func TestGetTraceIDGenerates(t *testing.T) {
	c, _ := newTraceRequest(nil)
	id := GetTraceID(c)
	assert.Len(t, id, 32)

	c2, _ := newTraceRequest(nil)
	assert.NotEqual(t, id, GetTraceID(c2))
}

func TestLoggingMiddlewareAttachesLogger(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware())

	var ctxLogger *zerolog.Logger
	var ctx context.Context
	r.GET("/ping", func(c *gin.Context) {
		ctx = c.Request.Context()
		ctxLogger = zerolog.Ctx(ctx)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(TraceIDHeader, "abc123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "abc123", w.Header().Get(TraceIDHeader))
	require.NotNil(t, ctxLogger)
	assert.NotEqual(t, zerolog.Disabled, ctxLogger.GetLevel())
}

func TestPrometheusMiddlewarePassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(PrometheusMiddleware())
	r.GET("/rooms/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms/7", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStartSpanWithoutProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test")
	defer span.End()
	assert.NotNil(t, ctx)
}
