package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/gpthub/internal/config"
	"github.com/deppfellow/gpthub/internal/errs"
	"github.com/deppfellow/gpthub/internal/model"
	"github.com/deppfellow/gpthub/internal/server"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(serverCfg config.ServerConfig) *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{Server: serverCfg},
		Logger: &logger,
	}
}

func newEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	return e
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func serve(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGlobalErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
		code    string
	}{
		{
			name:    "http error",
			err:     errs.NewForbiddenError("Topic is locked"),
			status:  http.StatusForbidden,
			message: "Topic is locked",
			code:    "FORBIDDEN",
		},
		{
			name:    "unique violation",
			err:     &pgconn.PgError{Code: "23505", TableName: "users", ConstraintName: "users_username_key"},
			status:  http.StatusBadRequest,
			message: "A User with this username already exists",
			code:    "USER_ALREADY_EXISTS",
		},
		{
			name:    "echo error",
			err:     echo.NewHTTPError(http.StatusMethodNotAllowed),
			status:  http.StatusMethodNotAllowed,
			message: "Method Not Allowed",
			code:    "METHOD_NOT_ALLOWED",
		},
		{
			name:    "unknown",
			err:     errors.New("secret internals"),
			status:  http.StatusInternalServerError,
			message: "Internal Server Error",
			code:    "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho(testServer(config.ServerConfig{}))
			e.GET("/fail", func(c echo.Context) error { return tt.err })

			rec := serve(e, http.MethodGet, "/fail")

			assert.Equal(t, tt.status, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, tt.code, body["code"])
			assert.NotContains(t, rec.Body.String(), "secret internals")
		})
	}
}

func TestGlobalErrorHandlerUnknownRoute(t *testing.T) {
	e := newEcho(testServer(config.ServerConfig{}))

	rec := serve(e, http.MethodGet, "/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", decodeBody(t, rec)["message"])
}

func TestRequestIDGeneratedAndReused(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	rec := serve(e, http.MethodGet, "/")
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, rec.Header().Get(RequestIDHeader), rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRequestIDRejectsUnsafeValues(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, id := range []string{"has space", "line\nbreak", strings.Repeat("a", 129)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, id)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		got := rec.Header().Get(RequestIDHeader)
		assert.NotEqual(t, id, got)
		assert.Len(t, got, 36)
	}
}

func bufferServer(buf *bytes.Buffer) *server.Server {
	logger := zerolog.New(buf)
	return &server.Server{
		Config: &config.Config{},
		Logger: &logger,
	}
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestEnhanceContextStoresLogger(t *testing.T) {
	var buf bytes.Buffer
	s := bufferServer(&buf)
	e := echo.New()
	e.Use(RequestID(), NewContextEnhancer(s).EnhanceContext())

	e.GET("/", func(c echo.Context) error {
		GetLogger(c).Info().Msg("from echo")
		zerolog.Ctx(c.Request().Context()).Info().Msg("from context")
		return c.NoContent(http.StatusNoContent)
	})

	rec := serve(e, http.MethodGet, "/")

	lines := logLines(t, &buf)
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, rec.Header().Get(RequestIDHeader), line["request_id"])
		assert.Equal(t, http.MethodGet, line["method"])
		assert.NotContains(t, line, "user_id")
	}
}

func TestRequireAuthAddsCallerToLogger(t *testing.T) {
	var buf bytes.Buffer
	s := bufferServer(&buf)
	e := newEcho(s)
	e.Use(RequestID(), NewContextEnhancer(s).EnhanceContext())

	sessions := fakeSessions{session: &model.Session{UserID: "user_42", Role: "org:admin"}}
	e.POST("/admin", func(c echo.Context) error {
		GetLogger(c).Info().Msg("from echo")
		zerolog.Ctx(c.Request().Context()).Info().Msg("from context")
		return c.NoContent(http.StatusNoContent)
	}, NewAuthMiddleware(s, sessions).RequireAuth)

	rec := serve(e, http.MethodPost, "/admin")
	require.Equal(t, http.StatusNoContent, rec.Code)

	var handlerLines int
	for _, line := range logLines(t, &buf) {
		if line["message"] != "from echo" && line["message"] != "from context" {
			continue
		}
		handlerLines++
		assert.Equal(t, "user_42", line["user_id"])
		assert.Equal(t, "org:admin", line["user_role"])
		assert.Equal(t, rec.Header().Get(RequestIDHeader), line["request_id"])
	}
	assert.Equal(t, 2, handlerLines)
}

func TestGetLoggerFallsBackToNop(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.Equal(t, zerolog.Disabled, GetLogger(c).GetLevel())
}

func TestFormLimiterRejectsBurst(t *testing.T) {
	s := testServer(config.ServerConfig{FormRateLimit: 0.001, FormRateBurst: 2})
	e := newEcho(s)
	e.POST("/form", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, NewRateLimitMiddleware(s).FormLimiter())

	assert.Equal(t, http.StatusCreated, serve(e, http.MethodPost, "/form").Code)
	assert.Equal(t, http.StatusCreated, serve(e, http.MethodPost, "/form").Code)

	rec := serve(e, http.MethodPost, "/form")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.True(t, strings.HasPrefix(body["message"].(string), "Too many requests"))
}

func TestFormLimiterDisabled(t *testing.T) {
	s := testServer(config.ServerConfig{})
	e := newEcho(s)
	e.POST("/form", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, NewRateLimitMiddleware(s).FormLimiter())

	for range 5 {
		assert.Equal(t, http.StatusCreated, serve(e, http.MethodPost, "/form").Code)
	}
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusFromError(http.StatusOK, nil))
	assert.Equal(t, http.StatusForbidden, statusFromError(http.StatusOK, errs.NewForbiddenError("no")))
	assert.Equal(t, http.StatusNotFound, statusFromError(http.StatusOK, echo.ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFromError(http.StatusOK, errors.New("x")))
}

type fakeSessions struct {
	session *model.Session
}

func (f fakeSessions) Session(context.Context) (*model.Session, error) {
	if f.session == nil {
		return nil, errs.NewUnauthorizedError("Unauthorized")
	}
	return f.session, nil
}

func TestRequireAuth(t *testing.T) {
	protected := func(c echo.Context) error {
		return c.String(http.StatusOK, GetUserID(c))
	}

	t.Run("no session", func(t *testing.T) {
		s := testServer(config.ServerConfig{})
		e := newEcho(s)
		e.POST("/admin", protected, NewAuthMiddleware(s, fakeSessions{}).RequireAuth)

		rec := serve(e, http.MethodPost, "/admin")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized", decodeBody(t, rec)["message"])
	})

	t.Run("verified session", func(t *testing.T) {
		s := testServer(config.ServerConfig{})
		e := newEcho(s)
		sessions := fakeSessions{session: &model.Session{UserID: "user_42", Role: "org:admin"}}
		e.POST("/admin", protected, NewAuthMiddleware(s, sessions).RequireAuth)

		rec := serve(e, http.MethodPost, "/admin")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user_42", rec.Body.String())
	})
}
