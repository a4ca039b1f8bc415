package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"user-account-service/internal/domain"
	"user-account-service/internal/transport/http/ez"
)

func init() { gin.SetMode(gin.TestMode) }

type authFunc func(ctx context.Context, token string) (*domain.User, error)

func (f authFunc) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	return f(ctx, token)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":    "abc",
		"bearer abc":    "abc",
		"  Bearer  abc": "abc",
		"Bearer":        "",
		"Basic abc":     "",
		"abc":           "",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, BearerToken(in), in)
	}
}

func TestAuthSession(t *testing.T) {
	alice := &domain.User{ID: "u1", Name: "Alice"}
	auth := authFunc(func(_ context.Context, tok string) (*domain.User, error) {
		switch tok {
		case "good":
			return alice, nil
		case "broken":
			return nil, errors.New("store unavailable")
		}
		return nil, domain.ErrInvalidToken
	})

	r := gin.New()
	r.GET("/me", AuthSession(auth), func(c *gin.Context) {
		u := c.MustGet(KeyUser).(*domain.User)
		c.JSON(http.StatusOK, gin.H{"id": u.ID, "uid": c.GetString(KeyUserID)})
	})

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"missing", "", 401, `{"message":"No token provided"}`},
		{"wrong scheme", "Token good", 401, `{"message":"No token provided"}`},
		{"invalid", "Bearer nope", 401, `{"message":"Invalid token"}`},
		{"store error", "Bearer broken", 500, `{"error":"Internal Server Error"}`},
		{"ok", "Bearer good", 200, `{"id":"u1","uid":"u1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(KeyRequestID)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "rid-1")
	w = serve(r, req)
	assert.Equal(t, "rid-1", w.Header().Get(KeyRequestID))
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(20 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) { <-c.Request.Context().Done() })
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.JSONEq(t, `{"error":"timeout"}`, w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTimeout_ActionFailingOnDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(20 * time.Millisecond))
	ez.RegisterAction(ez.New(r.Group("")), ez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/query",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			<-c.Request.Context().Done()
			return nil, fmt.Errorf("query users: %w", c.Request.Context().Err())
		},
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/query", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.JSONEq(t, `{"error":"timeout"}`, w.Body.String())
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(8))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a long value"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestConcurrencyLimit_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(ConcurrencyLimit(2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for range 3 {
		assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

func TestRecoveryAndAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core)

	r := gin.New()
	r.Use(RequestID(), AccessLog(l), Recovery(l))
	r.GET("/panic", func(*gin.Context) { panic("kaboom") })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())

	serve(r, httptest.NewRequest(http.MethodGet, "/ok?token=secret&q=x", nil))

	entries := logs.FilterMessage("HTTP").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
	assert.EqualValues(t, 500, entries[0].ContextMap()["status"])

	q := entries[1].ContextMap()["query"].(map[string][]string)
	assert.Equal(t, []string{"****"}, q["token"])
	assert.Equal(t, []string{"x"}, q["q"])
}
