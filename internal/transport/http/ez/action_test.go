package ez

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-account-service/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.ErrDuplicateEmail, 400, "User already exists"},
		{fmt.Errorf("save: %w", domain.ErrDuplicateEmail), 400, "User already exists"},
		{domain.ErrInvalidCredentials, 401, "Invalid credentials"},
		{domain.ErrMissingToken, 400, "No token provided"},
		{domain.ErrInvalidToken, 401, "Invalid token"},
		{domain.ErrNotFound, 404, "User not found"},
		{NotFound("User not found or has been deleted"), 404, "User not found or has been deleted"},
		{&AErr{Code: 500, Err: errors.New("boom")}, 500, ""},
		{fmt.Errorf("query users: %w", context.DeadlineExceeded), 504, "timeout"},
		{errors.New("db down"), 500, ""},
	}
	for _, tt := range tests {
		code, msg := Status(tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
		assert.Equal(t, tt.msg, msg, tt.err.Error())
	}
}

type echoIn struct {
	Name string `json:"name" binding:"required"`
}

func newEngine(a Action[echoIn, gin.H]) *gin.Engine {
	r := gin.New()
	RegisterAction(New(r.Group("")), a)
	return r
}

func TestRegisterAction_BindAndStatus(t *testing.T) {
	r := newEngine(Action[echoIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/echo",
		Binder: BindJSON,
		Status: http.StatusCreated,
		Handler: func(_ *gin.Context, in *echoIn) (gin.H, error) {
			return gin.H{"name": in.Name}, nil
		},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"ann"}`)))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"name":"ann"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"message"`)
}

func TestRegisterAction_InternalErrorHidesCause(t *testing.T) {
	var recorded []string
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		recorded = c.Errors.Errors()
	})
	RegisterAction(New(r.Group("")), Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/boom",
		Binder: BindNone,
		Handler: func(*gin.Context, *struct{}) (gin.H, error) {
			return nil, errors.New("connection refused")
		},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
	assert.Equal(t, []string{"connection refused"}, recorded)
}
