package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"user-account-service/internal/domain"
	"user-account-service/internal/transport/http/ez"
	resp "user-account-service/internal/transport/http/response"
)

const (
	KeyUser   = "user"
	KeyUserID = "userId"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// Any other shape yields "".
func BearerToken(header string) string {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

// AuthSession admits only requests whose bearer token is the current session of an
// active user, and exposes that user under KeyUser and its id under KeyUserID.
func AuthSession(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := BearerToken(c.GetHeader("Authorization"))
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Message("No token provided"))
			return
		}
		u, err := a.Authenticate(c.Request.Context(), tok)
		switch {
		case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrMissingToken):
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Message("Invalid token"))
			return
		case err != nil:
			ez.Fail(c, err)
			return
		}
		c.Set(KeyUser, u)
		c.Set(KeyUserID, u.ID)
		c.Next()
	}
}
