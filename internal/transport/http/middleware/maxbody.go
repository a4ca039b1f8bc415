package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "user-account-service/internal/transport/http/response"
)

// MaxBodyBytes caps the request body at n bytes. Oversized JSON bodies fail
// binding, which the action layer already reports as 400.
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > n {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				resp.Message("request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
