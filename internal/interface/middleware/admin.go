package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fittinglab/storefront/pkg/response"
)

// AdminToken guards operator endpoints with a static bearer token.
// An empty token disables the endpoints entirely.
func AdminToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			response.Error[any](c, http.StatusServiceUnavailable, "admin api disabled", nil)
			c.Abort()
			return
		}
		got := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if got == "" {
			got = c.GetHeader("X-Admin-Token")
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			response.Error[any](c, http.StatusUnauthorized, "invalid admin token", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
