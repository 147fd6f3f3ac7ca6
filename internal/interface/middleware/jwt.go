package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/fittinglab/storefront/pkg/helpers"
)

// OptionalAuth attaches the customer when a valid session cookie is present and
// lets anonymous shoppers through otherwise. Cart and checkout routes use it.
func OptionalAuth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, _ = resolve(c, rdb, jwt)
		c.Next()
	}
}
