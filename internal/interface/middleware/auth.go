package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/fittinglab/storefront/internal/application"
	"github.com/fittinglab/storefront/pkg/helpers"
	"github.com/fittinglab/storefront/pkg/response"
)

// Keys under which the authenticated customer is stored in the Gin context.
const (
	CtxCustomerID     = "customerID"
	CtxAuthIdentityID = "authIdentityID"
	CtxSessionID      = "sessionID"
	CtxCustomerEmail  = "customerEmail"
)

// resolve reads the access cookie and, when Redis is configured, requires a live session hash.
func resolve(c *gin.Context, rdb *redis.Client, jwt *helpers.JWTManager) (string, bool) {
	token, err := c.Cookie(helpers.AccessCookie)
	if err != nil || token == "" {
		return "missing access token", false
	}
	claims, err := jwt.ParseAccessToken(token)
	if err != nil {
		return "invalid access token", false
	}

	email := ""
	if rdb != nil {
		data, err := rdb.HGetAll(c.Request.Context(), application.SessionKey(claims.SessionID)).Result()
		if err != nil || len(data) == 0 || data["customer_id"] != claims.CustomerID {
			return "session not found", false
		}
		email = data["email"]
	}

	c.Set(CtxCustomerID, claims.CustomerID)
	c.Set(CtxAuthIdentityID, claims.AuthIdentityID)
	c.Set(CtxSessionID, claims.SessionID)
	c.Set(CtxCustomerEmail, email)
	return "", true
}

// Auth rejects requests without a valid customer session.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if reason, ok := resolve(c, rdb, jwt); !ok {
			response.Error[any](c, http.StatusUnauthorized, "Bitte melden Sie sich an.", reason)
			c.Abort()
			return
		}
		c.Next()
	}
}
