package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses the limiter for loopback and private-range clients
// (in-cluster scrapers, the storefront's server-side renderer).
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// AllowAny bypasses when any of fns does.
func AllowAny(fns ...AllowFunc) AllowFunc {
	return func(c *gin.Context) bool {
		for _, f := range fns {
			if f != nil && f(c) {
				return true
			}
		}
		return false
	}
}

// AllowPathPrefix bypasses requests whose path starts with one of prefixes.
func AllowPathPrefix(prefixes ...string) AllowFunc {
	return func(c *gin.Context) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(c.Request.URL.Path, p) {
				return true
			}
		}
		return false
	}
}
