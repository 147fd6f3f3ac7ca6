package middleware

import (
	"github.com/gin-gonic/gin"
)

// ProxyHeaders are consulted in order, and only for requests arriving from a trusted proxy.
var ProxyHeaders = []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"}

// TrustProxies makes gin's ClientIP honour ProxyHeaders for requests whose peer is
// in trusted (IPs or CIDRs). With no entries every forwarding header is ignored.
func TrustProxies(r *gin.Engine, trusted []string) error {
	r.ForwardedByClientIP = true
	r.RemoteIPHeaders = ProxyHeaders
	return r.SetTrustedProxies(trusted)
}

// RealIP stores the client IP under "real_ip" for the rate limiter and logs.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", c.ClientIP())
		c.Next()
	}
}
