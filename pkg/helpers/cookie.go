package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
	CartCookie    = "cart_id"
)

type Manager struct {
	Domain  string
	Secure  bool
	CartTTL time.Duration
}

func NewCookie(domain string, secure bool, cartTTL time.Duration) *Manager {
	return &Manager{Domain: domain, Secure: secure, CartTTL: cartTTL}
}

func (m *Manager) SetPair(c *gin.Context, access string, aexp time.Time, refresh string, rexp time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	aMax := maxAgeFrom(aexp)
	rMax := maxAgeFrom(rexp)

	c.SetCookie(AccessCookie, access, aMax, "/", m.Domain, m.Secure, true)
	c.SetCookie(RefreshCookie, refresh, rMax, "/", m.Domain, m.Secure, true)
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, "", -1, "/", m.Domain, m.Secure, true)
	c.SetCookie(RefreshCookie, "", -1, "/", m.Domain, m.Secure, true)
}

// CartID returns the cart id remembered for this browser, or "".
func (m *Manager) CartID(c *gin.Context) string {
	id, err := c.Cookie(CartCookie)
	if err != nil {
		return ""
	}
	return id
}

// SetCart remembers the cart id. The storefront reads it, so it is not HttpOnly.
func (m *Manager) SetCart(c *gin.Context, cartID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CartCookie, cartID, int(m.CartTTL.Seconds()), "/", m.Domain, m.Secure, false)
}

func (m *Manager) ClearCart(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CartCookie, "", -1, "/", m.Domain, m.Secure, false)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
