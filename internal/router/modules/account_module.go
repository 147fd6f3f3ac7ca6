package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fittinglab/storefront/internal/container"
	handlers "github.com/fittinglab/storefront/internal/interface/http"
	"github.com/fittinglab/storefront/internal/interface/middleware"
	"github.com/fittinglab/storefront/pkg/helpers"
)

// AccountModule wires registration, emailpass login, password reset and the
// customer's own account pages.
// Public: POST /api/store/custom/register, POST /api/auth/customer/emailpass,
// POST /api/auth/refresh, POST /api/auth/reset/{init,confirm}
// Protected: DELETE /api/auth/session, /api/store/customers/me[/addresses]
type AccountModule struct {
	Auth      *handlers.AuthHandler
	Customers *handlers.CustomerHandler
	JWT       *helpers.JWTManager
}

func NewAccountModule(auth *handlers.AuthHandler, customers *handlers.CustomerHandler, jwt *helpers.JWTManager) *AccountModule {
	return &AccountModule{Auth: auth, Customers: customers, JWT: jwt}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	registerLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP(), nil)
	resetInitLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetConfirmLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/store/custom/register", registerLimiter, m.Auth.Register)
	rg.POST("/auth/customer/emailpass", loginLimiter, m.Auth.Login)
	rg.POST("/auth/refresh", refreshLimiter, m.Auth.Refresh)
	rg.POST("/auth/reset/init", resetInitLimiter, m.Auth.ResetInit)
	rg.POST("/auth/reset/confirm", resetConfirmLimiter, m.Auth.ResetConfirm)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(rdb, m.JWT))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByCustomer(), nil))
	{
		auth.DELETE("/auth/session", m.Auth.Logout)
		auth.GET("/store/customers/me", m.Customers.Me)
		auth.POST("/store/customers/me/addresses", m.Customers.AddAddress)
		auth.POST("/store/customers/me/addresses/:address_id", m.Customers.UpdateAddress)
		auth.DELETE("/store/customers/me/addresses/:address_id", m.Customers.DeleteAddress)
	}
}
