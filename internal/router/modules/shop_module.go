package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fittinglab/storefront/internal/container"
	handlers "github.com/fittinglab/storefront/internal/interface/http"
	"github.com/fittinglab/storefront/internal/interface/middleware"
	"github.com/fittinglab/storefront/pkg/helpers"
)

// ShopModule serves the catalog, the cart, checkout and the order confirmation.
// Anonymous shoppers are welcome; a session cookie, when present, only attaches
// the customer's email to new carts.
type ShopModule struct {
	Catalog  *handlers.CatalogHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Orders   *handlers.OrderHandler
	JWT      *helpers.JWTManager
}

func NewShopModule(cat *handlers.CatalogHandler, cart *handlers.CartHandler, checkout *handlers.CheckoutHandler, orders *handlers.OrderHandler, jwt *helpers.JWTManager) *ShopModule {
	return &ShopModule{Catalog: cat, Cart: cart, Checkout: checkout, Orders: orders, JWT: jwt}
}

func (m *ShopModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	store := rg.Group("/store")
	store.Use(
		middleware.OptionalAuth(rdb, m.JWT),
		middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByCustomer(), middleware.AllowPrivateIP()),
	)
	{
		store.GET("/products", m.Catalog.List)
		store.GET("/products/search", m.Catalog.Search)
		store.GET("/products/:handle", m.Catalog.Get)

		store.GET("/cart", m.Cart.Get)
		store.POST("/cart/line-items", m.Cart.AddItem)
		store.POST("/cart/line-items/:line_id", m.Cart.UpdateItem)
		store.DELETE("/cart/line-items/:line_id", m.Cart.RemoveItem)

		store.GET("/checkout", m.Checkout.State)
		store.POST("/checkout/address", m.Checkout.SetAddress)
		store.GET("/checkout/shipping-options", m.Checkout.ShippingOptions)
		store.POST("/checkout/shipping-method", m.Checkout.SetShippingMethod)
		store.GET("/checkout/payment-providers", m.Checkout.PaymentProviders)
		store.POST("/checkout/complete",
			middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil),
			m.Checkout.PlaceOrder)

		store.GET("/orders/:id", m.Orders.Get)
	}
}
