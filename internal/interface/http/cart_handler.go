package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fittinglab/storefront/internal/application"
	"github.com/fittinglab/storefront/internal/domain/entity"
	"github.com/fittinglab/storefront/internal/interface/middleware"
	"github.com/fittinglab/storefront/pkg/helpers"
	"github.com/fittinglab/storefront/pkg/response"
	"github.com/fittinglab/storefront/pkg/validation"
)

type CartHandler struct {
	Carts   *application.CartService
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewCartHandler(carts *application.CartService, cookies *helpers.Manager, logger *logrus.Logger) *CartHandler {
	return &CartHandler{Carts: carts, Cookies: cookies, Logger: logger}
}

// cartView adds the German formatted totals the cart page shows.
type cartView struct {
	*entity.Cart
	ItemCount         int    `json:"item_count"`
	FormattedSubtotal string `json:"formatted_subtotal"`
	FormattedShipping string `json:"formatted_shipping"`
	FormattedTax      string `json:"formatted_tax"`
	FormattedTotal    string `json:"formatted_total"`
}

func newCartView(cart *entity.Cart) *cartView {
	if cart == nil {
		return nil
	}
	v := &cartView{
		Cart:              cart,
		FormattedSubtotal: helpers.FormatEUR(cart.Subtotal),
		FormattedShipping: helpers.FormatEUR(cart.ShippingTotal),
		FormattedTax:      helpers.FormatEUR(cart.TaxTotal),
		FormattedTotal:    helpers.FormatEUR(cart.Total),
	}
	for _, it := range cart.Items {
		v.ItemCount += it.Quantity
	}
	return v
}

// Get GET /api/store/cart. A missing or expired cart is an empty cart, not an error.
func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.Carts.Get(c.Request.Context(), h.Cookies.CartID(c))
	if errors.Is(err, application.ErrCartNotFound) {
		if h.Cookies.CartID(c) != "" {
			h.Cookies.ClearCart(c)
		}
		response.Success(c, http.StatusOK, gin.H{"cart": nil}, "cart", nil)
		return
	}
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cart": newCartView(cart)}, "cart", nil)
}

// AddItem POST /api/store/cart/line-items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, MsgInvalidInput, validation.ToDetails(err))
		return
	}
	cart, err := h.Carts.AddItem(c.Request.Context(), h.Cookies.CartID(c), c.GetString(middleware.CtxCustomerEmail), req.VariantID, req.Quantity)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.Cookies.SetCart(c, cart.ID)
	response.Success(c, http.StatusOK, gin.H{"cart": newCartView(cart)}, "Artikel hinzugefügt.", nil)
}

// UpdateItem POST /api/store/cart/line-items/:line_id. Quantity 0 removes the line.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, MsgInvalidInput, validation.ToDetails(err))
		return
	}
	cart, err := h.Carts.UpdateItem(c.Request.Context(), h.Cookies.CartID(c), c.Param("line_id"), *req.Quantity)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cart": newCartView(cart)}, "Warenkorb aktualisiert.", nil)
}

// RemoveItem DELETE /api/store/cart/line-items/:line_id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	cart, err := h.Carts.RemoveItem(c.Request.Context(), h.Cookies.CartID(c), c.Param("line_id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cart": newCartView(cart)}, "Artikel entfernt.", nil)
}
