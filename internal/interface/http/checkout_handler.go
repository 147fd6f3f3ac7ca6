package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fittinglab/storefront/internal/application"
	"github.com/fittinglab/storefront/pkg/helpers"
	"github.com/fittinglab/storefront/pkg/response"
	"github.com/fittinglab/storefront/pkg/validation"
)

// CheckoutHandler drives the three checkout steps: address, shipping, payment.
type CheckoutHandler struct {
	Checkout *application.CheckoutService
	Cookies  *helpers.Manager
	Logger   *logrus.Logger
}

func NewCheckoutHandler(checkout *application.CheckoutService, cookies *helpers.Manager, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{Checkout: checkout, Cookies: cookies, Logger: logger}
}

func stateBody(s *application.CheckoutState) gin.H {
	return gin.H{"cart": newCartView(s.Cart), "step": s.Step}
}

// State GET /api/store/checkout
func (h *CheckoutHandler) State(c *gin.Context) {
	s, err := h.Checkout.State(c.Request.Context(), h.Cookies.CartID(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, stateBody(s), "checkout", nil)
}

// SetAddress POST /api/store/checkout/address
func (h *CheckoutHandler) SetAddress(c *gin.Context) {
	var req checkoutAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, MsgInvalidInput, validation.ToDetails(err))
		return
	}
	s, err := h.Checkout.SetAddress(c.Request.Context(), h.Cookies.CartID(c), req.Email, req.ShippingAddress.toEntity())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, stateBody(s), "Adresse gespeichert.", nil)
}

// ShippingOptions GET /api/store/checkout/shipping-options
func (h *CheckoutHandler) ShippingOptions(c *gin.Context) {
	opts, err := h.Checkout.ShippingOptions(c.Request.Context(), h.Cookies.CartID(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"shipping_options": opts}, "shipping options", nil)
}

// SetShippingMethod POST /api/store/checkout/shipping-method {option_id}
func (h *CheckoutHandler) SetShippingMethod(c *gin.Context) {
	var req shippingMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, MsgInvalidInput, validation.ToDetails(err))
		return
	}
	s, err := h.Checkout.SetShippingMethod(c.Request.Context(), h.Cookies.CartID(c), req.OptionID)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, stateBody(s), "Versandart gespeichert.", nil)
}

// PaymentProviders GET /api/store/checkout/payment-providers
func (h *CheckoutHandler) PaymentProviders(c *gin.Context) {
	provs, err := h.Checkout.PaymentProviders(c.Request.Context(), h.Cookies.CartID(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment_providers": provs}, "payment providers", nil)
}

// PlaceOrder POST /api/store/checkout/complete {provider_id}
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error[any](c, http.StatusBadRequest, MsgInvalidInput, validation.ToDetails(err))
			return
		}
	}
	order, err := h.Checkout.PlaceOrder(c.Request.Context(), h.Cookies.CartID(c), req.ProviderID)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.Cookies.ClearCart(c)
	response.Success(c, http.StatusOK, gin.H{"order_id": order.ID, "order": newOrderView(order)}, "Vielen Dank für Ihre Bestellung!", nil)
}
