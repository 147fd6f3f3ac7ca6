package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fittinglab/storefront/internal/application"
	"github.com/fittinglab/storefront/internal/domain/entity"
	"github.com/fittinglab/storefront/pkg/helpers"
	"github.com/fittinglab/storefront/pkg/response"
)

type OrderHandler struct {
	Orders *application.OrderService
	Logger *logrus.Logger
}

func NewOrderHandler(orders *application.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{Orders: orders, Logger: logger}
}

type orderView struct {
	*entity.Order
	FormattedSubtotal string `json:"formatted_subtotal"`
	FormattedShipping string `json:"formatted_shipping"`
	FormattedTax      string `json:"formatted_tax"`
	FormattedTotal    string `json:"formatted_total"`
}

func newOrderView(o *entity.Order) *orderView {
	return &orderView{
		Order:             o,
		FormattedSubtotal: helpers.FormatEUR(o.Subtotal),
		FormattedShipping: helpers.FormatEUR(o.ShippingTotal),
		FormattedTax:      helpers.FormatEUR(o.TaxTotal),
		FormattedTotal:    helpers.FormatEUR(o.Total),
	}
}

// Get GET /api/store/orders/:id (order confirmation page)
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"order": newOrderView(o)}, "order", nil)
}
