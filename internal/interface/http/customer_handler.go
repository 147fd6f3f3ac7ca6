package handlers

import (
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

// CustomerHandler serves the signed-in customer's account pages.
type CustomerHandler struct {
	Accounts *application.AccountService
	Logger   *logrus.Logger
}

func NewCustomerHandler(accounts *application.AccountService, logger *logrus.Logger) *CustomerHandler {
	return &CustomerHandler{Accounts: accounts, Logger: logger}
}

type orderRow struct {
	entity.OrderSummary
	FormattedTotal string `json:"formatted_total"`
}

type meResponse struct {
	*entity.Customer
	Orders []orderRow `json:"orders"`
}

// Me GET /api/store/customers/me
func (h *CustomerHandler) Me(c *gin.Context) {
	cust, err := h.Accounts.Me(c.Request.Context(), c.GetString(middleware.CtxCustomerID))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	out := meResponse{Customer: cust, Orders: make([]orderRow, 0, len(cust.Orders))}
	for _, o := range cust.Orders {
		out.Orders = append(out.Orders, orderRow{OrderSummary: o, FormattedTotal: helpers.FormatEUR(o.Total)})
	}
	response.Success(c, http.StatusOK, out, "customer", nil)
}

// AddAddress POST /api/store/customers/me/addresses
func (h *CustomerHandler) AddAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, MsgInvalidInput, validation.ToDetails(err))
		return
	}
	cust, err := h.Accounts.AddAddress(c.Request.Context(), c.GetString(middleware.CtxCustomerID), req.toEntity())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cust, "Adresse gespeichert.", nil)
}

// UpdateAddress POST /api/store/customers/me/addresses/:address_id
func (h *CustomerHandler) UpdateAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, MsgInvalidInput, validation.ToDetails(err))
		return
	}
	cust, err := h.Accounts.UpdateAddress(c.Request.Context(), c.GetString(middleware.CtxCustomerID), c.Param("address_id"), req.toEntity())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cust, "Adresse aktualisiert.", nil)
}

// DeleteAddress DELETE /api/store/customers/me/addresses/:address_id
func (h *CustomerHandler) DeleteAddress(c *gin.Context) {
	if err := h.Accounts.DeleteAddress(c.Request.Context(), c.GetString(middleware.CtxCustomerID), c.Param("address_id")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "Adresse gelöscht.", nil)
}
