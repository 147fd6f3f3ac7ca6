package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fittinglab/storefront/internal/application"
	"github.com/fittinglab/storefront/internal/interface/middleware"
	"github.com/fittinglab/storefront/pkg/helpers"
	"github.com/fittinglab/storefront/pkg/response"
	"github.com/fittinglab/storefront/pkg/validation"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// AuthHandler serves registration, the emailpass login and password reset.
type AuthHandler struct {
	Registration *application.RegistrationService
	Accounts     *application.AccountService
	Cookies      *helpers.Manager
	Logger       *logrus.Logger
}

func NewAuthHandler(reg *application.RegistrationService, accounts *application.AccountService, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Registration: reg, Accounts: accounts, Cookies: cookies, Logger: logger}
}

func (h *AuthHandler) setSession(c *gin.Context, pair application.TokenPair) map[string]any {
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	return map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry}
}

// Register POST /api/store/custom/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "Registration failed", validation.ToDetails(err))
		return
	}

	res, err := h.Registration.Register(c.Request.Context(), c.GetHeader(IdempotencyKeyHeader), application.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		m := mapError(err)
		if errors.Is(err, application.ErrIdentityExists) || errors.Is(err, application.ErrRegistrationInProgress) ||
			errors.Is(err, application.ErrIdempotencyKeyReused) {
			response.Error[any](c, m.status, m.message, nil)
			return
		}
		if m.status >= 500 && h.Logger != nil {
			h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("registration failed")
		}
		response.Error[any](c, http.StatusBadRequest, "Registration failed", m.message)
		return
	}

	// The storefront logs the customer in right after registering.
	var meta map[string]any
	if pair, err := h.Accounts.IssueTokens(c.Request.Context(), res.Customer.ID, res.AuthIdentityID, res.Customer.Email); err == nil {
		meta = h.setSession(c, pair)
	}
	response.Success(c, http.StatusOK, gin.H{"customer": res.Customer, "replayed": res.Replayed}, "Successfully registered", meta)
}

// Login POST /api/auth/customer/emailpass
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, MsgLoginFailed, validation.ToDetails(err))
		return
	}
	res, pair, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "login successful", h.setSession(c, pair))
}

// Refresh POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(helpers.RefreshCookie)
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, err := h.Accounts.Refresh(c.Request.Context(), refresh)
	if err != nil {
		h.Cookies.Clear(c)
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"refreshed": true}, "token refreshed", h.setSession(c, pair))
}

// Logout DELETE /api/auth/session
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Accounts.Logout(c.Request.Context(), c.GetString(middleware.CtxSessionID))
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

// ResetInit POST /api/auth/reset/init {email}. Known and unknown emails get the same 200.
func (h *AuthHandler) ResetInit(c *gin.Context) {
	var req resetInitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, MsgInvalidInput, validation.ToDetails(err))
		return
	}
	if err := h.Accounts.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"requested": true},
		"Falls ein Konto existiert, haben wir Ihnen eine E-Mail gesendet.", nil)
}

// ResetConfirm POST /api/auth/reset/confirm {token, new_password}
func (h *AuthHandler) ResetConfirm(c *gin.Context) {
	var req resetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, MsgInvalidInput, validation.ToDetails(err))
		return
	}
	if err := h.Accounts.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"reset": true}, "Ihr Passwort wurde geändert.", nil)
}
