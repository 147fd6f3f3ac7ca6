package handlers

import (
	"strings"

	"github.com/fittinglab/storefront/internal/domain/entity"
)

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
	FirstName string `json:"first_name" binding:"required,min=1"`
	LastName  string `json:"last_name" binding:"required,min=1"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type resetInitRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// addressRequest is the address form shared by the address book and checkout.
type addressRequest struct {
	Company     string `json:"company" binding:"max=200"`
	FirstName   string `json:"first_name" binding:"required,max=100"`
	LastName    string `json:"last_name" binding:"required,max=100"`
	Address1    string `json:"address_1" binding:"required,max=200"`
	Address2    string `json:"address_2" binding:"max=200"`
	PostalCode  string `json:"postal_code" binding:"required,max=20"`
	City        string `json:"city" binding:"required,max=100"`
	CountryCode string `json:"country_code" binding:"omitempty,country"`
	Province    string `json:"province" binding:"max=100"`
	Phone       string `json:"phone" binding:"max=50"`
	TaxID       string `json:"tax_id" binding:"max=50"`
}

func (r addressRequest) toEntity() entity.Address {
	a := entity.Address{
		Company:     strings.TrimSpace(r.Company),
		FirstName:   strings.TrimSpace(r.FirstName),
		LastName:    strings.TrimSpace(r.LastName),
		Address1:    strings.TrimSpace(r.Address1),
		Address2:    strings.TrimSpace(r.Address2),
		PostalCode:  strings.TrimSpace(r.PostalCode),
		City:        strings.TrimSpace(r.City),
		CountryCode: r.CountryCode,
		Province:    strings.TrimSpace(r.Province),
		Phone:       strings.TrimSpace(r.Phone),
	}
	if tax := strings.TrimSpace(r.TaxID); tax != "" {
		a.Metadata = map[string]any{"tax_id": tax}
	}
	return a
}

type addItemRequest struct {
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=99"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=99"`
}

type checkoutAddressRequest struct {
	Email           string         `json:"email" binding:"required,email"`
	ShippingAddress addressRequest `json:"shipping_address"`
}

type shippingMethodRequest struct {
	OptionID string `json:"option_id" binding:"required"`
}

type placeOrderRequest struct {
	ProviderID string `json:"provider_id"`
}
