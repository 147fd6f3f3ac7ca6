package entity

import "time"

// Customer mirrors the Medusa customer record. Medusa owns it; we only read and write it over HTTP.
type Customer struct {
	ID         string         `json:"id"`
	Email      string         `json:"email"`
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	Phone      string         `json:"phone,omitempty"`
	HasAccount bool           `json:"has_account"`
	Addresses  []Address      `json:"addresses,omitempty"`
	Orders     []OrderSummary `json:"orders,omitempty"`
	CreatedAt  *time.Time     `json:"created_at,omitempty"`
}

// Address is shared by customer address books, carts and orders.
type Address struct {
	ID          string         `json:"id,omitempty"`
	Company     string         `json:"company"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Address1    string         `json:"address_1"`
	Address2    string         `json:"address_2"`
	City        string         `json:"city"`
	PostalCode  string         `json:"postal_code"`
	CountryCode string         `json:"country_code"`
	Province    string         `json:"province"`
	Phone       string         `json:"phone"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// OrderSummary is the slice of an order shown in the account order history.
type OrderSummary struct {
	ID                string    `json:"id"`
	DisplayID         int64     `json:"display_id"`
	Total             float64   `json:"total"`
	CurrencyCode      string    `json:"currency_code,omitempty"`
	Status            string    `json:"status"`
	FulfillmentStatus string    `json:"fulfillment_status"`
	PaymentStatus     string    `json:"payment_status"`
	CreatedAt         time.Time `json:"created_at"`
}
