package entity

import "time"

// Order is what Medusa returns after a cart completes.
type Order struct {
	ID                string     `json:"id"`
	DisplayID         int64      `json:"display_id"`
	Email             string     `json:"email"`
	CustomerID        string     `json:"customer_id,omitempty"`
	CurrencyCode      string     `json:"currency_code"`
	Status            string     `json:"status"`
	FulfillmentStatus string     `json:"fulfillment_status,omitempty"`
	PaymentStatus     string     `json:"payment_status,omitempty"`
	Items             []LineItem `json:"items,omitempty"`
	ShippingAddress   *Address   `json:"shipping_address,omitempty"`
	Subtotal          float64    `json:"subtotal"`
	TaxTotal          float64    `json:"tax_total"`
	ShippingTotal     float64    `json:"shipping_total"`
	Total             float64    `json:"total"`
	CreatedAt         time.Time  `json:"created_at"`
}
