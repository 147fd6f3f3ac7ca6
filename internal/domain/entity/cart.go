package entity

// Cart mirrors the Medusa store cart. Totals are Medusa's; nothing here recomputes them.
type Cart struct {
	ID                string             `json:"id"`
	RegionID          string             `json:"region_id"`
	CustomerID        string             `json:"customer_id,omitempty"`
	Email             string             `json:"email,omitempty"`
	CurrencyCode      string             `json:"currency_code"`
	Items             []LineItem         `json:"items"`
	ShippingAddress   *Address           `json:"shipping_address,omitempty"`
	BillingAddress    *Address           `json:"billing_address,omitempty"`
	ShippingMethods   []ShippingMethod   `json:"shipping_methods,omitempty"`
	PaymentCollection *PaymentCollection `json:"payment_collection,omitempty"`
	Subtotal          float64            `json:"subtotal"`
	TaxTotal          float64            `json:"tax_total"`
	ShippingTotal     float64            `json:"shipping_total"`
	DiscountTotal     float64            `json:"discount_total"`
	Total             float64            `json:"total"`
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

type LineItem struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Subtitle     string   `json:"subtitle,omitempty"`
	Thumbnail    string   `json:"thumbnail,omitempty"`
	Quantity     int      `json:"quantity"`
	UnitPrice    float64  `json:"unit_price"`
	Total        float64  `json:"total"`
	VariantID    string   `json:"variant_id"`
	ProductID    string   `json:"product_id,omitempty"`
	ProductTitle string   `json:"product_title,omitempty"`
	Variant      *Variant `json:"variant,omitempty"`
}

type ShippingMethod struct {
	ID               string  `json:"id"`
	ShippingOptionID string  `json:"shipping_option_id"`
	Name             string  `json:"name"`
	Amount           float64 `json:"amount"`
}

type ShippingOption struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	PriceType string  `json:"price_type,omitempty"`
}

type PaymentProvider struct {
	ID        string `json:"id"`
	IsEnabled bool   `json:"is_enabled"`
}

type PaymentCollection struct {
	ID              string           `json:"id"`
	Amount          float64          `json:"amount"`
	Status          string           `json:"status"`
	PaymentSessions []PaymentSession `json:"payment_sessions,omitempty"`
}

type PaymentSession struct {
	ID         string  `json:"id"`
	ProviderID string  `json:"provider_id"`
	Status     string  `json:"status"`
	Amount     float64 `json:"amount"`
}
