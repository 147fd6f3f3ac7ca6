package medusa

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fittinglab/storefront/internal/domain/entity"
)

const orderFields = "*items,*shipping_address"

func (c *Client) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	var out struct {
		Order entity.Order `json:"order"`
	}
	q := url.Values{"fields": []string{orderFields}}
	if err := c.call(ctx, scopeStore, http.MethodGet, "/store/orders/"+url.PathEscape(id), q, nil, &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

// ListCustomerOrders reads a customer's order history through the Admin API.
func (c *Client) ListCustomerOrders(ctx context.Context, customerID string) ([]entity.OrderSummary, error) {
	var out struct {
		Orders []entity.OrderSummary `json:"orders"`
	}
	q := url.Values{
		"customer_id": []string{customerID},
		"fields":      []string{"id,display_id,total,currency_code,status,fulfillment_status,payment_status,created_at"},
		"order":       []string{"-created_at"},
	}
	if err := c.call(ctx, scopeAdmin, http.MethodGet, "/admin/orders", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}
