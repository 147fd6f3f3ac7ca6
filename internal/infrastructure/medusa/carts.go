package medusa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/fittinglab/storefront/internal/domain/entity"
)

const cartFields = "*items,*items.variant,*shipping_address,*billing_address,*shipping_methods,*payment_collection,*payment_collection.payment_sessions"

type cartResponse struct {
	Cart entity.Cart `json:"cart"`
}

type CreateCartInput struct {
	RegionID   string `json:"region_id,omitempty"`
	Email      string `json:"email,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
}

// UpdateCartInput carries the checkout fields. Nil pointers are not sent.
type UpdateCartInput struct {
	Email           string          `json:"email,omitempty"`
	ShippingAddress *entity.Address `json:"shipping_address,omitempty"`
	BillingAddress  *entity.Address `json:"billing_address,omitempty"`
}

func cartQuery() url.Values {
	return url.Values{"fields": []string{cartFields}}
}

func (c *Client) CreateCart(ctx context.Context, in CreateCartInput) (*entity.Cart, error) {
	var out cartResponse
	if err := c.call(ctx, scopeStore, http.MethodPost, "/store/carts", cartQuery(), in, &out); err != nil {
		return nil, err
	}
	return &out.Cart, nil
}

func (c *Client) GetCart(ctx context.Context, id string) (*entity.Cart, error) {
	var out cartResponse
	if err := c.call(ctx, scopeStore, http.MethodGet, "/store/carts/"+url.PathEscape(id), cartQuery(), nil, &out); err != nil {
		return nil, err
	}
	return &out.Cart, nil
}

func (c *Client) UpdateCart(ctx context.Context, id string, in UpdateCartInput) (*entity.Cart, error) {
	var out cartResponse
	if err := c.call(ctx, scopeStore, http.MethodPost, "/store/carts/"+url.PathEscape(id), cartQuery(), in, &out); err != nil {
		return nil, err
	}
	return &out.Cart, nil
}

func (c *Client) AddLineItem(ctx context.Context, cartID, variantID string, quantity int) (*entity.Cart, error) {
	body := map[string]any{"variant_id": variantID, "quantity": quantity}
	var out cartResponse
	path := "/store/carts/" + url.PathEscape(cartID) + "/line-items"
	if err := c.call(ctx, scopeStore, http.MethodPost, path, cartQuery(), body, &out); err != nil {
		return nil, err
	}
	return &out.Cart, nil
}

func (c *Client) UpdateLineItem(ctx context.Context, cartID, lineID string, quantity int) (*entity.Cart, error) {
	body := map[string]any{"quantity": quantity}
	var out cartResponse
	path := "/store/carts/" + url.PathEscape(cartID) + "/line-items/" + url.PathEscape(lineID)
	if err := c.call(ctx, scopeStore, http.MethodPost, path, cartQuery(), body, &out); err != nil {
		return nil, err
	}
	return &out.Cart, nil
}

// DeleteLineItem removes a line and returns the updated cart, which Medusa
// sends back as "parent".
func (c *Client) DeleteLineItem(ctx context.Context, cartID, lineID string) (*entity.Cart, error) {
	var raw json.RawMessage
	path := "/store/carts/" + url.PathEscape(cartID) + "/line-items/" + url.PathEscape(lineID)
	if err := c.call(ctx, scopeStore, http.MethodDelete, path, cartQuery(), nil, &raw); err != nil {
		return nil, err
	}
	parent := gjson.GetBytes(raw, "parent")
	if !parent.Exists() {
		return c.GetCart(ctx, cartID)
	}
	var cart entity.Cart
	if err := json.Unmarshal([]byte(parent.Raw), &cart); err != nil {
		return nil, fmt.Errorf("medusa: decode deleted line parent: %w", err)
	}
	return &cart, nil
}

// CompletionResult is the outcome of POST /store/carts/{id}/complete: either
// an order or the cart back with an error message.
type CompletionResult struct {
	Order *entity.Order
	Cart  *entity.Cart
	Error string
}

func (r *CompletionResult) Placed() bool {
	return r != nil && r.Order != nil
}

func (c *Client) CompleteCart(ctx context.Context, cartID string) (*CompletionResult, error) {
	var raw json.RawMessage
	path := "/store/carts/" + url.PathEscape(cartID) + "/complete"
	if err := c.call(ctx, scopeStore, http.MethodPost, path, nil, nil, &raw); err != nil {
		return nil, err
	}

	res := &CompletionResult{}
	switch gjson.GetBytes(raw, "type").String() {
	case "order":
		var order entity.Order
		if err := json.Unmarshal([]byte(gjson.GetBytes(raw, "order").Raw), &order); err != nil {
			return nil, fmt.Errorf("medusa: decode completed order: %w", err)
		}
		res.Order = &order
	default:
		if raw := gjson.GetBytes(raw, "cart"); raw.Exists() {
			var cart entity.Cart
			if err := json.Unmarshal([]byte(raw.Raw), &cart); err == nil {
				res.Cart = &cart
			}
		}
		res.Error = gjson.GetBytes(raw, "error.message").String()
		if res.Error == "" {
			res.Error = gjson.GetBytes(raw, "error").String()
		}
	}
	return res, nil
}
