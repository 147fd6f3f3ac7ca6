package medusa

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fittinglab/storefront/internal/domain/entity"
)

func (c *Client) ListShippingOptions(ctx context.Context, cartID string) ([]entity.ShippingOption, error) {
	var out struct {
		ShippingOptions []entity.ShippingOption `json:"shipping_options"`
	}
	q := url.Values{"cart_id": []string{cartID}}
	if err := c.call(ctx, scopeStore, http.MethodGet, "/store/shipping-options", q, nil, &out); err != nil {
		return nil, err
	}
	return out.ShippingOptions, nil
}

func (c *Client) AddShippingMethod(ctx context.Context, cartID, optionID string) (*entity.Cart, error) {
	body := map[string]string{"option_id": optionID}
	var out cartResponse
	path := "/store/carts/" + url.PathEscape(cartID) + "/shipping-methods"
	if err := c.call(ctx, scopeStore, http.MethodPost, path, cartQuery(), body, &out); err != nil {
		return nil, err
	}
	return &out.Cart, nil
}
