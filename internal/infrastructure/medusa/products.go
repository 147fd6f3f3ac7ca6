package medusa

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fittinglab/storefront/internal/domain/entity"
)

const productFields = "*variants,*variants.calculated_price,*options,*options.values,*images"

type ProductQuery struct {
	Handle   string
	Q        string
	RegionID string
	Limit    int
	Offset   int
}

type productListResponse struct {
	Products []entity.Product `json:"products"`
	Count    int              `json:"count"`
}

// ListProducts returns one page of store products and the total count.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]entity.Product, int, error) {
	v := url.Values{}
	v.Set("fields", productFields)
	if q.Handle != "" {
		v.Set("handle", q.Handle)
	}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.RegionID != "" {
		v.Set("region_id", q.RegionID)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}

	var out productListResponse
	if err := c.call(ctx, scopeStore, http.MethodGet, "/store/products", v, nil, &out); err != nil {
		return nil, 0, err
	}
	return out.Products, out.Count, nil
}

// ProductByHandle returns the single product with that handle or ErrNotFound.
func (c *Client) ProductByHandle(ctx context.Context, handle, regionID string) (*entity.Product, error) {
	products, _, err := c.ListProducts(ctx, ProductQuery{Handle: handle, RegionID: regionID, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, &APIError{Status: http.StatusNotFound, Type: "not_found", Message: "product " + handle + " not found"}
	}
	return &products[0], nil
}
