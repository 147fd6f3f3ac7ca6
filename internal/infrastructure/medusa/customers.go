package medusa

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fittinglab/storefront/internal/domain/entity"
)

type CreateCustomerInput struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

type customerResponse struct {
	Customer entity.Customer `json:"customer"`
}

func customerPath(id string) string {
	return "/admin/customers/" + url.PathEscape(id)
}

func (c *Client) CreateCustomer(ctx context.Context, in CreateCustomerInput) (*entity.Customer, error) {
	var out customerResponse
	if err := c.call(ctx, scopeAdmin, http.MethodPost, "/admin/customers", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Customer, nil
}

func (c *Client) GetCustomer(ctx context.Context, id string) (*entity.Customer, error) {
	var out customerResponse
	q := url.Values{"fields": []string{"*addresses"}}
	if err := c.call(ctx, scopeAdmin, http.MethodGet, customerPath(id), q, nil, &out); err != nil {
		return nil, err
	}
	return &out.Customer, nil
}

// DeleteCustomer treats an already missing customer as deleted.
func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	err := c.call(ctx, scopeAdmin, http.MethodDelete, customerPath(id), nil, nil, nil)
	if IsNotFound(err) {
		return nil
	}
	return err
}

func (c *Client) CreateAddress(ctx context.Context, customerID string, addr entity.Address) (*entity.Customer, error) {
	addr.ID = ""
	var out customerResponse
	q := url.Values{"fields": []string{"*addresses"}}
	if err := c.call(ctx, scopeAdmin, http.MethodPost, customerPath(customerID)+"/addresses", q, addr, &out); err != nil {
		return nil, err
	}
	return &out.Customer, nil
}

func (c *Client) UpdateAddress(ctx context.Context, customerID, addressID string, addr entity.Address) (*entity.Customer, error) {
	addr.ID = ""
	var out customerResponse
	q := url.Values{"fields": []string{"*addresses"}}
	path := customerPath(customerID) + "/addresses/" + url.PathEscape(addressID)
	if err := c.call(ctx, scopeAdmin, http.MethodPost, path, q, addr, &out); err != nil {
		return nil, err
	}
	return &out.Customer, nil
}

func (c *Client) DeleteAddress(ctx context.Context, customerID, addressID string) error {
	path := customerPath(customerID) + "/addresses/" + url.PathEscape(addressID)
	return c.call(ctx, scopeAdmin, http.MethodDelete, path, nil, nil, nil)
}
