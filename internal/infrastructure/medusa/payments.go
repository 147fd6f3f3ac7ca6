package medusa

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fittinglab/storefront/internal/domain/entity"
)

func (c *Client) ListPaymentProviders(ctx context.Context, regionID string) ([]entity.PaymentProvider, error) {
	var out struct {
		PaymentProviders []entity.PaymentProvider `json:"payment_providers"`
	}
	q := url.Values{"region_id": []string{regionID}}
	if err := c.call(ctx, scopeStore, http.MethodGet, "/store/payment-providers", q, nil, &out); err != nil {
		return nil, err
	}
	return out.PaymentProviders, nil
}

type paymentCollectionResponse struct {
	PaymentCollection entity.PaymentCollection `json:"payment_collection"`
}

func (c *Client) CreatePaymentCollection(ctx context.Context, cartID string) (*entity.PaymentCollection, error) {
	var out paymentCollectionResponse
	body := map[string]string{"cart_id": cartID}
	if err := c.call(ctx, scopeStore, http.MethodPost, "/store/payment-collections", nil, body, &out); err != nil {
		return nil, err
	}
	return &out.PaymentCollection, nil
}

func (c *Client) InitiatePaymentSession(ctx context.Context, collectionID, providerID string) (*entity.PaymentCollection, error) {
	var out paymentCollectionResponse
	body := map[string]string{"provider_id": providerID}
	path := "/store/payment-collections/" + url.PathEscape(collectionID) + "/payment-sessions"
	if err := c.call(ctx, scopeStore, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out.PaymentCollection, nil
}
