package application

import (
	"context"

	"github.com/fittinglab/storefront/internal/domain/entity"
	"github.com/fittinglab/storefront/internal/infrastructure/medusa"
)

// Publisher enqueues background jobs; helpers.RabbitPublisher implements it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// CustomerGateway is the Admin API surface the account features need.
type CustomerGateway interface {
	CreateCustomer(ctx context.Context, in medusa.CreateCustomerInput) (*entity.Customer, error)
	GetCustomer(ctx context.Context, id string) (*entity.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
	CreateAddress(ctx context.Context, customerID string, addr entity.Address) (*entity.Customer, error)
	UpdateAddress(ctx context.Context, customerID, addressID string, addr entity.Address) (*entity.Customer, error)
	DeleteAddress(ctx context.Context, customerID, addressID string) error
	ListCustomerOrders(ctx context.Context, customerID string) ([]entity.OrderSummary, error)
}

// CartGateway is the Store API surface for carts and checkout.
type CartGateway interface {
	CreateCart(ctx context.Context, in medusa.CreateCartInput) (*entity.Cart, error)
	GetCart(ctx context.Context, id string) (*entity.Cart, error)
	UpdateCart(ctx context.Context, id string, in medusa.UpdateCartInput) (*entity.Cart, error)
	AddLineItem(ctx context.Context, cartID, variantID string, quantity int) (*entity.Cart, error)
	UpdateLineItem(ctx context.Context, cartID, lineID string, quantity int) (*entity.Cart, error)
	DeleteLineItem(ctx context.Context, cartID, lineID string) (*entity.Cart, error)
	ListShippingOptions(ctx context.Context, cartID string) ([]entity.ShippingOption, error)
	AddShippingMethod(ctx context.Context, cartID, optionID string) (*entity.Cart, error)
	ListPaymentProviders(ctx context.Context, regionID string) ([]entity.PaymentProvider, error)
	CreatePaymentCollection(ctx context.Context, cartID string) (*entity.PaymentCollection, error)
	InitiatePaymentSession(ctx context.Context, collectionID, providerID string) (*entity.PaymentCollection, error)
	CompleteCart(ctx context.Context, cartID string) (*medusa.CompletionResult, error)
}

type OrderGateway interface {
	GetOrder(ctx context.Context, id string) (*entity.Order, error)
}

var (
	_ CustomerGateway = (*medusa.Client)(nil)
	_ CartGateway     = (*medusa.Client)(nil)
	_ OrderGateway    = (*medusa.Client)(nil)
)
