package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fittinglab/storefront/config"
	"github.com/fittinglab/storefront/internal/domain/entity"
	"github.com/fittinglab/storefront/internal/infrastructure/medusa"
	"github.com/fittinglab/storefront/pkg/helpers"
	"github.com/fittinglab/storefront/pkg/mailer"
	tpl "github.com/fittinglab/storefront/pkg/mailer/templates"
)

type CheckoutStep string

const (
	StepAddress  CheckoutStep = "address"
	StepShipping CheckoutStep = "shipping"
	StepPayment  CheckoutStep = "payment"
)

// DefaultPaymentProvider is Medusa's built-in manual provider.
const DefaultPaymentProvider = "pp_system_default"

// providerLabels are the German names shown for known payment providers.
var providerLabels = map[string]string{
	DefaultPaymentProvider: "Vorkasse / Rechnung",
	"pp_stripe_stripe":     "Kreditkarte",
	"pp_paypal_paypal":     "PayPal",
}

// CurrentStep derives where a cart stands in the checkout.
func CurrentStep(cart *entity.Cart) CheckoutStep {
	if cart == nil || cart.Email == "" || cart.ShippingAddress == nil {
		return StepAddress
	}
	if len(cart.ShippingMethods) == 0 {
		return StepShipping
	}
	return StepPayment
}

type CheckoutState struct {
	Cart *entity.Cart `json:"cart"`
	Step CheckoutStep `json:"step"`
}

type ShippingOptionView struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Amount          float64 `json:"amount"`
	FormattedAmount string  `json:"formatted_amount"`
}

type PaymentProviderView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type CheckoutService struct {
	Carts  CartGateway
	Pub    Publisher
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewCheckoutService(carts CartGateway, pub Publisher, cfg *config.Config, logger *logrus.Logger) *CheckoutService {
	return &CheckoutService{Carts: carts, Pub: pub, Cfg: cfg, Logger: logger}
}

func (s *CheckoutService) cart(ctx context.Context, cartID string) (*entity.Cart, error) {
	if cartID == "" {
		return nil, ErrEmptyCart
	}
	cart, err := s.Carts.GetCart(ctx, cartID)
	if medusa.IsNotFound(err) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	return cart, nil
}

func (s *CheckoutService) State(ctx context.Context, cartID string) (*CheckoutState, error) {
	cart, err := s.cart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return &CheckoutState{Cart: cart, Step: CurrentStep(cart)}, nil
}

// SetAddress stores the email first, then the shipping address mirrored as billing address.
func (s *CheckoutService) SetAddress(ctx context.Context, cartID, email string, addr entity.Address) (*CheckoutState, error) {
	if _, err := s.cart(ctx, cartID); err != nil {
		return nil, err
	}
	if _, err := s.Carts.UpdateCart(ctx, cartID, medusa.UpdateCartInput{Email: strings.TrimSpace(email)}); err != nil {
		return nil, err
	}
	addr = normalizeAddress(addr)
	addr.ID = ""
	billing := addr
	cart, err := s.Carts.UpdateCart(ctx, cartID, medusa.UpdateCartInput{ShippingAddress: &addr, BillingAddress: &billing})
	if err != nil {
		return nil, err
	}
	return &CheckoutState{Cart: cart, Step: CurrentStep(cart)}, nil
}

func (s *CheckoutService) ShippingOptions(ctx context.Context, cartID string) ([]ShippingOptionView, error) {
	if _, err := s.cart(ctx, cartID); err != nil {
		return nil, err
	}
	opts, err := s.Carts.ListShippingOptions(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(opts) == 0 {
		return nil, ErrNoShippingOptions
	}
	out := make([]ShippingOptionView, 0, len(opts))
	for _, o := range opts {
		out = append(out, ShippingOptionView{ID: o.ID, Name: o.Name, Amount: o.Amount, FormattedAmount: helpers.FormatEUR(o.Amount)})
	}
	return out, nil
}

func (s *CheckoutService) SetShippingMethod(ctx context.Context, cartID, optionID string) (*CheckoutState, error) {
	if _, err := s.cart(ctx, cartID); err != nil {
		return nil, err
	}
	cart, err := s.Carts.AddShippingMethod(ctx, cartID, optionID)
	if err != nil {
		return nil, err
	}
	return &CheckoutState{Cart: cart, Step: CurrentStep(cart)}, nil
}

func (s *CheckoutService) PaymentProviders(ctx context.Context, cartID string) ([]PaymentProviderView, error) {
	cart, err := s.cart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	providers, err := s.Carts.ListPaymentProviders(ctx, cart.RegionID)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentProviderView, 0, len(providers))
	for _, p := range providers {
		if !p.IsEnabled {
			continue
		}
		label, ok := providerLabels[p.ID]
		if !ok {
			label = p.ID
		}
		out = append(out, PaymentProviderView{ID: p.ID, Label: label})
	}
	return out, nil
}

// PlaceOrder initiates a payment session with the chosen provider and completes the cart.
func (s *CheckoutService) PlaceOrder(ctx context.Context, cartID, providerID string) (*entity.Order, error) {
	cart, err := s.cart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if providerID == "" {
		providerID = DefaultPaymentProvider
	}

	collectionID := ""
	if cart.PaymentCollection != nil {
		collectionID = cart.PaymentCollection.ID
	}
	if collectionID == "" {
		col, err := s.Carts.CreatePaymentCollection(ctx, cartID)
		if err != nil {
			return nil, err
		}
		collectionID = col.ID
	}
	if _, err := s.Carts.InitiatePaymentSession(ctx, collectionID, providerID); err != nil {
		return nil, err
	}

	res, err := s.Carts.CompleteCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !res.Placed() {
		if s.Logger != nil {
			s.Logger.WithField("cart_id", cartID).WithField("reason", res.Error).Warn("cart completion returned cart")
		}
		return nil, &OrderNotPlacedError{CartID: cartID, Reason: res.Error}
	}

	s.publishConfirmation(ctx, cart, res.Order)
	return res.Order, nil
}

func (s *CheckoutService) publishConfirmation(ctx context.Context, cart *entity.Cart, order *entity.Order) {
	if s.Pub == nil || s.Cfg == nil || !s.Cfg.MailSendEnabled {
		return
	}
	email := order.Email
	if email == "" {
		email = cart.Email
	}
	if email == "" {
		return
	}
	if len(order.Items) == 0 {
		order.Items = cart.Items
	}
	name := ""
	if cart.ShippingAddress != nil {
		name = strings.TrimSpace(cart.ShippingAddress.FirstName + " " + cart.ShippingAddress.LastName)
	}
	placedAt := order.CreatedAt
	if placedAt.IsZero() {
		placedAt = time.Now()
	}
	data := tpl.NewOrderConfirmationData(s.Cfg, name, email, order, tpl.WithTime(placedAt))
	job := mailer.EmailJob{To: email, Template: tpl.OrderConfirmation, Data: data}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("order_id", order.ID).Warn("enqueue order confirmation failed")
	}
}

type OrderService struct {
	Orders OrderGateway
}

func NewOrderService(orders OrderGateway) *OrderService {
	return &OrderService{Orders: orders}
}

func (s *OrderService) Get(ctx context.Context, id string) (*entity.Order, error) {
	o, err := s.Orders.GetOrder(ctx, id)
	if medusa.IsNotFound(err) {
		return nil, ErrOrderNotFound
	}
	return o, err
}
