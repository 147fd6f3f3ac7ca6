package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/fittinglab/storefront/internal/domain/entity"
	"github.com/fittinglab/storefront/internal/infrastructure/medusa"
)

type CartService struct {
	Carts    CartGateway
	RegionID string
	Logger   *logrus.Logger
}

func NewCartService(carts CartGateway, regionID string, logger *logrus.Logger) *CartService {
	return &CartService{Carts: carts, RegionID: regionID, Logger: logger}
}

// Get returns the cart or ErrCartNotFound when the id is empty or unknown upstream.
func (s *CartService) Get(ctx context.Context, cartID string) (*entity.Cart, error) {
	if cartID == "" {
		return nil, ErrCartNotFound
	}
	cart, err := s.Carts.GetCart(ctx, cartID)
	if medusa.IsNotFound(err) {
		return nil, ErrCartNotFound
	}
	return cart, err
}

// AddItem adds a variant, creating a cart first when cartID is empty or stale.
// The returned cart id may differ from the one passed in.
func (s *CartService) AddItem(ctx context.Context, cartID, email, variantID string, quantity int) (*entity.Cart, error) {
	if cartID != "" {
		cart, err := s.Carts.AddLineItem(ctx, cartID, variantID, quantity)
		if !medusa.IsNotFound(err) {
			return cart, err
		}
		if s.Logger != nil {
			s.Logger.WithField("cart_id", cartID).Info("stale cart id, creating a new cart")
		}
	}
	cart, err := s.Carts.CreateCart(ctx, medusa.CreateCartInput{RegionID: s.RegionID, Email: email})
	if err != nil {
		return nil, err
	}
	return s.Carts.AddLineItem(ctx, cart.ID, variantID, quantity)
}

// UpdateItem sets a line's quantity; zero removes the line.
func (s *CartService) UpdateItem(ctx context.Context, cartID, lineID string, quantity int) (*entity.Cart, error) {
	if cartID == "" {
		return nil, ErrCartNotFound
	}
	if quantity <= 0 {
		return s.RemoveItem(ctx, cartID, lineID)
	}
	return s.Carts.UpdateLineItem(ctx, cartID, lineID, quantity)
}

func (s *CartService) RemoveItem(ctx context.Context, cartID, lineID string) (*entity.Cart, error) {
	if cartID == "" {
		return nil, ErrCartNotFound
	}
	return s.Carts.DeleteLineItem(ctx, cartID, lineID)
}
