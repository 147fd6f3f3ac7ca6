package repository

import (
	"context"
	"errors"

	"github.com/fittinglab/storefront/internal/domain/entity"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique key (provider + entity id, link pair) already exists.
	ErrConflict = errors.New("already exists")
)

// AuthIdentityRepository stores emailpass identities.
type AuthIdentityRepository interface {
	Create(ctx context.Context, a *entity.AuthIdentity) error
	GetByID(ctx context.Context, id string) (*entity.AuthIdentity, error)
	GetByProviderEntity(ctx context.Context, provider, entityID string) (*entity.AuthIdentity, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}

// CustomerLinkRepository stores the customer <-> auth identity link.
type CustomerLinkRepository interface {
	Link(ctx context.Context, customerID, authIdentityID string) error
	Dismiss(ctx context.Context, customerID, authIdentityID string) error
	CustomerIDByAuthIdentity(ctx context.Context, authIdentityID string) (string, error)
}
