package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fittinglab/storefront/internal/domain/repository"
)

type CustomerLinkRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerLinkRepository(pool *pgxpool.Pool) *CustomerLinkRepository {
	return &CustomerLinkRepository{pool: pool}
}

func (r *CustomerLinkRepository) Link(ctx context.Context, customerID, authIdentityID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO customer_auth_identities (customer_id, auth_identity_id)
		VALUES ($1, $2)
	`, customerID, authIdentityID)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

func (r *CustomerLinkRepository) Dismiss(ctx context.Context, customerID, authIdentityID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM customer_auth_identities
		WHERE customer_id = $1 AND auth_identity_id = $2
	`, customerID, authIdentityID)
	return err
}

func (r *CustomerLinkRepository) CustomerIDByAuthIdentity(ctx context.Context, authIdentityID string) (string, error) {
	var customerID string
	err := r.pool.QueryRow(ctx, `
		SELECT customer_id FROM customer_auth_identities WHERE auth_identity_id = $1
	`, authIdentityID).Scan(&customerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	return customerID, err
}

var _ repository.CustomerLinkRepository = (*CustomerLinkRepository)(nil)
