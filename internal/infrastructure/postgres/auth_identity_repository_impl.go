package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fittinglab/storefront/internal/domain/entity"
	"github.com/fittinglab/storefront/internal/domain/repository"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type AuthIdentityRepository struct {
	pool *pgxpool.Pool
}

func NewAuthIdentityRepository(pool *pgxpool.Pool) *AuthIdentityRepository {
	return &AuthIdentityRepository{pool: pool}
}

func (r *AuthIdentityRepository) Create(ctx context.Context, a *entity.AuthIdentity) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO auth_identities (provider, entity_id, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, a.Provider, a.EntityID, a.PasswordHash)

	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

func (r *AuthIdentityRepository) GetByID(ctx context.Context, id string) (*entity.AuthIdentity, error) {
	return r.scanOne(ctx, `
		SELECT id, provider, entity_id, password_hash, created_at, updated_at
		FROM auth_identities
		WHERE id = $1
	`, id)
}

func (r *AuthIdentityRepository) GetByProviderEntity(ctx context.Context, provider, entityID string) (*entity.AuthIdentity, error) {
	return r.scanOne(ctx, `
		SELECT id, provider, entity_id, password_hash, created_at, updated_at
		FROM auth_identities
		WHERE provider = $1 AND entity_id = $2
	`, provider, entityID)
}

func (r *AuthIdentityRepository) scanOne(ctx context.Context, sql string, args ...any) (*entity.AuthIdentity, error) {
	a := &entity.AuthIdentity{}
	row := r.pool.QueryRow(ctx, sql, args...)
	if err := row.Scan(&a.ID, &a.Provider, &a.EntityID, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AuthIdentityRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE auth_identities
		SET password_hash = $1, updated_at = $2
		WHERE id = $3
	`, hash, time.Now(), id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AuthIdentityRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM auth_identities WHERE id = $1`, id)
	return err
}

var _ repository.AuthIdentityRepository = (*AuthIdentityRepository)(nil)
