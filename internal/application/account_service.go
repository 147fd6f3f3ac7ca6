package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fittinglab/storefront/config"
	"github.com/fittinglab/storefront/internal/domain/entity"
	repo "github.com/fittinglab/storefront/internal/domain/repository"
	"github.com/fittinglab/storefront/internal/infrastructure/medusa"
	"github.com/fittinglab/storefront/pkg/helpers"
	"github.com/fittinglab/storefront/pkg/mailer"
	tpl "github.com/fittinglab/storefront/pkg/mailer/templates"
)

const resetTokenTTL = 30 * time.Minute

// AccountService is the emailpass auth provider plus the customer's own account pages.
type AccountService struct {
	Identities repo.AuthIdentityRepository
	Links      repo.CustomerLinkRepository
	Customers  CustomerGateway
	JWT        *helpers.JWTManager
	Redis      *redis.Client
	Pub        Publisher
	Cfg        *config.Config
	Logger     *logrus.Logger
}

type TokenPair struct {
	SessionID          string
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type LoginResponse struct {
	CustomerID string `json:"customer_id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

// SessionKey is the Redis hash that backs one login session.
func SessionKey(sid string) string {
	return "customer:session:" + sid
}

func keyResetToken(t string) string { return "pwd:reset:token:" + t }

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func NewAccountService(identities repo.AuthIdentityRepository, links repo.CustomerLinkRepository, customers CustomerGateway, jwt *helpers.JWTManager, rdb *redis.Client, pub Publisher, cfg *config.Config, logger *logrus.Logger) *AccountService {
	return &AccountService{
		Identities: identities,
		Links:      links,
		Customers:  customers,
		JWT:        jwt,
		Redis:      rdb,
		Pub:        pub,
		Cfg:        cfg,
		Logger:     logger,
	}
}

// Authenticate verifies emailpass credentials and resolves the linked customer.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*entity.AuthIdentity, string, error) {
	ai, err := s.Identities.GetByProviderEntity(ctx, entity.ProviderEmailPass, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || ai == nil {
		return nil, "", ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(ai.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}
	customerID, err := s.Links.CustomerIDByAuthIdentity(ctx, ai.ID)
	if err != nil {
		// An identity without a customer is a half-finished registration.
		return nil, "", ErrInvalidCredentials
	}
	return ai, customerID, nil
}

// IssueTokens generates access/refresh tokens and records the session in Redis.
func (s *AccountService) IssueTokens(ctx context.Context, customerID, authIdentityID, email string) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.signPair(customerID, authIdentityID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("customer_id", customerID).Error("generate tokens failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"customer_id":      customerID,
			"auth_identity_id": authIdentityID,
			"email":            email,
			"sid":              sid,
			"created_at":       nowRFC3339(),
		}
		key := SessionKey(sid)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, s.JWT.RefreshTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return pair, nil
}

func (s *AccountService) signPair(customerID, authIdentityID, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(customerID, authIdentityID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(customerID, authIdentityID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{SessionID: sid, AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResponse, TokenPair, error) {
	ai, customerID, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, customerID, ai.ID, ai.EntityID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	resp := &LoginResponse{CustomerID: customerID, Email: ai.EntityID}
	if c, cErr := s.Customers.GetCustomer(ctx, customerID); cErr == nil {
		resp.FirstName, resp.LastName = c.FirstName, c.LastName
	}
	return resp, pair, nil
}

// Refresh rotates the session: the old session id stops working.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if _, err := s.Identities.GetByID(ctx, claims.AuthIdentityID); err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	var email string
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, SessionKey(claims.SessionID)).Result()
		if rErr != nil || len(data) == 0 || data["customer_id"] != claims.CustomerID {
			return TokenPair{}, ErrInvalidCredentials
		}
		email = data["email"]
		// Only the request that actually deletes the session may rotate it.
		if n, dErr := s.Redis.Del(ctx, SessionKey(claims.SessionID)).Result(); dErr != nil || n == 0 {
			return TokenPair{}, ErrInvalidCredentials
		}
	}
	return s.IssueTokens(ctx, claims.CustomerID, claims.AuthIdentityID, email)
}

func (s *AccountService) Logout(ctx context.Context, sid string) {
	if s.Redis == nil || sid == "" {
		return
	}
	if err := s.Redis.Del(ctx, SessionKey(sid)).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("delete session failed")
	}
}

// Me returns the customer with addresses and order history.
func (s *AccountService) Me(ctx context.Context, customerID string) (*entity.Customer, error) {
	c, err := s.Customers.GetCustomer(ctx, customerID)
	if err != nil {
		if medusa.IsNotFound(err) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	orders, err := s.Customers.ListCustomerOrders(ctx, customerID)
	if err != nil {
		return nil, err
	}
	c.Orders = orders
	return c, nil
}

func normalizeAddress(a entity.Address) entity.Address {
	a.CountryCode = strings.ToLower(strings.TrimSpace(a.CountryCode))
	if a.CountryCode == "" {
		a.CountryCode = "de"
	}
	return a
}

func (s *AccountService) AddAddress(ctx context.Context, customerID string, a entity.Address) (*entity.Customer, error) {
	return s.Customers.CreateAddress(ctx, customerID, normalizeAddress(a))
}

func (s *AccountService) UpdateAddress(ctx context.Context, customerID, addressID string, a entity.Address) (*entity.Customer, error) {
	return s.Customers.UpdateAddress(ctx, customerID, addressID, normalizeAddress(a))
}

func (s *AccountService) DeleteAddress(ctx context.Context, customerID, addressID string) error {
	return s.Customers.DeleteAddress(ctx, customerID, addressID)
}

// RequestPasswordReset issues a reset token when the email belongs to an identity.
// It reports success either way so callers cannot probe for accounts.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	if s.Redis == nil {
		return ErrSessionStoreDisabled
	}
	ai, err := s.Identities.GetByProviderEntity(ctx, entity.ProviderEmailPass, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) && s.Logger != nil {
			s.Logger.WithError(err).Warn("reset lookup failed")
		}
		return nil
	}
	tok, err := helpers.RandomToken(32)
	if err != nil {
		return err
	}
	if err := s.Redis.Set(ctx, keyResetToken(tok), ai.ID, resetTokenTTL).Err(); err != nil {
		return err
	}

	if s.Pub != nil && s.Cfg != nil && s.Cfg.MailSendEnabled {
		link := s.Cfg.ResetPasswordURL + "?token=" + tok
		data := tpl.NewForgotPasswordData(s.Cfg, "", ai.EntityID, link, tpl.WithTime(time.Now()), tpl.WithExpiresIn(resetTokenTTL))
		job := mailer.EmailJob{To: ai.EntityID, Template: tpl.ForgotPassword, Data: data}
		if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("auth_identity_id", ai.ID).Warn("enqueue reset email failed")
		}
	}
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if s.Redis == nil {
		return ErrSessionStoreDisabled
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	// GETDEL makes the token single-use even under concurrent confirms.
	id, err := s.Redis.GetDel(ctx, keyResetToken(token)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && id == "") {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	return s.Identities.UpdatePasswordHash(ctx, id, hash)
}
