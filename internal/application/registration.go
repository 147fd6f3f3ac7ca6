package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fittinglab/storefront/config"
	"github.com/fittinglab/storefront/internal/domain/entity"
	repo "github.com/fittinglab/storefront/internal/domain/repository"
	"github.com/fittinglab/storefront/internal/infrastructure/medusa"
	"github.com/fittinglab/storefront/internal/workflow"
	"github.com/fittinglab/storefront/pkg/helpers"
	"github.com/fittinglab/storefront/pkg/mailer"
	tpl "github.com/fittinglab/storefront/pkg/mailer/templates"
)

const (
	RegisterCustomerWorkflow = "register-customer"

	StepCreateAuthIdentity = "create-auth-identity"
	StepCreateCustomer     = "create-customer"
	StepLinkCustomerToAuth = "link-customer-to-auth"

	tokenAuthIdentityID = "auth_identity_id"
	tokenCustomerID     = "customer_id"
)

// RegisterInput is what the storefront registration form submits.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Redacted keeps the password out of the persisted execution.
func (in RegisterInput) Redacted() any {
	return map[string]string{
		"email":      in.normalizedEmail(),
		"first_name": in.FirstName,
		"last_name":  in.LastName,
	}
}

func (in RegisterInput) normalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(in.Email))
}

type RegistrationResult struct {
	Customer       *entity.Customer
	AuthIdentityID string
	// Replayed is true when the idempotency key matched an earlier completed registration.
	Replayed bool
}

// NewRegisterCustomerWorkflow builds the three-step registration saga.
func NewRegisterCustomerWorkflow(identities repo.AuthIdentityRepository, links repo.CustomerLinkRepository, customers CustomerGateway) *workflow.Workflow {
	return &workflow.Workflow{
		Name: RegisterCustomerWorkflow,
		Steps: []workflow.Step{
			{
				Name: StepCreateAuthIdentity,
				Invoke: func(ctx context.Context, exec *workflow.Execution) (workflow.Token, error) {
					in, ok := exec.InputValue().(RegisterInput)
					if !ok {
						return nil, fmt.Errorf("unexpected input %T", exec.InputValue())
					}
					hash, err := helpers.HashPassword(in.Password)
					if err != nil {
						return nil, err
					}
					ai := &entity.AuthIdentity{
						Provider:     entity.ProviderEmailPass,
						EntityID:     in.normalizedEmail(),
						PasswordHash: hash,
					}
					if err := identities.Create(ctx, ai); err != nil {
						if errors.Is(err, repo.ErrConflict) {
							return nil, ErrIdentityExists
						}
						return nil, err
					}
					exec.Put(tokenAuthIdentityID, ai.ID)
					return workflow.Token{tokenAuthIdentityID: ai.ID}, nil
				},
				Compensate: func(ctx context.Context, tok workflow.Token) error {
					err := identities.Delete(ctx, tok[tokenAuthIdentityID])
					if errors.Is(err, repo.ErrNotFound) {
						return nil
					}
					return err
				},
			},
			{
				Name: StepCreateCustomer,
				Invoke: func(ctx context.Context, exec *workflow.Execution) (workflow.Token, error) {
					in := exec.InputValue().(RegisterInput)
					c, err := customers.CreateCustomer(ctx, medusa.CreateCustomerInput{
						Email:     in.normalizedEmail(),
						FirstName: in.FirstName,
						LastName:  in.LastName,
					})
					if err != nil {
						if errors.Is(err, medusa.ErrConflict) {
							return nil, ErrIdentityExists
						}
						return nil, err
					}
					exec.Put(tokenCustomerID, c)
					return workflow.Token{tokenCustomerID: c.ID}, nil
				},
				Compensate: func(ctx context.Context, tok workflow.Token) error {
					return customers.DeleteCustomer(ctx, tok[tokenCustomerID])
				},
			},
			{
				Name: StepLinkCustomerToAuth,
				Invoke: func(ctx context.Context, exec *workflow.Execution) (workflow.Token, error) {
					customerID := exec.Token(StepCreateCustomer)[tokenCustomerID]
					authID := exec.Token(StepCreateAuthIdentity)[tokenAuthIdentityID]
					if err := links.Link(ctx, customerID, authID); err != nil {
						return nil, err
					}
					return workflow.Token{tokenCustomerID: customerID, tokenAuthIdentityID: authID}, nil
				},
				Compensate: func(ctx context.Context, tok workflow.Token) error {
					return links.Dismiss(ctx, tok[tokenCustomerID], tok[tokenAuthIdentityID])
				},
			},
		},
	}
}

type RegistrationService struct {
	Engine     *workflow.Engine
	Identities repo.AuthIdentityRepository
	Customers  CustomerGateway
	Pub        Publisher
	Cfg        *config.Config
	Logger     *logrus.Logger
}

func NewRegistrationService(engine *workflow.Engine, identities repo.AuthIdentityRepository, customers CustomerGateway, pub Publisher, cfg *config.Config, logger *logrus.Logger) *RegistrationService {
	return &RegistrationService{Engine: engine, Identities: identities, Customers: customers, Pub: pub, Cfg: cfg, Logger: logger}
}

// Register runs the register-customer workflow. idempotencyKey may be empty.
func (s *RegistrationService) Register(ctx context.Context, idempotencyKey string, in RegisterInput) (*RegistrationResult, error) {
	exec, err := s.Engine.Run(ctx, RegisterCustomerWorkflow, idempotencyKey, in)
	switch {
	case errors.Is(err, workflow.ErrDuplicateExecution):
		return s.replay(ctx, exec, in)
	case errors.Is(err, workflow.ErrExecutionInProgress):
		return nil, ErrRegistrationInProgress
	case err != nil:
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", in.normalizedEmail()).Warn("registration failed")
		}
		return nil, err
	}

	customer, _ := exec.Value(tokenCustomerID).(*entity.Customer)
	authID, _ := exec.Value(tokenAuthIdentityID).(string)
	s.publishWelcome(ctx, customer)
	return &RegistrationResult{Customer: customer, AuthIdentityID: authID}, nil
}

// replay answers a repeated idempotency key with the earlier result. The caller
// must submit the same email and the password of the identity that run created.
func (s *RegistrationService) replay(ctx context.Context, exec *workflow.Execution, in RegisterInput) (*RegistrationResult, error) {
	var stored struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(exec.Input, &stored); err != nil {
		return nil, fmt.Errorf("decode registration input: %w", err)
	}
	if strings.ToLower(strings.TrimSpace(stored.Email)) != in.normalizedEmail() {
		return nil, ErrIdempotencyKeyReused
	}

	tok := exec.Token(StepLinkCustomerToAuth)
	ai, err := s.Identities.GetByID(ctx, tok[tokenAuthIdentityID])
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrIdempotencyKeyReused
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(ai.PasswordHash, in.Password) {
		return nil, ErrIdempotencyKeyReused
	}

	customer, err := s.Customers.GetCustomer(ctx, tok[tokenCustomerID])
	if err != nil {
		return nil, err
	}
	return &RegistrationResult{Customer: customer, AuthIdentityID: ai.ID, Replayed: true}, nil
}

func (s *RegistrationService) publishWelcome(ctx context.Context, c *entity.Customer) {
	if s.Pub == nil || s.Cfg == nil || !s.Cfg.MailSendEnabled || c == nil {
		return
	}
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	job := mailer.EmailJob{To: c.Email, Template: tpl.Welcome, Data: tpl.NewWelcomeData(s.Cfg, name, c.Email)}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("customer_id", c.ID).Warn("enqueue welcome email failed")
	}
}
