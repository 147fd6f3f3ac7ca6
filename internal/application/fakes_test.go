package application

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/fittinglab/storefront/internal/domain/entity"
	repo "github.com/fittinglab/storefront/internal/domain/repository"
	"github.com/fittinglab/storefront/internal/infrastructure/medusa"
)

type memIdentities struct {
	mu      sync.Mutex
	seq     int
	byID    map[string]*entity.AuthIdentity
	deleted []string
}

func newMemIdentities() *memIdentities {
	return &memIdentities{byID: map[string]*entity.AuthIdentity{}}
}

func (m *memIdentities) Create(_ context.Context, a *entity.AuthIdentity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.byID {
		if x.Provider == a.Provider && x.EntityID == a.EntityID {
			return repo.ErrConflict
		}
	}
	m.seq++
	a.ID = fmt.Sprintf("authid_%d", m.seq)
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memIdentities) GetByID(_ context.Context, id string) (*entity.AuthIdentity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memIdentities) GetByProviderEntity(_ context.Context, provider, entityID string) (*entity.AuthIdentity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Provider == provider && a.EntityID == entityID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memIdentities) UpdatePasswordHash(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (m *memIdentities) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.byID, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type memLinks struct {
	mu        sync.Mutex
	byAuth    map[string]string
	linkErr   error
	dismissed []string
}

func newMemLinks() *memLinks {
	return &memLinks{byAuth: map[string]string{}}
}

func (m *memLinks) Link(_ context.Context, customerID, authIdentityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.linkErr != nil {
		return m.linkErr
	}
	m.byAuth[authIdentityID] = customerID
	return nil
}

func (m *memLinks) Dismiss(_ context.Context, customerID, authIdentityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byAuth, authIdentityID)
	m.dismissed = append(m.dismissed, customerID+":"+authIdentityID)
	return nil
}

func (m *memLinks) CustomerIDByAuthIdentity(_ context.Context, authIdentityID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byAuth[authIdentityID]
	if !ok {
		return "", repo.ErrNotFound
	}
	return id, nil
}

type fakeCustomers struct {
	mu        sync.Mutex
	seq       int
	customers map[string]*entity.Customer
	orders    map[string][]entity.OrderSummary
	createErr error
	deleted   []string
	calls     []string
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{customers: map[string]*entity.Customer{}, orders: map[string][]entity.OrderSummary{}}
}

func (f *fakeCustomers) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeCustomers) CreateCustomer(_ context.Context, in medusa.CreateCustomerInput) (*entity.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create:" + in.Email)
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	c := &entity.Customer{ID: fmt.Sprintf("cus_%d", f.seq), Email: in.Email, FirstName: in.FirstName, LastName: in.LastName, HasAccount: true}
	f.customers[c.ID] = c
	cp := *c
	return &cp, nil
}

func (f *fakeCustomers) GetCustomer(_ context.Context, id string) (*entity.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		return nil, &medusa.APIError{Status: http.StatusNotFound}
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomers) DeleteCustomer(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete:" + id)
	delete(f.customers, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCustomers) CreateAddress(_ context.Context, customerID string, addr entity.Address) (*entity.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[customerID]
	if !ok {
		return nil, &medusa.APIError{Status: http.StatusNotFound}
	}
	addr.ID = fmt.Sprintf("addr_%d", len(c.Addresses)+1)
	c.Addresses = append(c.Addresses, addr)
	cp := *c
	return &cp, nil
}

func (f *fakeCustomers) UpdateAddress(_ context.Context, customerID, addressID string, addr entity.Address) (*entity.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.customers[customerID]
	for i := range c.Addresses {
		if c.Addresses[i].ID == addressID {
			addr.ID = addressID
			c.Addresses[i] = addr
		}
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomers) DeleteAddress(_ context.Context, customerID, addressID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.customers[customerID]
	kept := c.Addresses[:0]
	for _, a := range c.Addresses {
		if a.ID != addressID {
			kept = append(kept, a)
		}
	}
	c.Addresses = kept
	return nil
}

func (f *fakeCustomers) ListCustomerOrders(_ context.Context, customerID string) ([]entity.OrderSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[customerID], nil
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []any
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, body)
	return nil
}

type fakeCarts struct {
	mu       sync.Mutex
	seq      int
	carts    map[string]*entity.Cart
	options  []entity.ShippingOption
	provs    []entity.PaymentProvider
	complete *medusa.CompletionResult
	calls    []string
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: map[string]*entity.Cart{}}
}

func notFound() error { return &medusa.APIError{Status: http.StatusNotFound, Type: "not_found"} }

func (f *fakeCarts) lookup(id string) (*entity.Cart, error) {
	c, ok := f.carts[id]
	if !ok {
		return nil, notFound()
	}
	return c, nil
}

func (f *fakeCarts) CreateCart(_ context.Context, in medusa.CreateCartInput) (*entity.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	c := &entity.Cart{ID: fmt.Sprintf("cart_%d", f.seq), RegionID: in.RegionID, Email: in.Email}
	f.carts[c.ID] = c
	f.calls = append(f.calls, "create")
	return c, nil
}

func (f *fakeCarts) GetCart(_ context.Context, id string) (*entity.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookup(id)
}

func (f *fakeCarts) UpdateCart(_ context.Context, id string, in medusa.UpdateCartInput) (*entity.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.lookup(id)
	if err != nil {
		return nil, err
	}
	if in.Email != "" {
		c.Email = in.Email
		f.calls = append(f.calls, "update:email")
	}
	if in.ShippingAddress != nil {
		c.ShippingAddress = in.ShippingAddress
		c.BillingAddress = in.BillingAddress
		f.calls = append(f.calls, "update:address")
	}
	return c, nil
}

func (f *fakeCarts) AddLineItem(_ context.Context, cartID, variantID string, quantity int) (*entity.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.lookup(cartID)
	if err != nil {
		return nil, err
	}
	c.Items = append(c.Items, entity.LineItem{ID: fmt.Sprintf("li_%d", len(c.Items)+1), VariantID: variantID, Quantity: quantity})
	return c, nil
}

func (f *fakeCarts) UpdateLineItem(_ context.Context, cartID, lineID string, quantity int) (*entity.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.lookup(cartID)
	if err != nil {
		return nil, err
	}
	for i := range c.Items {
		if c.Items[i].ID == lineID {
			c.Items[i].Quantity = quantity
			return c, nil
		}
	}
	return nil, notFound()
}

func (f *fakeCarts) DeleteLineItem(_ context.Context, cartID, lineID string) (*entity.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.lookup(cartID)
	if err != nil {
		return nil, err
	}
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ID != lineID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	f.calls = append(f.calls, "delete:"+lineID)
	return c, nil
}

func (f *fakeCarts) ListShippingOptions(context.Context, string) ([]entity.ShippingOption, error) {
	return f.options, nil
}

func (f *fakeCarts) AddShippingMethod(_ context.Context, cartID, optionID string) (*entity.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.lookup(cartID)
	if err != nil {
		return nil, err
	}
	c.ShippingMethods = []entity.ShippingMethod{{ID: "sm_1", ShippingOptionID: optionID}}
	return c, nil
}

func (f *fakeCarts) ListPaymentProviders(context.Context, string) ([]entity.PaymentProvider, error) {
	return f.provs, nil
}

func (f *fakeCarts) CreatePaymentCollection(_ context.Context, cartID string) (*entity.PaymentCollection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "payment-collection:"+cartID)
	return &entity.PaymentCollection{ID: "paycol_1"}, nil
}

func (f *fakeCarts) InitiatePaymentSession(_ context.Context, collectionID, providerID string) (*entity.PaymentCollection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "payment-session:"+collectionID+":"+providerID)
	return &entity.PaymentCollection{ID: collectionID}, nil
}

func (f *fakeCarts) CompleteCart(_ context.Context, cartID string) (*medusa.CompletionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "complete:"+cartID)
	return f.complete, nil
}
