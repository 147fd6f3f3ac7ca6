package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fittinglab/storefront/config"
	"github.com/fittinglab/storefront/internal/application"
	"github.com/fittinglab/storefront/internal/catalog"
	"github.com/fittinglab/storefront/internal/domain/entity"
	repo "github.com/fittinglab/storefront/internal/domain/repository"
	"github.com/fittinglab/storefront/internal/infrastructure/medusa"
	"github.com/fittinglab/storefront/internal/interface/middleware"
	"github.com/fittinglab/storefront/internal/workflow"
	"github.com/fittinglab/storefront/pkg/helpers"
	"github.com/fittinglab/storefront/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// fakeMedusa serves the slice of the Store and Admin APIs the handlers touch.
type fakeMedusa struct {
	mu        sync.Mutex
	seq       int
	customers map[string]*entity.Customer
	carts     map[string]*entity.Cart
	orders    map[string]entity.Order
	// completeAs is "order" or "cart".
	completeAs string
	requests   []string
}

func newFakeMedusa(t *testing.T) (*fakeMedusa, *medusa.Client) {
	t.Helper()
	f := &fakeMedusa{
		customers:  map[string]*entity.Customer{},
		carts:      map[string]*entity.Cart{},
		orders:     map[string]entity.Order{},
		completeAs: "order",
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /admin/customers", f.createCustomer)
	mux.HandleFunc("GET /admin/customers/{id}", f.getCustomer)
	mux.HandleFunc("DELETE /admin/customers/{id}", f.deleteCustomer)
	mux.HandleFunc("GET /admin/orders", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"orders": []any{}})
	})
	mux.HandleFunc("POST /store/carts", f.createCart)
	mux.HandleFunc("GET /store/carts/{id}", f.getCart)
	mux.HandleFunc("POST /store/carts/{id}", f.getCart)
	mux.HandleFunc("POST /store/carts/{id}/line-items", f.addLine)
	mux.HandleFunc("POST /store/carts/{id}/complete", f.complete)
	mux.HandleFunc("GET /store/orders/{id}", f.getOrder)
	mux.HandleFunc("POST /store/payment-collections", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"payment_collection": map[string]any{"id": "paycol_1"}})
	})
	mux.HandleFunc("POST /store/payment-collections/{id}/payment-sessions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"payment_collection": map[string]any{"id": r.PathValue("id")}})
	})
	mux.HandleFunc("GET /store/products", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"products": []any{}, "count": 0})
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	client := medusa.New(medusa.Options{
		BaseURL:        srv.URL,
		PublishableKey: "pk_test",
		SecretAPIKey:   "sk_test",
		RetryBackoff:   time.Millisecond,
		Logger:         logger,
	})
	return f, client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFoundJSON(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"type": "not_found", "message": what + " not found"})
}

func (f *fakeMedusa) createCustomer(w http.ResponseWriter, r *http.Request) {
	var in medusa.CreateCustomerInput
	_ = json.NewDecoder(r.Body).Decode(&in)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.customers {
		if c.Email == in.Email {
			writeJSON(w, http.StatusConflict, map[string]string{"type": "duplicate_error", "message": "Customer with email already exists"})
			return
		}
	}
	f.seq++
	c := &entity.Customer{ID: fmt.Sprintf("cus_%d", f.seq), Email: in.Email, FirstName: in.FirstName, LastName: in.LastName, HasAccount: true}
	f.customers[c.ID] = c
	writeJSON(w, http.StatusOK, map[string]any{"customer": c})
}

func (f *fakeMedusa) getCustomer(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[r.PathValue("id")]
	if !ok {
		notFoundJSON(w, "Customer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": c})
}

func (f *fakeMedusa) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.customers, r.PathValue("id"))
	writeJSON(w, http.StatusOK, map[string]any{"id": r.PathValue("id"), "deleted": true})
}

func (f *fakeMedusa) createCart(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	_ = json.NewDecoder(r.Body).Decode(&in)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	cart := &entity.Cart{ID: fmt.Sprintf("cart_%d", f.seq), RegionID: "reg_de", CurrencyCode: "eur"}
	if email, ok := in["email"].(string); ok {
		cart.Email = email
	}
	f.carts[cart.ID] = cart
	writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func (f *fakeMedusa) getCart(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[r.PathValue("id")]
	if !ok {
		notFoundJSON(w, "Cart")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func (f *fakeMedusa) addLine(w http.ResponseWriter, r *http.Request) {
	var in struct {
		VariantID string `json:"variant_id"`
		Quantity  int    `json:"quantity"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[r.PathValue("id")]
	if !ok {
		notFoundJSON(w, "Cart")
		return
	}
	cart.Items = append(cart.Items, entity.LineItem{
		ID:        fmt.Sprintf("item_%d", len(cart.Items)+1),
		Title:     "Batterien Größe 312",
		VariantID: in.VariantID,
		Quantity:  in.Quantity,
		UnitPrice: 490,
		Total:     490 * float64(in.Quantity),
	})
	cart.Subtotal += 490 * float64(in.Quantity)
	cart.Total = cart.Subtotal
	writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func (f *fakeMedusa) complete(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[r.PathValue("id")]
	if !ok {
		notFoundJSON(w, "Cart")
		return
	}
	if f.completeAs == "cart" {
		writeJSON(w, http.StatusOK, map[string]any{"type": "cart", "cart": cart, "error": map[string]string{"message": "Payment authorization failed"}})
		return
	}
	order := entity.Order{ID: "order_1", DisplayID: 1001, Email: cart.Email, CurrencyCode: "eur", Items: cart.Items, Subtotal: cart.Subtotal, Total: cart.Total}
	f.orders[order.ID] = order
	writeJSON(w, http.StatusOK, map[string]any{"type": "order", "order": order})
}

func (f *fakeMedusa) getOrder(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[r.PathValue("id")]
	if !ok {
		notFoundJSON(w, "Order")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": o})
}

func (f *fakeMedusa) seen(req string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r == req {
			return true
		}
	}
	return false
}

type memIdentities struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*entity.AuthIdentity
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
	if a, ok := m.byID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, repo.ErrNotFound
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
	delete(m.byID, id)
	return nil
}

type memLinks struct {
	mu    sync.Mutex
	links map[string]string
}

func (m *memLinks) Link(_ context.Context, customerID, authIdentityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[authIdentityID] = customerID
	return nil
}

func (m *memLinks) Dismiss(_ context.Context, _, authIdentityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.links, authIdentityID)
	return nil
}

func (m *memLinks) CustomerIDByAuthIdentity(_ context.Context, authIdentityID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.links[authIdentityID]; ok {
		return id, nil
	}
	return "", repo.ErrNotFound
}

type testServer struct {
	medusa *fakeMedusa
	router *gin.Engine
	jwt    *helpers.JWTManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	fm, client := newFakeMedusa(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{MedusaRegionID: "reg_de"}
	identities := &memIdentities{byID: map[string]*entity.AuthIdentity{}}
	links := &memLinks{links: map[string]string{}}
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	cookies := helpers.NewCookie("", false, time.Hour)

	engine := workflow.NewEngine(workflow.NewMemoryStore(), logger, nil)
	engine.Register(application.NewRegisterCustomerWorkflow(identities, links, client))

	accounts := application.NewAccountService(identities, links, client, jwt, nil, nil, cfg, logger)
	auth := NewAuthHandler(application.NewRegistrationService(engine, identities, client, nil, cfg, logger), accounts, cookies, logger)
	carts := NewCartHandler(application.NewCartService(client, cfg.MedusaRegionID, logger), cookies, logger)
	checkout := NewCheckoutHandler(application.NewCheckoutService(client, nil, cfg, logger), cookies, logger)
	products := NewCatalogHandler(catalog.NewService(client, nil, nil, "", nil, time.Minute, logger), logger)
	customers := NewCustomerHandler(accounts, logger)
	orders := NewOrderHandler(application.NewOrderService(client), logger)

	r := gin.New()
	r.POST("/api/store/custom/register", auth.Register)
	r.POST("/api/auth/customer/emailpass", auth.Login)
	r.GET("/api/store/customers/me", middleware.Auth(nil, jwt), customers.Me)

	store := r.Group("/api/store", middleware.OptionalAuth(nil, jwt))
	store.GET("/cart", carts.Get)
	store.POST("/cart/line-items", carts.AddItem)
	store.GET("/checkout", checkout.State)
	store.POST("/checkout/complete", checkout.PlaceOrder)
	store.GET("/products/:handle", products.Get)
	store.GET("/orders/:id", orders.Get)

	return &testServer{medusa: fm, router: r, jwt: jwt}
}

func (s *testServer) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(key string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/store/custom/register", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(IdempotencyKeyHeader, key)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

var registerBody = map[string]string{
	"email":      "erika@example.de",
	"password":   "geheim1",
	"first_name": "Erika",
	"last_name":  "Mustermann",
}

func TestRegisterCreatesCustomerAndSession(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/store/custom/register", registerBody)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decode(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "Successfully registered", env.Message)
	assert.Contains(t, string(env.Data), `"email":"erika@example.de"`)
	assert.True(t, s.medusa.seen("POST /admin/customers"))
	require.NotNil(t, cookieNamed(w, helpers.AccessCookie))
	assert.True(t, cookieNamed(w, helpers.AccessCookie).HttpOnly)

	me := s.do(http.MethodGet, "/api/store/customers/me", nil, cookieNamed(w, helpers.AccessCookie))
	require.Equal(t, http.StatusOK, me.Code, me.Body.String())
	assert.Contains(t, me.Body.String(), `"first_name":"Erika"`)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/store/custom/register", registerBody).Code)

	w := s.do(http.MethodPost, "/api/store/custom/register", registerBody)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, MsgUserExists, env.Message)
}

func TestRegisterDuplicateUpstreamCustomer(t *testing.T) {
	s := newTestServer(t)
	s.medusa.customers["cus_legacy"] = &entity.Customer{ID: "cus_legacy", Email: "erika@example.de"}

	w := s.do(http.MethodPost, "/api/store/custom/register", registerBody)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, MsgUserExists, decode(t, w).Message)

	// The identity created in the first step was rolled back, so a login finds nothing.
	login := s.do(http.MethodPost, "/api/auth/customer/emailpass", map[string]string{"email": "erika@example.de", "password": "geheim1"})
	assert.Equal(t, http.StatusUnauthorized, login.Code)
}

func TestRegisterReusedKeyNeedsSameCredentials(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.register("reg-1", registerBody).Code)

	guess := map[string]string{"email": "erika@example.de", "password": "falsch99", "first_name": "X", "last_name": "Y"}
	w := s.register("reg-1", guess)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Nil(t, cookieNamed(w, helpers.AccessCookie))
	assert.Nil(t, cookieNamed(w, helpers.RefreshCookie))

	other := map[string]string{"email": "mallory@example.de", "password": "geheim1", "first_name": "M", "last_name": "Y"}
	w = s.register("reg-1", other)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotContains(t, w.Body.String(), "erika@example.de")
	assert.Nil(t, cookieNamed(w, helpers.AccessCookie))

	w = s.register("reg-1", registerBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"replayed":true`)
	assert.NotNil(t, cookieNamed(w, helpers.AccessCookie))
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"email": "lang@example.de", "password": strings.Repeat("x", 73), "first_name": "L", "last_name": "P"}

	w := s.do(http.MethodPost, "/api/store/custom/register", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Das Passwort ist zu lang")
	assert.False(t, s.medusa.seen("POST /admin/customers"))
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/store/custom/register", map[string]string{"email": "kein-email", "password": "123"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "Registration failed", env.Message)
	assert.Contains(t, string(env.Error), "password")
	assert.False(t, s.medusa.seen("POST /admin/customers"))
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/store/custom/register", registerBody).Code)

	w := s.do(http.MethodPost, "/api/auth/customer/emailpass", map[string]string{"email": "erika@example.de", "password": "falsch1"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, MsgLoginFailed, decode(t, w).Message)
	assert.Nil(t, cookieNamed(w, helpers.AccessCookie))
}

func TestLoginSetsCookies(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/store/custom/register", registerBody).Code)

	w := s.do(http.MethodPost, "/api/auth/customer/emailpass", map[string]string{"email": "Erika@Example.de", "password": "geheim1"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotNil(t, cookieNamed(w, helpers.AccessCookie))
	assert.NotNil(t, cookieNamed(w, helpers.RefreshCookie))
}

func TestMeRequiresLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/store/customers/me", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAddItemCreatesCartAndSetsCookie(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/store/cart/line-items", map[string]any{"variant_id": "variant_312", "quantity": 2})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c := cookieNamed(w, helpers.CartCookie)
	require.NotNil(t, c)
	assert.False(t, c.HttpOnly)
	assert.True(t, strings.HasPrefix(c.Value, "cart_"))
	assert.Contains(t, w.Body.String(), `"item_count":2`)
	assert.Contains(t, w.Body.String(), `"formatted_total":"9,80 €"`)

	got := s.do(http.MethodGet, "/api/store/cart", nil, c)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Contains(t, got.Body.String(), `"variant_id":"variant_312"`)
}

func TestAddItemRejectsBadQuantity(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/store/cart/line-items", map[string]any{"variant_id": "variant_312", "quantity": 0})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, s.medusa.seen("POST /store/carts"))
}

func TestGetCartWithStaleCookieClearsIt(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/store/cart", nil, &http.Cookie{Name: helpers.CartCookie, Value: "cart_gone"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"cart":null`)
	c := cookieNamed(w, helpers.CartCookie)
	require.NotNil(t, c)
	assert.True(t, c.MaxAge < 0)
}

func TestCheckoutEmptyCart(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/store/checkout", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, MsgCartEmpty, decode(t, w).Message)
}

func TestPlaceOrderClearsCartCookie(t *testing.T) {
	s := newTestServer(t)
	add := s.do(http.MethodPost, "/api/store/cart/line-items", map[string]any{"variant_id": "variant_312", "quantity": 1})
	require.Equal(t, http.StatusOK, add.Code)
	cartCookie := cookieNamed(add, helpers.CartCookie)

	w := s.do(http.MethodPost, "/api/store/checkout/complete", map[string]string{"provider_id": "pp_system_default"}, cartCookie)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"order_id":"order_1"`)
	assert.True(t, s.medusa.seen("POST /store/payment-collections"))
	assert.True(t, s.medusa.seen("POST /store/payment-collections/paycol_1/payment-sessions"))
	c := cookieNamed(w, helpers.CartCookie)
	require.NotNil(t, c)
	assert.True(t, c.MaxAge < 0)
}

func TestPlaceOrderNotPlaced(t *testing.T) {
	s := newTestServer(t)
	s.medusa.completeAs = "cart"
	add := s.do(http.MethodPost, "/api/store/cart/line-items", map[string]any{"variant_id": "variant_312", "quantity": 1})
	require.Equal(t, http.StatusOK, add.Code)

	w := s.do(http.MethodPost, "/api/store/checkout/complete", nil, cookieNamed(add, helpers.CartCookie))

	assert.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w)
	assert.Equal(t, MsgOrderNotPlaced, env.Message)
	assert.Contains(t, string(env.Error), "Payment authorization failed")
	assert.Nil(t, cookieNamed(w, helpers.CartCookie))
}

func TestProductNotFound(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/store/products/unbekannt", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Produkt nicht gefunden.", decode(t, w).Message)
}

func TestOrderConfirmation(t *testing.T) {
	s := newTestServer(t)
	add := s.do(http.MethodPost, "/api/store/cart/line-items", map[string]any{"variant_id": "variant_312", "quantity": 3})
	require.Equal(t, http.StatusOK, add.Code)
	placed := s.do(http.MethodPost, "/api/store/checkout/complete", nil, cookieNamed(add, helpers.CartCookie))
	require.Equal(t, http.StatusOK, placed.Code, placed.Body.String())

	w := s.do(http.MethodGet, "/api/store/orders/order_1", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.Contains(t, body, `"display_id":1001`)
	assert.Contains(t, body, `"formatted_total":"14,70 €"`)
	assert.True(t, s.medusa.seen("GET /store/orders/order_1"))
}

func TestOrderUnknown(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/store/orders/order_404", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Bestellung nicht gefunden.", decode(t, w).Message)
}
