package router

import (
	"github.com/fittinglab/storefront/internal/application"
	"github.com/fittinglab/storefront/internal/catalog"
	"github.com/fittinglab/storefront/internal/container"
	pginfra "github.com/fittinglab/storefront/internal/infrastructure/postgres"
	"github.com/fittinglab/storefront/internal/infrastructure/search"
	handlers "github.com/fittinglab/storefront/internal/interface/http"
	"github.com/fittinglab/storefront/internal/router/modules"
)

// publisher returns the RabbitMQ publisher as an interface, or nil when the
// queue is not configured, so services can skip enqueueing.
func publisher() application.Publisher {
	if p := container.GetRabbitPub(); p != nil {
		return p
	}
	return nil
}

// BuildCatalog assembles the catalog service: Medusa products, the YAML content
// overlay and, when Elasticsearch is configured, the search index.
func BuildCatalog() *catalog.Service {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	content, err := catalog.LoadContent(cfg.ProductContentFile)
	if err != nil {
		logger.WithError(err).WithField("file", cfg.ProductContentFile).Warn("product content not loaded")
		content = catalog.Content{}
	}

	var index catalog.Index
	if es := container.GetES(); es != nil {
		index = search.NewProductIndex(es, cfg.ESProductsIndex, logger)
	}
	return catalog.NewService(container.GetMedusa(), content, index, cfg.MedusaRegionID, container.GetRedis(), cfg.CatalogCacheTTL, logger)
}

// RegisterWorkflows registers every workflow the API runs on the container's engine.
func RegisterWorkflows() {
	pool := container.GetPGPool()
	container.GetEngine().Register(application.NewRegisterCustomerWorkflow(
		pginfra.NewAuthIdentityRepository(pool),
		pginfra.NewCustomerLinkRepository(pool),
		container.GetMedusa(),
	))
}

type accountDeps struct {
	Auth      *handlers.AuthHandler
	Customers *handlers.CustomerHandler
}

func buildAccountDeps() accountDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()
	client := container.GetMedusa()

	accounts := application.NewAccountService(
		pginfra.NewAuthIdentityRepository(pool),
		pginfra.NewCustomerLinkRepository(pool),
		client,
		container.GetJWT(),
		container.GetRedis(),
		publisher(),
		cfg,
		logger,
	)
	registration := application.NewRegistrationService(container.GetEngine(), pginfra.NewAuthIdentityRepository(pool), client, publisher(), cfg, logger)

	return accountDeps{
		Auth:      handlers.NewAuthHandler(registration, accounts, container.GetCookies(), logger),
		Customers: handlers.NewCustomerHandler(accounts, logger),
	}
}

type shopDeps struct {
	Catalog  *handlers.CatalogHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Orders   *handlers.OrderHandler
	Admin    *handlers.AdminHandler
}

func buildShopDeps() shopDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	client := container.GetMedusa()
	cookies := container.GetCookies()

	cat := BuildCatalog()
	media := application.NewMediaService(container.GetGCS(), cfg.GCSBucket, logger)

	return shopDeps{
		Catalog:  handlers.NewCatalogHandler(cat, logger),
		Cart:     handlers.NewCartHandler(application.NewCartService(client, cfg.MedusaRegionID, logger), cookies, logger),
		Checkout: handlers.NewCheckoutHandler(application.NewCheckoutService(client, publisher(), cfg, logger), cookies, logger),
		Orders:   handlers.NewOrderHandler(application.NewOrderService(client), logger),
		Admin:    handlers.NewAdminHandler(media, cat, logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry.
// Call it once during startup, after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	jwt := container.GetJWT()

	RegisterWorkflows()

	account := buildAccountDeps()
	shop := buildShopDeps()

	r.Add(modules.NewAccountModule(account.Auth, account.Customers, jwt))
	r.Add(modules.NewShopModule(shop.Catalog, shop.Cart, shop.Checkout, shop.Orders, jwt))
	r.Add(modules.NewAdminModule(shop.Admin, cfg.AdminAPIToken))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
