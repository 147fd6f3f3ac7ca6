package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fittinglab/storefront/config"
	"github.com/fittinglab/storefront/internal/infrastructure/medusa"
	"github.com/fittinglab/storefront/internal/workflow"
	"github.com/fittinglab/storefront/pkg/helpers"
)

// app-level container to share constructed components across packages.
// The router builds its modules from these singletons. Optional backends
// (Redis, GCS, RabbitMQ, Elasticsearch) stay nil when not configured.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client

	jwtManager *helpers.JWTManager
	cookies    *helpers.Manager

	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client

	medusaClient *medusa.Client
	engine       *workflow.Engine
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetGCS(s *storage.Client)     { gcsClient = s }
func GetGCS() *storage.Client      { return gcsClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

// GetCookies builds the cookie manager from config on first use.
func GetCookies() *helpers.Manager {
	if cookies == nil && cfg != nil {
		cookies = helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure, cfg.CartTTL)
	}
	return cookies
}

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }
func SetMedusa(c *medusa.Client)              { medusaClient = c }
func GetMedusa() *medusa.Client               { return medusaClient }
func SetEngine(e *workflow.Engine)            { engine = e }
func GetEngine() *workflow.Engine             { return engine }
