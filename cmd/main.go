package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/fittinglab/storefront/config"
	"github.com/fittinglab/storefront/internal/container"
	"github.com/fittinglab/storefront/internal/infrastructure/medusa"
	pginfra "github.com/fittinglab/storefront/internal/infrastructure/postgres"
	"github.com/fittinglab/storefront/internal/interface/middleware"
	"github.com/fittinglab/storefront/internal/metrics"
	"github.com/fittinglab/storefront/internal/router"
	"github.com/fittinglab/storefront/internal/workflow"
	"github.com/fittinglab/storefront/pkg/helpers"
	"github.com/fittinglab/storefront/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Postgres holds auth identities, customer links and workflow executions.
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	// Redis is optional: without it sessions are stateless JWTs and rate limits are off.
	if cfg.RedisEnabled() {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer func() { _ = rdb.Close() }()
		container.SetRedis(rdb)
	} else {
		logger.Warn("REDIS_ADDR not set; sessions, rate limits and the shared catalog cache are disabled")
	}

	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("GCS client not available; uploads disabled")
		} else {
			defer func() { _ = gcsClient.Close() }()
			container.SetGCS(gcsClient)
		}
	}

	if cfg.MailSendEnabled && cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("RabbitMQ not available; transactional emails disabled")
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
		}
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("Elasticsearch not available; search falls back to Medusa")
		} else {
			container.SetES(es)
		}
	}

	client := medusa.New(medusa.Options{
		BaseURL:        cfg.MedusaBackendURL,
		PublishableKey: cfg.MedusaPublishableKey,
		SecretAPIKey:   cfg.MedusaSecretAPIKey,
		MaxRetries:     cfg.MedusaMaxRetries,
		RPS:            cfg.MedusaRPS,
		Timeout:        cfg.MedusaTimeout,
		Logger:         logger,
	})

	engine := workflow.NewEngine(pginfra.NewWorkflowStore(pool), logger, metrics.WorkflowObserver{})

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL))
	container.SetMedusa(client)
	container.SetEngine(engine)

	// Gin engine and global middleware
	r := gin.New()
	if err := middleware.TrustProxies(r, cfg.TrustedProxyList()); err != nil {
		log.Fatalf("invalid TRUSTED_PROXIES: %v", err)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RealIP())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(metrics.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	// Roll back registrations abandoned between steps.
	sweeper := workflow.NewSweeper(engine, cfg.WorkflowStaleAfter, logger)
	sweepCron, err := sweeper.Schedule(cfg.WorkflowSweepSchedule)
	if err != nil {
		log.Fatalf("invalid WORKFLOW_SWEEP_SCHEDULE: %v", err)
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")
	<-sweepCron.Stop().Done()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}
