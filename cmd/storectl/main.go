package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fittinglab/storefront/config"
	"github.com/fittinglab/storefront/internal/application"
	"github.com/fittinglab/storefront/internal/container"
	"github.com/fittinglab/storefront/internal/infrastructure/medusa"
	pginfra "github.com/fittinglab/storefront/internal/infrastructure/postgres"
	"github.com/fittinglab/storefront/internal/metrics"
	"github.com/fittinglab/storefront/internal/router"
	"github.com/fittinglab/storefront/internal/workflow"
	"github.com/fittinglab/storefront/pkg/helpers"
)

// bootstrap fills the container the same way the API server does, minus HTTP.
func bootstrap(ctx context.Context, cfg *config.Config) (func(), error) {
	logger := helpers.NewLogger(cfg.AppName+"-storectl", cfg.Env)
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	cleanup := []func(){pool.Close}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	if cfg.RedisEnabled() {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cleanup = append(cleanup, func() { _ = rdb.Close() })
		container.SetRedis(rdb)
	}
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			return nil, fmt.Errorf("elasticsearch: %w", err)
		}
		container.SetES(es)
	}
	container.SetMedusa(medusa.New(medusa.Options{
		BaseURL:        cfg.MedusaBackendURL,
		PublishableKey: cfg.MedusaPublishableKey,
		SecretAPIKey:   cfg.MedusaSecretAPIKey,
		MaxRetries:     cfg.MedusaMaxRetries,
		RPS:            cfg.MedusaRPS,
		Timeout:        cfg.MedusaTimeout,
		Logger:         logger,
	}))
	container.SetEngine(workflow.NewEngine(pginfra.NewWorkflowStore(pool), logger, metrics.WorkflowObserver{}))
	router.RegisterWorkflows()

	return func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}, nil
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	var closeFn func()

	root := &cobra.Command{
		Use:          "storectl",
		Short:        "Operator commands for the storefront API",
		SilenceUsage: true,
	}

	needsApp := func(cmd *cobra.Command, _ []string) error {
		fn, err := bootstrap(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		closeFn = fn
		return nil
	}
	release := func(*cobra.Command, []string) {
		if closeFn != nil {
			closeFn()
		}
	}

	migrateCmd := &cobra.Command{Use: "migrate", Short: "Database migrations"}
	migrateCmd.PersistentFlags().StringVar(&cfg.MigrationsDir, "dir", cfg.MigrationsDir, "migrations directory (env MIGRATIONS_DIR)")
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				logger := helpers.NewLogger(cfg.AppName+"-storectl", cfg.Env)
				return pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				v, dirty, err := pginfra.MigrationVersion(cfg.PostgresDSN(), cfg.MigrationsDir)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
				return nil
			},
		},
	)
	var downSteps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Revert migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if downSteps <= 0 {
				return fmt.Errorf("--steps must be positive")
			}
			logger := helpers.NewLogger(cfg.AppName+"-storectl", cfg.Env)
			return pginfra.RollbackMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, downSteps, logger)
		},
	}
	downCmd.Flags().IntVar(&downSteps, "steps", 1, "number of migrations to revert")
	migrateCmd.AddCommand(downCmd)

	var staleAfter time.Duration
	sweepCmd := &cobra.Command{
		Use:               "sweep",
		Short:             "Roll back workflow executions abandoned mid-run (one pass)",
		PersistentPreRunE: needsApp,
		PersistentPostRun: release,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sw := workflow.NewSweeper(container.GetEngine(), staleAfter, container.GetLogger())
			n, err := sw.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "compensated %d execution(s)\n", n)
			return nil
		},
	}
	sweepCmd.Flags().DurationVar(&staleAfter, "stale-after", cfg.WorkflowStaleAfter, "idle time after which an execution counts as abandoned")

	reindexCmd := &cobra.Command{
		Use:               "reindex",
		Short:             "Push every Medusa product into the search index",
		PersistentPreRunE: needsApp,
		PersistentPostRun: release,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := router.BuildCatalog().Reindex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d product(s)\n", n)
			return nil
		},
	}

	var seed application.RegisterInput
	seedCmd := &cobra.Command{
		Use:               "seed-customer",
		Short:             "Register a demo customer through the registration workflow",
		PersistentPreRunE: needsApp,
		PersistentPostRun: release,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := application.NewRegistrationService(container.GetEngine(), pginfra.NewAuthIdentityRepository(container.GetPGPool()), container.GetMedusa(), nil, cfg, container.GetLogger())
			res, err := svc.Register(cmd.Context(), "seed:"+seed.Email, seed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "customer=%s auth_identity=%s replayed=%t\n", res.Customer.ID, res.AuthIdentityID, res.Replayed)
			return nil
		},
	}
	seedCmd.Flags().StringVar(&seed.Email, "email", "demo@fittinglab.de", "customer email")
	seedCmd.Flags().StringVar(&seed.Password, "password", "demo1234", "login password")
	seedCmd.Flags().StringVar(&seed.FirstName, "first-name", "Demo", "first name")
	seedCmd.Flags().StringVar(&seed.LastName, "last-name", "Kunde", "last name")

	root.AddCommand(migrateCmd, sweepCmd, reindexCmd, seedCmd)
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
