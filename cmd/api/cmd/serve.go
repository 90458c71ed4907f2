package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/disuhitarth/EcommerceConcept/internal/api/http"
	"github.com/disuhitarth/EcommerceConcept/internal/api/http/handlers"
	"github.com/disuhitarth/EcommerceConcept/internal/auth"
	"github.com/disuhitarth/EcommerceConcept/internal/catalog"
	"github.com/disuhitarth/EcommerceConcept/internal/config"
	"github.com/disuhitarth/EcommerceConcept/internal/events"
	"github.com/disuhitarth/EcommerceConcept/internal/genai"
	"github.com/disuhitarth/EcommerceConcept/internal/observability"
	"github.com/disuhitarth/EcommerceConcept/internal/persistence"
	"github.com/disuhitarth/EcommerceConcept/internal/platform"
	"github.com/disuhitarth/EcommerceConcept/internal/repository"
	"github.com/disuhitarth/EcommerceConcept/internal/service"
	"github.com/disuhitarth/EcommerceConcept/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, err := observability.NewLogger(cfg.Logger)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Sync() //nolint:errcheck

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		srv, err := newServer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer srv.Close()

		listenErr := make(chan error, 1)
		go func() {
			logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("version", Version))
			listenErr <- srv.app.Listen(cfg.App.Addr())
		}()

		select {
		case err := <-listenErr:
			return fmt.Errorf("fiber listen: %w", err)
		case <-waitForShutdown(logger):
		}

		if err := srv.app.ShutdownWithTimeout(cfg.App.RequestTimeout()); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// server owns the application and every backend opened for it.
type server struct {
	app     *fiber.App
	auth    *service.AuthService
	cache   *catalog.Cache
	worker  *worker.NotificationWorker
	closers []func()
}

// Close stops the notification worker and releases backends in reverse order.
func (s *server) Close() {
	if s.worker != nil {
		s.worker.Stop()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func newServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *server, err error) {
	srv := &server{}
	defer func() {
		if err != nil {
			srv.Close()
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)
	dependencies := map[string]handlers.Pinger{}

	var pg *persistence.Postgres
	if cfg.App.StoreBackend == config.BackendPostgres || cfg.App.SessionBackend == config.BackendPostgres {
		pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		srv.closers = append(srv.closers, pg.Close)
		dependencies["postgres"] = pg

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
	}

	var rdb *persistence.Redis
	if cfg.App.SessionBackend == config.BackendRedis || cfg.Catalog.DurableBackend == config.BackendRedis {
		rdb = persistence.NewRedis(ctx, cfg.Redis, logger)
		srv.closers = append(srv.closers, rdb.Close)
		dependencies["redis"] = rdb
	}

	var accounts repository.AccountRepository = repository.NewMemoryAccountRepository()
	if cfg.App.StoreBackend == config.BackendPostgres {
		accounts = repository.NewAccountRepository(pg.PoolHandle())
	}

	var sessions repository.SessionRepository
	switch cfg.App.SessionBackend {
	case config.BackendPostgres:
		sessions = repository.NewSessionRepository(pg.PoolHandle())
	case config.BackendRedis:
		sessions = repository.NewRedisSessionRepository(rdb.Client, cfg.Auth.SessionGrace())
	default:
		sessions = repository.NewMemorySessionRepository()
	}

	var durable catalog.DurableStore
	switch cfg.Catalog.DurableBackend {
	case config.BackendRedis:
		durable = catalog.NewRedisStore(rdb.Client)
	case config.BackendSQLite:
		db, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		srv.closers = append(srv.closers, db.Close)
		dependencies["sqlite"] = db
		durable = catalog.NewSQLiteStore(db.DB)
	default:
		durable = catalog.NewMemoryStore()
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	srv.worker = worker.StartNotificationWorker(ctx, dispatcher, notifications, logger)

	srv.auth = service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Accounts:   accounts,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	if cfg.Auth.SeedEmail != "" && cfg.Auth.SeedPassword != "" {
		if err := srv.auth.SeedAccount(ctx, service.SignupInput{
			Email:     cfg.Auth.SeedEmail,
			Password:  cfg.Auth.SeedPassword,
			FirstName: cfg.Auth.SeedFirstName,
			LastName:  cfg.Auth.SeedLastName,
		}); err != nil {
			return nil, fmt.Errorf("seed account: %w", err)
		}
		logger.Info("seed account ready", zap.String("email", cfg.Auth.SeedEmail))
	}

	platformClient := platform.NewClient(cfg.Platform, platform.WithLogger(logger), platform.WithMetrics(metrics))
	if !platformClient.StorefrontConfigured() {
		logger.Warn("commerce platform not configured; catalog serves built-in products")
	}
	srv.cache = catalog.NewCache(platformClient, catalog.Options{
		TTL:          cfg.Catalog.TTL(),
		FetchTimeout: cfg.Catalog.FetchTimeout(),
		PageSize:     cfg.Catalog.DefaultPageSize,
		Durable:      durable,
		Logger:       logger,
		Metrics:      metrics,
		Dispatcher:   dispatcher,
	})

	genaiClient := genai.NewClient(cfg.GenAI, genai.WithLogger(logger), genai.WithMetrics(metrics))
	if !genaiClient.Configured() {
		logger.Warn("generative API key not set; /ai endpoints return 503")
	}

	srv.app = httptransport.NewApp(cfg.App, logger)
	httptransport.RegisterMiddlewares(srv.app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(srv.app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, Version, dependencies),
		Auth:           handlers.NewAuthHandler(srv.auth, logger),
		Catalog:        handlers.NewCatalogHandler(srv.cache),
		Products:       handlers.NewProductsHandler(platformClient, srv.cache, dispatcher, logger),
		GenAI:          handlers.NewGenAIHandler(genaiClient, logger),
		Metrics:        metrics,
		AuthMiddleware: auth.NewAuthMiddleware(srv.auth),
		AdminEmails:    cfg.Auth.AdminEmails,
	})
	return srv, nil
}

func waitForShutdown(logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		signal.Stop(sigCh)
		logger.Info("shutting down", zap.String("signal", sig.String()))
		close(done)
	}()
	return done
}
