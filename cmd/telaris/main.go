package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/telaris-erp/telaris/internal/app"
	"github.com/telaris-erp/telaris/internal/auth"
	"github.com/telaris-erp/telaris/internal/catalog/categories"
	"github.com/telaris-erp/telaris/internal/catalog/products"
	"github.com/telaris-erp/telaris/internal/clients"
	"github.com/telaris-erp/telaris/internal/confections"
	"github.com/telaris-erp/telaris/internal/dispatch"
	"github.com/telaris-erp/telaris/internal/identity"
	"github.com/telaris-erp/telaris/internal/observability"
	"github.com/telaris-erp/telaris/internal/orders"
	"github.com/telaris-erp/telaris/internal/platform/cache"
	"github.com/telaris-erp/telaris/internal/platform/db"
	"github.com/telaris-erp/telaris/internal/reports"
	"github.com/telaris-erp/telaris/internal/shared"
	"github.com/telaris-erp/telaris/internal/store"
	"github.com/telaris-erp/telaris/internal/users"
	"github.com/telaris-erp/telaris/internal/workshops"
	"github.com/telaris-erp/telaris/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "telaris_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	var (
		verifier      identity.Verifier
		authenticator identity.Authenticator
	)
	switch cfg.AuthMode {
	case app.AuthModeProvider:
		provider := identity.NewProviderClient(cfg.IdentityURL, cfg.IdentityAPIKey, http.DefaultClient)
		verifier, authenticator = provider, provider
	default:
		local := identity.NewLocalProvider(pool, redisClient, cfg.TokenTTL)
		verifier, authenticator = local, local
	}

	profiles := auth.NewProfileStore(pool)
	resolver := auth.NewResolver(verifier, profiles, logger)
	notifier := auth.NewStateNotifier()
	authService := auth.NewService(authenticator, resolver, notifier)
	gate := auth.NewGate(resolver, logger)
	authHandler := auth.NewHandler(logger, authService, gate, sessionManager)

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	usersService := users.NewService(users.NewRepository(pool), auditLogger)
	usersHandler := users.NewHandler(logger, usersService, gate)

	clientsService := clients.NewService(clients.NewRepository(pool), auditLogger)
	clientsHandler := clients.NewHandler(logger, clientsService, gate)

	categoriesService := categories.NewService(categories.NewRepository(pool), auditLogger)
	categoriesHandler := categories.NewHandler(logger, categoriesService, gate)

	productsService := products.NewService(products.NewRepository(pool), auditLogger)
	productsHandler := products.NewHandler(logger, productsService, gate)

	workshopsService := workshops.NewService(workshops.NewRepository(pool), auditLogger)
	workshopsHandler := workshops.NewHandler(logger, workshopsService, gate)

	ordersService := orders.NewService(orders.NewRepository(pool), productsService, auditLogger)
	ordersHandler := orders.NewHandler(logger, ordersService, gate)

	confectionsService := confections.NewService(confections.NewRepository(pool), ordersService, workshopsService, auditLogger)
	confectionsHandler := confections.NewHandler(logger, confectionsService, gate)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	dispatchService := dispatch.NewService(dispatch.NewRepository(pool), ordersService, jobsClient, auditLogger, logger)
	dispatchHandler := dispatch.NewHandler(logger, dispatchService, gate)

	cart := store.NewCart(redisClient, cfg.CartTTL)
	storeService := store.NewService(productsService, categoriesService, clientsService, ordersService, cart, idempotencyStore)
	storeHandler := store.NewHandler(logger, storeService, dispatchService)

	reportsService := reports.NewService(reports.NewRepository(pool), jobsClient)
	reportsHandler := reports.NewHandler(logger, reportsService, gate)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		ClientsHandler:     clientsHandler,
		CategoriesHandler:  categoriesHandler,
		ProductsHandler:    productsHandler,
		WorkshopsHandler:   workshopsHandler,
		OrdersHandler:      ordersHandler,
		ConfectionsHandler: confectionsHandler,
		DispatchHandler:    dispatchHandler,
		ReportsHandler:     reportsHandler,
		StoreHandler:       storeHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
