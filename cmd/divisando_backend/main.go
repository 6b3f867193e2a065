package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/divisando/divisando-backend/internal/adapters/database/pgsql"
	mailgunclient "github.com/divisando/divisando-backend/internal/adapters/mailgun"
	"github.com/divisando/divisando-backend/internal/adapters/ratesapi"
	portsrepo "github.com/divisando/divisando-backend/internal/core/ports/repositories"
	"github.com/divisando/divisando-backend/internal/core/services"
	"github.com/divisando/divisando-backend/internal/handlers"
	"github.com/divisando/divisando-backend/internal/middleware"
	"github.com/divisando/divisando-backend/internal/platform/config"
	"github.com/divisando/divisando-backend/internal/ratefeed"
	"github.com/divisando/divisando-backend/internal/utils"
	"github.com/divisando/divisando-backend/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ulule/limiter/v3"
)

// @title Divisando Backend API
// @version 1.0
// @description Exchange-rate aggregation backend with local and federated authentication.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Database connection through the managed pool (retry + circuit breaker).
	dbManager := database.NewManager(database.ManagerOptions{
		Retry: database.RetryPolicy{
			MaxAttempts:  cfg.DBConnectAttempts,
			InitialDelay: cfg.DBConnectInitialDelay,
		},
		Breaker:         database.NewCircuitBreaker(cfg.DBBreakerThreshold, cfg.DBBreakerCoolDown),
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
	}, logger)
	if err := dbManager.Connect(context.Background(), cfg.DatabaseURL); err != nil {
		logger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbManager.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool := dbManager.Pool()

	// Repositories.
	repos := portsrepo.RepositoryProvider{
		UserRepo:             pgsql.NewUserRepository(dbPool),
		ExchangeRateRepo:     pgsql.NewExchangeRateRepository(dbPool),
		CurrencyCatalogRepo:  pgsql.NewCurrencyCatalogRepository(dbPool),
		VerificationCodeRepo: pgsql.NewVerificationCodeRepository(dbPool),
	}

	// External adapters.
	mailSender := mailgunclient.NewClient(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailFromName)
	quoteProvider := ratesapi.NewClient(cfg.ExchangeRateAPIURL, cfg.ExchangeRateAPIKey)
	analytics := utils.NewAnalyticsClient(cfg.PosthogAPIKey, logger)
	defer analytics.Close()

	// Background ingestion.
	fetcher := ratefeed.NewFetcher(quoteProvider, repos.ExchangeRateRepo, cfg.RecentWindow)
	scheduler := ratefeed.NewScheduler(fetcher, repos.ExchangeRateRepo, repos.CurrencyCatalogRepo,
		cfg.ExchangeRateCurrencies, cfg.IngestInterval, logger)
	janitor := ratefeed.NewJanitor(ratefeed.JanitorConfig{
		Interval:             cfg.JanitorInterval,
		RateRetention:        cfg.RateRetention,
		UnverifiedUserMaxAge: cfg.UnverifiedUserMaxAge,
		UnverifiedUserBatch:  cfg.UnverifiedUserDeleteBatch,
	}, repos.ExchangeRateRepo, repos.VerificationCodeRepo, repos.UserRepo, logger)

	serviceContainer := services.NewServiceContainer(cfg, repos, mailSender, scheduler)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-api-key"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Per-IP rate limiting backed by the bounded store.
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimitFormat)
	if err != nil {
		logger.Error("Invalid rate limit format", slog.String("error", err.Error()))
		os.Exit(1)
	}
	limiterStore := middleware.NewBoundedStore(cfg.RateLimitMaxKeys, time.Minute)
	defer limiterStore.Close()
	ipLimiter := limiter.New(limiterStore, rate)

	handlers.RegisterRoutes(r, cfg, serviceContainer, dbManager, ipLimiter, analytics)

	scheduler.Start()
	defer scheduler.Stop()
	janitor.Start()
	defer janitor.Stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}
	logger.Info("Server exited.")
}

// runMigrations applies all pending up migrations using a temporary
// database/sql connection over the pgx stdlib driver.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
