package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/asset-hq/nwt_backend/internal/adapters/fx/yahoo"
	storejsonfile "github.com/asset-hq/nwt_backend/internal/adapters/storage/jsonfile"
	storepgsql "github.com/asset-hq/nwt_backend/internal/adapters/storage/pgsql"
	portsrepo "github.com/asset-hq/nwt_backend/internal/core/ports/repositories"
	portssvc "github.com/asset-hq/nwt_backend/internal/core/ports/services"
	"github.com/asset-hq/nwt_backend/internal/core/services"
	"github.com/asset-hq/nwt_backend/internal/handlers"
	"github.com/asset-hq/nwt_backend/internal/middleware"
	"github.com/asset-hq/nwt_backend/pkg/config"
	"github.com/asset-hq/nwt_backend/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos, cleanup, err := buildRepositories(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	fxProvider := yahoo.NewQuoteProvider(cfg.FXRequestTimeout)
	container := services.NewServiceContainer(cfg, repos, fxProvider)

	// Periodic best-effort quote refresh; the engine degrades to the
	// manual rate whenever this has not produced a fresh quote.
	go refreshFXLoop(container.FX, cfg.FXRefreshInterval, logger)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit format", slog.String("rate_limit", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memorystore.NewStore(), rate)))

	handlers.RegisterRoutes(r, cfg, container)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildRepositories picks the ledger store: Postgres when PGSQL_URL is set
// (migrations applied first), the JSON file otherwise.
func buildRepositories(cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("Using JSON file ledger store", slog.String("path", cfg.DataFile))
		return portsrepo.RepositoryProvider{
			LedgerRepo: storejsonfile.NewLedgerRepository(cfg.DataFile),
		}, func() {}, nil
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return portsrepo.RepositoryProvider{
		LedgerRepo: storepgsql.NewPgxLedgerRepository(dbPool),
	}, dbPool.Close, nil
}

// runMigrations applies all pending "up" migrations through a temporary
// database/sql connection using the pgx stdlib driver.
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

// refreshFXLoop refreshes the cached quote immediately and then on the
// configured interval. Failures are logged and the loop keeps going.
func refreshFXLoop(fx portssvc.FXSvcFacade, interval time.Duration, logger *slog.Logger) {
	refresh := func() {
		if err := fx.Refresh(context.Background()); err != nil {
			logger.Warn("FX quote refresh failed", slog.String("error", err.Error()))
		}
	}

	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		refresh()
	}
}
