package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/lucasmrt/dondirect/internal/app/controllers"
	appMigrations "github.com/lucasmrt/dondirect/internal/app/migrations"
	appRepos "github.com/lucasmrt/dondirect/internal/app/repositories"
	appRoutes "github.com/lucasmrt/dondirect/internal/app/routes"
	appServices "github.com/lucasmrt/dondirect/internal/app/services"
	"github.com/lucasmrt/dondirect/internal/config"
	"github.com/lucasmrt/dondirect/internal/db"
	appMiddleware "github.com/lucasmrt/dondirect/internal/middleware"
	pkgAuth "github.com/lucasmrt/dondirect/internal/pkg/auth"
	"github.com/lucasmrt/dondirect/internal/pkg/helpers"
	"github.com/lucasmrt/dondirect/internal/pkg/logger"
	"github.com/lucasmrt/dondirect/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService           appServices.AuthService
	AssociationService    appServices.AssociationService
	DonationService       appServices.DonationService
	StatsService          appServices.StatsService
	AuthController        *appControllers.AuthController
	AssociationController *appControllers.AssociationController
	DonationController    *appControllers.DonationController
	IdentityMiddleware    *appMiddleware.IdentityMiddleware
	Repos                 *appRepos.Repositories
	JWTService            *pkgAuth.JWTService
	Logger                zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the association directory.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Pool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), database.Pool, lgr); err != nil {
		// A failed seed should not keep the service down.
		lgr.Error().Err(err).Msg("Failed to seed default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.Identity.ProviderSecret,
		TokenIssuer: cfg.Identity.ProviderIssuer,
		TokenExp:    helpers.ParseDuration(cfg.Identity.TokenTTL, 1*time.Hour),
	})

	sessionTTL := helpers.ParseDuration(cfg.Session.TTL, 168*time.Hour)

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.SessionRepository,
		sessionTTL,
	)
	deps.AssociationService = appServices.NewAssociationService(deps.Repos.AssociationRepository)
	deps.DonationService = appServices.NewDonationService(deps.Repos.DonationRepository, deps.Repos.AssociationRepository)
	deps.StatsService = appServices.NewStatsService(deps.Repos.DonationRepository, deps.Repos.AssociationRepository)

	deps.IdentityMiddleware = appMiddleware.NewIdentityMiddleware(
		deps.Repos.SessionRepository,
		deps.Repos.UserRepository,
		deps.JWTService,
		cfg.Session.CookieName,
	)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, deps.JWTService, appControllers.SessionCookieConfig{
		Name:   cfg.Session.CookieName,
		TTL:    sessionTTL,
		Secure: cfg.Session.CookieSecure,
	})
	deps.AssociationController = appControllers.NewAssociationController(deps.AssociationService, deps.StatsService)
	deps.DonationController = appControllers.NewDonationController(deps.DonationService)

	return deps, nil
}

// RunSessionJanitor periodically drops expired sessions until ctx is
// cancelled.
func RunSessionJanitor(ctx context.Context, sessions appRepos.ISessionRepository, lgr zerolog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sessions.DeleteExpired(ctx)
			if err != nil {
				lgr.Warn().Err(err).Msg("Expired session cleanup failed")
				continue
			}
			if removed > 0 {
				lgr.Debug().Int64("removed", removed).Msg("Expired sessions cleaned up")
			}
		}
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.AssociationController,
		deps.DonationController,
		deps.IdentityMiddleware,
	)

	return router
}
