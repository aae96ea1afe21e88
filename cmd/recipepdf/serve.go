package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipepdf/config"
	"github.com/pageza/recipepdf/internal/api"
	"github.com/pageza/recipepdf/internal/database"
	"github.com/pageza/recipepdf/internal/history"
	"github.com/pageza/recipepdf/internal/middleware"
	"github.com/pageza/recipepdf/internal/models"
	"github.com/pageza/recipepdf/internal/router"
	"github.com/pageza/recipepdf/internal/server"
)

// serveCmd starts the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server.

Run history is stored when database.dsn is set, bearer authentication is
enforced when auth.jwt_secret is set and requests are rate limited per client
when Redis is configured.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline, err := newPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}

	routes := router.Options{
		API: api.Options{
			Pipeline: pipeline,
			Checks:   map[string]api.HealthCheck{},
		},
		Logger: logger,
	}

	if cfg.Database.Enabled() {
		db, err := openHistory(cfg.Database, logger)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close(db) }()
		routes.API.Runs = history.NewStore(db)
		routes.API.Checks["database"] = func(ctx context.Context) error {
			return database.HealthCheck(ctx, db)
		}
	}

	if cfg.Auth.JWTSecret != "" {
		routes.Auth = middleware.NewJWTValidator(cfg.Auth.JWTSecret)
	}

	if cfg.Redis.Enabled() {
		client, err := database.NewRedisClient(cfg.Redis, logger)
		if err != nil {
			logger.Warn("rate limiting disabled", zap.Error(err))
		} else {
			defer func() { _ = client.Close() }()
			routes.RateLimiter = middleware.NewRateLimiter(middleware.NewRedisCounter(client), middleware.RateLimitConfig{
				Window: cfg.Redis.RateWindow,
				Limit:  cfg.Redis.RateLimit,
			}, logger)
			routes.API.Checks["redis"] = func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			}
		}
	}

	return server.NewServer(cfg.Server, routes).Start(ctx)
}

// openHistory connects to the run history database and brings its schema up to date
func openHistory(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}
	applied, err := database.RunMigrations(db, &models.Run{})
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}
	if len(applied) > 0 {
		logger.Info("applied migrations", zap.Strings("migrations", applied))
	}
	return db, nil
}
