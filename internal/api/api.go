// Package api exposes the extraction pipeline and run history over HTTP.
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipepdf/internal/models"
	"github.com/pageza/recipepdf/internal/service"
	"github.com/pageza/recipepdf/internal/types"
)

// IPipeline runs extractions and classifications
type IPipeline interface {
	Run(ctx context.Context, url string) (*service.Report, error)
	Analyze(ctx context.Context, url string) (*types.ValidationResult, error)
}

// IRunStore persists run summaries
type IRunStore interface {
	Record(ctx context.Context, run *models.Run) error
	Get(ctx context.Context, id uuid.UUID) (*models.Run, error)
	List(ctx context.Context, limit int) ([]*models.Run, error)
}

// Options configures the API routes
type Options struct {
	Pipeline IPipeline
	// Runs is nil when run history is disabled
	Runs           IRunStore
	RequestTimeout time.Duration
	// Protect guards the /api/v1 group, e.g. auth and rate limiting
	Protect []gin.HandlerFunc
	Checks  map[string]HealthCheck
	Logger  *zap.Logger
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, opts Options) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	health := NewHealthHandler(opts.Checks)
	router.GET("/health", health.Check)

	v1 := router.Group("/api/v1")
	v1.Use(opts.Protect...)

	NewPipelineHandler(opts.Pipeline, opts.Runs, opts.RequestTimeout, logger).RegisterRoutes(v1)
	if opts.Runs != nil {
		NewRunHandler(opts.Runs).RegisterRoutes(v1)
	}
}
