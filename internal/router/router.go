package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pageza/recipepdf/internal/api"
	"github.com/pageza/recipepdf/internal/middleware"
)

// Options configures the application routes
type Options struct {
	API         api.Options
	CORSOrigins []string
	// Auth is nil when bearer authentication is disabled
	Auth middleware.TokenValidator
	// RateLimiter is nil when rate limiting is disabled
	RateLimiter *middleware.RateLimiter
	Logger      *zap.Logger
}

// SetupRouter configures the application routes
func SetupRouter(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(opts.CORSOrigins))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth must run before rate limiting
	apiOpts := opts.API
	apiOpts.Logger = logger
	if opts.Auth != nil {
		apiOpts.Protect = append(apiOpts.Protect, middleware.AuthMiddleware(opts.Auth))
	}
	if opts.RateLimiter != nil {
		apiOpts.Protect = append(apiOpts.Protect, opts.RateLimiter.RateLimitMiddleware())
	}
	api.RegisterRoutes(router, apiOpts)

	return router
}
