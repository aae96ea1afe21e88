package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/recipepdf/internal/types"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Counter increments a windowed counter and returns its new value
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RedisCounter is a Counter backed by Redis INCR and EXPIRE
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter creates a RedisCounter
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Incr increments key and refreshes its expiry in one round trip
func (r *RedisCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := r.client.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incrCmd.Val(), nil
}

// RateLimiter enforces a fixed-window request limit per client
type RateLimiter struct {
	counter Counter
	config  RateLimitConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(counter Counter, config RateLimitConfig, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rate_limit:pipeline"
	}
	return &RateLimiter{
		counter: counter,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// RateLimitMiddleware returns a gin middleware that enforces the limit.
// Requests are keyed by the authenticated client id, or the client IP when
// authentication is off. Counter failures let the request through.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if id := c.GetString(ClientIDKey); id != "" {
			key = id
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), key)
		if err != nil {
			rl.logger.Warn("rate limit check failed", zap.String("client", key), zap.Error(err))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(resetTime.Sub(rl.now()).Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, types.ErrorResponse{
				Error: fmt.Sprintf("rate limit of %d requests per %v exceeded", rl.config.Limit, rl.config.Window),
			})
			return
		}

		c.Next()
	}
}

// IsAllowed counts a request from client.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, client string) (bool, int, time.Time, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	key := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, client, windowStart.Unix())

	count, err := rl.counter.Incr(ctx, key, rl.config.Window)
	if err != nil {
		return false, 0, time.Time{}, err
	}

	remaining := rl.config.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return int(count) <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}
