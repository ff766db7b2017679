package middleware

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/deppfellow/formapplication/internal/errs"
	"github.com/deppfellow/formapplication/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware limits requests per client IP.
//
// With Redis configured the counters live in Redis, so every replica
// shares them; otherwise each process keeps token buckets in memory.
type RateLimitMiddleware struct {
	server *server.Server
	store  middleware.RateLimiterStore
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	cfg := s.Config.RateLimit

	var store middleware.RateLimiterStore
	if s.Redis != nil {
		store = NewRedisRateLimiterStore(s.Redis, s.Logger, cfg.RequestsPerSecond, cfg.Burst)
	} else {
		store = middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.RequestsPerSecond),
			Burst:     cfg.Burst,
			ExpiresIn: 3 * time.Minute,
		})
	}

	return &RateLimitMiddleware{
		server: s,
		store:  store,
	}
}

// Limiter enforces the limit on API routes. It is a pass-through when rate
// limiting is disabled. Rejected requests get a 429 and are recorded as a
// New Relic custom event.
func (r *RateLimitMiddleware) Limiter() echo.MiddlewareFunc {
	if !r.server.Config.RateLimit.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Request().URL.Path, "/api")
		},
		Store: r.store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			return errs.NewTooManyRequestsError("Too many requests")
		},
	})
}

// RecordRateLimitHit records a RateLimitHit custom event for endpoint.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if app := r.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}

// RedisRateLimiterStore is a fixed one-second window counter per client.
// A client may make max(burst, ceil(rps)) requests per window. Redis
// failures let the request through.
type RedisRateLimiterStore struct {
	client *redis.Client
	logger *zerolog.Logger
	limit  int64
	now    func() time.Time
}

func NewRedisRateLimiterStore(client *redis.Client, logger *zerolog.Logger, rps float64, burst int) *RedisRateLimiterStore {
	limit := int64(math.Ceil(rps))
	if int64(burst) > limit {
		limit = int64(burst)
	}
	return &RedisRateLimiterStore{
		client: client,
		logger: logger,
		limit:  limit,
		now:    time.Now,
	}
}

// Allow implements middleware.RateLimiterStore.
func (s *RedisRateLimiterStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	key := fmt.Sprintf("ratelimit:%s:%d", identifier, s.now().Unix())

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 2*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("rate limiter store unavailable, allowing request")
		return true, nil
	}

	return incr.Val() <= s.limit, nil
}
