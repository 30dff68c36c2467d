package middleware

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"bloommarket/internal/infrastructure/ratelimit"
	"bloommarket/pkg/errors"
	"bloommarket/pkg/logger"
	"bloommarket/pkg/response"
)

// RateLimit limits requests per client IP.
func RateLimit(limiter *ratelimit.RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			allowed, retryAfter := limiter.Allow(ip)
			if !allowed {
				logger.Warn("RATE LIMIT: blocked request from IP %s (retry in %v)", ip, retryAfter)
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				return response.Error(c, errors.TooManyRequests("Rate limit exceeded"))
			}

			return next(c)
		}
	}
}

// StartCleanup prunes idle visitors every interval until ctx is done.
func StartCleanup(ctx context.Context, limiter *ratelimit.RateLimiter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := limiter.Cleanup(); removed > 0 {
				logger.Debug("rate limiter dropped %d idle visitors", removed)
			}
		}
	}
}
