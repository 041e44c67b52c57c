package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"furiousrepair/internal/infrastructure/ratelimit"
	"furiousrepair/pkg/errors"
	"furiousrepair/pkg/logger"
)

// RateLimit throttles action per client IP.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if allowed, wait := limiter.Allow(ip, action); !allowed {
				logger.Warn("RATE LIMIT: %s blocked for %s (retry in %v)", ip, action, wait)
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				return errors.TooManyRequests("Too many requests. Please try again later")
			}
			return next(c)
		}
	}
}
