package middleware

import (
	"log/slog"
	"math"
	"strconv"

	domainerrors "pacta/internal/domain/errors"
	"pacta/internal/security/ratelimit"

	"github.com/labstack/echo/v4"
)

// RateLimitMiddleware caps requests per client on the routes it wraps.
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// NewRateLimitMiddleware is the constructor for RateLimitMiddleware.
func NewRateLimitMiddleware(limiter *ratelimit.Limiter, logger *slog.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, logger: logger}
}

// Limit short-circuits with 429 and a Retry-After header once the client
// exhausts its window budget. The client is keyed by source IP; the endpoint
// key keeps budgets independent across routes.
func (m *RateLimitMiddleware) Limit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		endpoint := c.Request().Method + " " + c.Path()

		ok, retryAfter, err := m.limiter.Allow(c.Request().Context(), endpoint, c.RealIP())
		if err != nil {
			m.logger.Error("Rate limit check failed", slog.Any("error", err))

			return domainerrors.ErrStoreUnavailable
		}
		if !ok {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
			m.logger.Warn("Request rejected: rate limit exceeded",
				slog.String("endpoint", endpoint),
				slog.String("clientIP", c.RealIP()),
				slog.Int("retryAfterSeconds", seconds))

			return domainerrors.ErrRateLimited
		}

		return next(c)
	}
}
