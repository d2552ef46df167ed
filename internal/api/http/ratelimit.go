package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/spec-kit/apply-loan/internal/config"
	apperrors "github.com/spec-kit/apply-loan/pkg/util/errorutil"
)

// NewRateLimiter allows cfg.Capacity requests per client IP and refill window.
// It returns nil when limiting is disabled.
func NewRateLimiter(cfg config.RateLimitConfig) fiber.Handler {
	if cfg.Capacity <= 0 {
		return nil
	}
	return limiter.New(limiter.Config{
		Max:        cfg.Capacity,
		Expiration: cfg.RefillWindow(),
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return apperrors.NewTooManyRequests("rate limit exceeded")
		},
	})
}
