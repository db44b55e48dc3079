package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/evalsuite-api/internal/utils"
)

// RateLimit creates a rate limiter keyed by the route parameter when one is
// named, falling back to the authenticated user and finally the client IP.
func RateLimit(identifier, param string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if param != "" {
				if value := strings.TrimSpace(c.Params(param)); value != "" {
					return fmt.Sprintf("%s:%s:%s", identifier, param, value)
				}
			}
			key := ""
			if userID := c.Locals("user_id"); userID != nil {
				key = fmt.Sprintf("%v", userID)
			}
			if key == "" || key == "0" {
				key = c.IP()
			}
			return fmt.Sprintf("%s:%s", identifier, key)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendErrorKind(c, fiber.StatusTooManyRequests, "RateLimited", "too many requests, slow down")
		},
	})
}
