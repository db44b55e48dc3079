package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRateLimitKeysByRouteParam(t *testing.T) {
	app := fiber.New()
	app.Post("/autosave/:juryId", RateLimit("autosave", "juryId", 2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	hit := func(path string) int {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, path, nil))
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusOK, hit("/autosave/1"))
	require.Equal(t, fiber.StatusOK, hit("/autosave/1"))
	require.Equal(t, fiber.StatusTooManyRequests, hit("/autosave/1"))
	require.Equal(t, fiber.StatusOK, hit("/autosave/2"))
}
