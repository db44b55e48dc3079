package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesCollectors(t *testing.T) {
	BatchSkippedTeams().Inc()
	ScoreUpdates().WithLabelValues("autosave").Add(3)
	LeaderboardSubscribers().Set(2)

	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "batch_skipped_teams_total")
	require.Contains(t, string(body), `score_updates_total{mode="autosave"}`)
	require.Contains(t, string(body), "leaderboard_subscribers 2")
}
