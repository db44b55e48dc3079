package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evalsuite-api/internal/config"
	"github.com/noah-isme/evalsuite-api/internal/dto"
	"github.com/noah-isme/evalsuite-api/internal/handler"
	"github.com/noah-isme/evalsuite-api/internal/router"
	"github.com/noah-isme/evalsuite-api/internal/scoring"
	"github.com/noah-isme/evalsuite-api/internal/service"
)

const testSecret = "router-secret"

type stubActivityService struct{}

func (stubActivityService) Record(context.Context, service.ActivityEntry) (dto.ActivityResponse, error) {
	return dto.ActivityResponse{}, nil
}

func (stubActivityService) List(context.Context, dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	return dto.ActivityListResponse{Items: []dto.ActivityResponse{}}, nil
}

type stubEvaluationService struct{}

func (stubEvaluationService) SaveJuryScores(_ context.Context, juryID uint, scores map[uint]scoring.ScoreInput, autoSave bool) (dto.SaveJuryScoresResponse, error) {
	return dto.SaveJuryScoresResponse{JuryID: juryID, AutoSave: autoSave, UpdatedTeams: len(scores)}, nil
}

func (stubEvaluationService) SaveTeamScores(context.Context, uint, uint, dto.SaveTeamScoresRequest) (dto.SaveTeamScoresResponse, error) {
	return dto.SaveTeamScoresResponse{}, nil
}

func (stubEvaluationService) JuryStatus(context.Context, uint) (dto.JuryStatusResponse, error) {
	return dto.JuryStatusResponse{}, nil
}

func (stubEvaluationService) OverallStatus(context.Context) (dto.OverallStatusResponse, error) {
	return dto.OverallStatusResponse{}, nil
}

func (stubEvaluationService) ExportJuryCSV(context.Context, uint) ([]byte, error) {
	return nil, nil
}

func newRouterApp(cfg config.Config) *fiber.App {
	logger := zerolog.Nop()
	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler: handler.NewEvaluationHandler(stubEvaluationService{}, logger),
		ActivityHandler:   handler.NewActivityHandler(stubActivityService{}, logger),
	})
	return app
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "7",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestRegister_AdminRoutesRequireToken(t *testing.T) {
	app := newRouterApp(config.Config{AppName: "evalsuite-api", JWTSecret: testSecret})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "jury"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "admin"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "evalsuite-api", resp.Header.Get("X-Application"))
}

func TestRegister_AdminRoutesOpenWithoutSecret(t *testing.T) {
	app := newRouterApp(config.Config{AppName: "evalsuite-api"})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRegister_AutoSaveIsRateLimitedPerJury(t *testing.T) {
	app := newRouterApp(config.Config{AppName: "evalsuite-api", AutoSaveLimit: 2, AutoSaveWindow: time.Minute})

	post := func(juryID string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluations/autosave/"+juryID, strings.NewReader(`{"scores": {"1": {"innovation": 3}}}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusOK, post("1"))
	require.Equal(t, fiber.StatusOK, post("1"))
	require.Equal(t, fiber.StatusTooManyRequests, post("1"))
	require.Equal(t, fiber.StatusOK, post("2"))
}
