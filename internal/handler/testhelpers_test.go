package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/evalsuite-api/internal/database"
	"github.com/noah-isme/evalsuite-api/internal/handler"
	"github.com/noah-isme/evalsuite-api/internal/models"
	"github.com/noah-isme/evalsuite-api/internal/repository"
	"github.com/noah-isme/evalsuite-api/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()

	var body io.Reader
	switch value := payload.(type) {
	case nil:
	case string:
		body = strings.NewReader(value)
	default:
		encoded, err := json.Marshal(value)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return req
}

// apiEnv runs the real services over sqlite and miniredis.
type apiEnv struct {
	app         *fiber.App
	db          *gorm.DB
	mini        *miniredis.Miniredis
	redis       *redis.Client
	roster      repository.RosterRepository
	broadcaster service.ScoreboardBroadcaster
	activity    service.ActivityService
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())

	roster := repository.NewRosterRepository(db)
	events := repository.NewEventRepository(db)
	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	broadcaster := service.NewScoreboardBroadcaster(nil, nil, "", logger)
	store := service.NewActiveEventStore(events, redisClient, time.Minute, broadcaster, logger)

	eventSvc := service.NewEventService(store, events, roster, activity, validate, service.EventDefaults{
		Title:      "INTERNAL HACKATHON",
		Subtitle:   "Jury Evaluation",
		Year:       "2025",
		SystemName: "EvalSuite",
	}, logger)
	evalSvc := service.NewEvaluationService(store, validate, logger)
	configSvc := service.NewConfigService(roster, store, activity, validate, logger)

	app := fiber.New()
	api := app.Group("/api/v1")
	handler.NewEventHandler(eventSvc, nil, logger).Register(api.Group("/events"))
	handler.NewEvaluationHandler(evalSvc, logger).Register(api.Group("/evaluations"))
	handler.NewConfigHandler(configSvc, logger).Register(api.Group("/config"))
	handler.NewActivityHandler(activity, logger).Register(api.Group("/activity"))

	return &apiEnv{
		app:         app,
		db:          db,
		mini:        mini,
		redis:       redisClient,
		roster:      roster,
		broadcaster: broadcaster,
		activity:    activity,
	}
}

func (e *apiEnv) seedRoster(t *testing.T, juryCount, teamCount int) {
	t.Helper()

	roster := repository.Roster{Criteria: models.DefaultCriteria()}
	for i := 1; i <= juryCount; i++ {
		roster.Juries = append(roster.Juries, models.Jury{
			ID:          uint(i),
			Name:        fmt.Sprintf("Dr. Jury %d", i),
			Designation: "Associate Professor",
			Department:  "Computer Science",
			IsActive:    true,
		})
	}
	for i := 1; i <= teamCount; i++ {
		roster.Teams = append(roster.Teams, models.Team{
			ID:           uint(i),
			Name:         fmt.Sprintf("Team %d", i),
			Members:      []string{"Asha", "Vikram"},
			ProjectTitle: fmt.Sprintf("Project %d", i),
			Category:     "HealthTech",
			IsActive:     true,
		})
	}
	require.NoError(t, e.roster.Replace(context.Background(), roster))
}

func (e *apiEnv) do(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var body envelope
	decodeResponse(t, resp, &body)
	return resp, body
}

// start seeds a roster and initialises the active event through the API.
func (e *apiEnv) start(t *testing.T, juryCount, teamCount int) {
	t.Helper()
	e.seedRoster(t, juryCount, teamCount)

	resp, body := e.do(t, jsonRequest(t, http.MethodPost, "/api/v1/events/initialize", map[string]string{"event_id": "event_api"}))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body.Message)
}

func scoreBody(innovation, feasibility, presentation, impact, technical int) map[string]int {
	return map[string]int{
		"innovation":        innovation,
		"feasibility":       feasibility,
		"presentation":      presentation,
		"impact":            impact,
		"technical_quality": technical,
	}
}
