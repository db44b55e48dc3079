package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evalsuite-api/internal/dto"
	"github.com/noah-isme/evalsuite-api/internal/models"
	"github.com/noah-isme/evalsuite-api/internal/scoring"
)

func TestConfigAPI_TeamLifecycleFollowsActiveEvent(t *testing.T) {
	env := newAPIEnv(t)
	env.start(t, 2, 2)

	resp, body := env.do(t, jsonRequest(t, http.MethodPost, "/api/v1/config/teams", map[string]interface{}{
		"id":            10,
		"name":          "  <b>Byte Busters</b> ",
		"members":       []string{"Meera", "Arjun"},
		"project_title": "Flood Watch",
		"category":      "Climate",
	}))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body.Message)

	var team models.Team
	require.NoError(t, json.Unmarshal(body.Data, &team))
	require.Equal(t, uint(10), team.ID)
	require.Equal(t, "Byte Busters", team.Name)
	require.True(t, team.IsActive)

	resp, body = env.do(t, jsonRequest(t, http.MethodPost, "/api/v1/config/teams", map[string]interface{}{
		"id":   10,
		"name": "Duplicate",
	}))
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.Equal(t, "Conflict", body.Error)

	resp, body = env.do(t, jsonRequest(t, http.MethodGet, "/api/v1/events/active/jury/1", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var view dto.JuryViewResponse
	require.NoError(t, json.Unmarshal(body.Data, &view))
	require.Len(t, view.Teams, 3)

	resp, body = env.do(t, jsonRequest(t, http.MethodDelete, "/api/v1/config/teams/10", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body.Message)

	resp, body = env.do(t, jsonRequest(t, http.MethodGet, "/api/v1/events/active/jury/1", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body.Data, &view))
	require.Len(t, view.Teams, 2)

	resp, body = env.do(t, jsonRequest(t, http.MethodDelete, "/api/v1/config/teams/10", nil))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, scoring.KindTeamNotFound, body.Error)
}

func TestConfigAPI_Validation(t *testing.T) {
	env := newAPIEnv(t)

	resp, body := env.do(t, jsonRequest(t, http.MethodPost, "/api/v1/config/juries", map[string]interface{}{
		"name":  "X",
		"email": "not-an-email",
	}))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "ValidationError", body.Error)

	resp, body = env.do(t, jsonRequest(t, http.MethodPatch, "/api/v1/config/teams/abc", map[string]string{"name": "Renamed"}))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, scoring.KindInvalidInput, body.Error)

	resp, body = env.do(t, jsonRequest(t, http.MethodPost, "/api/v1/config/criteria", "{not json"))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, scoring.KindInvalidInput, body.Error)
}

func TestConfigAPI_CriterionCreateAndList(t *testing.T) {
	env := newAPIEnv(t)
	env.seedRoster(t, 1, 1)

	resp, body := env.do(t, jsonRequest(t, http.MethodPost, "/api/v1/config/criteria", map[string]interface{}{
		"name":      "Code Quality",
		"max_marks": 10,
	}))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body.Message)

	var criterion models.Criterion
	require.NoError(t, json.Unmarshal(body.Data, &criterion))
	require.Equal(t, models.CriterionID("code_quality"), criterion.ID)
	require.Equal(t, 1, criterion.Version)

	resp, body = env.do(t, jsonRequest(t, http.MethodPost, "/api/v1/config/criteria", map[string]interface{}{
		"name":      "code quality",
		"max_marks": 5,
	}))
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, body = env.do(t, jsonRequest(t, http.MethodGet, "/api/v1/config/criteria", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var criteria []models.Criterion
	require.NoError(t, json.Unmarshal(body.Data, &criteria))
	require.Len(t, criteria, 6)
}

func TestConfigAPI_ExportImportRoundTrip(t *testing.T) {
	env := newAPIEnv(t)
	env.seedRoster(t, 2, 3)

	req := jsonRequest(t, http.MethodGet, "/api/v1/config/export?download=true", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, `attachment; filename="roster.json"`, resp.Header.Get(fiber.HeaderContentDisposition))

	var exported envelope
	decodeResponse(t, resp, &exported)

	var doc dto.RosterDocument
	require.NoError(t, json.Unmarshal(exported.Data, &doc))
	require.Len(t, doc.Criteria, 5)
	require.Len(t, doc.Teams, 3)
	require.Len(t, doc.Juries, 2)

	doc.Teams = doc.Teams[:1]
	payload, err := json.Marshal(doc)
	require.NoError(t, err)

	resp, body := env.do(t, jsonRequest(t, http.MethodPost, "/api/v1/config/import", string(payload)))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body.Message)

	var imported dto.ImportRosterResponse
	require.NoError(t, json.Unmarshal(body.Data, &imported))
	require.Equal(t, dto.ImportRosterResponse{Criteria: 5, Teams: 1, Juries: 2}, imported)

	resp, body = env.do(t, jsonRequest(t, http.MethodPost, "/api/v1/config/import", `{"criteria": [], "teams": [{"name": "no id"}]}`))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "InvalidRoster", body.Error)

	resp, body = env.do(t, jsonRequest(t, http.MethodPost, "/api/v1/config/import", nil))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, scoring.KindInvalidInput, body.Error)
}
