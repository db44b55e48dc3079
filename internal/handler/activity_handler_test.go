package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evalsuite-api/internal/dto"
)

func TestActivityAPI_ListsAuditTrail(t *testing.T) {
	env := newAPIEnv(t)
	env.start(t, 1, 1)

	resp, body := env.do(t, jsonRequest(t, http.MethodPost, "/api/v1/config/juries", map[string]interface{}{
		"name":        "Prof. Kavya Rao",
		"designation": "Professor",
		"department":  "Electronics",
	}))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body.Message)

	resp, body = env.do(t, jsonRequest(t, http.MethodGet, "/api/v1/activity?pageSize=10", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list dto.ActivityListResponse
	require.NoError(t, json.Unmarshal(body.Data, &list))
	require.Equal(t, int64(2), list.Pagination.TotalItems)

	actions := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		actions = append(actions, item.Action)
	}
	require.ElementsMatch(t, []string{"event.initialize", "jury.create"}, actions)

	resp, body = env.do(t, jsonRequest(t, http.MethodGet, "/api/v1/activity?action=jury.create&page_size=5", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body.Data, &list))
	require.Len(t, list.Items, 1)
	require.Equal(t, "jury", list.Items[0].EntityType)
	require.Equal(t, 5, list.Pagination.PageSize)
}

func TestActivityAPI_RejectsBadQuery(t *testing.T) {
	env := newAPIEnv(t)

	resp, _ := env.do(t, jsonRequest(t, http.MethodGet, "/api/v1/activity?page=first", nil))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body := env.do(t, jsonRequest(t, http.MethodGet, "/api/v1/activity?since=yesterday", nil))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid since timestamp", body.Message)
}
