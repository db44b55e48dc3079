package handler

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalsuite-api/internal/middleware"
	"github.com/noah-isme/evalsuite-api/internal/scoring"
	"github.com/noah-isme/evalsuite-api/internal/service"
	"github.com/noah-isme/evalsuite-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parsePositiveInt(value string) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 0 {
		return 0, errors.New("invalid number")
	}
	return parsed, nil
}

func parseQueryBool(c *fiber.Ctx, key string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && parsed
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := strings.TrimSpace(c.Params(name))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func activityActorFromContext(c *fiber.Ctx) service.ActivityActor {
	return service.ActivityActor{
		ID:   userIDFromContext(c),
		Role: userRoleFromContext(c),
	}
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// sendServiceError maps domain errors onto HTTP responses. Anything
// unrecognised is logged and reported as a 500 with the fallback message.
func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	if isValidationError(err) {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, "ValidationError", err.Error())
	}

	if kind := scoring.KindOf(err); kind != "" {
		status := fiber.StatusNotFound
		if kind == scoring.KindInvalidInput {
			status = fiber.StatusBadRequest
		}
		return utils.SendErrorKind(c, status, kind, err.Error())
	}

	switch {
	case errors.Is(err, service.ErrNoActiveEvent):
		return utils.SendErrorKind(c, fiber.StatusNotFound, "NoActiveEvent", err.Error())
	case errors.Is(err, service.ErrEventNotFound):
		return utils.SendErrorKind(c, fiber.StatusNotFound, "EventNotFound", err.Error())
	case errors.Is(err, service.ErrCriterionExists),
		errors.Is(err, service.ErrTeamExists),
		errors.Is(err, service.ErrJuryExists):
		return utils.SendErrorKind(c, fiber.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, service.ErrInvalidRoster):
		return utils.SendErrorKind(c, fiber.StatusBadRequest, "InvalidRoster", err.Error())
	case errors.Is(err, service.ErrEmptyRoster):
		return utils.SendErrorKind(c, fiber.StatusBadRequest, "EmptyRoster", err.Error())
	}

	requestLogger(logger, c).Error().Err(err).Msg(fallback)
	return utils.SendErrorKind(c, fiber.StatusInternalServerError, "InternalError", fallback)
}

// parseScoreBatch turns a {teamId: {criterion: score}} body into engine
// input. Keys that are not team ids are returned separately; values that
// are not score objects become nil entries, which the engine skips as
// invalid input.
func parseScoreBatch(raw map[string]json.RawMessage) (map[uint]scoring.ScoreInput, []string) {
	scores := make(map[uint]scoring.ScoreInput, len(raw))
	var invalid []string

	for key, value := range raw {
		teamID, err := strconv.ParseUint(strings.TrimSpace(key), 10, 64)
		if err != nil || teamID == 0 {
			invalid = append(invalid, key)
			continue
		}

		var decoded scoring.RawScores
		if err := json.Unmarshal(value, &decoded); err != nil || decoded == nil {
			scores[uint(teamID)] = nil
			continue
		}
		scores[uint(teamID)] = decoded.Input()
	}

	sort.Strings(invalid)
	return scores, invalid
}
