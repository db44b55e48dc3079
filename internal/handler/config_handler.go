package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalsuite-api/internal/dto"
	"github.com/noah-isme/evalsuite-api/internal/scoring"
	"github.com/noah-isme/evalsuite-api/internal/service"
	"github.com/noah-isme/evalsuite-api/internal/utils"
)

// ConfigHandler exposes roster administration endpoints.
type ConfigHandler struct {
	service service.ConfigService
	logger  zerolog.Logger
}

// NewConfigHandler constructs the handler.
func NewConfigHandler(service service.ConfigService, logger zerolog.Logger) *ConfigHandler {
	return &ConfigHandler{
		service: service,
		logger:  logger.With().Str("component", "config_handler").Logger(),
	}
}

// Register binds roster routes.
func (h *ConfigHandler) Register(router fiber.Router) {
	router.Get("/criteria", h.listCriteria)
	router.Post("/criteria", h.createCriterion)
	router.Patch("/criteria/:id", h.updateCriterion)
	router.Delete("/criteria/:id", h.deleteCriterion)

	router.Get("/teams", h.listTeams)
	router.Post("/teams", h.createTeam)
	router.Patch("/teams/:id", h.updateTeam)
	router.Delete("/teams/:id", h.deleteTeam)

	router.Get("/juries", h.listJuries)
	router.Post("/juries", h.createJury)
	router.Patch("/juries/:id", h.updateJury)
	router.Delete("/juries/:id", h.deleteJury)

	router.Get("/export", h.export)
	router.Post("/import", h.importRoster)
}

func (h *ConfigHandler) listCriteria(c *fiber.Ctx) error {
	criteria, err := h.service.ListCriteria(requestContext(c), parseQueryBool(c, "include_inactive"))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list criteria")
	}
	return utils.SendSuccess(c, "criteria retrieved", criteria)
}

func (h *ConfigHandler) createCriterion(c *fiber.Ctx) error {
	var req dto.CriterionCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	criterion, err := h.service.CreateCriterion(requestContext(c), activityActorFromContext(c), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create criterion")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "criterion created", criterion)
}

func (h *ConfigHandler) updateCriterion(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, "invalid id")
	}

	var req dto.CriterionUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	criterion, err := h.service.UpdateCriterion(requestContext(c), activityActorFromContext(c), id, req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update criterion")
	}
	return utils.SendSuccess(c, "criterion updated", criterion)
}

func (h *ConfigHandler) deleteCriterion(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if err := h.service.DeleteCriterion(requestContext(c), activityActorFromContext(c), id); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete criterion")
	}
	return utils.SendSuccess(c, "criterion deleted", nil)
}

func (h *ConfigHandler) listTeams(c *fiber.Ctx) error {
	teams, err := h.service.ListTeams(requestContext(c), parseQueryBool(c, "include_inactive"))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list teams")
	}
	return utils.SendSuccess(c, "teams retrieved", teams)
}

func (h *ConfigHandler) createTeam(c *fiber.Ctx) error {
	var req dto.TeamCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	team, err := h.service.CreateTeam(requestContext(c), activityActorFromContext(c), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create team")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "team created", team)
}

func (h *ConfigHandler) updateTeam(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, err.Error())
	}

	var req dto.TeamUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	team, err := h.service.UpdateTeam(requestContext(c), activityActorFromContext(c), id, req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update team")
	}
	return utils.SendSuccess(c, "team updated", team)
}

func (h *ConfigHandler) deleteTeam(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, err.Error())
	}

	if err := h.service.DeleteTeam(requestContext(c), activityActorFromContext(c), id); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete team")
	}
	return utils.SendSuccess(c, "team deleted", nil)
}

func (h *ConfigHandler) listJuries(c *fiber.Ctx) error {
	juries, err := h.service.ListJuries(requestContext(c), parseQueryBool(c, "include_inactive"))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list juries")
	}
	return utils.SendSuccess(c, "juries retrieved", juries)
}

func (h *ConfigHandler) createJury(c *fiber.Ctx) error {
	var req dto.JuryCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	jury, err := h.service.CreateJury(requestContext(c), activityActorFromContext(c), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create jury")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "jury created", jury)
}

func (h *ConfigHandler) updateJury(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, err.Error())
	}

	var req dto.JuryUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	jury, err := h.service.UpdateJury(requestContext(c), activityActorFromContext(c), id, req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update jury")
	}
	return utils.SendSuccess(c, "jury updated", jury)
}

func (h *ConfigHandler) deleteJury(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, err.Error())
	}

	if err := h.service.DeleteJury(requestContext(c), activityActorFromContext(c), id); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete jury")
	}
	return utils.SendSuccess(c, "jury deleted", nil)
}

func (h *ConfigHandler) export(c *fiber.Ctx) error {
	doc, err := h.service.ExportRoster(requestContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to export roster")
	}

	if parseQueryBool(c, "download") {
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="roster.json"`)
	}
	return utils.SendSuccess(c, "roster exported", doc)
}

func (h *ConfigHandler) importRoster(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return invalidBody(c)
	}

	result, err := h.service.ImportRoster(requestContext(c), activityActorFromContext(c), append([]byte(nil), body...))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to import roster")
	}
	return utils.SendSuccess(c, "roster imported", result)
}

func invalidBody(c *fiber.Ctx) error {
	return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, "invalid request body")
}
