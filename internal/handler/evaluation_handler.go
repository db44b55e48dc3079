package handler

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalsuite-api/internal/dto"
	"github.com/noah-isme/evalsuite-api/internal/scoring"
	"github.com/noah-isme/evalsuite-api/internal/service"
	"github.com/noah-isme/evalsuite-api/internal/utils"
)

// EvaluationHandler exposes the score entry endpoints used by juries.
type EvaluationHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewEvaluationHandler constructs the handler.
func NewEvaluationHandler(service service.EvaluationService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register binds evaluation routes. Handlers in autosave run in front of
// the auto-save endpoint, typically a rate limiter.
func (h *EvaluationHandler) Register(router fiber.Router, autosave ...fiber.Handler) {
	router.Get("/status", h.overallStatus)
	router.Post("/jury/:juryId", h.saveJury)
	router.Post("/jury/:juryId/team/:teamId", h.saveTeam)
	router.Get("/jury/:juryId/status", h.juryStatus)
	router.Get("/jury/:juryId/download", h.download)
	router.Post("/autosave/:juryId", append(append([]fiber.Handler{}, autosave...), h.autoSave)...)
}

func (h *EvaluationHandler) saveJury(c *fiber.Ctx) error {
	juryID, err := parseUintParam(c, "juryId")
	if err != nil {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, err.Error())
	}

	var req dto.SaveJuryScoresRequest
	if err := c.BodyParser(&req); err != nil || req.Scores == nil {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, scoring.ErrInvalidInput.Error())
	}

	return h.saveBatch(c, juryID, req.Scores, req.AutoSave)
}

func (h *EvaluationHandler) autoSave(c *fiber.Ctx) error {
	juryID, err := parseUintParam(c, "juryId")
	if err != nil {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, err.Error())
	}

	var req dto.AutoSaveRequest
	if err := c.BodyParser(&req); err != nil || req.Scores == nil {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, scoring.ErrInvalidInput.Error())
	}

	return h.saveBatch(c, juryID, req.Scores, true)
}

// saveBatch applies a {teamId: scores} body. A request in which nothing
// could be applied is rejected with the skipped teams attached.
func (h *EvaluationHandler) saveBatch(c *fiber.Ctx, juryID uint, raw map[string]json.RawMessage, autoSave bool) error {
	scores, invalidKeys := parseScoreBatch(raw)

	result, err := h.service.SaveJuryScores(requestContext(c), juryID, scores, autoSave)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to save scores")
	}
	result.InvalidTeamKeys = invalidKeys

	skipped := len(result.Skipped) + len(invalidKeys)
	if skipped > 0 {
		requestLogger(h.logger, c).Warn().
			Uint("jury_id", juryID).
			Int("skipped", skipped).
			Strs("invalid_team_keys", invalidKeys).
			Msg("batch contained entries that were not applied")
	}

	if result.UpdatedTeams == 0 && skipped > 0 {
		kind := scoring.KindInvalidInput
		if len(result.Skipped) > 0 {
			kind = result.Skipped[0].Reason
		}
		return utils.SendErrorWithData(c, fiber.StatusBadRequest, kind, "no scores were applied", result)
	}

	message := "scores saved"
	if autoSave {
		message = "scores auto-saved"
	}
	return utils.SendSuccess(c, message, result)
}

func (h *EvaluationHandler) saveTeam(c *fiber.Ctx) error {
	juryID, err := parseUintParam(c, "juryId")
	if err != nil {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, err.Error())
	}
	teamID, err := parseUintParam(c, "teamId")
	if err != nil {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, err.Error())
	}

	var req dto.SaveTeamScoresRequest
	if err := c.BodyParser(&req); err != nil || req.Scores == nil {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, scoring.ErrInvalidInput.Error())
	}

	result, err := h.service.SaveTeamScores(requestContext(c), juryID, teamID, req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to save scores")
	}

	message := "scores saved"
	if result.Submitted {
		message = "evaluation submitted"
	}
	return utils.SendSuccess(c, message, result)
}

func (h *EvaluationHandler) juryStatus(c *fiber.Ctx) error {
	juryID, err := parseUintParam(c, "juryId")
	if err != nil {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, err.Error())
	}

	status, err := h.service.JuryStatus(requestContext(c), juryID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load jury status")
	}
	return utils.SendSuccess(c, "jury status retrieved", status)
}

func (h *EvaluationHandler) overallStatus(c *fiber.Ctx) error {
	status, err := h.service.OverallStatus(requestContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load evaluation status")
	}
	return utils.SendSuccess(c, "evaluation status retrieved", status)
}

func (h *EvaluationHandler) download(c *fiber.Ctx) error {
	juryID, err := parseUintParam(c, "juryId")
	if err != nil {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, err.Error())
	}

	payload, err := h.service.ExportJuryCSV(requestContext(c), juryID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to export evaluations")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="jury_%d_evaluations.csv"`, juryID))
	return c.Send(payload)
}
