package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalsuite-api/internal/dto"
	"github.com/noah-isme/evalsuite-api/internal/scoring"
	"github.com/noah-isme/evalsuite-api/internal/service"
	"github.com/noah-isme/evalsuite-api/internal/utils"
)

const leaderboardPingInterval = 30 * time.Second

// EventHandler exposes event lifecycle, leaderboard and marksheet endpoints.
type EventHandler struct {
	service     service.EventService
	broadcaster service.ScoreboardBroadcaster
	logger      zerolog.Logger
}

// NewEventHandler constructs the handler. The broadcaster may be nil, in
// which case the leaderboard stream is not registered.
func NewEventHandler(service service.EventService, broadcaster service.ScoreboardBroadcaster, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		service:     service,
		broadcaster: broadcaster,
		logger:      logger.With().Str("component", "event_handler").Logger(),
	}
}

// Register binds event routes. Handlers in admin guard the routes that
// create or modify events.
func (h *EventHandler) Register(router fiber.Router, admin ...fiber.Handler) {
	guarded := func(next fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, admin...), next)
	}

	router.Get("", h.list)
	router.Post("/initialize", guarded(h.initialize)...)
	router.Get("/active", h.active)
	router.Post("/active/reset", guarded(h.reset)...)
	router.Patch("/active/status", guarded(h.updateStatus)...)
	router.Get("/active/jury/:juryId", h.juryView)
	router.Get("/active/leaderboard", h.leaderboard)
	router.Get("/active/consolidated", h.consolidated)

	if h.broadcaster != nil {
		router.Use("/active/leaderboard/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				c.Locals("request_ctx", requestContext(c))
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		router.Get("/active/leaderboard/ws", websocket.New(h.streamLeaderboard))
	}

	router.Get("/:eventKey/jury/:juryId", h.juryView)
}

func (h *EventHandler) list(c *fiber.Ctx) error {
	events, err := h.service.List(requestContext(c), c.Query("status"))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list events")
	}
	return utils.SendSuccess(c, "events retrieved", events)
}

func (h *EventHandler) active(c *fiber.Ctx) error {
	event, err := h.service.GetActive(requestContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load active event")
	}
	return utils.SendSuccess(c, "active event retrieved", event)
}

func (h *EventHandler) initialize(c *fiber.Ctx) error {
	var req dto.InitializeEventRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, "invalid request body")
		}
	}

	result, err := h.service.Initialize(requestContext(c), activityActorFromContext(c), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to initialize event")
	}

	if !result.Created {
		return utils.SendSuccess(c, "active event already exists", result)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "event initialized", result)
}

func (h *EventHandler) reset(c *fiber.Ctx) error {
	event, err := h.service.Reset(requestContext(c), activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to reset evaluations")
	}
	return utils.SendSuccess(c, "evaluations reset", event)
}

func (h *EventHandler) updateStatus(c *fiber.Ctx) error {
	var req dto.UpdateEventStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, "invalid request body")
	}

	event, err := h.service.UpdateStatus(requestContext(c), activityActorFromContext(c), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update event status")
	}
	return utils.SendSuccess(c, "event status updated", event)
}

func (h *EventHandler) juryView(c *fiber.Ctx) error {
	juryID, err := parseUintParam(c, "juryId")
	if err != nil {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, err.Error())
	}

	view, err := h.service.JuryView(requestContext(c), c.Params("eventKey"), juryID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load jury evaluations")
	}
	return utils.SendSuccess(c, "jury evaluations retrieved", view)
}

func (h *EventHandler) leaderboard(c *fiber.Ctx) error {
	top, err := parseQueryInt(c, "top")
	if err != nil || top < 0 {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, scoring.KindInvalidInput, "invalid top")
	}

	board, err := h.service.Leaderboard(requestContext(c), top)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to generate leaderboard")
	}
	return utils.SendSuccess(c, "leaderboard generated", board)
}

func (h *EventHandler) consolidated(c *fiber.Ctx) error {
	sheet, err := h.service.Consolidated(requestContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to generate consolidated marksheet")
	}
	return utils.SendSuccess(c, "consolidated marksheet generated", sheet)
}

// streamLeaderboard sends the current standings, then every update until
// the client disconnects.
func (h *EventHandler) streamLeaderboard(conn *websocket.Conn) {
	ctx, _ := conn.Locals("request_ctx").(context.Context)
	if ctx == nil {
		ctx = context.Background()
	}

	top := 0
	if raw := conn.Query("top"); raw != "" {
		if parsed, err := parsePositiveInt(raw); err == nil {
			top = parsed
		}
	}

	updates, cancel := h.broadcaster.Subscribe()
	defer cancel()

	if board, err := h.service.Leaderboard(ctx, top); err == nil {
		snapshot := service.LeaderboardUpdate{
			Reason:      "snapshot",
			Leaderboard: board.Leaderboard,
			Statistics:  board.Statistics,
			SentAt:      board.GeneratedAt,
		}
		if event, err := h.service.GetActive(ctx); err == nil {
			snapshot.EventID = event.EventKey
		}
		if err := conn.WriteJSON(snapshot); err != nil {
			return
		}
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.Debug().Int("top", top).Msg("leaderboard stream connected")
	defer func() {
		h.logger.Debug().Msg("leaderboard stream disconnected")
	}()

	for {
		select {
		case <-closed:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			update.Leaderboard = scoring.TopLeaderboard(update.Leaderboard, top)
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		case <-time.After(leaderboardPingInterval):
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
