package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/noah-isme/evalsuite-api/internal/dto"
	"github.com/noah-isme/evalsuite-api/internal/models"
	"github.com/noah-isme/evalsuite-api/internal/repository"
	"github.com/noah-isme/evalsuite-api/internal/scoring"
)

// EventDefaults supplies descriptive fields for events initialised without them.
type EventDefaults struct {
	Title             string
	Subtitle          string
	Year              string
	Organization      string
	OrganizationShort string
	SystemName        string
}

// EventService manages the evaluation event lifecycle and its derived views.
type EventService interface {
	List(ctx context.Context, status string) (dto.EventListResponse, error)
	GetActive(ctx context.Context) (models.Event, error)
	JuryView(ctx context.Context, eventKey string, juryID uint) (dto.JuryViewResponse, error)
	Initialize(ctx context.Context, actor ActivityActor, req dto.InitializeEventRequest) (dto.InitializeEventResponse, error)
	Reset(ctx context.Context, actor ActivityActor) (models.Event, error)
	UpdateStatus(ctx context.Context, actor ActivityActor, req dto.UpdateEventStatusRequest) (models.Event, error)
	Leaderboard(ctx context.Context, top int) (dto.LeaderboardResponse, error)
	Consolidated(ctx context.Context) (dto.ConsolidatedResponse, error)
}

type eventService struct {
	store     *ActiveEventStore
	events    repository.EventRepository
	roster    repository.RosterRepository
	activity  ActivityRecorder
	validator *validator.Validate
	defaults  EventDefaults
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewEventService constructs the event service.
func NewEventService(store *ActiveEventStore, events repository.EventRepository, roster repository.RosterRepository, activity ActivityRecorder, validate *validator.Validate, defaults EventDefaults, logger zerolog.Logger) EventService {
	return &eventService{
		store:     store,
		events:    events,
		roster:    roster,
		activity:  activity,
		validator: validate,
		defaults:  defaults,
		logger:    logger.With().Str("component", "event_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/evalsuite-api/internal/service/event"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *eventService) List(ctx context.Context, status string) (dto.EventListResponse, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		status = models.EventStatusActive
	}

	events, err := s.events.List(ctx, status)
	if err != nil {
		return dto.EventListResponse{}, err
	}

	items := make([]dto.EventSummaryResponse, 0, len(events))
	for _, event := range events {
		items = append(items, dto.NewEventSummaryResponse(event))
	}

	return dto.EventListResponse{Items: items, Count: len(items)}, nil
}

func (s *eventService) GetActive(ctx context.Context) (models.Event, error) {
	return s.store.Load(ctx)
}

func (s *eventService) JuryView(ctx context.Context, eventKey string, juryID uint) (dto.JuryViewResponse, error) {
	var (
		event models.Event
		err   error
	)

	if eventKey == "" {
		event, err = s.store.Load(ctx)
	} else {
		event, err = s.events.FindByKey(ctx, eventKey)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrEventNotFound
		}
	}
	if err != nil {
		return dto.JuryViewResponse{}, err
	}

	jury := event.FindJury(juryID)
	if jury == nil {
		return dto.JuryViewResponse{}, fmt.Errorf("%w: jury %d", scoring.ErrJuryNotFound, juryID)
	}

	return dto.NewJuryViewResponse(event, *jury), nil
}

func (s *eventService) Initialize(ctx context.Context, actor ActivityActor, req dto.InitializeEventRequest) (dto.InitializeEventResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.InitializeEventResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "events.initialize")
	defer span.End()

	existing, err := s.store.Load(ctx)
	if err == nil {
		span.SetAttributes(attribute.Bool("event.created", false))
		return dto.InitializeEventResponse{Created: false, Event: existing}, nil
	}
	if !errors.Is(err, ErrNoActiveEvent) {
		span.RecordError(err)
		return dto.InitializeEventResponse{}, err
	}

	var (
		criteria []models.Criterion
		teams    []models.Team
		juries   []models.Jury
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var loadErr error
		criteria, loadErr = s.roster.ListCriteria(groupCtx, false)
		return loadErr
	})
	group.Go(func() error {
		var loadErr error
		teams, loadErr = s.roster.ListTeams(groupCtx, false)
		return loadErr
	})
	group.Go(func() error {
		var loadErr error
		juries, loadErr = s.roster.ListJuries(groupCtx, false)
		return loadErr
	})
	if err := group.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load_roster_failed")
		return dto.InitializeEventResponse{}, err
	}

	if len(teams) == 0 || len(juries) == 0 {
		return dto.InitializeEventResponse{}, ErrEmptyRoster
	}
	if len(criteria) == 0 {
		criteria = models.DefaultCriteria()
	}

	now := s.now()
	key := strings.TrimSpace(req.EventID)
	if key == "" {
		key = fmt.Sprintf("event_%d", now.UnixMilli())
	}

	event := scoring.NewEvent(key, s.eventInfo(req), criteria, juries, teams, now)
	if err := s.store.Create(ctx, event); err != nil {
		if errors.Is(err, repository.ErrActiveEventExists) {
			current, loadErr := s.store.Load(ctx)
			if loadErr != nil {
				return dto.InitializeEventResponse{}, loadErr
			}
			return dto.InitializeEventResponse{Created: false, Event: current}, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "create_event_failed")
		return dto.InitializeEventResponse{}, err
	}

	span.SetAttributes(
		attribute.Bool("event.created", true),
		attribute.Int("event.juries", len(juries)),
		attribute.Int("event.teams", len(teams)),
	)
	s.logger.Info().Str("event_id", event.EventKey).Int("juries", len(juries)).Int("teams", len(teams)).Msg("event initialized")
	record(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "event.initialize",
		EntityType: "event",
		EntityID:   event.EventKey,
		Metadata:   map[string]interface{}{"juries": len(juries), "teams": len(teams), "criteria": len(criteria)},
	})

	return dto.InitializeEventResponse{Created: true, Event: *event}, nil
}

func (s *eventService) Reset(ctx context.Context, actor ActivityActor) (models.Event, error) {
	event, err := s.store.Mutate(ctx, "reset", func(event *models.Event) error {
		scoring.ResetEvaluations(event, s.now())
		return nil
	})
	if err != nil {
		return models.Event{}, err
	}

	s.logger.Warn().Str("event_id", event.EventKey).Msg("event evaluations reset")
	record(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "event.reset",
		EntityType: "event",
		EntityID:   event.EventKey,
	})

	return event, nil
}

func (s *eventService) UpdateStatus(ctx context.Context, actor ActivityActor, req dto.UpdateEventStatusRequest) (models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Event{}, err
	}

	var previous string
	event, err := s.store.Mutate(ctx, "status", func(event *models.Event) error {
		previous = event.Status
		event.Status = req.Status
		return nil
	})
	if err != nil {
		return models.Event{}, err
	}

	record(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "event.status",
		EntityType: "event",
		EntityID:   event.EventKey,
		Metadata:   map[string]interface{}{"from": previous, "to": event.Status},
	})

	return event, nil
}

func (s *eventService) Leaderboard(ctx context.Context, top int) (dto.LeaderboardResponse, error) {
	event, err := s.store.Load(ctx)
	if err != nil {
		return dto.LeaderboardResponse{}, err
	}

	var response dto.LeaderboardResponse
	if s.store.cache.get(ctx, leaderboardView, event.EventKey, event.Revision, &response) {
		response.CacheHit = true
	} else {
		response = dto.LeaderboardResponse{
			Leaderboard: scoring.GenerateLeaderboard(&event),
			Statistics:  event.Statistics,
			GeneratedAt: s.now(),
		}
		s.store.cache.set(ctx, leaderboardView, event.EventKey, event.Revision, response)
	}

	response.Leaderboard = scoring.TopLeaderboard(response.Leaderboard, top)
	return response, nil
}

func (s *eventService) Consolidated(ctx context.Context) (dto.ConsolidatedResponse, error) {
	event, err := s.store.Load(ctx)
	if err != nil {
		return dto.ConsolidatedResponse{}, err
	}

	var response dto.ConsolidatedResponse
	if s.store.cache.get(ctx, consolidatedView, event.EventKey, event.Revision, &response) {
		response.CacheHit = true
		return response, nil
	}

	response = dto.ConsolidatedResponse{Marksheet: scoring.GenerateConsolidatedMarksheet(&event, s.now())}
	s.store.cache.set(ctx, consolidatedView, event.EventKey, event.Revision, response)
	return response, nil
}

func (s *eventService) eventInfo(req dto.InitializeEventRequest) scoring.EventInfo {
	return scoring.EventInfo{
		Title:             firstNonEmpty(req.Title, s.defaults.Title),
		Subtitle:          firstNonEmpty(req.Subtitle, s.defaults.Subtitle),
		Year:              firstNonEmpty(req.Year, s.defaults.Year, strconvYear(s.now())),
		Organization:      firstNonEmpty(req.Organization, s.defaults.Organization),
		OrganizationShort: firstNonEmpty(req.OrganizationShort, s.defaults.OrganizationShort),
		SystemName:        firstNonEmpty(req.SystemName, s.defaults.SystemName),
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func strconvYear(t time.Time) string {
	return fmt.Sprintf("%d", t.Year())
}
