package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/evalsuite-api/internal/dto"
	"github.com/noah-isme/evalsuite-api/internal/models"
	"github.com/noah-isme/evalsuite-api/internal/repository"
	"github.com/noah-isme/evalsuite-api/internal/scoring"
)

const rosterDocumentVersion = 1

// ConfigService manages the roster of criteria, teams and juries and keeps
// the active event in step with it.
type ConfigService interface {
	ListCriteria(ctx context.Context, includeInactive bool) ([]models.Criterion, error)
	CreateCriterion(ctx context.Context, actor ActivityActor, req dto.CriterionCreateRequest) (models.Criterion, error)
	UpdateCriterion(ctx context.Context, actor ActivityActor, id string, req dto.CriterionUpdateRequest) (models.Criterion, error)
	DeleteCriterion(ctx context.Context, actor ActivityActor, id string) error

	ListTeams(ctx context.Context, includeInactive bool) ([]models.Team, error)
	CreateTeam(ctx context.Context, actor ActivityActor, req dto.TeamCreateRequest) (models.Team, error)
	UpdateTeam(ctx context.Context, actor ActivityActor, id uint, req dto.TeamUpdateRequest) (models.Team, error)
	DeleteTeam(ctx context.Context, actor ActivityActor, id uint) error

	ListJuries(ctx context.Context, includeInactive bool) ([]models.Jury, error)
	CreateJury(ctx context.Context, actor ActivityActor, req dto.JuryCreateRequest) (models.Jury, error)
	UpdateJury(ctx context.Context, actor ActivityActor, id uint, req dto.JuryUpdateRequest) (models.Jury, error)
	DeleteJury(ctx context.Context, actor ActivityActor, id uint) error

	ExportRoster(ctx context.Context) (dto.RosterDocument, error)
	ImportRoster(ctx context.Context, actor ActivityActor, payload []byte) (dto.ImportRosterResponse, error)
	LoadRosterFile(ctx context.Context, path string) error
}

type configService struct {
	roster    repository.RosterRepository
	store     *ActiveEventStore
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewConfigService constructs the roster configuration service.
func NewConfigService(roster repository.RosterRepository, store *ActiveEventStore, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) ConfigService {
	return &configService{
		roster:    roster,
		store:     store,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "config_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/evalsuite-api/internal/service/config"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *configService) ListCriteria(ctx context.Context, includeInactive bool) ([]models.Criterion, error) {
	return s.roster.ListCriteria(ctx, includeInactive)
}

func (s *configService) CreateCriterion(ctx context.Context, actor ActivityActor, req dto.CriterionCreateRequest) (models.Criterion, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Criterion{}, err
	}

	name := s.clean(req.Name)
	id := models.CriterionID(strings.TrimSpace(req.ID))
	if id == "" {
		id = criterionSlug(name)
	}
	if id == "" || name == "" {
		return models.Criterion{}, fmt.Errorf("%w: criterion name is required", scoring.ErrInvalidInput)
	}

	existing, err := s.roster.ListCriteria(ctx, true)
	if err != nil {
		return models.Criterion{}, err
	}
	if _, err := lookupCriterionConflict(existing, id, name); err == nil {
		return models.Criterion{}, ErrCriterionExists
	}

	criterion := models.Criterion{
		ID:          id,
		Name:        name,
		MaxMarks:    req.MaxMarks,
		Description: s.clean(req.Description),
		Weight:      req.Weight,
		Position:    req.Position,
		IsActive:    activeOrDefault(req.IsActive),
	}
	if err := s.roster.CreateCriterion(ctx, &criterion); err != nil {
		return models.Criterion{}, err
	}

	if criterion.IsActive {
		if err := s.syncActiveEvent(ctx, "criterion_created", func(event *models.Event) {
			scoring.AddCriterion(event, criterion)
		}); err != nil {
			return models.Criterion{}, err
		}
	}

	s.audit(ctx, actor, "criterion.create", "criterion", string(criterion.ID), map[string]interface{}{"max_marks": criterion.MaxMarks})
	return criterion, nil
}

func (s *configService) UpdateCriterion(ctx context.Context, actor ActivityActor, id string, req dto.CriterionUpdateRequest) (models.Criterion, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Criterion{}, err
	}

	criterion, err := s.roster.GetCriterion(ctx, models.CriterionID(id))
	if err != nil {
		return models.Criterion{}, translateRosterError(err, scoring.ErrCriterionNotFound)
	}

	if req.Name != nil {
		name := s.clean(*req.Name)
		existing, err := s.roster.ListCriteria(ctx, true)
		if err != nil {
			return models.Criterion{}, err
		}
		if match, err := scoring.LookupCriterion(existing, name); err == nil && match.ID != criterion.ID {
			return models.Criterion{}, ErrCriterionExists
		}
		criterion.Name = name
	}
	if req.MaxMarks != nil {
		criterion.MaxMarks = *req.MaxMarks
	}
	if req.Description != nil {
		criterion.Description = s.clean(*req.Description)
	}
	if req.Weight != nil {
		criterion.Weight = *req.Weight
	}
	if req.Position != nil {
		criterion.Position = *req.Position
	}
	if req.IsActive != nil {
		criterion.IsActive = *req.IsActive
	}

	if err := s.roster.UpdateCriterion(ctx, &criterion); err != nil {
		return models.Criterion{}, err
	}

	if err := s.syncActiveEvent(ctx, "criterion_updated", func(event *models.Event) {
		scoring.SyncCriterion(event, criterion)
	}); err != nil {
		return models.Criterion{}, err
	}

	s.audit(ctx, actor, "criterion.update", "criterion", string(criterion.ID), map[string]interface{}{"version": criterion.Version})
	return criterion, nil
}

func (s *configService) DeleteCriterion(ctx context.Context, actor ActivityActor, id string) error {
	criterionID := models.CriterionID(id)
	if err := s.roster.DeleteCriterion(ctx, criterionID); err != nil {
		return translateRosterError(err, scoring.ErrCriterionNotFound)
	}

	if err := s.syncActiveEvent(ctx, "criterion_deleted", func(event *models.Event) {
		scoring.CleanupCriterion(event, criterionID)
	}); err != nil {
		return err
	}

	s.audit(ctx, actor, "criterion.delete", "criterion", id, nil)
	return nil
}

func (s *configService) ListTeams(ctx context.Context, includeInactive bool) ([]models.Team, error) {
	return s.roster.ListTeams(ctx, includeInactive)
}

func (s *configService) CreateTeam(ctx context.Context, actor ActivityActor, req dto.TeamCreateRequest) (models.Team, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Team{}, err
	}

	if req.ID != 0 {
		if _, err := s.roster.GetTeam(ctx, req.ID); err == nil {
			return models.Team{}, ErrTeamExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Team{}, err
		}
	}

	team := models.Team{
		ID:           req.ID,
		Name:         s.clean(req.Name),
		Members:      datatypes.JSONSlice[string](s.cleanList(req.Members)),
		ProjectTitle: s.clean(req.ProjectTitle),
		Category:     s.clean(req.Category),
		IsActive:     activeOrDefault(req.IsActive),
	}
	if err := s.roster.CreateTeam(ctx, &team); err != nil {
		return models.Team{}, err
	}

	if team.IsActive {
		if err := s.syncActiveEvent(ctx, "team_created", func(event *models.Event) {
			scoring.AddTeam(event, team, s.now())
		}); err != nil {
			return models.Team{}, err
		}
	}

	s.audit(ctx, actor, "team.create", "team", fmt.Sprint(team.ID), map[string]interface{}{"name": team.Name})
	return team, nil
}

func (s *configService) UpdateTeam(ctx context.Context, actor ActivityActor, id uint, req dto.TeamUpdateRequest) (models.Team, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Team{}, err
	}

	team, err := s.roster.GetTeam(ctx, id)
	if err != nil {
		return models.Team{}, translateRosterError(err, scoring.ErrTeamNotFound)
	}

	if req.Name != nil {
		team.Name = s.clean(*req.Name)
	}
	if req.Members != nil {
		team.Members = datatypes.JSONSlice[string](s.cleanList(req.Members))
	}
	if req.ProjectTitle != nil {
		team.ProjectTitle = s.clean(*req.ProjectTitle)
	}
	if req.Category != nil {
		team.Category = s.clean(*req.Category)
	}
	if req.IsActive != nil {
		team.IsActive = *req.IsActive
	}

	if err := s.roster.UpdateTeam(ctx, &team); err != nil {
		return models.Team{}, err
	}

	if err := s.syncActiveEvent(ctx, "team_updated", func(event *models.Event) {
		if team.IsActive {
			scoring.AddTeam(event, team, s.now())
			return
		}
		scoring.SyncTeam(event, team)
	}); err != nil {
		return models.Team{}, err
	}

	s.audit(ctx, actor, "team.update", "team", fmt.Sprint(team.ID), map[string]interface{}{"version": team.Version})
	return team, nil
}

func (s *configService) DeleteTeam(ctx context.Context, actor ActivityActor, id uint) error {
	if err := s.roster.DeleteTeam(ctx, id); err != nil {
		return translateRosterError(err, scoring.ErrTeamNotFound)
	}

	if err := s.syncActiveEvent(ctx, "team_deleted", func(event *models.Event) {
		scoring.CleanupTeam(event, id)
	}); err != nil {
		return err
	}

	s.audit(ctx, actor, "team.delete", "team", fmt.Sprint(id), nil)
	return nil
}

func (s *configService) ListJuries(ctx context.Context, includeInactive bool) ([]models.Jury, error) {
	return s.roster.ListJuries(ctx, includeInactive)
}

func (s *configService) CreateJury(ctx context.Context, actor ActivityActor, req dto.JuryCreateRequest) (models.Jury, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Jury{}, err
	}

	if req.ID != 0 {
		if _, err := s.roster.GetJury(ctx, req.ID); err == nil {
			return models.Jury{}, ErrJuryExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Jury{}, err
		}
	}

	jury := models.Jury{
		ID:          req.ID,
		Name:        s.clean(req.Name),
		Designation: s.clean(req.Designation),
		Department:  s.clean(req.Department),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Expertise:   datatypes.JSONSlice[string](s.cleanList(req.Expertise)),
		IsActive:    activeOrDefault(req.IsActive),
	}
	if err := s.roster.CreateJury(ctx, &jury); err != nil {
		return models.Jury{}, err
	}

	if jury.IsActive {
		if err := s.syncActiveEvent(ctx, "jury_created", func(event *models.Event) {
			scoring.AddJury(event, jury, s.now())
		}); err != nil {
			return models.Jury{}, err
		}
	}

	s.audit(ctx, actor, "jury.create", "jury", fmt.Sprint(jury.ID), map[string]interface{}{"name": jury.Name, "email": jury.Email})
	return jury, nil
}

func (s *configService) UpdateJury(ctx context.Context, actor ActivityActor, id uint, req dto.JuryUpdateRequest) (models.Jury, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Jury{}, err
	}

	jury, err := s.roster.GetJury(ctx, id)
	if err != nil {
		return models.Jury{}, translateRosterError(err, scoring.ErrJuryNotFound)
	}

	if req.Name != nil {
		jury.Name = s.clean(*req.Name)
	}
	if req.Designation != nil {
		jury.Designation = s.clean(*req.Designation)
	}
	if req.Department != nil {
		jury.Department = s.clean(*req.Department)
	}
	if req.Email != nil {
		jury.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		jury.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Expertise != nil {
		jury.Expertise = datatypes.JSONSlice[string](s.cleanList(req.Expertise))
	}
	if req.IsActive != nil {
		jury.IsActive = *req.IsActive
	}

	if err := s.roster.UpdateJury(ctx, &jury); err != nil {
		return models.Jury{}, err
	}

	if err := s.syncActiveEvent(ctx, "jury_updated", func(event *models.Event) {
		if jury.IsActive {
			scoring.AddJury(event, jury, s.now())
			return
		}
		scoring.SyncJury(event, jury)
	}); err != nil {
		return models.Jury{}, err
	}

	s.audit(ctx, actor, "jury.update", "jury", fmt.Sprint(jury.ID), map[string]interface{}{"version": jury.Version})
	return jury, nil
}

func (s *configService) DeleteJury(ctx context.Context, actor ActivityActor, id uint) error {
	if err := s.roster.DeleteJury(ctx, id); err != nil {
		return translateRosterError(err, scoring.ErrJuryNotFound)
	}

	if err := s.syncActiveEvent(ctx, "jury_deleted", func(event *models.Event) {
		scoring.CleanupJury(event, id)
	}); err != nil {
		return err
	}

	s.audit(ctx, actor, "jury.delete", "jury", fmt.Sprint(id), nil)
	return nil
}

func (s *configService) ExportRoster(ctx context.Context) (dto.RosterDocument, error) {
	roster, err := s.roster.Load(ctx, true)
	if err != nil {
		return dto.RosterDocument{}, err
	}

	return dto.RosterDocument{
		Version:    rosterDocumentVersion,
		ExportedAt: s.now(),
		Criteria:   roster.Criteria,
		Teams:      roster.Teams,
		Juries:     roster.Juries,
	}, nil
}

// ImportRoster replaces the whole roster. The active event keeps its
// snapshots until it is re-initialised.
func (s *configService) ImportRoster(ctx context.Context, actor ActivityActor, payload []byte) (dto.ImportRosterResponse, error) {
	ctx, span := s.tracer.Start(ctx, "config.import_roster")
	defer span.End()

	doc, err := decodeRosterDocument(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid_roster")
		return dto.ImportRosterResponse{}, err
	}

	roster, err := s.toRoster(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid_roster")
		return dto.ImportRosterResponse{}, err
	}

	if err := s.roster.Replace(ctx, roster); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "replace_roster_failed")
		return dto.ImportRosterResponse{}, err
	}

	response := dto.ImportRosterResponse{
		Criteria: len(roster.Criteria),
		Teams:    len(roster.Teams),
		Juries:   len(roster.Juries),
	}
	span.SetAttributes(
		attribute.Int("roster.criteria", response.Criteria),
		attribute.Int("roster.teams", response.Teams),
		attribute.Int("roster.juries", response.Juries),
	)

	s.audit(ctx, actor, "roster.import", "roster", "roster", map[string]interface{}{
		"criteria": response.Criteria,
		"teams":    response.Teams,
		"juries":   response.Juries,
	})
	return response, nil
}

// LoadRosterFile seeds an empty roster from a YAML file. Without a file
// only the default criteria are seeded.
func (s *configService) LoadRosterFile(ctx context.Context, path string) error {
	empty, err := s.roster.IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		s.logger.Debug().Msg("roster already configured, skipping seed")
		return nil
	}

	var doc rosterDoc
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read roster file: %w", err)
		}
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRoster, err)
		}
	}

	roster, err := s.toRoster(doc)
	if err != nil {
		return err
	}
	if len(roster.Criteria) == 0 {
		roster.Criteria = models.DefaultCriteria()
	}

	if err := s.roster.Replace(ctx, roster); err != nil {
		return err
	}

	s.logger.Info().
		Str("path", path).
		Int("criteria", len(roster.Criteria)).
		Int("teams", len(roster.Teams)).
		Int("juries", len(roster.Juries)).
		Msg("roster seeded")
	return nil
}

// syncActiveEvent applies a roster change to the active event, if any.
func (s *configService) syncActiveEvent(ctx context.Context, reason string, apply func(event *models.Event)) error {
	if s.store == nil {
		return nil
	}

	_, err := s.store.Mutate(ctx, reason, func(event *models.Event) error {
		apply(event)
		return nil
	})
	if errors.Is(err, ErrNoActiveEvent) {
		return nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("reason", reason).Msg("failed to sync active event")
		return err
	}
	return nil
}

func (s *configService) audit(ctx context.Context, actor ActivityActor, action, entityType, entityID string, metadata map[string]interface{}) {
	record(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
	})
}

func (s *configService) clean(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(strings.TrimSpace(value)))
}

func (s *configService) cleanList(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := s.clean(value); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

// criterionSlug derives a stable id from a display name:
// "Technical Quality" becomes "technical_quality".
func criterionSlug(name string) models.CriterionID {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending {
				b.WriteByte('_')
				pending = false
			}
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			pending = true
		}
	}
	return models.CriterionID(b.String())
}

// lookupCriterionConflict finds a criterion sharing the id or the display name.
func lookupCriterionConflict(criteria []models.Criterion, id models.CriterionID, name string) (models.Criterion, error) {
	if match, err := scoring.LookupCriterion(criteria, string(id)); err == nil {
		return match, nil
	}
	return scoring.LookupCriterion(criteria, name)
}

func translateRosterError(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
