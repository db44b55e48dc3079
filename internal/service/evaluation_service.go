package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/evalsuite-api/internal/dto"
	"github.com/noah-isme/evalsuite-api/internal/models"
	"github.com/noah-isme/evalsuite-api/internal/observability"
	"github.com/noah-isme/evalsuite-api/internal/scoring"
)

// errNothingApplied aborts a batch write in which no team was updated.
var errNothingApplied = errors.New("no team was updated")

// EvaluationService records jury scores against the active event.
type EvaluationService interface {
	SaveJuryScores(ctx context.Context, juryID uint, scores map[uint]scoring.ScoreInput, autoSave bool) (dto.SaveJuryScoresResponse, error)
	SaveTeamScores(ctx context.Context, juryID, teamID uint, req dto.SaveTeamScoresRequest) (dto.SaveTeamScoresResponse, error)
	JuryStatus(ctx context.Context, juryID uint) (dto.JuryStatusResponse, error)
	OverallStatus(ctx context.Context) (dto.OverallStatusResponse, error)
	ExportJuryCSV(ctx context.Context, juryID uint) ([]byte, error)
}

type evaluationService struct {
	store     *ActiveEventStore
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewEvaluationService constructs the evaluation service.
func NewEvaluationService(store *ActiveEventStore, validate *validator.Validate, logger zerolog.Logger) EvaluationService {
	return &evaluationService{
		store:     store,
		validator: validate,
		logger:    logger.With().Str("component", "evaluation_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/evalsuite-api/internal/service/evaluation"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *evaluationService) SaveJuryScores(ctx context.Context, juryID uint, scores map[uint]scoring.ScoreInput, autoSave bool) (dto.SaveJuryScoresResponse, error) {
	ctx, span := s.tracer.Start(ctx, "evaluations.save_jury", trace.WithAttributes(
		attribute.Int("jury.id", int(juryID)),
		attribute.Int("evaluations.teams", len(scores)),
		attribute.Bool("evaluations.auto_save", autoSave),
	))
	defer span.End()

	if scores == nil {
		span.SetStatus(codes.Error, "invalid_scores")
		return dto.SaveJuryScoresResponse{}, scoring.ErrInvalidInput
	}

	var result scoring.BatchResult
	event, err := s.store.Mutate(ctx, "score_update", func(event *models.Event) error {
		var applyErr error
		result, applyErr = scoring.UpdateScoresBatch(event, juryID, scores, scoring.UpdateOptions{
			AutoSave: autoSave,
			Now:      s.now(),
		})
		if applyErr == nil && len(result.Updated) == 0 {
			return errNothingApplied
		}
		return applyErr
	})
	if errors.Is(err, errNothingApplied) {
		event, err = s.store.Load(ctx)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save_jury_failed")
		return dto.SaveJuryScoresResponse{}, err
	}

	observability.ScoreUpdates().WithLabelValues(updateMode(autoSave)).Add(float64(len(result.Updated)))
	if len(result.Skipped) > 0 {
		observability.BatchSkippedTeams().Add(float64(len(result.Skipped)))
		s.logger.Warn().
			Uint("jury_id", juryID).
			Interface("skipped_team_ids", result.SkippedIDs()).
			Msg("skipped teams during batch score update")
	}

	s.logger.Info().
		Uint("jury_id", juryID).
		Int("updated", len(result.Updated)).
		Bool("auto_save", autoSave).
		Msg("jury scores saved")

	return dto.SaveJuryScoresResponse{
		JuryID:       juryID,
		AutoSave:     autoSave,
		Updated:      result.Updated,
		Skipped:      result.Skipped,
		UpdatedTeams: len(result.Updated),
		LastAutoSave: event.AutoSave.LastAutoSave,
		Statistics:   event.Statistics,
	}, nil
}

func (s *evaluationService) SaveTeamScores(ctx context.Context, juryID, teamID uint, req dto.SaveTeamScoresRequest) (dto.SaveTeamScoresResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SaveTeamScoresResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "evaluations.save_team", trace.WithAttributes(
		attribute.Int("jury.id", int(juryID)),
		attribute.Int("team.id", int(teamID)),
		attribute.Bool("evaluations.submit", req.Submit),
	))
	defer span.End()

	var evaluation models.TeamEvaluation
	_, err := s.store.Mutate(ctx, "score_update", func(event *models.Event) error {
		var applyErr error
		evaluation, applyErr = scoring.UpdateScores(event, juryID, teamID, req.Scores.Input(), scoring.UpdateOptions{
			AutoSave: !req.Submit,
			Now:      s.now(),
		})
		return applyErr
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save_team_failed")
		return dto.SaveTeamScoresResponse{}, err
	}

	observability.ScoreUpdates().WithLabelValues(updateMode(!req.Submit)).Inc()

	return dto.SaveTeamScoresResponse{
		JuryID:     juryID,
		Submitted:  evaluation.IsSubmitted,
		Evaluation: evaluation,
	}, nil
}

func (s *evaluationService) JuryStatus(ctx context.Context, juryID uint) (dto.JuryStatusResponse, error) {
	event, err := s.store.Load(ctx)
	if err != nil {
		return dto.JuryStatusResponse{}, err
	}

	jury := event.FindJury(juryID)
	if jury == nil {
		return dto.JuryStatusResponse{}, fmt.Errorf("%w: jury %d", scoring.ErrJuryNotFound, juryID)
	}

	return dto.NewJuryStatusResponse(*jury, true), nil
}

func (s *evaluationService) OverallStatus(ctx context.Context) (dto.OverallStatusResponse, error) {
	event, err := s.store.Load(ctx)
	if err != nil {
		return dto.OverallStatusResponse{}, err
	}

	juries := make([]dto.JuryStatusResponse, 0, len(event.Juries))
	for _, jury := range event.Juries {
		juries = append(juries, dto.NewJuryStatusResponse(jury, false))
	}

	return dto.OverallStatusResponse{
		EventID:    event.EventKey,
		Statistics: event.Statistics,
		Juries:     juries,
	}, nil
}

// ExportJuryCSV renders one row per team evaluation of the jury, with one
// column per configured criterion.
func (s *evaluationService) ExportJuryCSV(ctx context.Context, juryID uint) ([]byte, error) {
	event, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	jury := event.FindJury(juryID)
	if jury == nil {
		return nil, fmt.Errorf("%w: jury %d", scoring.ErrJuryNotFound, juryID)
	}

	header := []string{"TeamID", "TeamName", "ProjectTitle", "Category"}
	for _, criterion := range event.Criteria {
		header = append(header, criterion.Name)
	}
	header = append(header, "TotalMarks", "MaxPossible", "IsSubmitted", "SubmittedAt", "LastModified")

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, team := range jury.TeamEvaluations {
		row := []string{
			strconv.FormatUint(uint64(team.TeamID), 10),
			team.TeamName,
			team.ProjectTitle,
			team.Category,
		}
		for _, criterion := range event.Criteria {
			row = append(row, strconv.Itoa(team.Scores[criterion.ID]))
		}

		submittedAt := ""
		if team.SubmittedAt != nil {
			submittedAt = team.SubmittedAt.UTC().Format(time.RFC3339)
		}
		row = append(row,
			strconv.Itoa(team.TotalScore),
			strconv.Itoa(team.MaxPossible),
			strconv.FormatBool(team.IsSubmitted),
			submittedAt,
			team.LastModified.UTC().Format(time.RFC3339),
		)

		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func updateMode(autoSave bool) string {
	if autoSave {
		return "autosave"
	}
	return "explicit"
}
