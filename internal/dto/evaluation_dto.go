package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/evalsuite-api/internal/models"
	"github.com/noah-isme/evalsuite-api/internal/scoring"
)

// SaveJuryScoresRequest carries scores for several teams of a jury, keyed by team id.
type SaveJuryScoresRequest struct {
	Scores   map[string]json.RawMessage `json:"scores" validate:"required"`
	AutoSave bool                       `json:"auto_save"`
}

// AutoSaveRequest carries an auto-save snapshot, keyed by team id.
type AutoSaveRequest struct {
	Scores map[string]json.RawMessage `json:"scores" validate:"required"`
}

// SaveTeamScoresRequest carries the scores for one team.
type SaveTeamScoresRequest struct {
	Scores scoring.RawScores `json:"scores" validate:"required"`
	Submit bool              `json:"submit"`
}

// SaveJuryScoresResponse reports a batch save.
type SaveJuryScoresResponse struct {
	JuryID          uint                    `json:"jury_id"`
	AutoSave        bool                    `json:"auto_save"`
	Updated         []models.TeamEvaluation `json:"updated"`
	Skipped         []scoring.SkippedTeam   `json:"skipped"`
	InvalidTeamKeys []string                `json:"invalid_team_keys,omitempty"`
	UpdatedTeams    int                     `json:"updated_teams"`
	LastAutoSave    *time.Time              `json:"last_auto_save,omitempty"`
	Statistics      models.Statistics       `json:"statistics"`
}

// SaveTeamScoresResponse reports a single team save.
type SaveTeamScoresResponse struct {
	JuryID     uint                  `json:"jury_id"`
	Submitted  bool                  `json:"submitted"`
	Evaluation models.TeamEvaluation `json:"evaluation"`
}

// JuryStatusResponse reports the progress of one jury.
type JuryStatusResponse struct {
	JuryID       uint                 `json:"jury_id"`
	Name         string               `json:"name"`
	Designation  string               `json:"designation,omitempty"`
	Progress     scoring.JuryStatus   `json:"progress"`
	AverageScore float64              `json:"average_score"`
	LastActivity time.Time            `json:"last_activity"`
	Teams        []TeamStatusResponse `json:"teams,omitempty"`
}

// TeamStatusResponse reports submission state for one team.
type TeamStatusResponse struct {
	TeamID       uint       `json:"team_id"`
	TeamName     string     `json:"team_name"`
	TotalScore   int        `json:"total_score"`
	IsSubmitted  bool       `json:"is_submitted"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	LastModified time.Time  `json:"last_modified"`
}

// OverallStatusResponse reports progress across all juries.
type OverallStatusResponse struct {
	EventID    string               `json:"event_id"`
	Statistics models.Statistics    `json:"statistics"`
	Juries     []JuryStatusResponse `json:"juries"`
}

// NewJuryStatusResponse summarises a jury's progress. Team rows are included
// only when withTeams is set.
func NewJuryStatusResponse(jury models.JuryEvaluations, withTeams bool) JuryStatusResponse {
	response := JuryStatusResponse{
		JuryID:       jury.JuryID,
		Name:         jury.Name,
		Designation:  jury.Designation,
		Progress:     scoring.JuryProgress(jury),
		AverageScore: jury.AverageScore,
		LastActivity: jury.LastActivity,
	}

	if withTeams {
		response.Teams = make([]TeamStatusResponse, 0, len(jury.TeamEvaluations))
		for _, team := range jury.TeamEvaluations {
			response.Teams = append(response.Teams, TeamStatusResponse{
				TeamID:       team.TeamID,
				TeamName:     team.TeamName,
				TotalScore:   team.TotalScore,
				IsSubmitted:  team.IsSubmitted,
				SubmittedAt:  team.SubmittedAt,
				LastModified: team.LastModified,
			})
		}
	}

	return response
}
