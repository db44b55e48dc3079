package dto

import (
	"time"

	"github.com/noah-isme/evalsuite-api/internal/models"
	"github.com/noah-isme/evalsuite-api/internal/scoring"
)

// InitializeEventRequest carries optional descriptive fields for a new event.
// Empty fields fall back to the configured defaults.
type InitializeEventRequest struct {
	EventID           string `json:"event_id" validate:"omitempty,max=64"`
	Title             string `json:"title" validate:"omitempty,max=255"`
	Subtitle          string `json:"subtitle" validate:"omitempty,max=255"`
	Year              string `json:"year" validate:"omitempty,max=16"`
	Organization      string `json:"organization" validate:"omitempty,max=255"`
	OrganizationShort string `json:"organization_short" validate:"omitempty,max=64"`
	SystemName        string `json:"system_name" validate:"omitempty,max=64"`
}

// UpdateEventStatusRequest changes the lifecycle status of the active event.
type UpdateEventStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active completed archived"`
}

// EventSummaryResponse is the list view of an event.
type EventSummaryResponse struct {
	ID         uint              `json:"id"`
	EventID    string            `json:"event_id"`
	Title      string            `json:"title"`
	Subtitle   string            `json:"subtitle"`
	Year       string            `json:"year"`
	Status     string            `json:"status"`
	Statistics models.Statistics `json:"statistics"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// EventListResponse wraps event summaries.
type EventListResponse struct {
	Items []EventSummaryResponse `json:"items"`
	Count int                    `json:"count"`
}

// InitializeEventResponse reports whether a new event was created.
type InitializeEventResponse struct {
	Created bool         `json:"created"`
	Event   models.Event `json:"event"`
}

// JuryViewResponse is the marking screen payload for one jury.
type JuryViewResponse struct {
	Event      JuryViewEvent                       `json:"event"`
	Jury       JuryViewJury                        `json:"jury"`
	Scores     map[uint]map[models.CriterionID]int `json:"scores"`
	Teams      []models.TeamEvaluation             `json:"teams"`
	LastSaved  time.Time                           `json:"last_saved"`
	Statistics JuryViewStatistics                  `json:"statistics"`
	Progress   scoring.JuryStatus                  `json:"progress"`
}

// JuryViewEvent carries the event header of the jury view.
type JuryViewEvent struct {
	EventID  string             `json:"event_id"`
	Title    string             `json:"title"`
	Subtitle string             `json:"subtitle"`
	Year     string             `json:"year"`
	Criteria []models.Criterion `json:"evaluation_criteria"`
}

// JuryViewJury describes the jury in the jury view.
type JuryViewJury struct {
	JuryID      uint     `json:"jury_id"`
	Name        string   `json:"name"`
	Designation string   `json:"designation"`
	Department  string   `json:"department"`
	Email       string   `json:"email,omitempty"`
	Expertise   []string `json:"expertise"`
}

// JuryViewStatistics holds the jury's derived counters.
type JuryViewStatistics struct {
	TotalTeamsEvaluated int     `json:"total_teams_evaluated"`
	AverageScore        float64 `json:"average_score"`
}

// LeaderboardResponse is the ranked leaderboard view.
type LeaderboardResponse struct {
	Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
	Statistics  models.Statistics         `json:"statistics"`
	GeneratedAt time.Time                 `json:"generated_at"`
	CacheHit    bool                      `json:"cache_hit"`
}

// ConsolidatedResponse is the consolidated marksheet view.
type ConsolidatedResponse struct {
	scoring.Marksheet
	CacheHit bool `json:"cache_hit"`
}

// NewEventSummaryResponse converts an event into its list view.
func NewEventSummaryResponse(event models.Event) EventSummaryResponse {
	return EventSummaryResponse{
		ID:         event.ID,
		EventID:    event.EventKey,
		Title:      event.Title,
		Subtitle:   event.Subtitle,
		Year:       event.Year,
		Status:     event.Status,
		Statistics: event.Statistics,
		CreatedAt:  event.CreatedAt,
		UpdatedAt:  event.UpdatedAt,
	}
}

// NewJuryViewResponse builds the marking screen payload for a jury.
func NewJuryViewResponse(event models.Event, jury models.JuryEvaluations) JuryViewResponse {
	scores := make(map[uint]map[models.CriterionID]int, len(jury.TeamEvaluations))
	for _, team := range jury.TeamEvaluations {
		row := make(map[models.CriterionID]int, len(event.Criteria))
		for _, criterion := range event.Criteria {
			row[criterion.ID] = team.Scores[criterion.ID]
		}
		scores[team.TeamID] = row
	}

	expertise := append([]string{}, jury.Expertise...)

	return JuryViewResponse{
		Event: JuryViewEvent{
			EventID:  event.EventKey,
			Title:    event.Title,
			Subtitle: event.Subtitle,
			Year:     event.Year,
			Criteria: event.Criteria,
		},
		Jury: JuryViewJury{
			JuryID:      jury.JuryID,
			Name:        jury.Name,
			Designation: jury.Designation,
			Department:  jury.Department,
			Email:       jury.Email,
			Expertise:   expertise,
		},
		Scores:    scores,
		Teams:     jury.TeamEvaluations,
		LastSaved: jury.LastActivity,
		Statistics: JuryViewStatistics{
			TotalTeamsEvaluated: jury.TotalTeamsEvaluated,
			AverageScore:        jury.AverageScore,
		},
		Progress: scoring.JuryProgress(jury),
	}
}
