package models

import "time"

const (
	// EventStatusActive marks the event currently accepting evaluations.
	EventStatusActive = "active"
	// EventStatusCompleted marks an event whose scoring is closed.
	EventStatusCompleted = "completed"
	// EventStatusArchived marks an event kept only for reference.
	EventStatusArchived = "archived"
)

// Event is the persisted evaluation document. The nested jury/team/score
// hierarchy is stored as a single JSON column so every write replaces the
// whole tree at once.
type Event struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	EventKey          string            `gorm:"size:64;not null;uniqueIndex" json:"event_id"`
	Title             string            `gorm:"size:255;not null" json:"title"`
	Subtitle          string            `gorm:"size:255" json:"subtitle"`
	Year              string            `gorm:"size:16;not null" json:"year"`
	Organization      string            `gorm:"size:255" json:"organization"`
	OrganizationShort string            `gorm:"size:64" json:"organization_short"`
	SystemName        string            `gorm:"size:64" json:"system_name"`
	Status            string            `gorm:"size:16;not null;index" json:"status"`
	Criteria          []Criterion       `gorm:"serializer:json;type:text" json:"evaluation_criteria"`
	Juries            []JuryEvaluations `gorm:"serializer:json;type:text" json:"juries"`
	Statistics        Statistics        `gorm:"serializer:json;type:text" json:"statistics"`
	AutoSave          AutoSaveSettings  `gorm:"serializer:json;type:text" json:"auto_save"`
	Revision          int64             `gorm:"not null;default:0" json:"revision"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// IsActive reports whether the event is accepting evaluations.
func (e Event) IsActive() bool {
	return e.Status == EventStatusActive
}

// FindJury returns a pointer into the event's jury slice.
func (e *Event) FindJury(juryID uint) *JuryEvaluations {
	for i := range e.Juries {
		if e.Juries[i].JuryID == juryID {
			return &e.Juries[i]
		}
	}
	return nil
}

// JuryEvaluations holds one jury's snapshot and its team evaluations.
type JuryEvaluations struct {
	JuryID              uint             `json:"jury_id"`
	Name                string           `json:"name"`
	Designation         string           `json:"designation"`
	Department          string           `json:"department"`
	Email               string           `json:"email,omitempty"`
	Phone               string           `json:"phone,omitempty"`
	Expertise           []string         `json:"expertise,omitempty"`
	IsActive            bool             `json:"is_active"`
	TeamEvaluations     []TeamEvaluation `json:"team_evaluations"`
	TotalTeamsEvaluated int              `json:"total_teams_evaluated"`
	AverageScore        float64          `json:"average_score"`
	LastActivity        time.Time        `json:"last_activity"`
}

// FindTeam returns a pointer into the jury's evaluation slice.
func (j *JuryEvaluations) FindTeam(teamID uint) *TeamEvaluation {
	for i := range j.TeamEvaluations {
		if j.TeamEvaluations[i].TeamID == teamID {
			return &j.TeamEvaluations[i]
		}
	}
	return nil
}

// TeamEvaluation is one jury's scores for one team.
type TeamEvaluation struct {
	TeamID       uint                `json:"team_id"`
	TeamName     string              `json:"team_name"`
	TeamMembers  []string            `json:"team_members"`
	ProjectTitle string              `json:"project_title"`
	Category     string              `json:"category"`
	Scores       map[CriterionID]int `json:"scores"`
	TotalScore   int                 `json:"total_score"`
	MaxPossible  int                 `json:"max_possible"`
	IsSubmitted  bool                `json:"is_submitted"`
	SubmittedAt  *time.Time          `json:"submitted_at,omitempty"`
	LastModified time.Time           `json:"last_modified"`
}

// Statistics captures the derived event-wide counters.
type Statistics struct {
	TotalJuries          int                `json:"total_juries"`
	TotalTeams           int                `json:"total_teams"`
	TotalEvaluations     int                `json:"total_evaluations"`
	CompletedEvaluations int                `json:"completed_evaluations"`
	CompletionPercentage int                `json:"completion_percentage"`
	Leaderboard          []LeaderboardEntry `json:"leaderboard"`
}

// LeaderboardEntry is one ranked team on the cross-jury leaderboard.
type LeaderboardEntry struct {
	TeamID          uint    `json:"team_id"`
	TeamName        string  `json:"team_name"`
	AverageScore    float64 `json:"average_score"`
	TotalScore      int     `json:"total_score"`
	EvaluationCount int     `json:"evaluation_count"`
	Rank            int     `json:"rank"`
}

// AutoSaveSettings mirrors the client auto-save configuration.
type AutoSaveSettings struct {
	Enabled      bool       `json:"enabled"`
	IntervalMS   int        `json:"interval_ms"`
	LastAutoSave *time.Time `json:"last_auto_save,omitempty"`
}
