package scoring

import (
	"time"

	"github.com/noah-isme/evalsuite-api/internal/models"
)

// EventInfo carries the descriptive fields of an event.
type EventInfo struct {
	Title             string `json:"title"`
	Subtitle          string `json:"subtitle"`
	Year              string `json:"year"`
	Organization      string `json:"organization"`
	OrganizationShort string `json:"organization_short,omitempty"`
	SystemName        string `json:"system_name,omitempty"`
}

// EventInfoOf extracts the descriptive fields of an event.
func EventInfoOf(event *models.Event) EventInfo {
	return EventInfo{
		Title:             event.Title,
		Subtitle:          event.Subtitle,
		Year:              event.Year,
		Organization:      event.Organization,
		OrganizationShort: event.OrganizationShort,
		SystemName:        event.SystemName,
	}
}

// NewEvent builds an active event with one zeroed, unsubmitted evaluation
// for every jury and team pair.
func NewEvent(key string, info EventInfo, criteria []models.Criterion, juries []models.Jury, teams []models.Team, now time.Time) *models.Event {
	event := &models.Event{
		EventKey:          key,
		Title:             info.Title,
		Subtitle:          info.Subtitle,
		Year:              info.Year,
		Organization:      info.Organization,
		OrganizationShort: info.OrganizationShort,
		SystemName:        info.SystemName,
		Status:            models.EventStatusActive,
		Criteria:          append([]models.Criterion{}, criteria...),
		Juries:            make([]models.JuryEvaluations, 0, len(juries)),
		AutoSave:          models.AutoSaveSettings{Enabled: true, IntervalMS: 2000},
	}

	snapshots := make([]models.TeamEvaluation, 0, len(teams))
	for _, team := range teams {
		snapshots = append(snapshots, teamSnapshot(team))
	}

	for _, jury := range juries {
		entry := jurySnapshot(jury, now)
		entry.TeamEvaluations = freshEvaluations(snapshots, event.Criteria, now)
		event.Juries = append(event.Juries, entry)
	}

	return RecalculateStatistics(event)
}

// ResetEvaluations recreates every evaluation with zero scores. Jury and
// team snapshots are kept.
func ResetEvaluations(event *models.Event, now time.Time) *models.Event {
	if event == nil {
		return nil
	}

	snapshots := teamSnapshots(event)
	for i := range event.Juries {
		event.Juries[i].TeamEvaluations = freshEvaluations(snapshots, event.Criteria, now)
		event.Juries[i].LastActivity = now
	}
	event.Statistics.Leaderboard = nil

	return RecalculateStatistics(event)
}

// AddJury attaches a new jury with evaluations for every team already in
// the event. A jury that is already present only has its snapshot refreshed.
func AddJury(event *models.Event, jury models.Jury, now time.Time) *models.Event {
	if event == nil {
		return nil
	}
	if existing := event.FindJury(jury.ID); existing != nil {
		return SyncJury(event, jury)
	}

	entry := jurySnapshot(jury, now)
	entry.TeamEvaluations = freshEvaluations(teamSnapshots(event), event.Criteria, now)
	event.Juries = append(event.Juries, entry)
	return event
}

// AddTeam adds a zeroed evaluation for the team under every jury.
func AddTeam(event *models.Event, team models.Team, now time.Time) *models.Event {
	if event == nil {
		return nil
	}
	snapshot := teamSnapshot(team)
	for i := range event.Juries {
		if event.Juries[i].FindTeam(team.ID) != nil {
			continue
		}
		fresh := freshEvaluations([]models.TeamEvaluation{snapshot}, event.Criteria, now)
		event.Juries[i].TeamEvaluations = append(event.Juries[i].TeamEvaluations, fresh...)
	}
	return SyncTeam(event, team)
}

// AddCriterion appends a criterion to the event. Existing evaluations read
// the missing score as zero.
func AddCriterion(event *models.Event, criterion models.Criterion) *models.Event {
	if event == nil {
		return nil
	}
	for _, existing := range event.Criteria {
		if existing.ID == criterion.ID {
			return SyncCriterion(event, criterion)
		}
	}
	event.Criteria = append(event.Criteria, criterion)
	return event
}

// SyncJury copies roster changes onto the jury snapshot.
func SyncJury(event *models.Event, jury models.Jury) *models.Event {
	if event == nil {
		return nil
	}
	if existing := event.FindJury(jury.ID); existing != nil {
		existing.Name = jury.Name
		existing.Designation = jury.Designation
		existing.Department = jury.Department
		existing.Email = jury.Email
		existing.Phone = jury.Phone
		existing.Expertise = append([]string{}, jury.Expertise...)
		existing.IsActive = jury.IsActive
	}
	return event
}

// SyncTeam copies roster changes onto every evaluation of the team.
func SyncTeam(event *models.Event, team models.Team) *models.Event {
	if event == nil {
		return nil
	}
	for i := range event.Juries {
		if existing := event.Juries[i].FindTeam(team.ID); existing != nil {
			existing.TeamName = team.Name
			existing.TeamMembers = append([]string{}, team.Members...)
			existing.ProjectTitle = team.ProjectTitle
			existing.Category = team.Category
		}
	}
	return event
}

// SyncCriterion replaces the criterion snapshot and clamps stored scores to
// the new cap.
func SyncCriterion(event *models.Event, criterion models.Criterion) *models.Event {
	if event == nil {
		return nil
	}
	for i := range event.Criteria {
		if event.Criteria[i].ID != criterion.ID {
			continue
		}
		event.Criteria[i] = criterion
		for j := range event.Juries {
			for k := range event.Juries[j].TeamEvaluations {
				scores := event.Juries[j].TeamEvaluations[k].Scores
				if score, ok := scores[criterion.ID]; ok {
					scores[criterion.ID] = Clamp(score, criterion.MaxMarks)
				}
			}
		}
	}
	return event
}

func jurySnapshot(jury models.Jury, now time.Time) models.JuryEvaluations {
	return models.JuryEvaluations{
		JuryID:       jury.ID,
		Name:         jury.Name,
		Designation:  jury.Designation,
		Department:   jury.Department,
		Email:        jury.Email,
		Phone:        jury.Phone,
		Expertise:    append([]string{}, jury.Expertise...),
		IsActive:     jury.IsActive,
		LastActivity: now,
	}
}

func teamSnapshot(team models.Team) models.TeamEvaluation {
	return models.TeamEvaluation{
		TeamID:       team.ID,
		TeamName:     team.Name,
		TeamMembers:  append([]string{}, team.Members...),
		ProjectTitle: team.ProjectTitle,
		Category:     team.Category,
	}
}

// teamSnapshots lists each distinct team in the order it first appears.
func teamSnapshots(event *models.Event) []models.TeamEvaluation {
	seen := make(map[uint]struct{})
	snapshots := make([]models.TeamEvaluation, 0)
	for _, jury := range event.Juries {
		for _, team := range jury.TeamEvaluations {
			if _, ok := seen[team.TeamID]; ok {
				continue
			}
			seen[team.TeamID] = struct{}{}
			snapshots = append(snapshots, models.TeamEvaluation{
				TeamID:       team.TeamID,
				TeamName:     team.TeamName,
				TeamMembers:  append([]string{}, team.TeamMembers...),
				ProjectTitle: team.ProjectTitle,
				Category:     team.Category,
			})
		}
	}
	return snapshots
}

func freshEvaluations(snapshots []models.TeamEvaluation, criteria []models.Criterion, now time.Time) []models.TeamEvaluation {
	maxPossible := models.TotalMaxMarks(criteria)
	evaluations := make([]models.TeamEvaluation, 0, len(snapshots))
	for _, snapshot := range snapshots {
		scores := make(map[models.CriterionID]int, len(criteria))
		for _, criterion := range criteria {
			scores[criterion.ID] = 0
		}
		evaluation := snapshot
		evaluation.TeamMembers = append([]string{}, snapshot.TeamMembers...)
		evaluation.Scores = scores
		evaluation.TotalScore = 0
		evaluation.MaxPossible = maxPossible
		evaluation.IsSubmitted = false
		evaluation.SubmittedAt = nil
		evaluation.LastModified = now
		evaluations = append(evaluations, evaluation)
	}
	return evaluations
}
