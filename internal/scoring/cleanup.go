package scoring

import (
	"slices"

	"github.com/noah-isme/evalsuite-api/internal/models"
)

// CleanupJury removes a jury and its whole evaluation subtree.
func CleanupJury(event *models.Event, juryID uint) *models.Event {
	if event == nil {
		return nil
	}
	event.Juries = slices.DeleteFunc(event.Juries, func(jury models.JuryEvaluations) bool {
		return jury.JuryID == juryID
	})
	return event
}

// CleanupTeam removes a team's evaluation from every jury.
func CleanupTeam(event *models.Event, teamID uint) *models.Event {
	if event == nil {
		return nil
	}
	for i := range event.Juries {
		event.Juries[i].TeamEvaluations = slices.DeleteFunc(event.Juries[i].TeamEvaluations, func(team models.TeamEvaluation) bool {
			return team.TeamID == teamID
		})
	}
	return event
}

// CleanupCriterion drops a criterion from the event and removes its score
// from every evaluation. Totals are not re-summed here; the next
// RecalculateStatistics call brings them back in line.
func CleanupCriterion(event *models.Event, criterionID models.CriterionID) *models.Event {
	if event == nil {
		return nil
	}
	event.Criteria = slices.DeleteFunc(event.Criteria, func(criterion models.Criterion) bool {
		return criterion.ID == criterionID
	})
	for i := range event.Juries {
		for j := range event.Juries[i].TeamEvaluations {
			delete(event.Juries[i].TeamEvaluations[j].Scores, criterionID)
		}
	}
	return event
}
