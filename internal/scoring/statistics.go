package scoring

import (
	"math"

	"github.com/noah-isme/evalsuite-api/internal/models"
)

// JuryStatus summarises a jury's evaluation progress.
type JuryStatus struct {
	TotalTeams           int  `json:"total_teams"`
	SubmittedTeams       int  `json:"submitted_teams"`
	PendingTeams         int  `json:"pending_teams"`
	CompletionPercentage int  `json:"completion_percentage"`
	IsComplete           bool `json:"is_complete"`
}

// RecalculateStatistics refreshes every derived value on the event: team
// totals, per-jury counters and the event-wide statistics block. It must run
// before the event is persisted and is idempotent. The stored leaderboard is
// left untouched.
func RecalculateStatistics(event *models.Event) *models.Event {
	if event == nil {
		return nil
	}

	maxPossible := models.TotalMaxMarks(event.Criteria)
	teams := make(map[uint]struct{})
	activeJuries := 0
	totalEvaluations := 0
	completedEvaluations := 0

	for i := range event.Juries {
		jury := &event.Juries[i]
		if jury.IsActive {
			activeJuries++
		}

		submitted := 0
		submittedTotal := 0
		for j := range jury.TeamEvaluations {
			team := &jury.TeamEvaluations[j]
			team.TotalScore = TotalScore(team.Scores, event.Criteria)
			team.MaxPossible = maxPossible
			teams[team.TeamID] = struct{}{}

			if team.IsSubmitted {
				submitted++
				submittedTotal += team.TotalScore
			}
		}

		totalEvaluations += len(jury.TeamEvaluations)
		completedEvaluations += submitted

		jury.TotalTeamsEvaluated = submitted
		jury.AverageScore = 0
		if submitted > 0 {
			jury.AverageScore = Round2(float64(submittedTotal) / float64(submitted))
		}
	}

	event.Statistics.TotalJuries = activeJuries
	event.Statistics.TotalTeams = len(teams)
	event.Statistics.TotalEvaluations = totalEvaluations
	event.Statistics.CompletedEvaluations = completedEvaluations
	event.Statistics.CompletionPercentage = Percentage(completedEvaluations, totalEvaluations)

	return event
}

// JuryProgress reports submission progress for a single jury.
func JuryProgress(jury models.JuryEvaluations) JuryStatus {
	total := len(jury.TeamEvaluations)
	submitted := 0
	for _, team := range jury.TeamEvaluations {
		if team.IsSubmitted {
			submitted++
		}
	}

	return JuryStatus{
		TotalTeams:           total,
		SubmittedTeams:       submitted,
		PendingTeams:         total - submitted,
		CompletionPercentage: Percentage(submitted, total),
		IsComplete:           total > 0 && submitted == total,
	}
}

// Percentage returns part/whole as a rounded whole percentage, 0 when whole is 0.
func Percentage(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// Round2 rounds to two decimal places.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
