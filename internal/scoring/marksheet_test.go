package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateConsolidatedMarksheetAverages(t *testing.T) {
	event := testEvent(t, 2, 2)
	mustSubmit(t, event, 1, 1, fullMarks())

	sheet := GenerateConsolidatedMarksheet(event, fixedNow)
	require.Len(t, sheet.Teams, 2)
	require.Len(t, sheet.Juries, 2)
	require.Len(t, sheet.Criteria, 5)
	require.Equal(t, fixedNow, sheet.GeneratedAt)
	require.Equal(t, "INTERNAL HACKATHON", sheet.EventInfo.Title)

	alpha := sheet.Teams[0]
	require.Equal(t, uint(1), alpha.TeamID)
	require.Equal(t, 1, alpha.SubmittedJuries)
	require.Equal(t, 81, alpha.TotalScore)
	require.Equal(t, 81.0, alpha.AverageScore)
	require.Equal(t, 20.0, alpha.Criteria["innovation"].Average)
	require.Equal(t, []int{20}, alpha.Criteria["innovation"].Individual)
	require.Contains(t, alpha.JuryScores, uint(1))
	require.NotContains(t, alpha.JuryScores, uint(2))
	require.Equal(t, 81, alpha.JuryScores[1].Total)
	require.Equal(t, "Dr. Anita Sharma", alpha.JuryScores[1].JuryName)
}

func TestGenerateConsolidatedMarksheetKeepsUnsubmittedTeams(t *testing.T) {
	event := testEvent(t, 2, 2)
	mustSubmit(t, event, 2, 2, ScoreInput{"Innovation": 12})

	sheet := GenerateConsolidatedMarksheet(event, fixedNow)
	require.Len(t, sheet.Teams, 2)

	require.Equal(t, uint(2), sheet.Teams[0].TeamID)
	unscored := sheet.Teams[1]
	require.Equal(t, uint(1), unscored.TeamID)
	require.Zero(t, unscored.SubmittedJuries)
	require.Zero(t, unscored.TotalScore)
	require.Zero(t, unscored.AverageScore)
	require.Empty(t, unscored.Criteria)
	require.Empty(t, unscored.JuryScores)
}

func TestGenerateConsolidatedMarksheetMultipleJuries(t *testing.T) {
	event := testEvent(t, 3, 1)
	mustSubmit(t, event, 1, 1, ScoreInput{"Innovation": 20, "Impact": 10})
	mustSubmit(t, event, 2, 1, ScoreInput{"Innovation": 15, "Impact": 12})
	mustSubmit(t, event, 3, 1, ScoreInput{"Innovation": 11, "Impact": 9})

	team := GenerateConsolidatedMarksheet(event, fixedNow).Teams[0]
	require.Equal(t, 3, team.SubmittedJuries)
	require.Equal(t, 77, team.TotalScore)
	require.Equal(t, 25.67, team.AverageScore)
	require.Equal(t, 15.33, team.Criteria["innovation"].Average)
	require.Equal(t, []int{20, 15, 11}, team.Criteria["innovation"].Individual)
	require.Equal(t, 0.0, team.Criteria["presentation"].Average)
}

func TestGenerateConsolidatedMarksheetNilEvent(t *testing.T) {
	sheet := GenerateConsolidatedMarksheet(nil, fixedNow)
	require.NotNil(t, sheet.Teams)
	require.Empty(t, sheet.Teams)
}
