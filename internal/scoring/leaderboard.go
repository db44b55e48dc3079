package scoring

import (
	"sort"

	"github.com/noah-isme/evalsuite-api/internal/models"
)

// DefaultTopTeams is the size of the condensed leaderboard view.
const DefaultTopTeams = 10

// GenerateLeaderboard ranks teams by their average submitted score across
// juries. Teams without any submitted evaluation are left out. Equal averages
// keep the order in which the teams first appear in the event, and every team
// receives its own consecutive rank.
func GenerateLeaderboard(event *models.Event) []models.LeaderboardEntry {
	if event == nil {
		return []models.LeaderboardEntry{}
	}

	type tally struct {
		name  string
		total int
		count int
	}

	order := make([]uint, 0)
	tallies := make(map[uint]*tally)

	for _, jury := range event.Juries {
		for _, team := range jury.TeamEvaluations {
			if !team.IsSubmitted {
				continue
			}
			t, ok := tallies[team.TeamID]
			if !ok {
				t = &tally{name: team.TeamName}
				tallies[team.TeamID] = t
				order = append(order, team.TeamID)
			}
			t.total += team.TotalScore
			t.count++
		}
	}

	entries := make([]models.LeaderboardEntry, 0, len(order))
	for _, teamID := range order {
		t := tallies[teamID]
		entries = append(entries, models.LeaderboardEntry{
			TeamID:          teamID,
			TeamName:        t.name,
			AverageScore:    Round2(float64(t.total) / float64(t.count)),
			TotalScore:      t.total,
			EvaluationCount: t.count,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AverageScore > entries[j].AverageScore
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}

// TopLeaderboard returns the first n ranked entries. A non-positive n returns
// the whole board.
func TopLeaderboard(entries []models.LeaderboardEntry, n int) []models.LeaderboardEntry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}
