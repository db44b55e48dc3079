package scoring

import (
	"testing"
	"time"

	"github.com/noah-isme/evalsuite-api/internal/models"
)

var fixedNow = time.Date(2025, 2, 14, 10, 0, 0, 0, time.UTC)

func testEvent(t *testing.T, juryCount, teamCount int) *models.Event {
	t.Helper()

	juries := make([]models.Jury, 0, juryCount)
	for i := 1; i <= juryCount; i++ {
		juries = append(juries, models.Jury{
			ID:          uint(i),
			Name:        []string{"Dr. Anita Sharma", "Prof. Rajesh Kumar", "Dr. Priya Mehta", "Prof. Suresh Patel"}[(i-1)%4],
			Designation: "Professor",
			Department:  "PMEC",
			IsActive:    true,
		})
	}

	teams := make([]models.Team, 0, teamCount)
	for i := 1; i <= teamCount; i++ {
		teams = append(teams, models.Team{
			ID:           uint(i),
			Name:         []string{"Team Alpha", "Team Beta", "Team Gamma", "Team Delta", "Team Epsilon"}[(i-1)%5],
			Members:      []string{"Rahul", "Priya"},
			ProjectTitle: "Project",
			Category:     "Smart Cities",
			IsActive:     true,
		})
	}

	info := EventInfo{Title: "INTERNAL HACKATHON", Year: "2025", Organization: "PMEC"}
	return NewEvent("event_test", info, models.DefaultCriteria(), juries, teams, fixedNow)
}

func fullMarks() ScoreInput {
	return ScoreInput{
		"Innovation":        20,
		"Feasibility":       15,
		"Presentation":      12,
		"Impact":            18,
		"Technical Quality": 16,
	}
}

func mustSubmit(t *testing.T, event *models.Event, juryID, teamID uint, input ScoreInput) models.TeamEvaluation {
	t.Helper()
	evaluation, err := UpdateScores(event, juryID, teamID, input, UpdateOptions{Now: fixedNow})
	if err != nil {
		t.Fatalf("submit jury %d team %d: %v", juryID, teamID, err)
	}
	return evaluation
}
