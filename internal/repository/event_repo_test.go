package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/evalsuite-api/internal/models"
	"github.com/noah-isme/evalsuite-api/internal/scoring"
)

func newTestEvent(key string) *models.Event {
	now := time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC)
	juries := []models.Jury{
		{ID: 1, Name: "Dr. Anita Sharma", Designation: "Professor", Department: "CSE", IsActive: true},
		{ID: 2, Name: "Prof. Rajesh Kumar", Designation: "Professor", Department: "ECE", IsActive: true},
	}
	teams := []models.Team{
		{ID: 1, Name: "Team Alpha", Members: []string{"Rahul", "Priya"}},
		{ID: 2, Name: "Team Beta", Members: []string{"Sneha"}},
	}
	return scoring.NewEvent(key, scoring.EventInfo{Title: "INTERNAL HACKATHON", Year: "2025"}, models.DefaultCriteria(), juries, teams, now)
}

func TestEventRepositoryCreateAndFindActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	event := newTestEvent("event_1")
	require.NoError(t, repo.Create(ctx, event))
	require.NotZero(t, event.ID)

	stored, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.Equal(t, "event_1", stored.EventKey)
	require.Len(t, stored.Juries, 2)
	require.Len(t, stored.Juries[0].TeamEvaluations, 2)
	require.Len(t, stored.Criteria, 5)
	require.Equal(t, 4, stored.Statistics.TotalEvaluations)
	require.Equal(t, 0, stored.Juries[0].TeamEvaluations[0].Scores["innovation"])

	byKey, err := repo.FindByKey(ctx, "event_1")
	require.NoError(t, err)
	require.Equal(t, event.ID, byKey.ID)

	_, err = repo.FindByKey(ctx, "missing")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.Create(ctx, newTestEvent("event_2"))
	require.ErrorIs(t, err, ErrActiveEventExists)
}

func TestEventRepositoryFindActiveWithoutEvent(t *testing.T) {
	repo := NewEventRepository(setupTestDB(t))

	_, err := repo.FindActive(context.Background())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEventRepositoryUpdateActiveRecalculates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newTestEvent("event_1")))

	updated, err := repo.UpdateActive(ctx, func(event *models.Event) error {
		_, err := scoring.UpdateScores(event, 1, 1, scoring.ScoreInput{
			"Innovation": 20, "Feasibility": 15, "Presentation": 12, "Impact": 18, "Technical Quality": 16,
		}, scoring.UpdateOptions{})
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, updated.Statistics.CompletedEvaluations)
	require.Equal(t, 25, updated.Statistics.CompletionPercentage)
	require.Len(t, updated.Statistics.Leaderboard, 1)
	require.Equal(t, int64(2), updated.Revision)

	stored, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), stored.Revision)
	require.Equal(t, 81, stored.Juries[0].TeamEvaluations[0].TotalScore)
	require.True(t, stored.Juries[0].TeamEvaluations[0].IsSubmitted)
	require.Equal(t, 81.0, stored.Juries[0].AverageScore)
	require.Equal(t, 81.0, stored.Statistics.Leaderboard[0].AverageScore)
}

func TestEventRepositoryUpdateActiveRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newTestEvent("event_1")))

	boom := errors.New("boom")
	_, err := repo.UpdateActive(ctx, func(event *models.Event) error {
		event.Title = "changed"
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.Equal(t, "INTERNAL HACKATHON", stored.Title)
	require.Equal(t, int64(1), stored.Revision)
}

func TestEventRepositoryListByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	archived := newTestEvent("event_old")
	archived.Status = models.EventStatusArchived
	require.NoError(t, repo.Create(ctx, archived))
	require.NoError(t, repo.Create(ctx, newTestEvent("event_new")))

	active, err := repo.List(ctx, models.EventStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "event_new", active[0].EventKey)

	all, err := repo.List(ctx, "all")
	require.NoError(t, err)
	require.Len(t, all, 2)

	active[0].Status = models.EventStatusCompleted
	require.NoError(t, repo.Save(ctx, &active[0]))
	_, err = repo.FindActive(ctx)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
