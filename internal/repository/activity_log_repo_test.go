package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/evalsuite-api/internal/models"
)

func TestActivityLogRepositoryListFiltersAndPaginates(t *testing.T) {
	repo := NewActivityLogRepository(setupTestDB(t))
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	entries := []models.ActivityLog{
		{ActorRole: "admin", Action: "team.create", EntityType: "team", EntityID: "1", CreatedAt: base},
		{ActorRole: "admin", Action: "team.update", EntityType: "team", EntityID: "1", CreatedAt: base.Add(time.Minute),
			Metadata: datatypes.JSONMap{"version": 2}},
		{ActorRole: "system", Action: "event.initialize", EntityType: "event", EntityID: "event_1", CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range entries {
		require.NoError(t, repo.Create(ctx, &entries[i]))
	}

	teamEntries, total, err := repo.List(ctx, ActivityLogFilter{EntityType: "team"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Equal(t, "team.update", teamEntries[0].Action)
	require.EqualValues(t, 2, teamEntries[0].Metadata["version"])

	paged, total, err := repo.List(ctx, ActivityLogFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, paged, 1)
	require.Equal(t, "team.create", paged[0].Action)

	system, total, err := repo.List(ctx, ActivityLogFilter{ActorRole: "system"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "event.initialize", system[0].Action)

	since := base.Add(90 * time.Second)
	recent, _, err := repo.List(ctx, ActivityLogFilter{Since: &since})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "event_1", recent[0].EntityID)
}
