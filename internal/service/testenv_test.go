package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/evalsuite-api/internal/database"
	"github.com/noah-isme/evalsuite-api/internal/dto"
	"github.com/noah-isme/evalsuite-api/internal/models"
	"github.com/noah-isme/evalsuite-api/internal/repository"
	"github.com/noah-isme/evalsuite-api/internal/scoring"
)

var testNow = time.Date(2025, 2, 14, 10, 0, 0, 0, time.UTC)

type memoryActivityRepo struct {
	mu      sync.Mutex
	entries []models.ActivityLog
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = testNow
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]models.ActivityLog, 0, len(m.entries))
	for _, entry := range m.entries {
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && entry.EntityType != filter.EntityType {
			continue
		}
		matched = append(matched, entry)
	}

	total := int64(len(matched))
	if filter.PageSize > 0 {
		page := max(filter.Page, 1)
		start := min((page-1)*filter.PageSize, len(matched))
		end := min(start+filter.PageSize, len(matched))
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (m *memoryActivityRepo) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

type serviceEnv struct {
	db          *gorm.DB
	mini        *miniredis.Miniredis
	roster      repository.RosterRepository
	events      repository.EventRepository
	activity    *memoryActivityRepo
	broadcaster ScoreboardBroadcaster
	store       *ActiveEventStore
	eventSvc    EventService
	evalSvc     EvaluationService
	configSvc   ConfigService
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())

	env := &serviceEnv{
		db:       db,
		mini:     mini,
		roster:   repository.NewRosterRepository(db),
		events:   repository.NewEventRepository(db),
		activity: &memoryActivityRepo{},
	}

	activitySvc := NewActivityService(env.activity, logger)
	env.broadcaster = NewScoreboardBroadcaster(nil, nil, "", logger)
	env.store = NewActiveEventStore(env.events, redisClient, time.Minute, env.broadcaster, logger)
	env.eventSvc = NewEventService(env.store, env.events, env.roster, activitySvc, validate, EventDefaults{
		Title:        "INTERNAL HACKATHON",
		Subtitle:     "Jury Evaluation",
		Organization: "PMEC",
		SystemName:   "EvalSuite",
	}, logger)
	env.evalSvc = NewEvaluationService(env.store, validate, logger)
	env.configSvc = NewConfigService(env.roster, env.store, activitySvc, validate, logger)

	return env
}

// seedRoster stores the default criteria with the requested number of
// juries and teams.
func (e *serviceEnv) seedRoster(t *testing.T, juryCount, teamCount int) {
	t.Helper()

	roster := repository.Roster{Criteria: models.DefaultCriteria()}
	for i := 1; i <= juryCount; i++ {
		roster.Juries = append(roster.Juries, models.Jury{
			ID:          uint(i),
			Name:        fmt.Sprintf("Jury %d", i),
			Designation: "Professor",
			Department:  "PMEC",
			Email:       fmt.Sprintf("jury%d@example.com", i),
			IsActive:    true,
		})
	}
	for i := 1; i <= teamCount; i++ {
		roster.Teams = append(roster.Teams, models.Team{
			ID:           uint(i),
			Name:         fmt.Sprintf("Team %d", i),
			Members:      []string{"Rahul", "Priya"},
			ProjectTitle: fmt.Sprintf("Project %d", i),
			Category:     "Smart Cities",
			IsActive:     true,
		})
	}
	require.NoError(t, e.roster.Replace(context.Background(), roster))
}

// initialize seeds the roster and creates the active event.
func (e *serviceEnv) initialize(t *testing.T, juryCount, teamCount int) models.Event {
	t.Helper()
	e.seedRoster(t, juryCount, teamCount)

	resp, err := e.eventSvc.Initialize(context.Background(), ActivityActor{ID: 1, Role: "admin"}, dtoInitialize("event_test"))
	require.NoError(t, err)
	require.True(t, resp.Created)
	return resp.Event
}

func fullMarksRaw() scoring.RawScores {
	raw := make(scoring.RawScores)
	for key, value := range fullMarks() {
		raw[key] = float64(value)
	}
	return raw
}

func fullMarks() scoring.ScoreInput {
	return scoring.ScoreInput{
		"innovation":        20,
		"feasibility":       15,
		"presentation":      12,
		"impact":            18,
		"technical_quality": 16,
	}
}

func dtoInitialize(key string) dto.InitializeEventRequest {
	return dto.InitializeEventRequest{EventID: key}
}

var gormAllowGlobal = gorm.Session{AllowGlobalUpdate: true}
