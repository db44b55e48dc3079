package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/evalsuite-api/internal/models"
	"github.com/noah-isme/evalsuite-api/internal/repository"
)

// ActiveEventStore serialises read-modify-write cycles on the active event
// within this process. Every successful write invalidates the cached views
// and pushes a leaderboard update when the ranking changed.
type ActiveEventStore struct {
	repo        repository.EventRepository
	cache       *scoreboardCache
	broadcaster ScoreboardBroadcaster
	logger      zerolog.Logger
	mu          sync.Mutex
	now         func() time.Time
}

// NewActiveEventStore constructs the store. The redis client and the
// broadcaster are optional.
func NewActiveEventStore(repo repository.EventRepository, redisClient *redis.Client, cacheTTL time.Duration, broadcaster ScoreboardBroadcaster, logger zerolog.Logger) *ActiveEventStore {
	return &ActiveEventStore{
		repo:        repo,
		cache:       newScoreboardCache(redisClient, cacheTTL, logger),
		broadcaster: broadcaster,
		logger:      logger.With().Str("component", "active_event_store").Logger(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Load returns the active event.
func (s *ActiveEventStore) Load(ctx context.Context) (models.Event, error) {
	event, err := s.repo.FindActive(ctx)
	if err != nil {
		return models.Event{}, translateEventError(err)
	}
	return event, nil
}

// Create persists a new active event.
func (s *ActiveEventStore) Create(ctx context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Create(ctx, event); err != nil {
		return err
	}

	s.publish(ctx, *event, "initialize")
	return nil
}

// Mutate applies fn to the active event and saves it. Errors returned by fn
// abort the write.
func (s *ActiveEventStore) Mutate(ctx context.Context, reason string, fn func(event *models.Event) error) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		before   []models.LeaderboardEntry
		revision int64
	)
	updated, err := s.repo.UpdateActive(ctx, func(event *models.Event) error {
		before = slices.Clone(event.Statistics.Leaderboard)
		revision = event.Revision
		return fn(event)
	})
	if err != nil {
		return models.Event{}, translateEventError(err)
	}

	s.cache.invalidate(ctx, updated.EventKey, revision)
	if !slices.Equal(before, updated.Statistics.Leaderboard) {
		s.publish(ctx, updated, reason)
	}

	return updated, nil
}

func (s *ActiveEventStore) publish(ctx context.Context, event models.Event, reason string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Publish(ctx, LeaderboardUpdate{
		EventID:     event.EventKey,
		Reason:      reason,
		Leaderboard: event.Statistics.Leaderboard,
		Statistics:  event.Statistics,
		SentAt:      s.now(),
	})
}

func translateEventError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoActiveEvent
	}
	return err
}
