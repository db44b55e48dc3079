package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalsuite-api/internal/observability"
)

const (
	leaderboardView  = "leaderboard"
	consolidatedView = "consolidated"
)

// scoreboardCache stores rendered leaderboard and marksheet views in Redis.
// Entries are keyed by event revision, so a view rendered from an older
// load never answers for a newer one. A nil client turns every call into a
// miss.
type scoreboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func newScoreboardCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *scoreboardCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &scoreboardCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "scoreboard_cache").Logger(),
	}
}

func cacheKey(view, eventKey string, revision int64) string {
	return "evalsuite:" + view + ":" + eventKey + ":" + strconv.FormatInt(revision, 10)
}

func (c *scoreboardCache) get(ctx context.Context, view, eventKey string, revision int64, target interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}

	cached, err := c.client.Get(ctx, cacheKey(view, eventKey, revision)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("view", view).Msg("failed to read cache")
		}
		observability.CacheLookups().WithLabelValues(view, "miss").Inc()
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		c.logger.Warn().Err(err).Str("view", view).Msg("discarding unreadable cache entry")
		observability.CacheLookups().WithLabelValues(view, "miss").Inc()
		return false
	}

	observability.CacheLookups().WithLabelValues(view, "hit").Inc()
	return true
}

func (c *scoreboardCache) set(ctx context.Context, view, eventKey string, revision int64, value interface{}) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("view", view).Msg("failed to encode cache entry")
		return
	}

	if err := c.client.Set(ctx, cacheKey(view, eventKey, revision), payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("view", view).Msg("failed to store cache entry")
	}
}

// invalidate drops the views of a superseded revision.
func (c *scoreboardCache) invalidate(ctx context.Context, eventKey string, revision int64) {
	if c == nil || c.client == nil {
		return
	}

	keys := []string{cacheKey(leaderboardView, eventKey, revision), cacheKey(consolidatedView, eventKey, revision)}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Str("event_id", eventKey).Msg("failed to invalidate scoreboard cache")
	}
}
