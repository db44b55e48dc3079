package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalsuite-api/internal/models"
	"github.com/noah-isme/evalsuite-api/internal/observability"
)

const (
	leaderboardBufferSize = 8
	// relayedIDWindow bounds how many remote update ids are remembered for
	// de-duplication across relay transports.
	relayedIDWindow = 256
)

// LeaderboardUpdate is pushed to live leaderboard subscribers.
type LeaderboardUpdate struct {
	EventID     string                    `json:"event_id"`
	Reason      string                    `json:"reason"`
	Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
	Statistics  models.Statistics         `json:"statistics"`
	SentAt      time.Time                 `json:"sent_at"`
}

// ScoreboardBroadcaster fans leaderboard updates out to local subscribers and
// to other API nodes through Redis pub/sub and NATS.
type ScoreboardBroadcaster interface {
	Publish(ctx context.Context, update LeaderboardUpdate)
	Subscribe() (<-chan LeaderboardUpdate, func())
	Start(ctx context.Context)
}

type scoreboardBroadcaster struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	nodeID       string

	mu          sync.RWMutex
	subscribers map[chan LeaderboardUpdate]struct{}

	seenMu    sync.Mutex
	seen      map[string]struct{}
	seenOrder []string
}

type scoreboardEnvelope struct {
	ID     string            `json:"id"`
	Source string            `json:"source"`
	Update LeaderboardUpdate `json:"update"`
}

// NewScoreboardBroadcaster constructs the leaderboard fan-out. Nil clients
// disable the matching transport.
func NewScoreboardBroadcaster(redisClient *redis.Client, natsConn *nats.Conn, channel string, logger zerolog.Logger) ScoreboardBroadcaster {
	subject := ""
	if channel != "" {
		subject = strings.ReplaceAll(channel, ":", ".")
	}

	return &scoreboardBroadcaster{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "scoreboard_broadcaster").Logger(),
		nodeID:       uuid.NewString(),
		subscribers:  make(map[chan LeaderboardUpdate]struct{}),
		seen:         make(map[string]struct{}, relayedIDWindow),
	}
}

func (b *scoreboardBroadcaster) Start(ctx context.Context) {
	if b.redis != nil && b.redisChannel != "" {
		go b.consumeRedis(ctx)
	}
	if b.nats != nil && b.natsSubject != "" {
		b.consumeNATS(ctx)
	}
}

func (b *scoreboardBroadcaster) Publish(ctx context.Context, update LeaderboardUpdate) {
	if update.SentAt.IsZero() {
		update.SentAt = time.Now().UTC()
	}

	b.broadcast(update)

	payload, err := json.Marshal(scoreboardEnvelope{ID: uuid.NewString(), Source: b.nodeID, Update: update})
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to encode leaderboard update")
		return
	}

	if b.redis != nil && b.redisChannel != "" {
		if err := b.redis.Publish(ctx, b.redisChannel, payload).Err(); err != nil {
			b.logger.Warn().Err(err).Msg("failed to publish leaderboard update to redis")
		}
	}

	if b.nats != nil && b.natsSubject != "" {
		if err := b.nats.Publish(b.natsSubject, payload); err != nil {
			b.logger.Warn().Err(err).Msg("failed to publish leaderboard update to nats")
		}
	}
}

func (b *scoreboardBroadcaster) Subscribe() (<-chan LeaderboardUpdate, func()) {
	ch := make(chan LeaderboardUpdate, leaderboardBufferSize)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	observability.LeaderboardSubscribers().Inc()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, ch)
			close(ch)
			b.mu.Unlock()
			observability.LeaderboardSubscribers().Dec()
		})
	}

	return ch, cancel
}

// broadcast delivers to local subscribers. Slow consumers miss updates
// rather than block publishers.
func (b *scoreboardBroadcaster) broadcast(update LeaderboardUpdate) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers {
		select {
		case ch <- update:
		default:
		}
	}
}

func (b *scoreboardBroadcaster) consumeRedis(ctx context.Context) {
	pubsub := b.redis.Subscribe(ctx, b.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, redis.ErrClosed) {
				return
			}
			b.logger.Error().Err(err).Msg("leaderboard redis subscription closed")
			return
		}
		b.handleEnvelope([]byte(msg.Payload))
	}
}

func (b *scoreboardBroadcaster) consumeNATS(ctx context.Context) {
	sub, err := b.nats.Subscribe(b.natsSubject, func(msg *nats.Msg) {
		b.handleEnvelope(msg.Data)
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to subscribe to nats leaderboard subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			b.logger.Warn().Err(err).Msg("failed to drain leaderboard nats subscription")
		}
	}()
}

func (b *scoreboardBroadcaster) handleEnvelope(payload []byte) {
	var envelope scoreboardEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		b.logger.Warn().Err(err).Msg("invalid leaderboard update payload")
		return
	}

	if envelope.Source == b.nodeID {
		return
	}

	// With both redis and nats configured every update arrives twice.
	if envelope.ID != "" && !b.markRelayed(envelope.ID) {
		return
	}

	b.broadcast(envelope.Update)
}

// markRelayed records id and reports whether it was new.
func (b *scoreboardBroadcaster) markRelayed(id string) bool {
	b.seenMu.Lock()
	defer b.seenMu.Unlock()

	if _, ok := b.seen[id]; ok {
		return false
	}

	if len(b.seenOrder) >= relayedIDWindow {
		delete(b.seen, b.seenOrder[0])
		b.seenOrder = b.seenOrder[1:]
	}
	b.seen[id] = struct{}{}
	b.seenOrder = append(b.seenOrder, id)
	return true
}
