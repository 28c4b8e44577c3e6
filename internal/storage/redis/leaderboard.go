package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/rpgroster-go/internal/model"
	"github.com/mcoot/rpgroster-go/internal/storage"
)

// Leaderboard is a Redis-backed battle tally using sorted sets
type Leaderboard struct {
	client *redis.Client
}

// New connects to Redis and returns a leaderboard
func New(cfg Config) (*Leaderboard, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Leaderboard{client: client}, nil
}

// NewWithClient creates a leaderboard with an existing client (for testing)
func NewWithClient(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

// Close closes the Redis connection
func (l *Leaderboard) Close() error {
	return l.client.Close()
}

// Ensure Leaderboard implements the interface
var _ storage.Leaderboard = (*Leaderboard)(nil)

func (l *Leaderboard) RecordBattle(ctx context.Context, winner, loser model.CharacterID) error {
	pipe := l.client.TxPipeline()
	pipe.ZIncrBy(ctx, winsKey(), 1, string(winner))
	pipe.ZIncrBy(ctx, lossesKey(), 1, string(loser))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record battle: %w", err)
	}
	return nil
}

func (l *Leaderboard) Top(ctx context.Context, n int) ([]model.BattleRecord, error) {
	if n <= 0 {
		return []model.BattleRecord{}, nil
	}

	top, err := l.client.ZRevRangeWithScores(ctx, winsKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get top characters: %w", err)
	}

	pipe := l.client.Pipeline()
	losses := make([]*redis.FloatCmd, len(top))
	for i, z := range top {
		losses[i] = pipe.ZScore(ctx, lossesKey(), z.Member.(string))
	}
	if len(top) > 0 {
		// a character with no losses has no member in the losses set
		if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("failed to get losses: %w", err)
		}
	}

	records := make([]model.BattleRecord, 0, len(top))
	for i, z := range top {
		if z.Score <= 0 {
			continue
		}
		lost, err := losses[i].Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}
		records = append(records, model.BattleRecord{
			CharacterID: model.CharacterID(z.Member.(string)),
			Wins:        int(z.Score),
			Losses:      int(lost),
		})
	}
	return records, nil
}

func (l *Leaderboard) Remove(ctx context.Context, ids ...model.CharacterID) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = string(id)
	}

	pipe := l.client.Pipeline()
	pipe.ZRem(ctx, winsKey(), members...)
	pipe.ZRem(ctx, lossesKey(), members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove from leaderboard: %w", err)
	}
	return nil
}
