package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/jobradius/internal/model"
)

// usageTTL keeps a month's hash around long enough to be read after rollover.
const usageTTL = 62 * 24 * time.Hour

const usageKeyPrefix = "jobradius:usage:"

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

// RedisUsageStore keeps one hash per subscriber-month; each field is an
// action and HINCRBY makes increments atomic across processes.
type RedisUsageStore struct {
	client redis.UniversalClient
}

func NewRedisUsageStore(client redis.UniversalClient) *RedisUsageStore {
	return &RedisUsageStore{client: client}
}

func usageKeyFor(subscriberID string, periodStart time.Time) string {
	return usageKeyPrefix + subscriberID + ":" + periodStart.UTC().Format("2006-01")
}

func (s *RedisUsageStore) Counters(ctx context.Context, subscriberID string, periodStart time.Time) (map[model.ActionKind]int, error) {
	fields, err := s.client.HGetAll(ctx, usageKeyFor(subscriberID, periodStart)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading usage for %s: %w", subscriberID, err)
	}
	out := make(map[model.ActionKind]int, len(fields))
	for action, raw := range fields {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("reading usage for %s: counter %s: %w", subscriberID, action, err)
		}
		out[model.ActionKind(action)] = n
	}
	return out, nil
}

func (s *RedisUsageStore) Increment(ctx context.Context, subscriberID string, periodStart time.Time, action model.ActionKind) (int, error) {
	key := usageKeyFor(subscriberID, periodStart)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, key, string(action), 1)
		pipe.Expire(ctx, key, usageTTL)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("incrementing %s for %s: %w", action, subscriberID, err)
	}
	return int(incr.Val()), nil
}
