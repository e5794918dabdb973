package aiusage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const usageKeyPrefix = "aiusage:%s:%s"

// Store keeps per-client run counters in Redis, one key per client and UTC day.
type Store struct {
	redis *redis.Client
	now   func() time.Time
}

// NewStore returns a Store backed by the given Redis client.
func NewStore(rdb *redis.Client) *Store {
	return &Store{redis: rdb, now: time.Now}
}

// Increment atomically counts one run for client in the current day bucket and returns
// the new count. The key expires on its own after counterTTL.
func (s *Store) Increment(ctx context.Context, client string) (int64, error) {
	key := usageKey(client, s.now())

	pipe := s.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, counterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Decrement gives one run back, used when a run is refused after counting.
func (s *Store) Decrement(ctx context.Context, client string) error {
	return s.redis.Decr(ctx, usageKey(client, s.now())).Err()
}

// Used returns how many runs client made today.
func (s *Store) Used(ctx context.Context, client string) (int64, error) {
	n, err := s.redis.Get(ctx, usageKey(client, s.now())).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

func usageKey(client string, now time.Time) string {
	return fmt.Sprintf(usageKeyPrefix, now.UTC().Format("2006-01-02"), client)
}
