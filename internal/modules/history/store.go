// README: History store backed by a capped Redis list, most recent first.
package history

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const recentKey = "history:recent"

type RedisStore struct {
	redis    *redis.Client
	capacity int
}

func NewRedisStore(redis *redis.Client, capacity int) *RedisStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RedisStore{redis: redis, capacity: capacity}
}

// Push inserts e at the head, dropping any older entry for the same destination.
func (s *RedisStore) Push(ctx context.Context, e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	existing, err := s.redis.LRange(ctx, recentKey, 0, -1).Result()
	if err != nil {
		return err
	}
	pipe := s.redis.TxPipeline()
	for _, v := range existing {
		var old Entry
		if json.Unmarshal([]byte(v), &old) == nil && old.key() == e.key() {
			pipe.LRem(ctx, recentKey, 0, v)
		}
	}
	pipe.LPush(ctx, recentKey, raw)
	pipe.LTrim(ctx, recentKey, 0, int64(s.capacity-1))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 || n > s.capacity {
		n = s.capacity
	}
	vals, err := s.redis.LRange(ctx, recentKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(vals))
	for _, v := range vals {
		var e Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
