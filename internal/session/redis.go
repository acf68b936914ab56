package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "screenbot:session:"

// RedisStore keeps sessions in Redis so multiple bot instances can share
// them. A screening survives instance restarts; it is only removed when
// the caller backs out or a score is emitted.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore on an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, callerID string) (*Session, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+callerID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Put(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+s.CallerID, data, 0).Err(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, callerID string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+callerID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
