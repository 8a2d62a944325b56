package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in Redis as JSON values with a TTL, so
// multiple service instances share one session space.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Data, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var data Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, data *Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+id, raw, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisKeyPrefix+id).Err()
}
