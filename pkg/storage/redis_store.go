package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/citycal/citycal/pkg/event"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the collection as the JSON value of a single key.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// NewRedisClient parses a redis:// URL and applies the retry policy:
// up to 3 retries with backoff growing from 50ms to 2s.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.MaxRetries = 3
	opts.MinRetryBackoff = 50 * time.Millisecond
	opts.MaxRetryBackoff = 2 * time.Second
	return redis.NewClient(opts), nil
}

func (s *RedisStore) Backend() Backend {
	return BackendRedis
}

func (s *RedisStore) Load(ctx context.Context) ([]event.Event, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []event.Event{}, nil
		}
		return nil, fmt.Errorf("failed to get %s from redis: %w", s.key, err)
	}
	return decodeEvents(data)
}

func (s *RedisStore) Save(ctx context.Context, events []event.Event) error {
	if events == nil {
		events = []event.Event{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
