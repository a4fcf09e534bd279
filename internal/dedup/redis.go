package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	apperrors "github.com/rajasatyajit/QuakeAlert/internal/errors"
	"github.com/rajasatyajit/QuakeAlert/internal/logger"
)

const processedSetKey = "quakealert:processed_ids"

// RedisStore implements Store over a Redis set. Durability is whatever the
// Redis deployment's persistence policy provides.
type RedisStore struct {
	mu     sync.RWMutex
	seen   map[string]struct{}
	client *redis.Client
}

// NewRedisStore connects and loads the full processed-id set
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	connectCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(connectCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ids, err := client.SMembers(connectCtx, processedSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load processed set: %w", err)
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}

	logger.Info("Dedup set loaded", "identifiers", len(seen))
	return &RedisStore{seen: seen, client: client}, nil
}

// Contains answers a membership query from the in-memory set
func (s *RedisStore) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[id]
	return ok
}

// Record adds the identifier to the Redis set before the in-memory one
func (s *RedisStore) Record(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[id]; ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := s.client.SAdd(ctx, processedSetKey, id).Err(); err != nil {
		return apperrors.PersistenceError{Operation: "sadd", Err: err}
	}

	s.seen[id] = struct{}{}
	return nil
}

// Len returns the number of known identifiers
func (s *RedisStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
