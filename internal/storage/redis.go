package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore persists snapshot records in Redis
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// RedisStoreConfig holds Redis store configuration
type RedisStoreConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // Key expiry in Redis; 0 keeps records until overwritten or deleted
}

// NewRedisStore creates a new Redis-backed store
func NewRedisStore(config RedisStoreConfig, logger zerolog.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisStore{
		client: client,
		ttl:    config.TTL,
		logger: logger.With().Str("component", "redis_store").Logger(),
	}
}

// Write stores data under key
func (s *RedisStore) Write(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}

	s.logger.Debug().
		Str("key", key).
		Int("bytes", len(data)).
		Dur("ttl", s.ttl).
		Msg("wrote snapshot record")

	return nil
}

// Read returns the record under key, or ErrNotFound
func (s *RedisStore) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	return data, nil
}

// Delete removes the record under key. Missing keys are not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete from Redis: %w", err)
	}
	return nil
}

// Ping checks Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
