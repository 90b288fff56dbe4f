package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore implements Store using Redis strings for values and Redis
// sets for tag membership
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL string
	TTL time.Duration
}

// NewRedisStore creates a new Redis-backed cache store
func NewRedisStore(cfg RedisConfig, logger *slog.Logger) (Store, error) {
	// Parse Redis URL
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("connected to Redis",
		slog.String("addr", opts.Addr),
		slog.Duration("ttl", cfg.TTL),
	)

	return newRedisStore(client, cfg.TTL, logger), nil
}

func newRedisStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *redisStore {
	return &redisStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached value for key
func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache key: %w", err)
	}
	return data, true, nil
}

// Set stores the value and adds the key to each tag set in one round trip
func (s *redisStore) Set(ctx context.Context, key string, value []byte, tags ...string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, value, s.ttl)
		for _, tag := range tags {
			pipe.SAdd(ctx, tagKey(tag), key)
			if s.ttl > 0 {
				pipe.Expire(ctx, tagKey(tag), s.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set cache key: %w", err)
	}
	return nil
}

// Invalidate bumps the tag generation, then deletes every key registered
// under tag and the tag set itself
func (s *redisStore) Invalidate(ctx context.Context, tag string) error {
	if err := s.client.Incr(ctx, generationKey(tag)).Err(); err != nil {
		return fmt.Errorf("failed to advance tag generation: %w", err)
	}

	keys, err := s.client.SMembers(ctx, tagKey(tag)).Result()
	if err != nil {
		return fmt.Errorf("failed to read tag members: %w", err)
	}

	keys = append(keys, tagKey(tag))
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate tag: %w", err)
	}

	s.logger.Debug("cache tag invalidated",
		slog.String("tag", tag),
		slog.Int("keys", len(keys)-1),
	)

	return nil
}

// Generation returns the current generation of tag, zero if it was never
// invalidated
func (s *redisStore) Generation(ctx context.Context, tag string) (int64, error) {
	gen, err := s.client.Get(ctx, generationKey(tag)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read tag generation: %w", err)
	}
	return gen, nil
}

// Close closes the Redis connection
func (s *redisStore) Close() error {
	s.logger.Info("closing Redis connection")
	return s.client.Close()
}

// Health checks if Redis is healthy
func (s *redisStore) Health(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

func tagKey(tag string) string {
	return "tag:" + tag
}

func generationKey(tag string) string {
	return "gen:" + tag
}
