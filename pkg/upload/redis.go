package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/surveyplot/pkg/observability"
)

const backendRedis = "redis"

// DefaultKeyPrefix namespaces upload keys in a shared Redis database.
const DefaultKeyPrefix = "surveyplot:upload:"

// RedisClient is the subset of redis.UniversalClient used by RedisStore.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// RedisConfig configures a Redis connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps uploads in Redis. Entries expire through Redis TTLs, so
// several server instances can share staged uploads.
type RedisStore struct {
	client RedisClient
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client RedisClient) *RedisStore {
	return &RedisStore{client: client, prefix: DefaultKeyPrefix}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Upload, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.Upload().OnUploadMiss(ctx, backendRedis)
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var u Upload
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("parse upload: %w", err)
	}
	if u.IsExpired() {
		observability.Upload().OnUploadMiss(ctx, backendRedis)
		return nil, ErrNotFound
	}
	observability.Upload().OnUploadHit(ctx, backendRedis)
	return &u, nil
}

func (s *RedisStore) Set(ctx context.Context, u *Upload) error {
	if err := ValidateID(u.ID); err != nil {
		return err
	}
	ttl := u.TTL()
	if ttl == 0 {
		return nil
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal upload: %w", err)
	}
	if err := s.client.Set(ctx, s.key(u.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	observability.Upload().OnUploadStore(ctx, backendRedis, len(u.Data))
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Cleanup is a no-op; Redis expires uploads itself.
func (s *RedisStore) Cleanup(ctx context.Context) error { return nil }

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
