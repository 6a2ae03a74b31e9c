package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ai-fn/route-builder/internal/platform/obs"
)

// RedisMatrixCache is a Redis-backed cache for whole distance matrices.
// Entries carry a TTL: road networks change, so stale matrices should age out.
type RedisMatrixCache struct {
	Client *redis.Client
	TTL    time.Duration
}

const defaultTTL = 24 * time.Hour

func NewRedisMatrixCache(client *redis.Client, ttl time.Duration) *RedisMatrixCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisMatrixCache{Client: client, TTL: ttl}
}

func redisKey(key string) string { return "matrix:" + key }

// Fetch a cached matrix; (nil, nil) signals a miss.
func (r *RedisMatrixCache) Get(ctx context.Context, key string) (_ [][]float64, err error) {
	defer obs.Time(ctx, "matrix.cache.Get")(&err)

	if r.Client == nil {
		return nil, errors.New("matrix cache: redis client is nil")
	}
	if key == "" {
		return nil, errors.New("get matrix cache: key must not be empty")
	}

	payload, err := r.Client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get matrix cache: %w", err)
	}

	var distances [][]float64
	if err := json.Unmarshal(payload, &distances); err != nil {
		return nil, fmt.Errorf("get matrix cache: decode stored matrix: %w", err)
	}

	return distances, nil
}

// Store a matrix under the key with the configured TTL.
func (r *RedisMatrixCache) Put(ctx context.Context, key string, distances [][]float64) error {
	if r.Client == nil {
		return errors.New("matrix cache: redis client is nil")
	}
	if key == "" {
		return errors.New("insert matrix cache: key must not be empty")
	}

	payload, err := json.Marshal(distances)
	if err != nil {
		return fmt.Errorf("insert matrix cache: encode matrix: %w", err)
	}

	if err := r.Client.Set(ctx, redisKey(key), payload, r.TTL).Err(); err != nil {
		return fmt.Errorf("insert matrix cache key=%q: %w", key, err)
	}

	return nil
}
