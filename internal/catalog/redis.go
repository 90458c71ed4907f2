package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"github.com/disuhitarth/EcommerceConcept/internal/domain"
)

const (
	redisKeyPrefix = "catalog:"
	redisScanCount = 100
)

// RedisStore keeps catalog pages in Redis without expiry, so every replica
// shares the same last-known-good copy.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// redisKey hashes the query key so arbitrary cursors stay within safe key syntax.
func redisKey(key string) string {
	return fmt.Sprintf("%s%016x", redisKeyPrefix, xxhash.Sum64String(key))
}

func (s *RedisStore) Load(ctx context.Context, key string) (*domain.Collection, error) {
	raw, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get catalog: %w", err)
	}

	var col domain.Collection
	if err := json.Unmarshal(raw, &col); err != nil {
		return nil, fmt.Errorf("decode catalog entry: %w", err)
	}
	return &col, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, c *domain.Collection) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode catalog entry: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(key), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set catalog: %w", err)
	}
	return nil
}

// Clear deletes every catalog key. SCAN keeps the server responsive on large keyspaces.
func (s *RedisStore) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, redisKeyPrefix+"*", redisScanCount).Result()
		if err != nil {
			return fmt.Errorf("redis scan catalog: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del catalog: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
