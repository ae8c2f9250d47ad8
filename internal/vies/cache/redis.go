package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vatwatch/internal/platform/metrics"
	"vatwatch/internal/reconcile/models"
	"vatwatch/pkg/platform/sentinel"
)

// RedisStore shares cached registry responses across instances.
type RedisStore struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewRedisStore(client *redis.Client, ttl time.Duration, m *metrics.Metrics) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, metrics: m}
}

func (s *RedisStore) Find(ctx context.Context, countryCode, vatNumber string) (models.RegistryRecord, error) {
	raw, err := s.client.Get(ctx, cacheKey(countryCode, vatNumber)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.record("miss")
			return models.RegistryRecord{}, sentinel.ErrNotFound
		}
		return models.RegistryRecord{}, fmt.Errorf("find registry cache entry: %w", err)
	}

	var record models.RegistryRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return models.RegistryRecord{}, fmt.Errorf("decode registry cache entry: %w", err)
	}
	s.record("hit")
	return record, nil
}

func (s *RedisStore) Save(ctx context.Context, countryCode, vatNumber string, record models.RegistryRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode registry cache entry: %w", err)
	}
	if err := s.client.Set(ctx, cacheKey(countryCode, vatNumber), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save registry cache entry: %w", err)
	}
	return nil
}

func (s *RedisStore) record(result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordCacheLookup("redis", result)
}
