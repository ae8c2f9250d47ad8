package cache

import (
	"context"
	"sync"
	"time"

	"vatwatch/internal/reconcile/models"
	"vatwatch/pkg/platform/sentinel"
)

type memoryEntry struct {
	record    models.RegistryRecord
	expiresAt time.Time
}

// MemoryStore is the single-process fallback used when no Redis or Postgres
// backend is configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Find(_ context.Context, countryCode, vatNumber string) (models.RegistryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[cacheKey(countryCode, vatNumber)]
	if !ok {
		return models.RegistryRecord{}, sentinel.ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, cacheKey(countryCode, vatNumber))
		return models.RegistryRecord{}, sentinel.ErrNotFound
	}
	return entry.record, nil
}

func (s *MemoryStore) Save(_ context.Context, countryCode, vatNumber string, record models.RegistryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[cacheKey(countryCode, vatNumber)] = memoryEntry{
		record:    record,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}
