package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vatwatch/internal/platform/metrics"
	"vatwatch/internal/reconcile/models"
	"vatwatch/pkg/platform/sentinel"
	"vatwatch/pkg/requestcontext"
)

// PostgresStore persists registry responses in the vies_cache table.
// Expiry is evaluated on read against the stored checked_at timestamp, so
// stale rows linger until overwritten but are never served.
type PostgresStore struct {
	db      *sql.DB
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewPostgresStore(db *sql.DB, ttl time.Duration, m *metrics.Metrics) *PostgresStore {
	return &PostgresStore{db: db, ttl: ttl, metrics: m}
}

func (s *PostgresStore) Find(ctx context.Context, countryCode, vatNumber string) (models.RegistryRecord, error) {
	cutoff := requestcontext.Now(ctx).Add(-s.ttl)

	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM vies_cache
		 WHERE country_code = $1 AND vat_number = $2 AND checked_at >= $3`,
		countryCode, vatNumber, cutoff,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

func (s *PostgresStore) Save(ctx context.Context, countryCode, vatNumber string, record models.RegistryRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode registry cache entry: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO vies_cache (country_code, vat_number, record, checked_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (country_code, vat_number)
		 DO UPDATE SET record = EXCLUDED.record, checked_at = EXCLUDED.checked_at`,
		countryCode, vatNumber, raw, requestcontext.Now(ctx),
	)
	if err != nil {
		return fmt.Errorf("save registry cache entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) record(result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordCacheLookup("postgres", result)
}
