// Package cache provides short-lived storage for registry responses so that
// bursts of webhook deliveries for the same subject do not hammer the
// government endpoint. Entries expire quickly; the registry stays the source
// of truth.
package cache

import (
	"context"
	"fmt"

	"vatwatch/internal/reconcile/models"
)

// Store persists registry responses keyed by country code and VAT number
// body. Find returns sentinel.ErrNotFound on a miss or an expired entry.
type Store interface {
	Find(ctx context.Context, countryCode, vatNumber string) (models.RegistryRecord, error)
	Save(ctx context.Context, countryCode, vatNumber string, record models.RegistryRecord) error
}

func cacheKey(countryCode, vatNumber string) string {
	return fmt.Sprintf("vies:%s:%s", countryCode, vatNumber)
}
