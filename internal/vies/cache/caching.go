package cache

import (
	"context"
	"errors"
	"log/slog"

	"vatwatch/internal/reconcile/models"
	"vatwatch/internal/reconcile/ports"
	"vatwatch/pkg/platform/sentinel"
)

// CachingClient decorates a registry client with read-through caching. Cache
// failures are logged and the lookup falls through to the registry, so a
// broken cache backend degrades to slower lookups rather than failed runs.
type CachingClient struct {
	inner  ports.RegistryClient
	store  Store
	logger *slog.Logger
}

func NewCachingClient(inner ports.RegistryClient, store Store, logger *slog.Logger) *CachingClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingClient{inner: inner, store: store, logger: logger}
}

func (c *CachingClient) CheckVAT(ctx context.Context, countryCode, vatNumber string) (models.RegistryRecord, error) {
	record, err := c.store.Find(ctx, countryCode, vatNumber)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		c.logger.WarnContext(ctx, "registry cache lookup failed",
			"country_code", countryCode,
			"error", err,
		)
	}

	record, err = c.inner.CheckVAT(ctx, countryCode, vatNumber)
	if err != nil {
		return models.RegistryRecord{}, err
	}

	if err := c.store.Save(ctx, countryCode, vatNumber, record); err != nil {
		c.logger.WarnContext(ctx, "registry cache save failed",
			"country_code", countryCode,
			"error", err,
		)
	}
	return record, nil
}
