package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"scentbase-backend/application/catalogcache"
	"scentbase-backend/application/ports"
	"scentbase-backend/domain/catalog"
	apperrors "scentbase-backend/pkg/errors"
)

const fragrancesCollection = "fragrances"

// CatalogService handles catalogue writes. Every mutation marks the snapshot
// cache stale and announces the change; reads go through the cache instead.
type CatalogService struct {
	store  ports.DocumentStore
	cache  *catalogcache.Cache
	events ports.EventPublisher
	logger *zap.Logger
}

// NewCatalogService creates a new catalogue write service
func NewCatalogService(store ports.DocumentStore, cache *catalogcache.Cache, events ports.EventPublisher, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		cache:  cache,
		events: events,
		logger: logger,
	}
}

// CreateFragrance normalizes and stores a new fragrance, returning its ID
func (c *CatalogService) CreateFragrance(ctx context.Context, w catalog.FragranceWrite) (string, error) {
	fields := catalog.NormalizeFragranceForWrite(w)
	if fields["name"] == nil || fields["brandId"] == nil {
		return "", apperrors.NewValidationError("name and brand are required")
	}

	id, err := c.store.Create(ctx, fragrancesCollection, fields)
	if err != nil {
		return "", fmt.Errorf("create fragrance: %w", err)
	}

	c.afterWrite(ctx, id, "created")
	return id, nil
}

// UpdateFragrance partial-updates an existing fragrance. Incoming brand and
// note objects are normalized to bare IDs before the write.
func (c *CatalogService) UpdateFragrance(ctx context.Context, id string, w catalog.FragranceWrite) error {
	if _, err := c.store.GetByID(ctx, fragrancesCollection, id); err != nil {
		return err
	}

	fields := catalog.NormalizeFragranceForWrite(w)
	if len(fields) == 0 {
		return nil
	}

	if err := c.store.Update(ctx, fragrancesCollection, id, fields); err != nil {
		return fmt.Errorf("update fragrance: %w", err)
	}

	c.afterWrite(ctx, id, "updated")
	return nil
}

// DeleteFragrance removes a fragrance from the catalogue
func (c *CatalogService) DeleteFragrance(ctx context.Context, id string) error {
	if _, err := c.store.GetByID(ctx, fragrancesCollection, id); err != nil {
		return err
	}

	if err := c.store.Delete(ctx, fragrancesCollection, id); err != nil {
		return fmt.Errorf("delete fragrance: %w", err)
	}

	c.afterWrite(ctx, id, "deleted")
	return nil
}

// afterWrite invalidates the snapshot and publishes the change event. The
// write already succeeded, so a failed publish is logged, not surfaced.
func (c *CatalogService) afterWrite(ctx context.Context, id, action string) {
	c.cache.Invalidate()

	if err := c.events.PublishCatalogChanged(ctx, fragrancesCollection, id, action); err != nil {
		c.logger.Warn("catalog change event publish failed",
			zap.String("fragranceID", id),
			zap.String("action", action),
			zap.Error(err),
		)
	}

	c.logger.Info("fragrance "+action, zap.String("fragranceID", id))
}
