package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scentbase-backend/application/catalogcache"
	"scentbase-backend/domain/catalog"
	apperrors "scentbase-backend/pkg/errors"
)

// recordingPublisher captures published catalogue change events
type recordingPublisher struct {
	events []atomicOp // reuse: collection/id/value(action)
}

func (p *recordingPublisher) PublishCatalogChanged(ctx context.Context, collection, docID, action string) error {
	p.events = append(p.events, atomicOp{collection: collection, id: docID, value: action})
	return nil
}

func strPtr(s string) *string { return &s }

func TestCatalogServiceCreateInvalidatesAndPublishes(t *testing.T) {
	store := newMemStore()
	cache := catalogcache.New(store, time.Hour, zap.NewNop())
	publisher := &recordingPublisher{}
	svc := NewCatalogService(store, cache, publisher, zap.NewNop())
	ctx := context.Background()

	// Prime the cache so invalidation is observable.
	first, err := cache.Snapshot(ctx)
	require.NoError(t, err)

	id, err := svc.CreateFragrance(ctx, catalog.FragranceWrite{
		Name:    strPtr("Oud Royale"),
		BrandID: strPtr("b1"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	fields, err := store.GetByID(ctx, "fragrances", id)
	require.NoError(t, err)
	assert.Equal(t, "Oud Royale", fields["name"])
	assert.Equal(t, "b1", fields["brandId"])

	require.Len(t, publisher.events, 1)
	assert.Equal(t, atomicOp{collection: "fragrances", id: id, value: "created"}, publisher.events[0])

	second, err := cache.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Generation+1, second.Generation, "writes mark the snapshot stale")
	assert.Len(t, second.Fragrances, 1)
}

func TestCatalogServiceCreateRequiresNameAndBrand(t *testing.T) {
	store := newMemStore()
	cache := catalogcache.New(store, time.Hour, zap.NewNop())
	svc := NewCatalogService(store, cache, &recordingPublisher{}, zap.NewNop())

	_, err := svc.CreateFragrance(context.Background(), catalog.FragranceWrite{
		Name: strPtr("No Brand"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestCatalogServiceUpdateMissingFragrance(t *testing.T) {
	store := newMemStore()
	cache := catalogcache.New(store, time.Hour, zap.NewNop())
	publisher := &recordingPublisher{}
	svc := NewCatalogService(store, cache, publisher, zap.NewNop())

	err := svc.UpdateFragrance(context.Background(), "ghost", catalog.FragranceWrite{
		Name: strPtr("Renamed"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Empty(t, publisher.events, "failed writes publish nothing")
}

func TestCatalogServiceDelete(t *testing.T) {
	store := newMemStore()
	store.put("fragrances", "f1", map[string]interface{}{"name": "Doomed", "brandId": "b1"})
	cache := catalogcache.New(store, time.Hour, zap.NewNop())
	publisher := &recordingPublisher{}
	svc := NewCatalogService(store, cache, publisher, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.DeleteFragrance(ctx, "f1"))

	_, err := store.GetByID(ctx, "fragrances", "f1")
	assert.True(t, apperrors.IsNotFound(err))
	require.Len(t, publisher.events, 1)
	assert.Equal(t, "deleted", publisher.events[0].value)
}
