package catalogcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scentbase-backend/application/ports"
	apperrors "scentbase-backend/pkg/errors"
)

// fakeStore is an in-memory DocumentStore that counts bulk reads and can be
// told to fail
type fakeStore struct {
	mu          sync.Mutex
	collections map[string][]ports.Document
	streamCalls int32
	failStream  bool

	// onStream, when set, runs during each bulk read so tests can interleave
	// work with an in-flight reload
	onStream func(collection string)
}

func newFakeStore() *fakeStore {
	return &fakeStore{collections: make(map[string][]ports.Document)}
}

func (s *fakeStore) StreamAll(ctx context.Context, collection string) ([]ports.Document, error) {
	atomic.AddInt32(&s.streamCalls, 1)
	s.mu.Lock()
	hook := s.onStream
	fail := s.failStream
	docs := s.collections[collection]
	s.mu.Unlock()

	if hook != nil {
		hook(collection)
	}
	if fail {
		return nil, errors.New("store offline")
	}
	return docs, nil
}

func (s *fakeStore) setFailing(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStream = fail
}

func (s *fakeStore) streams() int {
	return int(atomic.LoadInt32(&s.streamCalls))
}

func (s *fakeStore) GetByID(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	return nil, apperrors.NewNotFoundError("document")
}

func (s *fakeStore) GetByIDs(ctx context.Context, collection string, ids []string) (map[string]map[string]interface{}, error) {
	return nil, nil
}

func (s *fakeStore) Query(ctx context.Context, collection, field string, value interface{}) ([]ports.Document, error) {
	return nil, nil
}

func (s *fakeStore) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	return "", nil
}

func (s *fakeStore) Set(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	return nil
}

func (s *fakeStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, collection, id string) error {
	return nil
}

func (s *fakeStore) AtomicIncrement(ctx context.Context, collection, id, field string, delta int) error {
	return nil
}

func (s *fakeStore) AtomicArrayAdd(ctx context.Context, collection, id, field, value string) error {
	return nil
}

func (s *fakeStore) AtomicArrayRemove(ctx context.Context, collection, id, field, value string) error {
	return nil
}

func seedCatalog(s *fakeStore, fragranceCount int) {
	s.collections[brandsCollection] = []ports.Document{
		{ID: "b1", Fields: map[string]interface{}{"name": "Maison Noir", "country": "France"}},
	}
	s.collections[notesCollection] = []ports.Document{
		{ID: "n1", Fields: map[string]interface{}{"name": "Bergamot", "family": "Citrus"}},
		{ID: "n2", Fields: map[string]interface{}{"name": "Oud", "family": "Woody"}},
	}

	fragrances := make([]ports.Document, 0, fragranceCount)
	for i := 0; i < fragranceCount; i++ {
		fragrances = append(fragrances, ports.Document{
			ID: fmt.Sprintf("f%d", i),
			Fields: map[string]interface{}{
				"name":    fmt.Sprintf("Fragrance %d", i),
				"brandId": "b1",
				"notes": map[string]interface{}{
					"top":    []interface{}{"n1"},
					"middle": []interface{}{"n2"},
					"base":   []interface{}{},
				},
			},
		})
	}
	s.collections[fragrancesCollection] = fragrances
}

func newTestCache(store ports.DocumentStore, ttl time.Duration) *Cache {
	return New(store, ttl, zap.NewNop())
}

func TestSnapshotLoadsThreeBulkReads(t *testing.T) {
	tests := []struct {
		name       string
		fragrances int
	}{
		{name: "empty catalogue", fragrances: 0},
		{name: "single fragrance", fragrances: 1},
		{name: "large catalogue", fragrances: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			seedCatalog(store, tt.fragrances)
			cache := newTestCache(store, time.Minute)

			snap, err := cache.Snapshot(context.Background())
			require.NoError(t, err)
			assert.Len(t, snap.Fragrances, tt.fragrances)
			assert.Equal(t, 3, store.streams(), "one bulk read per collection, regardless of size")

			// Repeat reads within the TTL never touch the store again.
			for i := 0; i < 10; i++ {
				_, err := cache.Snapshot(context.Background())
				require.NoError(t, err)
			}
			assert.Equal(t, 3, store.streams())
		})
	}
}

func TestSnapshotResolvesReferences(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store, 1)
	cache := newTestCache(store, time.Minute)

	snap, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Fragrances, 1)

	f := snap.Fragrances[0]
	assert.Equal(t, "Maison Noir", f.Brand.Name)
	require.Len(t, f.Notes.Top, 1)
	assert.Equal(t, "Bergamot", f.Notes.Top[0].Name)
	require.Len(t, f.Notes.Middle, 1)
	assert.Equal(t, "Oud", f.Notes.Middle[0].Name)
}

func TestSnapshotExpiresAfterTTL(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store, 2)
	cache := newTestCache(store, time.Minute)

	now := time.Unix(1700000000, 0)
	cache.clock = func() time.Time { return now }

	first, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, store.streams())

	// One tick before the boundary the snapshot is still fresh.
	now = now.Add(time.Minute - time.Nanosecond)
	again, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Generation, again.Generation)
	assert.Equal(t, 3, store.streams())

	// At exactly the TTL the snapshot is stale and reloads.
	now = now.Add(time.Nanosecond)
	refreshed, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Generation+1, refreshed.Generation)
	assert.Equal(t, 6, store.streams())
}

func TestConcurrentStaleReadersReloadOnce(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store, 5)
	cache := newTestCache(store, time.Minute)

	const readers = 50
	var wg sync.WaitGroup
	generations := make([]uint64, readers)

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := cache.Snapshot(context.Background())
			assert.NoError(t, err)
			generations[i] = snap.Generation
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, store.streams(), "concurrent cold readers share one reload")
	for _, gen := range generations {
		assert.Equal(t, uint64(1), gen)
	}
}

func TestInvalidateForcesReloadOnNextRead(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store, 1)
	cache := newTestCache(store, time.Hour)

	first, err := cache.Snapshot(context.Background())
	require.NoError(t, err)

	// Idempotent: repeated invalidations cost one reload.
	cache.Invalidate()
	cache.Invalidate()
	cache.Invalidate()

	second, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Generation+1, second.Generation)
	assert.Equal(t, 6, store.streams())

	third, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second.Generation, third.Generation)
	assert.Equal(t, 6, store.streams())
}

func TestInvalidateDuringReloadSurvives(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store, 2)
	cache := newTestCache(store, time.Hour)

	first, err := cache.Snapshot(context.Background())
	require.NoError(t, err)

	// A write invalidates while the triggered reload is still streaming.
	cache.Invalidate()
	store.onStream = func(collection string) {
		if collection == fragrancesCollection {
			cache.Invalidate()
		}
	}

	second, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Generation+1, second.Generation)

	// The mid-reload invalidation must not be erased by the reload that was
	// already in flight when it happened.
	store.onStream = nil
	third, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second.Generation+1, third.Generation)
}

func TestRefreshFailureServesPreviousSnapshot(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store, 3)
	cache := newTestCache(store, time.Hour)

	first, err := cache.Snapshot(context.Background())
	require.NoError(t, err)

	store.setFailing(true)
	cache.Invalidate()

	snap, err := cache.Snapshot(context.Background())
	require.NoError(t, err, "stale data beats no data")
	assert.Equal(t, first.Generation, snap.Generation)
	assert.Len(t, snap.Fragrances, 3)

	// Once the store recovers, the next read refills.
	store.setFailing(false)
	recovered, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Generation+1, recovered.Generation)
}

func TestColdStartFailurePropagates(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store, 1)
	store.setFailing(true)
	cache := newTestCache(store, time.Minute)

	_, err := cache.Snapshot(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))

	// Recovery works without restarting the process.
	store.setFailing(false)
	snap, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Generation)
}

func TestAccessorsShareOneSnapshot(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store, 4)
	cache := newTestCache(store, time.Minute)

	brands, err := cache.Brands(context.Background())
	require.NoError(t, err)
	notes, err := cache.Notes(context.Background())
	require.NoError(t, err)
	fragrances, err := cache.Fragrances(context.Background())
	require.NoError(t, err)

	assert.Len(t, brands, 1)
	assert.Len(t, notes, 2)
	assert.Len(t, fragrances, 4)
	assert.Equal(t, 3, store.streams(), "accessors read the shared snapshot")
}

func TestZeroTTLFallsBackToDefault(t *testing.T) {
	cache := New(newFakeStore(), 0, zap.NewNop())
	assert.Equal(t, DefaultTTL, cache.ttl)
}
