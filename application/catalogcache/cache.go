// Package catalogcache owns the in-process, TTL-bounded snapshot of the
// catalogue. It keeps store reads to exactly three bulk queries per refill
// (brands, notes, fragrances) instead of hundreds per request, resolving all
// foreign keys in memory as part of the load.
package catalogcache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"scentbase-backend/application/ports"
	"scentbase-backend/domain/catalog"
	apperrors "scentbase-backend/pkg/errors"
)

const (
	brandsCollection     = "brands"
	notesCollection      = "notes"
	fragrancesCollection = "fragrances"
)

// DefaultTTL bounds how long a snapshot is served without revalidation
const DefaultTTL = 10 * time.Minute

// Snapshot is an immutable, fully resolved point-in-time copy of the
// catalogue. Every embedded Brand/Note inside Fragrances comes from the
// Brands/Notes tables of this same snapshot; table versions are never mixed.
// Snapshots are replaced, never edited, so holders of an old reference can
// keep using it safely after a newer one is published.
type Snapshot struct {
	Brands     []catalog.Brand
	Notes      []catalog.Note
	Fragrances []catalog.Fragrance
	LoadedAt   time.Time
	Generation uint64
}

// Cache serves the freshest-practical snapshot while bounding storage load
// to O(1) queries per refill. A single long-lived instance is constructed by
// the composition root and threaded into the handlers as a dependency.
type Cache struct {
	store  ports.DocumentStore
	ttl    time.Duration
	logger *zap.Logger

	// clock is swappable in tests to exercise the TTL boundary
	clock func() time.Time

	mu    sync.Mutex // serializes reloads
	gen   uint64     // guarded by mu
	snap  atomic.Pointer[Snapshot]
	stale atomic.Bool
}

// New creates a catalogue cache over the given store
func New(store ports.DocumentStore, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		store:  store,
		ttl:    ttl,
		logger: logger,
		clock:  time.Now,
	}
}

// Snapshot returns a fresh snapshot, reloading from the store when the held
// one is stale or missing. Concurrent stale readers serialize on one reload:
// whoever wins the lock refills, everyone else re-checks and reuses the
// result. If a refresh fails while a previous snapshot exists, that snapshot
// stays authoritative and the failure is only logged; with no prior snapshot
// the failure propagates.
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	if s := c.snap.Load(); s != nil && !c.isStale(s) {
		return s, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring the lock: another caller may have just
	// finished the reload we queued up for.
	if s := c.snap.Load(); s != nil && !c.isStale(s) {
		return s, nil
	}

	// Clear the stale mark before the reload, never after: an Invalidate
	// arriving while the reload streams must survive it and force the next
	// refill.
	c.stale.Store(false)

	fresh, err := c.load(ctx)
	if err != nil {
		c.stale.Store(true)
		if prev := c.snap.Load(); prev != nil {
			c.logger.Warn("catalog reload failed, serving previous snapshot",
				zap.Error(err),
				zap.Time("loadedAt", prev.LoadedAt),
				zap.Uint64("generation", prev.Generation),
			)
			return prev, nil
		}
		return nil, apperrors.NewUnavailableError("catalog store unavailable").WithCause(err)
	}

	c.snap.Store(fresh)
	return fresh, nil
}

// Brands returns all brands from a fresh snapshot
func (c *Cache) Brands(ctx context.Context) ([]catalog.Brand, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Brands, nil
}

// Notes returns all notes from a fresh snapshot
func (c *Cache) Notes(ctx context.Context) ([]catalog.Note, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Notes, nil
}

// Fragrances returns all resolved fragrances from a fresh snapshot
func (c *Cache) Fragrances(ctx context.Context) ([]catalog.Fragrance, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Fragrances, nil
}

// Invalidate marks the current snapshot stale. It never blocks or forces an
// immediate reload; the next read refills lazily. Idempotent.
func (c *Cache) Invalidate() {
	c.stale.Store(true)
}

func (c *Cache) isStale(s *Snapshot) bool {
	return c.stale.Load() || c.clock().Sub(s.LoadedAt) >= c.ttl
}

// load pulls the three catalogue collections and resolves every fragrance
// against the brand and note tables built in the same pass. Exactly three
// bulk reads regardless of catalogue size. Callers hold c.mu.
func (c *Cache) load(ctx context.Context) (*Snapshot, error) {
	brandDocs, err := c.store.StreamAll(ctx, brandsCollection)
	if err != nil {
		return nil, fmt.Errorf("stream brands: %w", err)
	}
	brands := make([]catalog.Brand, 0, len(brandDocs))
	brandTable := make(map[string]catalog.Brand, len(brandDocs))
	for _, doc := range brandDocs {
		b := catalog.BrandFromDocument(doc.ID, doc.Fields)
		brands = append(brands, b)
		brandTable[b.ID] = b
	}

	noteDocs, err := c.store.StreamAll(ctx, notesCollection)
	if err != nil {
		return nil, fmt.Errorf("stream notes: %w", err)
	}
	notes := make([]catalog.Note, 0, len(noteDocs))
	noteTable := make(map[string]catalog.Note, len(noteDocs))
	for _, doc := range noteDocs {
		n := catalog.NoteFromDocument(doc.ID, doc.Fields)
		notes = append(notes, n)
		noteTable[n.ID] = n
	}

	fragDocs, err := c.store.StreamAll(ctx, fragrancesCollection)
	if err != nil {
		return nil, fmt.Errorf("stream fragrances: %w", err)
	}
	fragrances := make([]catalog.Fragrance, 0, len(fragDocs))
	for _, doc := range fragDocs {
		normalized := catalog.NormalizedFragranceFromDocument(doc.ID, doc.Fields)
		fragrances = append(fragrances, catalog.ResolveFragrance(normalized, brandTable, noteTable))
	}

	c.gen++
	snap := &Snapshot{
		Brands:     brands,
		Notes:      notes,
		Fragrances: fragrances,
		LoadedAt:   c.clock(),
		Generation: c.gen,
	}

	c.logger.Info("catalog snapshot loaded",
		zap.Int("brands", len(brands)),
		zap.Int("notes", len(notes)),
		zap.Int("fragrances", len(fragrances)),
		zap.Uint64("generation", snap.Generation),
	)

	return snap, nil
}
