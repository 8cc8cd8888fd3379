package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"scentbase-backend/application/catalogcache"
	"scentbase-backend/pkg/common"
)

// CatalogHandler exposes the snapshot cache itself: its status for
// operators and an explicit invalidation hook
type CatalogHandler struct {
	cache  *catalogcache.Cache
	logger *zap.Logger
}

// NewCatalogHandler creates a new catalogue cache handler
func NewCatalogHandler(cache *catalogcache.Cache, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		cache:  cache,
		logger: logger,
	}
}

// Snapshot handles GET /api/catalog/snapshot
func (h *CatalogHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.cache.Snapshot(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"generation": snap.Generation,
		"loadedAt":   snap.LoadedAt,
		"brands":     len(snap.Brands),
		"notes":      len(snap.Notes),
		"fragrances": len(snap.Fragrances),
	})
}

// Invalidate handles POST /api/catalog/invalidate. The refill happens lazily
// on the next read.
func (h *CatalogHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	h.cache.Invalidate()
	h.logger.Info("catalog snapshot invalidated via API")
	common.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "invalidated"})
}
