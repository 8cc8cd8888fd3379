package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"scentbase-backend/application/catalogcache"
	"scentbase-backend/domain/catalog"
	"scentbase-backend/pkg/common"
)

// DiscoveryHandler serves the browse surfaces: brands with catalogue counts
// and the note dictionary grouped by olfactory family
type DiscoveryHandler struct {
	cache  *catalogcache.Cache
	logger *zap.Logger
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(cache *catalogcache.Cache, logger *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		cache:  cache,
		logger: logger,
	}
}

// brandWithCount decorates a brand with how many fragrances it has in the
// current snapshot
type brandWithCount struct {
	catalog.Brand
	FragranceCount int `json:"fragranceCount"`
}

// Brands handles GET /api/brands
func (h *DiscoveryHandler) Brands(w http.ResponseWriter, r *http.Request) {
	snap, err := h.cache.Snapshot(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	counts := make(map[string]int, len(snap.Brands))
	for _, f := range snap.Fragrances {
		counts[f.Brand.ID]++
	}

	brands := make([]brandWithCount, 0, len(snap.Brands))
	for _, b := range snap.Brands {
		brands = append(brands, brandWithCount{
			Brand:          b,
			FragranceCount: counts[b.ID],
		})
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"brands": brands,
		"total":  len(brands),
	})
}

// Notes handles GET /api/notes with an optional family filter
func (h *DiscoveryHandler) Notes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.cache.Notes(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	if family := r.URL.Query().Get("family"); family != "" {
		filtered := make([]catalog.Note, 0, len(notes))
		for _, n := range notes {
			if n.Family != nil && *n.Family == family {
				filtered = append(filtered, n)
			}
		}
		notes = filtered
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"notes": notes,
		"total": len(notes),
	})
}

// NoteFamilies handles GET /api/notes/families
func (h *DiscoveryHandler) NoteFamilies(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"families": catalog.NoteFamilies,
	})
}
