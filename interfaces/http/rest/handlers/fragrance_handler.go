// Package handlers contains the HTTP endpoints. Handlers translate between
// the wire format and the application layer; catalogue reads always go
// through the snapshot cache, never the store.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"scentbase-backend/application/catalogcache"
	"scentbase-backend/application/query"
	"scentbase-backend/application/services"
	"scentbase-backend/domain/catalog"
	"scentbase-backend/pkg/common"
	apperrors "scentbase-backend/pkg/errors"
)

const maxBodyBytes = 1 << 20 // 1 MB

// FragranceHandler serves catalogue reads and admin writes
type FragranceHandler struct {
	cache   *catalogcache.Cache
	writes  *services.CatalogService
	reviews *services.ReviewService
	logger  *zap.Logger
}

// NewFragranceHandler creates a new fragrance handler
func NewFragranceHandler(cache *catalogcache.Cache, writes *services.CatalogService, reviews *services.ReviewService, logger *zap.Logger) *FragranceHandler {
	return &FragranceHandler{
		cache:   cache,
		writes:  writes,
		reviews: reviews,
		logger:  logger,
	}
}

// List handles GET /api/fragrances with filter, sort, and limit parameters
func (h *FragranceHandler) List(w http.ResponseWriter, r *http.Request) {
	fragrances, err := h.cache.Fragrances(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	q := r.URL.Query()
	filters := query.Filters{
		Search:        q.Get("search"),
		Brand:         q.Get("brand"),
		Concentration: q.Get("concentration"),
		Gender:        q.Get("gender"),
	}
	if notes := q.Get("notes"); notes != "" {
		filters.Notes = strings.Split(notes, ",")
	}

	result := query.Apply(fragrances, filters)
	result = query.SortBy(result, q.Get("sort"))

	if limit := parseLimit(q.Get("limit")); limit > 0 && limit < len(result) {
		result = result[:limit]
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"fragrances": result,
		"total":      len(result),
	})
}

// Get handles GET /api/fragrances/{fragranceID}
func (h *FragranceHandler) Get(w http.ResponseWriter, r *http.Request) {
	fragranceID := chi.URLParam(r, "fragranceID")

	fragrance, err := h.findFragrance(r, fragranceID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, fragrance)
}

// Similar handles GET /api/fragrances/{fragranceID}/similar
func (h *FragranceHandler) Similar(w http.ResponseWriter, r *http.Request) {
	fragranceID := chi.URLParam(r, "fragranceID")

	fragrances, err := h.cache.Fragrances(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	// Absent or unparsable limits take the default; explicit values pass
	// through, so limit=0 and negative limits return an empty list.
	limit := query.DefaultSimilarLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	similar, err := query.SimilarTo(fragrances, fragranceID, limit, query.DefaultSimilarityWeights)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"fragrances": similar,
		"total":      len(similar),
	})
}

// Reviews handles GET /api/fragrances/{fragranceID}/reviews
func (h *FragranceHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	fragranceID := chi.URLParam(r, "fragranceID")

	if _, err := h.findFragrance(r, fragranceID); err != nil {
		common.RespondAppError(w, err)
		return
	}

	reviews, err := h.reviews.GetByFragrance(r.Context(), fragranceID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// Create handles POST /api/fragrances
func (h *FragranceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var write catalog.FragranceWrite
	if err := common.ParseJSONBody(r, &write, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	id, err := h.writes.CreateFragrance(r.Context(), write)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Update handles PUT /api/fragrances/{fragranceID}
func (h *FragranceHandler) Update(w http.ResponseWriter, r *http.Request) {
	fragranceID := chi.URLParam(r, "fragranceID")

	var write catalog.FragranceWrite
	if err := common.ParseJSONBody(r, &write, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	if err := h.writes.UpdateFragrance(r.Context(), fragranceID, write); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"id": fragranceID})
}

// Delete handles DELETE /api/fragrances/{fragranceID}
func (h *FragranceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	fragranceID := chi.URLParam(r, "fragranceID")

	if err := h.writes.DeleteFragrance(r.Context(), fragranceID); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"id": fragranceID})
}

func (h *FragranceHandler) findFragrance(r *http.Request, id string) (catalog.Fragrance, error) {
	fragrances, err := h.cache.Fragrances(r.Context())
	if err != nil {
		return catalog.Fragrance{}, err
	}
	for _, f := range fragrances {
		if f.ID == id {
			return f, nil
		}
	}
	return catalog.Fragrance{}, apperrors.NewNotFoundError("fragrance")
}

// parseLimit returns 0 (no truncation) for absent, unparsable, or negative
// list limits
func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
