package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scentbase-backend/application/catalogcache"
	"scentbase-backend/application/ports"
	"scentbase-backend/application/services"
	apperrors "scentbase-backend/pkg/errors"
)

// stubStore serves canned catalogue collections
type stubStore struct {
	collections map[string][]ports.Document
}

func (s *stubStore) StreamAll(ctx context.Context, collection string) ([]ports.Document, error) {
	return s.collections[collection], nil
}

func (s *stubStore) GetByID(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	return nil, apperrors.NewNotFoundError("document")
}

func (s *stubStore) GetByIDs(ctx context.Context, collection string, ids []string) (map[string]map[string]interface{}, error) {
	return nil, nil
}

func (s *stubStore) Query(ctx context.Context, collection, field string, value interface{}) ([]ports.Document, error) {
	return nil, nil
}

func (s *stubStore) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	return "", nil
}

func (s *stubStore) Set(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	return nil
}

func (s *stubStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	return nil
}

func (s *stubStore) Delete(ctx context.Context, collection, id string) error {
	return nil
}

func (s *stubStore) AtomicIncrement(ctx context.Context, collection, id, field string, delta int) error {
	return nil
}

func (s *stubStore) AtomicArrayAdd(ctx context.Context, collection, id, field, value string) error {
	return nil
}

func (s *stubStore) AtomicArrayRemove(ctx context.Context, collection, id, field, value string) error {
	return nil
}

type nopPublisher struct{}

func (nopPublisher) PublishCatalogChanged(ctx context.Context, collection, docID, action string) error {
	return nil
}

func catalogRouter(t *testing.T) http.Handler {
	t.Helper()

	store := &stubStore{collections: map[string][]ports.Document{
		"brands": {
			{ID: "b1", Fields: map[string]interface{}{"name": "Maison Noir"}},
			{ID: "b2", Fields: map[string]interface{}{"name": "Lumière"}},
		},
		"notes": {
			{ID: "n1", Fields: map[string]interface{}{"name": "Bergamot", "family": "Citrus"}},
			{ID: "n2", Fields: map[string]interface{}{"name": "Oud", "family": "Woody"}},
		},
		"fragrances": {
			{ID: "f1", Fields: map[string]interface{}{
				"name": "Oud Royale", "brandId": "b1", "gender": "Unisex",
				"notes":   map[string]interface{}{"top": []interface{}{"n1"}, "middle": []interface{}{}, "base": []interface{}{"n2"}},
				"ratings": map[string]interface{}{"overall": 4.5, "reviewCount": 10},
			}},
			{ID: "f2", Fields: map[string]interface{}{
				"name": "Citrus Dawn", "brandId": "b2", "gender": "Feminine",
				"notes":   map[string]interface{}{"top": []interface{}{"n1"}, "middle": []interface{}{}, "base": []interface{}{}},
				"ratings": map[string]interface{}{"overall": 4.9, "reviewCount": 3},
			}},
		},
	}}

	logger := zap.NewNop()
	cache := catalogcache.New(store, time.Hour, logger)
	writes := services.NewCatalogService(store, cache, nopPublisher{}, logger)
	reviews := services.NewReviewService(store, logger)
	handler := NewFragranceHandler(cache, writes, reviews, logger)

	r := chi.NewRouter()
	r.Get("/api/fragrances", handler.List)
	r.Get("/api/fragrances/{fragranceID}", handler.Get)
	r.Get("/api/fragrances/{fragranceID}/similar", handler.Similar)
	return r
}

type listResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Fragrances []struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Brand struct {
				Name string `json:"name"`
			} `json:"brand"`
		} `json:"fragrances"`
		Total int `json:"total"`
	} `json:"data"`
}

func TestFragranceListFiltersAndSorts(t *testing.T) {
	router := catalogRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/fragrances?sort=reviews", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, "f1", resp.Data.Fragrances[0].ID, "review-count sort puts f1 first")
	assert.Equal(t, "Maison Noir", resp.Data.Fragrances[0].Brand.Name, "brands are resolved inline")

	req = httptest.NewRequest(http.MethodGet, "/api/fragrances?gender=Feminine", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp = listResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "f2", resp.Data.Fragrances[0].ID)
}

func TestFragranceGetUnknownIs404(t *testing.T) {
	router := catalogRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/fragrances/ghost", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFragranceSimilar(t *testing.T) {
	router := catalogRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/fragrances/f1/similar", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "f2", resp.Data.Fragrances[0].ID, "shared top note makes f2 similar")
}

func TestFragranceSimilarExplicitLimit(t *testing.T) {
	router := catalogRouter(t)

	// An explicit non-positive limit is honored, not replaced by the default.
	for _, raw := range []string{"-1", "0"} {
		req := httptest.NewRequest(http.MethodGet, "/api/fragrances/f1/similar?limit="+raw, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp listResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Data.Total, "limit=%s returns no results", raw)
	}
}
