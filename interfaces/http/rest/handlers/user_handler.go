package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"scentbase-backend/application/catalogcache"
	"scentbase-backend/application/services"
	"scentbase-backend/domain/catalog"
	"scentbase-backend/pkg/auth"
	"scentbase-backend/pkg/common"
	apperrors "scentbase-backend/pkg/errors"
	"scentbase-backend/pkg/utils"
)

// UserHandler serves profiles and the per-user fragrance collection
type UserHandler struct {
	users  *services.UserService
	cache  *catalogcache.Cache
	policy *auth.OwnershipPolicy
	logger *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService, cache *catalogcache.Cache, policy *auth.OwnershipPolicy, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		cache:  cache,
		policy: policy,
		logger: logger,
	}
}

// Get handles GET /api/users/{userID}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, user)
}

// Update handles PUT /api/users/{userID}; users may only edit themselves
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, string(apperrors.ErrorTypeUnauthorized), "authentication required")
		return
	}

	userID := chi.URLParam(r, "userID")
	if !h.policy.CanModify(actor.UserID, userID) {
		common.RespondAppError(w, apperrors.NewForbiddenError("users can only edit their own profile"))
		return
	}

	var data map[string]interface{}
	if err := common.ParseJSONBody(r, &data, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	if err := h.users.Update(r.Context(), userID, data); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"id": userID})
}

// resolvedCollection is the user's collection with every fragrance ID
// swapped for the resolved catalogue entry still present in the snapshot
type resolvedCollection struct {
	Owned    []catalog.Fragrance `json:"owned"`
	Sampled  []catalog.Fragrance `json:"sampled"`
	Wishlist []catalog.Fragrance `json:"wishlist"`
}

// Collection handles GET /api/users/{userID}/collection
func (h *UserHandler) Collection(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	fragrances, err := h.cache.Fragrances(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	byID := make(map[string]catalog.Fragrance, len(fragrances))
	for _, f := range fragrances {
		byID[f.ID] = f
	}

	common.RespondJSON(w, http.StatusOK, resolvedCollection{
		Owned:    resolveIDs(user.Collection.Owned, byID),
		Sampled:  resolveIDs(user.Collection.Sampled, byID),
		Wishlist: resolveIDs(user.Collection.Wishlist, byID),
	})
}

// collectionItemRequest is the add/remove payload for collection tabs
type collectionItemRequest struct {
	FragranceID string `json:"fragranceId" validate:"required"`
}

// AddToCollection handles POST /api/users/{userID}/collection/{tab}
func (h *UserHandler) AddToCollection(w http.ResponseWriter, r *http.Request) {
	h.mutateCollection(w, r, h.users.AddToCollection)
}

// RemoveFromCollection handles DELETE /api/users/{userID}/collection/{tab}
func (h *UserHandler) RemoveFromCollection(w http.ResponseWriter, r *http.Request) {
	h.mutateCollection(w, r, h.users.RemoveFromCollection)
}

func (h *UserHandler) mutateCollection(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, tab, fragranceID string) error) {
	actor, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, string(apperrors.ErrorTypeUnauthorized), "authentication required")
		return
	}

	userID := chi.URLParam(r, "userID")
	if !h.policy.CanModify(actor.UserID, userID) {
		common.RespondAppError(w, apperrors.NewForbiddenError("users can only edit their own collection"))
		return
	}

	var req collectionItemRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), err.Error())
		return
	}

	if err := op(r.Context(), userID, chi.URLParam(r, "tab"), req.FragranceID); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"fragranceId": req.FragranceID})
}

func resolveIDs(ids []string, byID map[string]catalog.Fragrance) []catalog.Fragrance {
	resolved := make([]catalog.Fragrance, 0, len(ids))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			resolved = append(resolved, f)
		}
	}
	return resolved
}
