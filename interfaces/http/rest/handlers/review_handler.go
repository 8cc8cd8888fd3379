package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"scentbase-backend/application/catalogcache"
	"scentbase-backend/application/services"
	"scentbase-backend/domain/community"
	"scentbase-backend/pkg/auth"
	"scentbase-backend/pkg/common"
	apperrors "scentbase-backend/pkg/errors"
	"scentbase-backend/pkg/utils"
)

// ReviewHandler serves review reads and authenticated review writes
type ReviewHandler struct {
	reviews *services.ReviewService
	cache   *catalogcache.Cache
	policy  *auth.OwnershipPolicy
	logger  *zap.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *services.ReviewService, cache *catalogcache.Cache, policy *auth.OwnershipPolicy, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		cache:   cache,
		policy:  policy,
		logger:  logger,
	}
}

// fragranceSummary is the slice of catalogue data embedded in review listings
type fragranceSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	ImageURL string `json:"imageUrl"`
}

// enrichedReview decorates a review with its fragrance summary. Fragrance is
// nil when the reviewed fragrance has left the catalogue.
type enrichedReview struct {
	community.Review
	Fragrance *fragranceSummary `json:"fragrance"`
}

// List handles GET /api/reviews, embedding a catalogue summary per review
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.List(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	enriched, err := h.enrich(r, reviews)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": enriched,
		"total":   len(enriched),
	})
}

// Get handles GET /api/reviews/{reviewID}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	review, err := h.reviews.GetByID(r.Context(), chi.URLParam(r, "reviewID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, review)
}

// createReviewRequest is the POST /api/reviews payload
type createReviewRequest struct {
	FragranceID string                 `json:"fragranceId" validate:"required"`
	UserName    string                 `json:"userName" validate:"required,min=1,max=100"`
	UserAvatar  *string                `json:"userAvatar"`
	Rating      community.ReviewRating `json:"rating" validate:"required"`
	Content     string                 `json:"content" validate:"required,min=1,max=10000"`
	WearContext *community.WearContext `json:"wearContext"`
	Impressions *community.Impressions `json:"impressions"`
}

// Create handles POST /api/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, string(apperrors.ErrorTypeUnauthorized), "authentication required")
		return
	}

	var req createReviewRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), err.Error())
		return
	}

	id, err := h.reviews.Create(r.Context(), services.CreateReviewInput{
		FragranceID: req.FragranceID,
		UserID:      user.UserID,
		UserName:    req.UserName,
		UserAvatar:  req.UserAvatar,
		Rating:      req.Rating,
		Content:     req.Content,
		WearContext: req.WearContext,
		Impressions: req.Impressions,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Update handles PUT /api/reviews/{reviewID}; only the author may edit
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, string(apperrors.ErrorTypeUnauthorized), "authentication required")
		return
	}

	reviewID := chi.URLParam(r, "reviewID")
	review, err := h.reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if !h.policy.CanModify(user.UserID, review.UserID) {
		common.RespondAppError(w, apperrors.NewForbiddenError("only the author can edit a review"))
		return
	}

	var data map[string]interface{}
	if err := common.ParseJSONBody(r, &data, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	if err := h.reviews.Update(r.Context(), reviewID, data); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"id": reviewID})
}

// Delete handles DELETE /api/reviews/{reviewID}; only the author may delete
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, string(apperrors.ErrorTypeUnauthorized), "authentication required")
		return
	}

	reviewID := chi.URLParam(r, "reviewID")
	review, err := h.reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if !h.policy.CanModify(user.UserID, review.UserID) {
		common.RespondAppError(w, apperrors.NewForbiddenError("only the author can delete a review"))
		return
	}

	if err := h.reviews.Delete(r.Context(), reviewID); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"id": reviewID})
}

// Upvote handles POST /api/reviews/{reviewID}/upvote
func (h *ReviewHandler) Upvote(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "reviewID")
	if err := h.reviews.Upvote(r.Context(), reviewID); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"id": reviewID})
}

func (h *ReviewHandler) enrich(r *http.Request, reviews []community.Review) ([]enrichedReview, error) {
	fragrances, err := h.cache.Fragrances(r.Context())
	if err != nil {
		return nil, err
	}

	byID := make(map[string]fragranceSummary, len(fragrances))
	for _, f := range fragrances {
		byID[f.ID] = fragranceSummary{
			ID:       f.ID,
			Name:     f.Name,
			Brand:    f.Brand.Name,
			ImageURL: f.ImageURL,
		}
	}

	enriched := make([]enrichedReview, 0, len(reviews))
	for _, rev := range reviews {
		e := enrichedReview{Review: rev}
		if summary, ok := byID[rev.FragranceID]; ok {
			e.Fragrance = &summary
		}
		enriched = append(enriched, e)
	}
	return enriched, nil
}
