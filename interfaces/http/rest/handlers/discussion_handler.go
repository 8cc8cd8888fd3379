package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"scentbase-backend/application/services"
	"scentbase-backend/domain/community"
	"scentbase-backend/pkg/auth"
	"scentbase-backend/pkg/common"
	apperrors "scentbase-backend/pkg/errors"
	"scentbase-backend/pkg/utils"
)

// DiscussionHandler serves community threads and replies
type DiscussionHandler struct {
	discussions *services.DiscussionService
	logger      *zap.Logger
}

// NewDiscussionHandler creates a new discussion handler
func NewDiscussionHandler(discussions *services.DiscussionService, logger *zap.Logger) *DiscussionHandler {
	return &DiscussionHandler{
		discussions: discussions,
		logger:      logger,
	}
}

// List handles GET /api/discussions with an optional category filter
func (h *DiscussionHandler) List(w http.ResponseWriter, r *http.Request) {
	discussions, err := h.discussions.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"discussions": discussions,
		"total":       len(discussions),
	})
}

// threadResponse is a discussion with its replies attached
type threadResponse struct {
	community.Discussion
	Replies []community.Reply `json:"replies"`
}

// Get handles GET /api/discussions/{discussionID}, returning the thread with
// its replies oldest-first
func (h *DiscussionHandler) Get(w http.ResponseWriter, r *http.Request) {
	discussionID := chi.URLParam(r, "discussionID")

	discussion, err := h.discussions.GetByID(r.Context(), discussionID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	replies, err := h.discussions.GetReplies(r.Context(), discussionID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, threadResponse{
		Discussion: discussion,
		Replies:    replies,
	})
}

// createDiscussionRequest is the POST /api/discussions payload
type createDiscussionRequest struct {
	Title      string `json:"title" validate:"required,min=1,max=200"`
	Body       string `json:"body" validate:"required,min=1,max=20000"`
	Category   string `json:"category"`
	AuthorName string `json:"authorName" validate:"required,min=1,max=100"`
}

// Create handles POST /api/discussions
func (h *DiscussionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, string(apperrors.ErrorTypeUnauthorized), "authentication required")
		return
	}

	var req createDiscussionRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), err.Error())
		return
	}

	discussion, err := h.discussions.Create(r.Context(), services.CreateDiscussionInput{
		Title:      req.Title,
		Body:       req.Body,
		Category:   req.Category,
		AuthorID:   user.UserID,
		AuthorName: req.AuthorName,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, discussion)
}

// createReplyRequest is the POST /api/discussions/{discussionID}/replies payload
type createReplyRequest struct {
	Body       string `json:"body" validate:"required,min=1,max=20000"`
	AuthorName string `json:"authorName" validate:"required,min=1,max=100"`
}

// AddReply handles POST /api/discussions/{discussionID}/replies
func (h *DiscussionHandler) AddReply(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, string(apperrors.ErrorTypeUnauthorized), "authentication required")
		return
	}

	var req createReplyRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), err.Error())
		return
	}

	reply, err := h.discussions.AddReply(r.Context(), chi.URLParam(r, "discussionID"), services.CreateReplyInput{
		Body:       req.Body,
		AuthorID:   user.UserID,
		AuthorName: req.AuthorName,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, reply)
}

// Delete handles DELETE /api/discussions/{discussionID}; author-only
func (h *DiscussionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, string(apperrors.ErrorTypeUnauthorized), "authentication required")
		return
	}

	discussionID := chi.URLParam(r, "discussionID")
	if err := h.discussions.Delete(r.Context(), user.UserID, discussionID); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"id": discussionID})
}
