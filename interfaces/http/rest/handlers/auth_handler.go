package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scentbase-backend/application/services"
	"scentbase-backend/pkg/auth"
	"scentbase-backend/pkg/common"
	apperrors "scentbase-backend/pkg/errors"
	"scentbase-backend/pkg/utils"
)

// AuthHandler exchanges a verified identity for an API token. Credential
// checks happen at the upstream identity provider; this service only mints
// tokens for profiles it knows about.
type AuthHandler struct {
	users     *services.UserService
	generator *auth.JWTGenerator
	logger    *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *services.UserService, generator *auth.JWTGenerator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:     users,
		generator: generator,
		logger:    logger,
	}
}

// registerRequest is the POST /api/auth/register payload
type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), err.Error())
		return
	}

	if _, err := h.users.GetByEmail(r.Context(), req.Email); err == nil {
		common.RespondAppError(w, apperrors.NewConflictError("email is already registered"))
		return
	} else if !apperrors.IsNotFound(err) {
		common.RespondAppError(w, err)
		return
	}

	user, err := h.users.CreateWithID(r.Context(), uuid.New().String(), req.Username, req.Email)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	token, err := h.generator.GenerateToken(user.ID, user.Email)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// loginRequest is the POST /api/auth/login payload
type loginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), err.Error())
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			common.RespondAppError(w, apperrors.NewUnauthorizedError("unknown account"))
			return
		}
		common.RespondAppError(w, err)
		return
	}

	token, err := h.generator.GenerateToken(user.ID, user.Email)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}
