package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"socialgraph/application/services"
	"socialgraph/domain/model"
	"socialgraph/pkg/common"
	apperrors "socialgraph/pkg/errors"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

// UserHandler handles user CRUD and the per-user relationship listing.
type UserHandler struct {
	service *services.GraphService
	logger  *zap.Logger
}

func NewUserHandler(service *services.GraphService, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

// CreateUserRequest is the body for POST /users.
type CreateUserRequest struct {
	Username  string           `json:"username" validate:"required,min=3,max=50"`
	Email     string           `json:"email" validate:"omitempty,email"`
	Name      string           `json:"name" validate:"omitempty,max=100"`
	Bio       string           `json:"bio" validate:"omitempty,max=500"`
	AvatarURL string           `json:"avatar_url" validate:"omitempty,url"`
	Location  string           `json:"location" validate:"omitempty,max=100"`
	Tags      []string         `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Metadata  model.Properties `json:"metadata"`
}

// CreateUser handles POST /users.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), err.Error())
		return
	}

	user, err := h.service.CreateUser(r.Context(), services.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Name:      req.Name,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
		Location:  req.Location,
		Tags:      req.Tags,
		Metadata:  req.Metadata,
	})
	if err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeValidation) && !apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			h.logger.Error("create user failed", zap.Error(err))
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, user)
}

// GetUser handles GET /users/{userID}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			h.logger.Error("get user failed", zap.String("user_id", userID), zap.Error(err))
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, user)
}

// UpdateUser handles PUT /users/{userID}. The body is a partial property
// map; the service rejects fields outside its allowlist.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var updates map[string]any
	if err := common.ParseJSONBody(r, &updates, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "invalid request body: "+err.Error())
		return
	}

	user, err := h.service.UpdateUser(r.Context(), userID, updates)
	if err != nil {
		if !apperrors.IsNotFound(err) && !apperrors.IsType(err, apperrors.ErrorTypeValidation) &&
			!apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			h.logger.Error("update user failed", zap.String("user_id", userID), zap.Error(err))
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /users/{userID}.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		if !apperrors.IsNotFound(err) {
			h.logger.Error("delete user failed", zap.String("user_id", userID), zap.Error(err))
		}
		common.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetUserRelationships handles GET /users/{userID}/relationships.
// An optional ?type= filters to a single relationship type.
func (h *UserHandler) GetUserRelationships(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var relType model.RelationshipType
	if raw := r.URL.Query().Get("type"); raw != "" {
		relType = model.RelationshipType(raw)
		if !relType.Valid() {
			common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "unknown relationship type")
			return
		}
	}

	relationships, err := h.service.GetUserRelationships(r.Context(), userID, relType)
	if err != nil {
		h.logger.Error("list relationships failed", zap.String("user_id", userID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, relationships)
}
