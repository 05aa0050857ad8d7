package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"socialgraph/application/services"
	"socialgraph/domain/model"
	"socialgraph/pkg/common"
	apperrors "socialgraph/pkg/errors"
)

// InteractionHandler records interaction events and lists them per user.
type InteractionHandler struct {
	service *services.GraphService
	logger  *zap.Logger
}

func NewInteractionHandler(service *services.GraphService, logger *zap.Logger) *InteractionHandler {
	return &InteractionHandler{service: service, logger: logger}
}

// RecordInteractionRequest is the body for POST /interactions.
type RecordInteractionRequest struct {
	FromUserID string           `json:"from_user_id" validate:"required"`
	ToUserID   string           `json:"to_user_id" validate:"required"`
	Type       string           `json:"type" validate:"required"`
	EntityID   string           `json:"entity_id"`
	EntityType string           `json:"entity_type"`
	Content    string           `json:"content" validate:"omitempty,max=5000"`
	Metadata   model.Properties `json:"metadata"`
}

// RecordInteraction handles POST /interactions.
func (h *InteractionHandler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req RecordInteractionRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), err.Error())
		return
	}

	interaction, err := h.service.RecordInteraction(r.Context(), services.RecordInteractionInput{
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Type:       model.InteractionType(req.Type),
		EntityID:   req.EntityID,
		EntityType: req.EntityType,
		Content:    req.Content,
		Metadata:   req.Metadata,
	})
	if err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			h.logger.Error("record interaction failed", zap.Error(err))
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, interaction)
}

// GetUserInteractions handles GET /interactions/{userID} with optional
// ?type= and ?limit= query parameters.
func (h *InteractionHandler) GetUserInteractions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var interactionType model.InteractionType
	if raw := r.URL.Query().Get("type"); raw != "" {
		interactionType = model.InteractionType(raw)
		if !interactionType.Valid() {
			common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "unknown interaction type")
			return
		}
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "limit must be an integer")
			return
		}
		limit = parsed
	}

	interactions, err := h.service.GetUserInteractions(r.Context(), userID, interactionType, limit)
	if err != nil {
		h.logger.Error("list interactions failed", zap.String("user_id", userID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, interactions)
}
