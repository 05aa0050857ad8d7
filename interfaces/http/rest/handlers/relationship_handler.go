package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"socialgraph/application/services"
	"socialgraph/domain/model"
	"socialgraph/pkg/common"
	apperrors "socialgraph/pkg/errors"
)

// RelationshipHandler handles edge creation and removal.
type RelationshipHandler struct {
	service *services.GraphService
	logger  *zap.Logger
}

func NewRelationshipHandler(service *services.GraphService, logger *zap.Logger) *RelationshipHandler {
	return &RelationshipHandler{service: service, logger: logger}
}

// CreateRelationshipRequest is the body for POST /relationships.
type CreateRelationshipRequest struct {
	FromUserID    string           `json:"from_user_id" validate:"required"`
	ToUserID      string           `json:"to_user_id" validate:"required"`
	Type          string           `json:"type" validate:"required"`
	Weight        *float64         `json:"weight" validate:"omitempty,gte=0"`
	Properties    model.Properties `json:"properties"`
	Bidirectional bool             `json:"bidirectional"`
}

// CreateRelationship handles POST /relationships.
func (h *RelationshipHandler) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	var req CreateRelationshipRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), err.Error())
		return
	}

	relationship, err := h.service.CreateRelationship(r.Context(), services.CreateRelationshipInput{
		FromUserID:    req.FromUserID,
		ToUserID:      req.ToUserID,
		Type:          model.RelationshipType(req.Type),
		Weight:        req.Weight,
		Properties:    req.Properties,
		Bidirectional: req.Bidirectional,
	})
	if err != nil {
		if !apperrors.IsNotFound(err) && !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			h.logger.Error("create relationship failed",
				zap.String("from", req.FromUserID),
				zap.String("to", req.ToUserID),
				zap.Error(err))
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, relationship)
}

// DeleteRelationship handles DELETE /relationships/{relationshipID}.
func (h *RelationshipHandler) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	relationshipID := chi.URLParam(r, "relationshipID")

	if err := h.service.DeleteRelationship(r.Context(), relationshipID); err != nil {
		if !apperrors.IsNotFound(err) {
			h.logger.Error("delete relationship failed",
				zap.String("relationship_id", relationshipID),
				zap.Error(err))
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "Relationship deleted"})
}
