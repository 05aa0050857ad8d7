package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"socialgraph/application/services"
	"socialgraph/pkg/common"
	apperrors "socialgraph/pkg/errors"
)

// AdminHandler exposes the operator-facing endpoints: raw read queries,
// schema reindexing, graph statistics, bulk loads and subgraph export.
type AdminHandler struct {
	service *services.GraphService
	logger  *zap.Logger
}

func NewAdminHandler(service *services.GraphService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{service: service, logger: logger}
}

// RawQueryRequest is the body for POST /query.
type RawQueryRequest struct {
	Query      string         `json:"query" validate:"required"`
	Parameters map[string]any `json:"parameters"`
}

// ExecuteQuery handles POST /query. The service restricts it to read-only
// Cypher, appends a LIMIT and rate-limits calls.
func (h *AdminHandler) ExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var req RawQueryRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), err.Error())
		return
	}

	records, err := h.service.ExecuteRawQuery(r.Context(), req.Query, req.Parameters)
	if err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeValidation) && !apperrors.IsType(err, apperrors.ErrorTypeRateLimit) {
			h.logger.Error("raw query failed", zap.Error(err))
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]any{
		"results": records,
		"count":   len(records),
	})
}

// Reindex handles POST /admin/reindex.
func (h *AdminHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reindex(r.Context()); err != nil {
		h.logger.Error("reindex failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "Reindexing completed"})
}

// GetStats handles GET /admin/stats.
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStatistics(r.Context())
	if err != nil {
		h.logger.Error("statistics failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, stats)
}

// BulkNodesRequest is the body for POST /admin/bulk/nodes.
type BulkNodesRequest struct {
	Label string           `json:"label" validate:"required"`
	Nodes []map[string]any `json:"nodes" validate:"required,min=1,max=1000"`
}

// BulkCreateNodes handles POST /admin/bulk/nodes.
func (h *AdminHandler) BulkCreateNodes(w http.ResponseWriter, r *http.Request) {
	var req BulkNodesRequest
	if err := common.ParseJSONBody(r, &req, 8*maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), err.Error())
		return
	}

	ids, err := h.service.BulkCreateNodes(r.Context(), req.Nodes, req.Label)
	if err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			h.logger.Error("bulk node creation failed", zap.Error(err))
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]any{
		"created_ids": ids,
		"count":       len(ids),
	})
}

// BulkRelationshipsRequest is the body for POST /admin/bulk/relationships.
type BulkRelationshipsRequest struct {
	Relationships []services.BulkRelationshipInput `json:"relationships" validate:"required,min=1,max=1000"`
}

// BulkCreateRelationships handles POST /admin/bulk/relationships.
func (h *AdminHandler) BulkCreateRelationships(w http.ResponseWriter, r *http.Request) {
	var req BulkRelationshipsRequest
	if err := common.ParseJSONBody(r, &req, 8*maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), err.Error())
		return
	}

	created, err := h.service.BulkCreateRelationships(r.Context(), req.Relationships)
	if err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			h.logger.Error("bulk relationship creation failed", zap.Error(err))
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]any{"created": created})
}

// ExportSubgraph handles GET /admin/export/{userID}?depth=.
func (h *AdminHandler) ExportSubgraph(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	depth := parseIntParam(r, "depth", 0)

	subgraph, err := h.service.ExportSubgraph(r.Context(), userID, depth)
	if err != nil {
		h.logger.Error("subgraph export failed", zap.String("user_id", userID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, subgraph)
}
