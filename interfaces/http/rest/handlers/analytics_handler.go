package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"socialgraph/application/services"
	"socialgraph/pkg/common"
	apperrors "socialgraph/pkg/errors"
)

// AnalyticsHandler exposes the graph-algorithm operations.
type AnalyticsHandler struct {
	service *services.GraphService
	logger  *zap.Logger
}

func NewAnalyticsHandler(service *services.GraphService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, logger: logger}
}

// FindShortestPath handles GET /paths/shortest?source_id=&target_id=&max_hops=.
func (h *AnalyticsHandler) FindShortestPath(w http.ResponseWriter, r *http.Request) {
	sourceID := r.URL.Query().Get("source_id")
	targetID := r.URL.Query().Get("target_id")
	if sourceID == "" || targetID == "" {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "source_id and target_id are required")
		return
	}

	maxHops := parseIntParam(r, "max_hops", 0)

	path, err := h.service.FindShortestPath(r.Context(), sourceID, targetID, maxHops)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			h.logger.Error("shortest path failed",
				zap.String("source_id", sourceID),
				zap.String("target_id", targetID),
				zap.Error(err))
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, path)
}

// GetCommunities handles GET /communities/{userID}?algorithm=.
func (h *AnalyticsHandler) GetCommunities(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	algorithm := r.URL.Query().Get("algorithm")
	if algorithm == "" {
		algorithm = "louvain"
	}

	communities, err := h.service.DetectCommunities(r.Context(), userID, algorithm)
	if err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			h.logger.Error("community detection failed", zap.String("user_id", userID), zap.Error(err))
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, communities)
}

// GetInfluenceScore handles GET /influence/{userID}/score.
func (h *AnalyticsHandler) GetInfluenceScore(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	metrics, err := h.service.CalculateInfluenceScore(r.Context(), userID)
	if err != nil {
		h.logger.Error("influence score failed", zap.String("user_id", userID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, metrics)
}

// RecommendConnections handles GET /recommendations/{userID}/connections?limit=.
func (h *AnalyticsHandler) RecommendConnections(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	limit := parseIntParam(r, "limit", 0)

	recommendations, err := h.service.RecommendConnections(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("recommendations failed", zap.String("user_id", userID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, recommendations)
}

// RankInfluencers handles GET /influencers?iterations=&damping_factor=.
func (h *AnalyticsHandler) RankInfluencers(w http.ResponseWriter, r *http.Request) {
	iterations := parseIntParam(r, "iterations", 0)

	dampingFactor := 0.0
	if raw := r.URL.Query().Get("damping_factor"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "damping_factor must be a number")
			return
		}
		dampingFactor = parsed
	}

	ranked, err := h.service.RankInfluencers(r.Context(), iterations, dampingFactor)
	if err != nil {
		h.logger.Error("influencer ranking failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, ranked)
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
