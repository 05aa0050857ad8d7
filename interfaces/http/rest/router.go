package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"socialgraph/application/ports"
	"socialgraph/application/services"
	"socialgraph/interfaces/http/rest/handlers"
	"socialgraph/interfaces/http/rest/middleware"
)

// Options controls the router's cross-cutting behavior.
type Options struct {
	AdminAPIKey string
	EnableCORS  bool
}

// Router wires the HTTP surface over the graph service.
type Router struct {
	service *services.GraphService
	store   ports.StoreClient
	logger  *zap.Logger
	opts    Options
}

func NewRouter(
	service *services.GraphService,
	store ports.StoreClient,
	logger *zap.Logger,
	opts Options,
) *Router {
	return &Router{
		service: service,
		store:   store,
		logger:  logger,
		opts:    opts,
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RequestLogger(rt.logger))

	if rt.opts.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	userHandler := handlers.NewUserHandler(rt.service, rt.logger)
	router.Route("/users", func(r chi.Router) {
		r.Post("/", userHandler.CreateUser)
		r.Get("/{userID}", userHandler.GetUser)
		r.Put("/{userID}", userHandler.UpdateUser)
		r.Delete("/{userID}", userHandler.DeleteUser)
		r.Get("/{userID}/relationships", userHandler.GetUserRelationships)
	})

	relationshipHandler := handlers.NewRelationshipHandler(rt.service, rt.logger)
	router.Route("/relationships", func(r chi.Router) {
		r.Post("/", relationshipHandler.CreateRelationship)
		r.Delete("/{relationshipID}", relationshipHandler.DeleteRelationship)
	})

	interactionHandler := handlers.NewInteractionHandler(rt.service, rt.logger)
	router.Route("/interactions", func(r chi.Router) {
		r.Post("/", interactionHandler.RecordInteraction)
		r.Get("/{userID}", interactionHandler.GetUserInteractions)
	})

	analyticsHandler := handlers.NewAnalyticsHandler(rt.service, rt.logger)
	router.Get("/paths/shortest", analyticsHandler.FindShortestPath)
	router.Get("/communities/{userID}", analyticsHandler.GetCommunities)
	router.Get("/influence/{userID}/score", analyticsHandler.GetInfluenceScore)
	router.Get("/recommendations/{userID}/connections", analyticsHandler.RecommendConnections)
	router.Get("/influencers", analyticsHandler.RankInfluencers)

	adminHandler := handlers.NewAdminHandler(rt.service, rt.logger)
	router.Group(func(r chi.Router) {
		r.Use(middleware.AdminKey(rt.opts.AdminAPIKey))
		r.Post("/query", adminHandler.ExecuteQuery)
		r.Route("/admin", func(r chi.Router) {
			r.Post("/reindex", adminHandler.Reindex)
			r.Get("/stats", adminHandler.GetStats)
			r.Post("/bulk/nodes", adminHandler.BulkCreateNodes)
			r.Post("/bulk/relationships", adminHandler.BulkCreateRelationships)
			r.Get("/export/{userID}", adminHandler.ExportSubgraph)
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports ready only when the graph store answers. The cache
// is deliberately not checked: the service degrades without it.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := rt.store.VerifyConnectivity(req.Context()); err != nil {
		rt.logger.Warn("readiness check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
