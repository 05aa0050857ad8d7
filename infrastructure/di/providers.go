package di

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"socialgraph/application/ports"
	"socialgraph/application/services"
	"socialgraph/infrastructure/config"
	neo4jstore "socialgraph/infrastructure/neo4j"
	redisstore "socialgraph/infrastructure/redis"
	"socialgraph/interfaces/http/rest"
)

// ProvideLogger creates a logger for the configured environment, honoring
// LOG_LEVEL overrides.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err == nil {
			zapCfg.Level = zap.NewAtomicLevelAt(level)
		}
	}

	return zapCfg.Build()
}

// ProvideStore creates the graph store client.
func ProvideStore(cfg *config.Config, logger *zap.Logger) (*neo4jstore.Client, error) {
	return neo4jstore.NewClient(cfg, logger)
}

// ProvideStorePort exposes the store client through its port.
func ProvideStorePort(client *neo4jstore.Client) ports.StoreClient {
	return client
}

// ProvideCache creates the cache layer. Connection is deferred to startup
// so a down cache never blocks container construction.
func ProvideCache(cfg *config.Config, logger *zap.Logger) *redisstore.Cache {
	return redisstore.NewCache(cfg, logger)
}

// ProvideCachePort exposes the cache through its port.
func ProvideCachePort(cache *redisstore.Cache) ports.Cache {
	return cache
}

// ProvideAnalytics creates the analytics gateway over the store client.
func ProvideAnalytics(client *neo4jstore.Client, logger *zap.Logger) ports.AnalyticsGateway {
	return neo4jstore.NewAnalytics(client, logger)
}

// ProvideGraphService creates the orchestration service.
func ProvideGraphService(
	store ports.StoreClient,
	cache ports.Cache,
	analytics ports.AnalyticsGateway,
	cfg *config.Config,
	logger *zap.Logger,
) *services.GraphService {
	return services.NewGraphService(store, cache, analytics, logger, services.Options{
		UserCacheTTL:         cfg.UserCacheTTL,
		RelationshipCacheTTL: cfg.RelationshipCacheTTL,
		RawQueryRPS:          cfg.RawQueryRPS,
	})
}

// ProvideRouter creates the HTTP router.
func ProvideRouter(
	service *services.GraphService,
	store ports.StoreClient,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(service, store, logger, rest.Options{
		AdminAPIKey: cfg.AdminAPIKey,
		EnableCORS:  cfg.EnableCORS,
	})
}
