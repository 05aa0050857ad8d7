package di

import (
	"context"

	"go.uber.org/zap"

	"socialgraph/application/services"
	"socialgraph/infrastructure/config"
	neo4jstore "socialgraph/infrastructure/neo4j"
	redisstore "socialgraph/infrastructure/redis"
	"socialgraph/interfaces/http/rest"
)

// Container holds all application dependencies.
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Store        *neo4jstore.Client
	Cache        *redisstore.Cache
	GraphService *services.GraphService
	Router       *rest.Router
}

// Shutdown closes both external stores.
func (c *Container) Shutdown(ctx context.Context) {
	if err := c.Store.Close(ctx); err != nil {
		c.Logger.Warn("graph store close failed", zap.Error(err))
	}
	if err := c.Cache.Close(); err != nil {
		c.Logger.Warn("cache close failed", zap.Error(err))
	}
}
