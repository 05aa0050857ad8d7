package neo4j

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Schema statements are expressed as IF NOT EXISTS so provisioning is
// idempotent and safe to run on every startup.
var schemaStatements = []string{
	"CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE",
	"CREATE CONSTRAINT user_username_unique IF NOT EXISTS FOR (u:User) REQUIRE u.username IS UNIQUE",
	"CREATE INDEX user_email IF NOT EXISTS FOR (u:User) ON (u.email)",
	"CREATE INDEX interaction_timestamp IF NOT EXISTS FOR (i:Interaction) ON (i.timestamp)",
	"CREATE INDEX relationship_type IF NOT EXISTS FOR ()-[r:RELATES_TO]-() ON (r.type)",
}

// ProvisionSchema creates the indexes and constraints the service queries
// rely on. An "already exists" failure is swallowed; any other failure is
// logged as a warning and provisioning continues, so a partially provisioned
// store never blocks startup.
func (c *Client) ProvisionSchema(ctx context.Context) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for _, statement := range schemaStatements {
		result, err := session.Run(ctx, statement, nil)
		if err == nil {
			_, err = result.Consume(ctx)
		}
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "already exists") {
				continue
			}
			c.logger.Warn("schema statement skipped",
				zap.String("statement", statement),
				zap.Error(err),
			)
		}
	}
	return nil
}
