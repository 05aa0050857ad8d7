// Package neo4j implements the graph-store client and the analytics gateway
// on top of the Bolt driver.
package neo4j

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"go.uber.org/zap"

	"socialgraph/application/ports"
	"socialgraph/infrastructure/config"
)

// Client issues parameterized Cypher transactions against Neo4j. Connection
// pooling and lifetime are handled by the driver.
type Client struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewClient creates a driver for the configured store. The connection is not
// probed here; call VerifyConnectivity before serving traffic.
func NewClient(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionLifetime = time.Hour
			c.MaxConnectionPoolSize = 50
			c.ConnectionAcquisitionTimeout = 60 * time.Second
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	return &Client{driver: driver, logger: logger}, nil
}

// VerifyConnectivity probes the store for readiness checks.
func (c *Client) VerifyConnectivity(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// Close releases the driver's connection pool.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// ExecuteRead runs query in a managed read transaction. The driver may retry
// it on transient failures, which is safe for reads.
func (c *Client) ExecuteRead(ctx context.Context, query string, params map[string]any) ([]ports.Record, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return collect(ctx, tx, query, params)
	})
	if err != nil {
		c.logger.Error("read transaction failed", zap.Error(err))
		return nil, err
	}
	return out.([]ports.Record), nil
}

// ExecuteWrite runs query in an explicit single-attempt write transaction.
// Managed write functions are deliberately not used: the driver would retry
// them, and a retried CREATE duplicates the mutation.
func (c *Client) ExecuteWrite(ctx context.Context, query string, params map[string]any) ([]ports.Record, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		c.logger.Error("begin write transaction failed", zap.Error(err))
		return nil, err
	}

	records, err := collect(ctx, tx, query, params)
	if err != nil {
		_ = tx.Rollback(ctx)
		c.logger.Error("write transaction failed", zap.Error(err))
		return nil, classifyWriteError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		c.logger.Error("write commit failed", zap.Error(err))
		return nil, classifyWriteError(err)
	}
	return records, nil
}

// constraintViolationCode is the status the store reports when a write
// breaks a unique-property constraint.
const constraintViolationCode = "Neo.ClientError.Schema.ConstraintValidationFailed"

func classifyWriteError(err error) error {
	var neoErr *db.Neo4jError
	if errors.As(err, &neoErr) && neoErr.Code == constraintViolationCode {
		return fmt.Errorf("%w: %s", ports.ErrConstraintViolation, neoErr.Msg)
	}
	return err
}

// ExecuteQuery runs an ad-hoc, caller-supplied query in an auto-commit
// session. Callers own the risk of the query text they pass.
func (c *Client) ExecuteQuery(ctx context.Context, query string, params map[string]any) ([]ports.Record, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		c.logger.Error("query execution failed", zap.Error(err))
		return nil, err
	}
	raw, err := result.Collect(ctx)
	if err != nil {
		c.logger.Error("query collection failed", zap.Error(err))
		return nil, err
	}
	return normalizeRecords(raw), nil
}

type cypherRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (neo4j.ResultWithContext, error)
}

func collect(ctx context.Context, tx cypherRunner, query string, params map[string]any) ([]ports.Record, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	raw, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return normalizeRecords(raw), nil
}

func normalizeRecords(raw []*neo4j.Record) []ports.Record {
	records := make([]ports.Record, 0, len(raw))
	for _, rec := range raw {
		row := make(ports.Record, len(rec.Keys))
		for i, key := range rec.Keys {
			row[key] = normalizeValue(rec.Values[i])
		}
		records = append(records, row)
	}
	return records
}

// normalizeValue flattens driver types into plain property bags so nothing
// above this package depends on dbtype.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case neo4j.Node:
		return normalizeMap(val.Props)
	case neo4j.Relationship:
		return normalizeMap(val.Props)
	case neo4j.Path:
		nodes := make([]any, len(val.Nodes))
		for i, n := range val.Nodes {
			nodes[i] = normalizeMap(n.Props)
		}
		rels := make([]any, len(val.Relationships))
		for i, r := range val.Relationships {
			rels[i] = normalizeMap(r.Props)
		}
		return map[string]any{"nodes": nodes, "relationships": rels}
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]any:
		return normalizeMap(val)
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}
