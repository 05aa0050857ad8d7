// Package ports declares the interfaces the graph service composes. Each
// external system sits behind one interface with a production implementation
// under infrastructure/ and an in-memory fake in the service tests.
package ports

import (
	"context"
	"errors"
	"time"

	"socialgraph/domain/model"
)

// ErrConstraintViolation is returned by StoreClient write methods when the
// store rejects a mutation for violating a uniqueness constraint. Callers map
// it to a conflict rather than a generic store failure.
var ErrConstraintViolation = errors.New("store constraint violated")

// Record is one raw row returned by the graph store: column name to value,
// where values are scalars, property bags, or lists as the driver decodes
// them.
type Record = map[string]any

// StoreClient issues parameterized transactions against the graph store.
type StoreClient interface {
	// ExecuteRead runs query in a read transaction. Safe to retry on
	// transient failure.
	ExecuteRead(ctx context.Context, query string, params map[string]any) ([]Record, error)

	// ExecuteWrite runs query in a single-attempt write transaction. It is
	// never retried here; a retry could duplicate a creation.
	ExecuteWrite(ctx context.Context, query string, params map[string]any) ([]Record, error)

	// ExecuteQuery runs an ad-hoc, caller-supplied query outside the managed
	// transaction functions. Used only by the restricted raw-query operation.
	ExecuteQuery(ctx context.Context, query string, params map[string]any) ([]Record, error)

	// ProvisionSchema creates indexes and constraints. Idempotent; safe to
	// call on every startup.
	ProvisionSchema(ctx context.Context) error

	// VerifyConnectivity probes the store for readiness checks.
	VerifyConnectivity(ctx context.Context) error
}

// Cache is a read-through/write-invalidate cache over the key-value store.
// Implementations degrade gracefully: a cache-store failure is logged and
// surfaces as a miss (reads) or a no-op (writes), never as an error.
type Cache interface {
	// Get returns the value for key, or ok=false on miss or failure.
	Get(ctx context.Context, key string) (value string, ok bool)

	// Set stores value under key with an explicit TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration)

	// Delete removes keys.
	Delete(ctx context.Context, keys ...string)

	// DeletePattern removes every key matching the glob, scanning in
	// bounded-size pages rather than one unbounded sweep.
	DeletePattern(ctx context.Context, pattern string)

	// GetMany returns the present keys only.
	GetMany(ctx context.Context, keys []string) map[string]string

	// SetMany stores all entries with one TTL using a pipelined write.
	SetMany(ctx context.Context, entries map[string]string, ttl time.Duration)

	// Increment adds amount to the counter at key and returns the new value,
	// or 0 on failure.
	Increment(ctx context.Context, key string, amount int64) int64

	// GetTTL returns the remaining TTL for key, or a negative duration when
	// the key is absent or has no expiry.
	GetTTL(ctx context.Context, key string) time.Duration
}

// AnalyticsGateway invokes the store's native graph-analytics routines. It
// shapes parameters and isolates per-measure faults; it implements no
// algorithms of its own.
type AnalyticsGateway interface {
	// ShortestPath returns the shortest path within maxHops, or nil when no
	// path exists. Absence of a path is not an error.
	ShortestPath(ctx context.Context, sourceID, targetID string, maxHops int) (*model.PathResult, error)

	// PageRank streams PageRank scores, highest first.
	PageRank(ctx context.Context, iterations int, dampingFactor float64) ([]model.RankedNode, error)

	// CommunityDetect partitions the whole graph. algorithm is "louvain" or
	// "labelPropagation".
	CommunityDetect(ctx context.Context, algorithm string) ([]model.CommunityAssignment, error)

	// Centrality returns the degree, betweenness, and closeness measures for
	// one user. A failed sub-query yields 0 for that measure only.
	Centrality(ctx context.Context, userID string) (model.CentralityScores, error)
}
