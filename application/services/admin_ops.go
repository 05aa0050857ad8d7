package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"socialgraph/application/ports"
	"socialgraph/domain/model"
	"socialgraph/pkg/cachekey"
	apperrors "socialgraph/pkg/errors"
)

var validNodeLabel = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// BulkCreateNodes creates a batch of nodes in one write transaction. Any
// failure rolls back the whole batch; there is no partial application.
func (s *GraphService) BulkCreateNodes(ctx context.Context, nodes []map[string]any, label string) ([]string, error) {
	if len(nodes) == 0 {
		return []string{}, nil
	}
	if label == "" {
		label = "User"
	}
	if !validNodeLabel.MatchString(label) {
		return nil, apperrors.NewValidationError("invalid node label")
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	prepared := make([]map[string]any, 0, len(nodes))
	for _, node := range nodes {
		entry := make(map[string]any, len(node)+3)
		for k, v := range node {
			entry[k] = v
		}
		if _, ok := entry["id"]; !ok {
			entry["id"] = uuid.NewString()
		}
		if _, ok := entry["created_at"]; !ok {
			entry["created_at"] = now
		}
		entry["updated_at"] = now
		prepared = append(prepared, entry)
	}

	// The label cannot be a query parameter; it is validated against a
	// strict identifier pattern above.
	query := `
		UNWIND $nodes AS node
		CREATE (n:` + label + `)
		SET n = node
		RETURN n.id AS id`

	records, err := s.store.ExecuteWrite(ctx, query, map[string]any{"nodes": prepared})
	if err != nil {
		return nil, apperrors.NewDatabaseError("bulk create nodes", err)
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		if id, ok := rec["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// BulkCreateRelationships creates a batch of edges in one write transaction,
// all-or-nothing, and invalidates the relationship-list caches of every
// endpoint that was touched.
func (s *GraphService) BulkCreateRelationships(ctx context.Context, rels []BulkRelationshipInput) (int, error) {
	if len(rels) == 0 {
		return 0, nil
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	prepared := make([]map[string]any, 0, len(rels))
	for _, rel := range rels {
		if rel.FromUserID == "" || rel.ToUserID == "" {
			return 0, apperrors.NewValidationError("from_user_id and to_user_id are required for every relationship")
		}
		if !rel.Type.Valid() {
			return 0, apperrors.NewValidationError("unknown relationship type in batch")
		}
		properties, err := rel.Properties.Encode()
		if err != nil {
			return 0, apperrors.NewValidationError("relationship properties are not serializable").WithCause(err)
		}
		weight := 1.0
		if rel.Weight != nil {
			weight = *rel.Weight
		}
		prepared = append(prepared, map[string]any{
			"id":         uuid.NewString(),
			"from_id":    rel.FromUserID,
			"to_id":      rel.ToUserID,
			"type":       string(rel.Type),
			"weight":     weight,
			"properties": properties,
			"created_at": now,
			"updated_at": now,
		})
	}

	query := `
		UNWIND $relationships AS rel
		MATCH (a:User {id: rel.from_id}), (b:User {id: rel.to_id})
		CREATE (a)-[r:RELATES_TO {
			id: rel.id,
			type: rel.type,
			weight: rel.weight,
			properties: rel.properties,
			created_at: rel.created_at,
			updated_at: rel.updated_at
		}]->(b)
		RETURN count(r) AS created`

	records, err := s.store.ExecuteWrite(ctx, query, map[string]any{"relationships": prepared})
	if err != nil {
		return 0, apperrors.NewDatabaseError("bulk create relationships", err)
	}

	touched := make(map[string]struct{}, len(rels)*2)
	for _, rel := range rels {
		touched[rel.FromUserID] = struct{}{}
		touched[rel.ToUserID] = struct{}{}
	}
	for userID := range touched {
		s.cache.DeletePattern(ctx, cachekey.RelationshipsPattern(userID))
	}

	if len(records) == 0 {
		return 0, nil
	}
	return int(asCount(records[0]["created"])), nil
}

// ExportSubgraph exports the nodes and relationships reachable from a center
// user within a bounded depth, via the store's native subgraph routine.
func (s *GraphService) ExportSubgraph(ctx context.Context, userID string, depth int) (*model.Subgraph, error) {
	if depth <= 0 || depth > 5 {
		depth = 2
	}

	records, err := s.store.ExecuteRead(ctx, `
		MATCH (center:User {id: $user_id})
		CALL apoc.path.subgraphAll(center, {
			maxLevel: $depth,
			relationshipFilter: "RELATES_TO"
		})
		YIELD nodes, relationships
		RETURN nodes, relationships`, map[string]any{
		"user_id": userID,
		"depth":   depth,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("export subgraph", err)
	}

	subgraph := &model.Subgraph{
		Nodes:         []map[string]any{},
		Relationships: []map[string]any{},
	}
	if len(records) == 0 {
		return subgraph, nil
	}

	subgraph.Nodes = toPropertyBags(records[0]["nodes"])
	subgraph.Relationships = toPropertyBags(records[0]["relationships"])
	return subgraph, nil
}

// Clauses that mutate data or schema. The raw-query operation is read-only;
// anything matching here is rejected before reaching the store.
var mutatingClause = regexp.MustCompile(`(?i)\b(create|merge|delete|detach|set|remove|drop|foreach|load\s+csv)\b`)

// Anchored to a whitespace boundary so a property access like n.limit does
// not count as a LIMIT clause.
var hasLimitClause = regexp.MustCompile(`(?i)(?:^|\s)limit\b`)

// ExecuteRawQuery runs caller-supplied Cypher, restricted: read-only
// transaction, mutating clauses rejected, a LIMIT appended when absent, and
// the whole operation throttled. The surface remains admin-gated upstream.
func (s *GraphService) ExecuteRawQuery(ctx context.Context, query string, params map[string]any) ([]ports.Record, error) {
	// Trailing terminators would leave any appended LIMIT outside the
	// statement.
	query = strings.TrimRight(strings.TrimSpace(query), "; \t\r\n")
	if query == "" {
		return nil, apperrors.NewValidationError("query is required")
	}
	if !s.rawLimiter.Allow() {
		return nil, apperrors.NewRateLimitError("raw query rate limit exceeded")
	}
	if mutatingClause.MatchString(query) {
		return nil, apperrors.NewValidationError("raw queries are read-only")
	}
	if !hasLimitClause.MatchString(query) {
		query += "\nLIMIT 100"
	}

	records, err := s.store.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, apperrors.NewDatabaseError("execute raw query", err)
	}
	return records, nil
}

func toPropertyBags(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		return []map[string]any{}
	}
	bags := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if bag, ok := item.(map[string]any); ok {
			bags = append(bags, bag)
		}
	}
	return bags
}
