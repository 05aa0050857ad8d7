package neo4j

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"socialgraph/domain/model"
)

// Analytics invokes the store's native graph-analytics routines (GDS). It
// shapes parameters and isolates per-measure faults; the algorithms
// themselves run inside the store.
type Analytics struct {
	client *Client
	logger *zap.Logger
}

// NewAnalytics creates the production analytics gateway.
func NewAnalytics(client *Client, logger *zap.Logger) *Analytics {
	return &Analytics{client: client, logger: logger}
}

// ShortestPath finds the shortest path between two users within maxHops.
// Returns nil when no path exists; absence is not an error.
func (a *Analytics) ShortestPath(ctx context.Context, sourceID, targetID string, maxHops int) (*model.PathResult, error) {
	if maxHops < 1 || maxHops > 15 {
		maxHops = 6
	}

	// Variable-length bounds cannot be parameterized in Cypher; maxHops is
	// clamped to a small integer range above before formatting.
	query := fmt.Sprintf(`
		MATCH (start:User {id: $start_id}), (end:User {id: $end_id})
		MATCH path = shortestPath((start)-[:RELATES_TO*..%d]-(end))
		RETURN [node IN nodes(path) | node.id] AS node_ids,
		       length(path) AS path_length`, maxHops)

	records, err := a.client.ExecuteRead(ctx, query, map[string]any{
		"start_id": sourceID,
		"end_id":   targetID,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	ids := toStringSlice(records[0]["node_ids"])
	length := 0
	if n, ok := records[0]["path_length"].(int64); ok {
		length = int(n)
	}
	return &model.PathResult{NodeIDs: ids, Length: length}, nil
}

// PageRank streams PageRank scores for the user graph, highest first.
func (a *Analytics) PageRank(ctx context.Context, iterations int, dampingFactor float64) ([]model.RankedNode, error) {
	if iterations <= 0 {
		iterations = 20
	}
	if dampingFactor <= 0 || dampingFactor >= 1 {
		dampingFactor = 0.85
	}

	query := `
		CALL gds.pageRank.stream({
			nodeProjection: 'User',
			relationshipProjection: 'RELATES_TO',
			maxIterations: $iterations,
			dampingFactor: $damping_factor
		})
		YIELD nodeId, score
		RETURN gds.util.asNode(nodeId).id AS id, score
		ORDER BY score DESC
		LIMIT 100`

	records, err := a.client.ExecuteRead(ctx, query, map[string]any{
		"iterations":     iterations,
		"damping_factor": dampingFactor,
	})
	if err != nil {
		return nil, err
	}

	ranked := make([]model.RankedNode, 0, len(records))
	for _, rec := range records {
		id, _ := rec["id"].(string)
		score, _ := rec["score"].(float64)
		ranked = append(ranked, model.RankedNode{ID: id, Score: score})
	}
	return ranked, nil
}

// CommunityDetect partitions the whole graph with the chosen algorithm.
func (a *Analytics) CommunityDetect(ctx context.Context, algorithm string) ([]model.CommunityAssignment, error) {
	var query string
	if algorithm == "labelPropagation" {
		query = `
			CALL gds.labelPropagation.stream({
				nodeProjection: 'User',
				relationshipProjection: 'RELATES_TO',
				maxIterations: 10
			})
			YIELD nodeId, communityId
			RETURN gds.util.asNode(nodeId).id AS id, communityId`
	} else {
		query = `
			CALL gds.louvain.stream({
				nodeProjection: 'User',
				relationshipProjection: 'RELATES_TO'
			})
			YIELD nodeId, communityId
			RETURN gds.util.asNode(nodeId).id AS id, communityId`
	}

	records, err := a.client.ExecuteRead(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	assignments := make([]model.CommunityAssignment, 0, len(records))
	for _, rec := range records {
		id, _ := rec["id"].(string)
		community, _ := rec["communityId"].(int64)
		assignments = append(assignments, model.CommunityAssignment{ID: id, CommunityID: community})
	}
	return assignments, nil
}

// Centrality returns the degree, betweenness, and closeness measures for one
// user. Each measure's sub-query is isolated: a failure yields 0 for that
// measure, never a failed call.
func (a *Analytics) Centrality(ctx context.Context, userID string) (model.CentralityScores, error) {
	measures := []struct {
		name   string
		column string
		query  string
	}{
		{
			name:   "degree",
			column: "degree",
			query: `
				MATCH (u:User {id: $user_id})
				OPTIONAL MATCH (u)-[r]-()
				RETURN count(r) AS degree`,
		},
		{
			name:   "betweenness",
			column: "score",
			query: `
				CALL gds.betweenness.stream({
					nodeProjection: 'User',
					relationshipProjection: 'RELATES_TO'
				})
				YIELD nodeId, score
				WITH gds.util.asNode(nodeId).id AS id, score
				WHERE id = $user_id
				RETURN score`,
		},
		{
			name:   "closeness",
			column: "score",
			query: `
				CALL gds.closeness.stream({
					nodeProjection: 'User',
					relationshipProjection: 'RELATES_TO'
				})
				YIELD nodeId, score
				WITH gds.util.asNode(nodeId).id AS id, score
				WHERE id = $user_id
				RETURN score`,
		},
	}

	var scores model.CentralityScores
	for _, m := range measures {
		records, err := a.client.ExecuteRead(ctx, m.query, map[string]any{"user_id": userID})
		if err != nil || len(records) == 0 {
			if err != nil {
				a.logger.Warn("centrality measure failed",
					zap.String("measure", m.name),
					zap.String("user_id", userID),
					zap.Error(err),
				)
			}
			continue
		}

		var value float64
		switch v := records[0][m.column].(type) {
		case float64:
			value = v
		case int64:
			value = float64(v)
		}

		switch m.name {
		case "degree":
			scores.Degree = value
		case "betweenness":
			scores.Betweenness = value
		case "closeness":
			scores.Closeness = value
		}
	}
	return scores, nil
}

func toStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
