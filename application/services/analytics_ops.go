package services

import (
	"context"
	"fmt"

	"socialgraph/application/assembler"
	"socialgraph/domain/model"
	apperrors "socialgraph/pkg/errors"
)

// recommendationNormalizer divides the mutual-connection count to produce a
// recommendation score.
const recommendationNormalizer = 10.0

// maxSampleMutuals bounds the sample of mutual connections attached to each
// recommendation.
const maxSampleMutuals = 5

// FindShortestPath delegates to the analytics gateway, bounded by maxHops
// (default 6), and hydrates the path's nodes into full user records. No
// connecting path is a not-found outcome, not an error.
func (s *GraphService) FindShortestPath(ctx context.Context, sourceID, targetID string, maxHops int) (*model.PathResult, error) {
	if maxHops <= 0 {
		maxHops = 6
	}

	path, err := s.analytics.ShortestPath(ctx, sourceID, targetID, maxHops)
	if err != nil {
		return nil, apperrors.NewDatabaseError("find shortest path", err)
	}
	if path == nil {
		return nil, apperrors.NewNotFoundError("path")
	}

	users, err := s.fetchUsersByID(ctx, path.NodeIDs)
	if err != nil {
		return nil, err
	}

	// Preserve path order; the IN lookup returns nodes unordered.
	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	ordered := make([]*model.User, 0, len(path.NodeIDs))
	for _, id := range path.NodeIDs {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
		}
	}
	path.Nodes = ordered
	return path, nil
}

// DetectCommunities runs the chosen algorithm over the whole graph, filters
// to the community containing userID, and computes the community's density.
// A user the algorithm did not place yields an empty result list.
func (s *GraphService) DetectCommunities(ctx context.Context, userID, algorithm string) ([]*model.CommunityResult, error) {
	if algorithm != "louvain" && algorithm != "labelPropagation" {
		return nil, apperrors.NewValidationError("algorithm must be louvain or labelPropagation")
	}

	assignments, err := s.analytics.CommunityDetect(ctx, algorithm)
	if err != nil {
		return nil, apperrors.NewDatabaseError("detect communities", err)
	}

	var userCommunity int64
	found := false
	for _, a := range assignments {
		if a.ID == userID {
			userCommunity = a.CommunityID
			found = true
			break
		}
	}
	if !found {
		return []*model.CommunityResult{}, nil
	}

	memberIDs := make([]string, 0)
	for _, a := range assignments {
		if a.CommunityID == userCommunity {
			memberIDs = append(memberIDs, a.ID)
		}
	}

	members, err := s.fetchUsersByID(ctx, memberIDs)
	if err != nil {
		return nil, err
	}

	density, err := s.communityDensity(ctx, memberIDs)
	if err != nil {
		return nil, err
	}

	return []*model.CommunityResult{{
		CommunityID: fmt.Sprintf("%d", userCommunity),
		Members:     members,
		Size:        len(members),
		Density:     density,
	}}, nil
}

// CalculateInfluenceScore combines the centrality measures into a weighted
// score (degree 0.3, betweenness 0.4, closeness 0.3), scaled by 10 and
// clamped to [0, 100].
func (s *GraphService) CalculateInfluenceScore(ctx context.Context, userID string) (*model.InfluenceMetrics, error) {
	centrality, err := s.analytics.Centrality(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("calculate influence score", err)
	}

	score := (centrality.Degree*0.3 + centrality.Betweenness*0.4 + centrality.Closeness*0.3) * 10
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return &model.InfluenceMetrics{
		UserID:      userID,
		Degree:      centrality.Degree,
		Betweenness: centrality.Betweenness,
		Closeness:   centrality.Closeness,
		Score:       score,
	}, nil
}

// RecommendConnections traverses 2-3 hops from the user, excludes the user
// and anyone already directly connected, and ranks candidates by
// mutual-connection count descending.
func (s *GraphService) RecommendConnections(ctx context.Context, userID string, limit int) ([]*model.RecommendationResult, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	query := `
		MATCH (u:User {id: $id})-[:RELATES_TO*2..3]-(recommended:User)
		WHERE NOT (u)-[:RELATES_TO]-(recommended) AND u <> recommended
		WITH recommended, count(*) AS mutual_count
		ORDER BY mutual_count DESC
		LIMIT $limit
		MATCH (u:User {id: $id})-[:RELATES_TO]-(mutual:User)-[:RELATES_TO]-(recommended)
		WITH recommended, mutual_count, collect(DISTINCT mutual) AS mutual_connections
		RETURN recommended, mutual_count, mutual_connections`

	records, err := s.store.ExecuteRead(ctx, query, map[string]any{"id": userID, "limit": limit})
	if err != nil {
		return nil, apperrors.NewDatabaseError("recommend connections", err)
	}

	recommendations := make([]*model.RecommendationResult, 0, len(records))
	for _, rec := range records {
		props, _ := rec["recommended"].(map[string]any)
		candidate, err := assembler.User(props)
		if err != nil {
			return nil, apperrors.NewInternalError("assemble recommendation", err)
		}

		mutualCount := asCount(rec["mutual_count"])

		mutuals := make([]*model.User, 0, maxSampleMutuals)
		if list, ok := rec["mutual_connections"].([]any); ok {
			for _, item := range list {
				if len(mutuals) == maxSampleMutuals {
					break
				}
				mutualProps, ok := item.(map[string]any)
				if !ok {
					continue
				}
				mutual, err := assembler.User(mutualProps)
				if err != nil {
					continue
				}
				mutuals = append(mutuals, mutual)
			}
		}

		recommendations = append(recommendations, &model.RecommendationResult{
			User:              candidate,
			Score:             float64(mutualCount) / recommendationNormalizer,
			Reason:            fmt.Sprintf("You have %d mutual connections", mutualCount),
			MutualConnections: mutuals,
		})
	}
	return recommendations, nil
}

// RankInfluencers streams PageRank scores for the graph, highest first.
func (s *GraphService) RankInfluencers(ctx context.Context, iterations int, dampingFactor float64) ([]model.RankedNode, error) {
	ranked, err := s.analytics.PageRank(ctx, iterations, dampingFactor)
	if err != nil {
		return nil, apperrors.NewDatabaseError("rank influencers", err)
	}
	return ranked, nil
}

// GetStatistics aggregates node and relationship counts with per-type
// histograms. Average degree guards divide-by-zero on an empty graph.
func (s *GraphService) GetStatistics(ctx context.Context) (*model.GraphStatistics, error) {
	countRecords, err := s.store.ExecuteRead(ctx, `
		MATCH (n)
		WITH count(n) AS node_count
		OPTIONAL MATCH ()-[r]->()
		RETURN node_count, count(r) AS rel_count`, nil)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get statistics", err)
	}

	stats := &model.GraphStatistics{
		NodeTypes:         map[string]int64{},
		RelationshipTypes: map[string]int64{},
	}
	if len(countRecords) > 0 {
		stats.TotalNodes = asCount(countRecords[0]["node_count"])
		stats.TotalRelationships = asCount(countRecords[0]["rel_count"])
	}

	nodeTypes, err := s.store.ExecuteRead(ctx, `
		MATCH (n)
		RETURN labels(n)[0] AS type, count(n) AS count`, nil)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get statistics", err)
	}
	for _, rec := range nodeTypes {
		if t, ok := rec["type"].(string); ok {
			stats.NodeTypes[t] = asCount(rec["count"])
		}
	}

	relTypes, err := s.store.ExecuteRead(ctx, `
		MATCH ()-[r]->()
		RETURN type(r) AS type, count(r) AS count`, nil)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get statistics", err)
	}
	for _, rec := range relTypes {
		if t, ok := rec["type"].(string); ok {
			stats.RelationshipTypes[t] = asCount(rec["count"])
		}
	}

	if stats.TotalNodes > 0 {
		stats.AverageDegree = float64(stats.TotalRelationships) / float64(stats.TotalNodes)
		stats.GraphDensity = float64(stats.TotalRelationships) / float64(stats.TotalNodes*stats.TotalNodes)
	}
	return stats, nil
}

// fetchUsersByID hydrates full user records for a set of ids.
func (s *GraphService) fetchUsersByID(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}

	records, err := s.store.ExecuteRead(ctx, `
		MATCH (u:User)
		WHERE u.id IN $ids
		RETURN u`, map[string]any{"ids": ids})
	if err != nil {
		return nil, apperrors.NewDatabaseError("fetch users", err)
	}

	users := make([]*model.User, 0, len(records))
	for _, rec := range records {
		props, _ := rec["u"].(map[string]any)
		user, err := assembler.User(props)
		if err != nil {
			return nil, apperrors.NewInternalError("assemble user", err)
		}
		users = append(users, user)
	}
	return users, nil
}

// communityDensity is actual edges among members over the maximum possible
// (n·(n−1)/2), defined as 0 for fewer than 2 members.
func (s *GraphService) communityDensity(ctx context.Context, memberIDs []string) (float64, error) {
	if len(memberIDs) < 2 {
		return 0, nil
	}

	records, err := s.store.ExecuteRead(ctx, `
		MATCH (a:User)-[r:RELATES_TO]-(b:User)
		WHERE a.id IN $ids AND b.id IN $ids AND a.id < b.id
		RETURN count(r) AS edge_count`, map[string]any{"ids": memberIDs})
	if err != nil {
		return 0, apperrors.NewDatabaseError("community density", err)
	}

	var edges int64
	if len(records) > 0 {
		edges = asCount(records[0]["edge_count"])
	}

	n := float64(len(memberIDs))
	return float64(edges) / (n * (n - 1) / 2), nil
}
