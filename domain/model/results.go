package model

// Derived results are computed on demand from live store and analytics data.
// They are never persisted, only optionally cached as opaque blobs.

// PathResult describes the shortest path found between two users.
type PathResult struct {
	NodeIDs []string `json:"node_ids"`
	Length  int      `json:"length"`
	Nodes   []*User  `json:"nodes"`
}

// CommunityResult describes the community a user belongs to.
type CommunityResult struct {
	CommunityID string  `json:"community_id"`
	Members     []*User `json:"members"`
	Size        int     `json:"size"`
	Density     float64 `json:"density"`
}

// RecommendationResult is a single connection suggestion.
type RecommendationResult struct {
	User              *User   `json:"user"`
	Score             float64 `json:"score"`
	Reason            string  `json:"reason"`
	MutualConnections []*User `json:"mutual_connections"`
}

// InfluenceMetrics carries the centrality measures behind an influence score.
type InfluenceMetrics struct {
	UserID      string  `json:"user_id"`
	Degree      float64 `json:"degree"`
	Betweenness float64 `json:"betweenness"`
	Closeness   float64 `json:"closeness"`
	Score       float64 `json:"influence_score"`
}

// GraphStatistics aggregates graph-wide counts and histograms.
type GraphStatistics struct {
	TotalNodes         int64            `json:"total_nodes"`
	TotalRelationships int64            `json:"total_relationships"`
	NodeTypes          map[string]int64 `json:"node_types"`
	RelationshipTypes  map[string]int64 `json:"relationship_types"`
	AverageDegree      float64          `json:"average_degree"`
	GraphDensity       float64          `json:"graph_density"`
}

// Subgraph is an export of the nodes and relationships reachable from a
// center user within a bounded depth.
type Subgraph struct {
	Nodes         []map[string]any `json:"nodes"`
	Relationships []map[string]any `json:"relationships"`
}

// RankedNode is a node id paired with an analytics score.
type RankedNode struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// CommunityAssignment maps a node to the community the algorithm placed it in.
type CommunityAssignment struct {
	ID          string `json:"id"`
	CommunityID int64  `json:"community_id"`
}

// CentralityScores holds the per-measure centrality values for one user.
// A measure whose sub-query failed is reported as 0.
type CentralityScores struct {
	Degree      float64 `json:"degree"`
	Betweenness float64 `json:"betweenness"`
	Closeness   float64 `json:"closeness"`
}
