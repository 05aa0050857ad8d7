package model

import "time"

// User is a node in the social graph.
//
// NodeDegree and InfluenceScore are derived at read time and never stored on
// the node itself.
type User struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email,omitempty"`
	Name           string     `json:"name,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	AvatarURL      string     `json:"avatar_url,omitempty"`
	Location       string     `json:"location,omitempty"`
	Tags           []string   `json:"tags"`
	Metadata       Properties `json:"metadata"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	NodeDegree     int        `json:"node_degree"`
	InfluenceScore float64    `json:"influence_score"`
}
