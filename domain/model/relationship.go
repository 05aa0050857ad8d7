package model

import "time"

// RelationshipType is the closed set of edge types between users.
type RelationshipType string

const (
	RelFollows   RelationshipType = "FOLLOWS"
	RelFriend    RelationshipType = "FRIEND"
	RelColleague RelationshipType = "COLLEAGUE"
	RelFamily    RelationshipType = "FAMILY"
	RelBlocks    RelationshipType = "BLOCKS"
	RelLikes     RelationshipType = "LIKES"
	RelMentions  RelationshipType = "MENTIONS"
	RelReportsTo RelationshipType = "REPORTS_TO"
	RelWorksWith RelationshipType = "WORKS_WITH"
	RelKnows     RelationshipType = "KNOWS"
)

var relationshipTypes = map[RelationshipType]struct{}{
	RelFollows: {}, RelFriend: {}, RelColleague: {}, RelFamily: {},
	RelBlocks: {}, RelLikes: {}, RelMentions: {}, RelReportsTo: {},
	RelWorksWith: {}, RelKnows: {},
}

// Valid reports whether t is a member of the closed enumeration.
func (t RelationshipType) Valid() bool {
	_, ok := relationshipTypes[t]
	return ok
}

// Relationship is a directed edge between two users. A "bidirectional"
// creation request produces two independent Relationships with distinct IDs
// sharing the same timestamps; they can diverge and are deleted separately.
type Relationship struct {
	ID         string           `json:"id"`
	Type       RelationshipType `json:"type"`
	FromUser   *User            `json:"from_user"`
	ToUser     *User            `json:"to_user"`
	Weight     float64          `json:"weight"`
	Properties Properties       `json:"properties"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
