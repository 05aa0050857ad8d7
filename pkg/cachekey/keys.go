// Package cachekey defines the cache key-naming scheme. The scheme is a wire
// contract shared with other implementations and must not drift.
package cachekey

import "fmt"

// User is the key for a serialized User entity.
func User(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

// Relationships is the key for a serialized relationship list, parameterized
// by relationship type. An empty relType means the unfiltered list.
func Relationships(userID, relType string) string {
	if relType == "" {
		relType = "all"
	}
	return fmt.Sprintf("user:%s:relationships:%s", userID, relType)
}

// RelationshipsPattern matches every relationship-list variant a user's
// edges could be cached under, for pattern invalidation on mutation.
func RelationshipsPattern(userID string) string {
	return fmt.Sprintf("user:%s:relationships:*", userID)
}
