package cachekey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyScheme(t *testing.T) {
	assert.Equal(t, "user:u1", User("u1"))
	assert.Equal(t, "user:u1:relationships:FOLLOWS", Relationships("u1", "FOLLOWS"))
	assert.Equal(t, "user:u1:relationships:all", Relationships("u1", ""))
	assert.Equal(t, "user:u1:relationships:*", RelationshipsPattern("u1"))
}
