package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialgraph/application/ports"
	"socialgraph/domain/model"
	"socialgraph/pkg/cachekey"
	apperrors "socialgraph/pkg/errors"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestCreateUserRejectsShortUsername(t *testing.T) {
	f := newFixture(Options{})

	_, err := f.service.CreateUser(context.Background(), CreateUserInput{Username: "ab"})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Empty(t, f.store.writes)
}

func TestCreateUserWritesThenInvalidates(t *testing.T) {
	f := newFixture(Options{})
	f.store.writeFn = func(_ string, params map[string]any) ([]ports.Record, error) {
		return []ports.Record{{"u": userRecord(params["id"].(string), "alice")}}, nil
	}

	user, err := f.service.CreateUser(context.Background(), CreateUserInput{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	require.Len(t, f.log.events, 2)
	assert.Equal(t, "store.write", f.log.events[0])
	assert.Equal(t, "cache.delete "+cachekey.User(user.ID), f.log.events[1])
}

func TestCreateUserDuplicateUsernameIsConflict(t *testing.T) {
	f := newFixture(Options{})
	f.store.writeFn = func(string, map[string]any) ([]ports.Record, error) {
		return nil, fmt.Errorf("%w: username is not unique", ports.ErrConstraintViolation)
	}

	_, err := f.service.CreateUser(context.Background(), CreateUserInput{Username: "alice"})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	assert.Equal(t, 409, apperrors.HTTPStatus(err))
}

func TestUpdateUserDuplicateUsernameIsConflict(t *testing.T) {
	f := newFixture(Options{})
	f.store.writeFn = func(string, map[string]any) ([]ports.Record, error) {
		return nil, fmt.Errorf("%w: username is not unique", ports.ErrConstraintViolation)
	}

	_, err := f.service.UpdateUser(context.Background(), "u1", map[string]any{"username": "bob"})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	assert.Equal(t, 409, apperrors.HTTPStatus(err))
}

func TestGetUserCacheHitSkipsStore(t *testing.T) {
	f := newFixture(Options{})
	cached, _ := json.Marshal(&model.User{ID: "u1", Username: "alice"})
	f.cache.entries[cachekey.User("u1")] = string(cached)

	user, err := f.service.GetUser(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, f.store.reads)
}

func TestGetUserCacheMissPopulatesCache(t *testing.T) {
	f := newFixture(Options{})
	f.store.readFn = func(string, map[string]any) ([]ports.Record, error) {
		return []ports.Record{{"u": userRecord("u1", "alice"), "node_degree": int64(3)}}, nil
	}

	user, err := f.service.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, user.NodeDegree)

	raw, ok := f.cache.entries[cachekey.User("u1")]
	require.True(t, ok)
	expected, _ := json.Marshal(user)
	assert.Equal(t, string(expected), raw)
	assert.Equal(t, 300*time.Second, f.cache.ttls[cachekey.User("u1")])
}

func TestGetUserNotFound(t *testing.T) {
	f := newFixture(Options{})

	_, err := f.service.GetUser(context.Background(), "ghost")

	assert.True(t, apperrors.IsNotFound(err))
	assert.Empty(t, f.cache.entries)
}

func TestUpdateUserRejectsUnknownField(t *testing.T) {
	f := newFixture(Options{})

	_, err := f.service.UpdateUser(context.Background(), "u1", map[string]any{"id": "evil"})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Empty(t, f.store.writes)
}

func TestUpdateUserStampsAndInvalidates(t *testing.T) {
	f := newFixture(Options{})
	f.cache.entries[cachekey.User("u1")] = "stale"
	f.store.writeFn = func(_ string, params map[string]any) ([]ports.Record, error) {
		rec := userRecord("u1", "alice")
		rec["bio"] = params["bio"]
		return []ports.Record{{"u": rec}}, nil
	}

	user, err := f.service.UpdateUser(context.Background(), "u1", map[string]any{"bio": "new bio"})
	require.NoError(t, err)
	assert.Equal(t, "new bio", user.Bio)

	require.Len(t, f.store.writes, 1)
	assert.Contains(t, f.store.writes[0].params, "updated_at")
	assert.NotContains(t, f.cache.entries, cachekey.User("u1"))

	// Invalidation deletes; it never patches the cache in place.
	assert.Contains(t, f.log.events, "cache.delete "+cachekey.User("u1"))
}

func TestDeleteUserNotFound(t *testing.T) {
	f := newFixture(Options{})
	f.store.writeFn = func(string, map[string]any) ([]ports.Record, error) {
		return []ports.Record{{"deleted": int64(0)}}, nil
	}

	err := f.service.DeleteUser(context.Background(), "ghost")

	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteUserClearsEntityAndRelationshipKeys(t *testing.T) {
	f := newFixture(Options{})
	f.cache.entries[cachekey.User("u1")] = "x"
	f.cache.entries[cachekey.Relationships("u1", "FOLLOWS")] = "y"
	f.store.writeFn = func(string, map[string]any) ([]ports.Record, error) {
		return []ports.Record{{"deleted": int64(1)}}, nil
	}

	require.NoError(t, f.service.DeleteUser(context.Background(), "u1"))

	assert.Empty(t, f.cache.entries)
	assert.Equal(t, "store.write", f.log.events[0])
}

func TestCreateRelationshipBidirectionalHasDistinctIDs(t *testing.T) {
	f := newFixture(Options{})
	f.store.writeFn = func(_ string, params map[string]any) ([]ports.Record, error) {
		return []ports.Record{{
			"a": userRecord("u1", "alice"),
			"b": userRecord("u2", "bob"),
			"r": map[string]any{
				"id":         params["id"],
				"type":       params["type"],
				"weight":     params["weight"],
				"created_at": params["created_at"],
				"updated_at": params["updated_at"],
			},
		}}, nil
	}

	rel, err := f.service.CreateRelationship(context.Background(), CreateRelationshipInput{
		FromUserID:    "u1",
		ToUserID:      "u2",
		Type:          model.RelFriend,
		Bidirectional: true,
	})
	require.NoError(t, err)

	params := f.store.writes[0].params
	assert.NotEmpty(t, params["id2"])
	assert.NotEqual(t, params["id"], params["id2"])
	assert.Equal(t, params["created_at"], params["updated_at"])
	assert.Equal(t, 1.0, rel.Weight)
}

func TestCreateRelationshipKeepsExplicitZeroWeight(t *testing.T) {
	f := newFixture(Options{})
	zero := 0.0
	f.store.writeFn = func(_ string, params map[string]any) ([]ports.Record, error) {
		return []ports.Record{{
			"a": userRecord("u1", "alice"),
			"b": userRecord("u2", "bob"),
			"r": map[string]any{"id": params["id"], "type": params["type"], "weight": params["weight"]},
		}}, nil
	}

	rel, err := f.service.CreateRelationship(context.Background(), CreateRelationshipInput{
		FromUserID: "u1",
		ToUserID:   "u2",
		Type:       model.RelFollows,
		Weight:     &zero,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, f.store.writes[0].params["weight"])
	assert.Equal(t, 0.0, rel.Weight)
}

func TestCreateRelationshipMissingEndpointIsNotFound(t *testing.T) {
	f := newFixture(Options{})

	_, err := f.service.CreateRelationship(context.Background(), CreateRelationshipInput{
		FromUserID: "u1",
		ToUserID:   "ghost",
		Type:       model.RelFollows,
	})

	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateRelationshipInvalidatesBothEndpoints(t *testing.T) {
	f := newFixture(Options{})
	f.cache.entries[cachekey.Relationships("u1", "")] = "x"
	f.cache.entries[cachekey.Relationships("u2", "FOLLOWS")] = "y"
	f.store.writeFn = func(_ string, params map[string]any) ([]ports.Record, error) {
		return []ports.Record{{
			"a": userRecord("u1", "alice"),
			"b": userRecord("u2", "bob"),
			"r": map[string]any{"id": params["id"], "type": params["type"]},
		}}, nil
	}

	_, err := f.service.CreateRelationship(context.Background(), CreateRelationshipInput{
		FromUserID: "u1",
		ToUserID:   "u2",
		Type:       model.RelFollows,
	})
	require.NoError(t, err)

	assert.Empty(t, f.cache.entries)
}

func TestRelationshipLifecycleScenario(t *testing.T) {
	// Create alice and bob, FOLLOWS alice→bob, list, delete, list again.
	f := newFixture(Options{})
	relRecord := []ports.Record{{
		"r": map[string]any{
			"id":         "r1",
			"type":       "FOLLOWS",
			"created_at": "2026-03-01T10:00:00Z",
			"updated_at": "2026-03-01T10:00:00Z",
		},
		"u":         userRecord("a", "alice"),
		"other":     userRecord("b", "bob"),
		"direction": "outgoing",
	}}
	f.store.readFn = func(string, map[string]any) ([]ports.Record, error) {
		return relRecord, nil
	}

	rels, err := f.service.GetUserRelationships(context.Background(), "a", "")
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, model.RelFollows, rels[0].Type)
	assert.Equal(t, "a", rels[0].FromUser.ID)
	assert.Equal(t, "b", rels[0].ToUser.ID)
	assert.Contains(t, f.cache.entries, cachekey.Relationships("a", ""))

	f.store.writeFn = func(string, map[string]any) ([]ports.Record, error) {
		return []ports.Record{{"from_id": "a", "to_id": "b"}}, nil
	}
	require.NoError(t, f.service.DeleteRelationship(context.Background(), "r1"))
	assert.NotContains(t, f.cache.entries, cachekey.Relationships("a", ""))

	relRecord = nil
	rels, err = f.service.GetUserRelationships(context.Background(), "a", "")
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestGetUserRelationshipsIncomingOrientation(t *testing.T) {
	f := newFixture(Options{})
	f.store.readFn = func(string, map[string]any) ([]ports.Record, error) {
		return []ports.Record{{
			"r":         map[string]any{"id": "r1", "type": "FOLLOWS"},
			"u":         userRecord("a", "alice"),
			"other":     userRecord("b", "bob"),
			"direction": "incoming",
		}}, nil
	}

	rels, err := f.service.GetUserRelationships(context.Background(), "a", "")
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "b", rels[0].FromUser.ID)
	assert.Equal(t, "a", rels[0].ToUser.ID)
}

func TestGetUserRelationshipsCacheHit(t *testing.T) {
	f := newFixture(Options{})
	cached, _ := json.Marshal([]*model.Relationship{{ID: "r1", Type: model.RelKnows}})
	f.cache.entries[cachekey.Relationships("a", "KNOWS")] = string(cached)

	rels, err := f.service.GetUserRelationships(context.Background(), "a", model.RelKnows)

	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Empty(t, f.store.reads)
}

func TestDeleteRelationshipNotFound(t *testing.T) {
	f := newFixture(Options{})

	err := f.service.DeleteRelationship(context.Background(), "ghost")

	assert.True(t, apperrors.IsNotFound(err))
}

func TestRecordInteractionSetsProcessedFalse(t *testing.T) {
	f := newFixture(Options{})
	f.store.writeFn = func(_ string, params map[string]any) ([]ports.Record, error) {
		return []ports.Record{{"i": map[string]any{
			"id":           params["id"],
			"type":         params["type"],
			"from_user_id": params["from_id"],
			"to_user_id":   params["to_id"],
			"timestamp":    params["timestamp"],
			"processed":    false,
		}}}, nil
	}

	interaction, err := f.service.RecordInteraction(context.Background(), RecordInteractionInput{
		FromUserID: "a",
		ToUserID:   "b",
		Type:       model.InteractionMessage,
	})
	require.NoError(t, err)
	assert.False(t, interaction.Processed)
	assert.Equal(t, model.InteractionMessage, interaction.Type)
}

func TestGetUserInteractionsPassesTypeAndLimit(t *testing.T) {
	f := newFixture(Options{})
	f.store.readFn = func(_ string, params map[string]any) ([]ports.Record, error) {
		assert.Equal(t, "MESSAGE", params["type"])
		assert.Equal(t, 2, params["limit"])
		return []ports.Record{
			{"i": map[string]any{"id": "i3", "type": "MESSAGE", "timestamp": "2026-03-01T12:00:00Z"}},
			{"i": map[string]any{"id": "i2", "type": "MESSAGE", "timestamp": "2026-03-01T11:00:00Z"}},
		}, nil
	}

	interactions, err := f.service.GetUserInteractions(context.Background(), "a", model.InteractionMessage, 2)
	require.NoError(t, err)
	require.Len(t, interactions, 2)
	assert.True(t, interactions[0].Timestamp.After(interactions[1].Timestamp))

	require.Len(t, f.store.reads, 1)
	assert.True(t, strings.Contains(f.store.reads[0].query, "ORDER BY i.timestamp DESC"))
}

func TestGetUserInteractionsDefaultLimit(t *testing.T) {
	f := newFixture(Options{})
	f.store.readFn = func(_ string, params map[string]any) ([]ports.Record, error) {
		assert.Equal(t, 100, params["limit"])
		return nil, nil
	}

	_, err := f.service.GetUserInteractions(context.Background(), "a", "", 0)
	require.NoError(t, err)
}
