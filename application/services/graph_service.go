// Package services holds the orchestration layer between the thin API and
// the two external stores. GraphService owns all business logic, result
// assembly, and every cache-invalidation decision; the cache never
// invalidates on its own besides TTL expiry.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"socialgraph/application/assembler"
	"socialgraph/application/ports"
	"socialgraph/domain/model"
	"socialgraph/pkg/cachekey"
	apperrors "socialgraph/pkg/errors"
)

// Options tunes the service without coupling it to the config package.
type Options struct {
	UserCacheTTL         time.Duration
	RelationshipCacheTTL time.Duration
	RawQueryRPS          int
}

func (o Options) withDefaults() Options {
	if o.UserCacheTTL <= 0 {
		o.UserCacheTTL = 300 * time.Second
	}
	if o.RelationshipCacheTTL <= 0 {
		o.RelationshipCacheTTL = 60 * time.Second
	}
	if o.RawQueryRPS <= 0 {
		o.RawQueryRPS = 2
	}
	return o
}

// GraphService composes the store client, cache layer, and analytics gateway
// into the domain operations. It holds no cross-call state; concurrency
// control is delegated to the store's transaction isolation and the cache's
// per-key atomicity.
type GraphService struct {
	store      ports.StoreClient
	cache      ports.Cache
	analytics  ports.AnalyticsGateway
	logger     *zap.Logger
	opts       Options
	rawLimiter *rate.Limiter
}

// NewGraphService wires the orchestrator. All dependencies are injected;
// there is no ambient global state.
func NewGraphService(
	store ports.StoreClient,
	cache ports.Cache,
	analytics ports.AnalyticsGateway,
	logger *zap.Logger,
	opts Options,
) *GraphService {
	opts = opts.withDefaults()
	return &GraphService{
		store:      store,
		cache:      cache,
		analytics:  analytics,
		logger:     logger,
		opts:       opts,
		rawLimiter: rate.NewLimiter(rate.Limit(opts.RawQueryRPS), opts.RawQueryRPS),
	}
}

// InitializeSchema provisions store indexes and constraints. Idempotent.
func (s *GraphService) InitializeSchema(ctx context.Context) error {
	if err := s.store.ProvisionSchema(ctx); err != nil {
		return apperrors.NewDatabaseError("initialize schema", err)
	}
	s.logger.Info("database schema initialized")
	return nil
}

// Reindex reruns schema provisioning.
func (s *GraphService) Reindex(ctx context.Context) error {
	return s.InitializeSchema(ctx)
}

// CreateUser creates a new user node. The cache entry for the new id is
// deleted afterwards: it should not exist yet, but clearing it guards
// re-creation races after a delete.
func (s *GraphService) CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	metadata, err := in.Metadata.Encode()
	if err != nil {
		return nil, apperrors.NewValidationError("metadata is not serializable").WithCause(err)
	}

	userID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
		CREATE (u:User {
			id: $id,
			username: $username,
			email: $email,
			name: $name,
			bio: $bio,
			avatar_url: $avatar_url,
			location: $location,
			created_at: $created_at,
			updated_at: $updated_at,
			metadata: $metadata,
			tags: $tags
		})
		RETURN u`

	records, err := s.store.ExecuteWrite(ctx, query, map[string]any{
		"id":         userID,
		"username":   in.Username,
		"email":      in.Email,
		"name":       in.Name,
		"bio":        in.Bio,
		"avatar_url": in.AvatarURL,
		"location":   in.Location,
		"created_at": now,
		"updated_at": now,
		"metadata":   metadata,
		"tags":       tags,
	})
	if err != nil {
		if errors.Is(err, ports.ErrConstraintViolation) {
			return nil, apperrors.NewConflictError("username already taken").WithCause(err)
		}
		return nil, apperrors.NewDatabaseError("create user", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewDatabaseError("create user", fmt.Errorf("no record returned"))
	}

	s.cache.Delete(ctx, cachekey.User(userID))

	return s.assembleUserColumn(records[0], "u")
}

// GetUser reads a user cache-aside: cache hit deserializes and returns; a
// miss reads the store, assembles, populates the cache, and returns.
func (s *GraphService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	key := cachekey.User(userID)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var user model.User
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			return &user, nil
		}
		// Undecodable entries are dropped and reread from the store.
		s.cache.Delete(ctx, key)
	}

	query := `
		MATCH (u:User {id: $id})
		OPTIONAL MATCH (u)-[r]-()
		RETURN u, count(r) AS node_degree`

	records, err := s.store.ExecuteRead(ctx, query, map[string]any{"id": userID})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get user", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFoundError("user")
	}

	props, ok := records[0]["u"].(map[string]any)
	if !ok {
		return nil, apperrors.NewInternalError("get user", fmt.Errorf("unexpected record shape"))
	}
	user, err := assembler.UserWithDegree(props, records[0]["node_degree"])
	if err != nil {
		return nil, apperrors.NewInternalError("assemble user", err)
	}

	s.cacheJSON(ctx, key, user, s.opts.UserCacheTTL)
	return user, nil
}

// updatableUserFields is the closed set of properties UpdateUser may touch.
// SET clauses are built only from these names; caller-supplied keys are never
// interpolated into query text.
var updatableUserFields = map[string]struct{}{
	"username": {}, "email": {}, "name": {}, "bio": {},
	"avatar_url": {}, "location": {}, "tags": {}, "metadata": {},
}

// UpdateUser applies a partial field map, stamps updated_at, and deletes the
// cached entity. The cache is never patched in place.
func (s *GraphService) UpdateUser(ctx context.Context, userID string, updates map[string]any) (*model.User, error) {
	if len(updates) == 0 {
		return nil, apperrors.NewValidationError("no updatable fields supplied")
	}

	params := map[string]any{"id": userID}
	setClause := "u.updated_at = $updated_at"
	params["updated_at"] = time.Now().UTC().Format(time.RFC3339Nano)

	for field, value := range updates {
		if _, ok := updatableUserFields[field]; !ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("field %q is not updatable", field))
		}
		if field == "metadata" {
			encoded, err := model.Properties(toPropertyMap(value)).Encode()
			if err != nil {
				return nil, apperrors.NewValidationError("metadata is not serializable").WithCause(err)
			}
			value = encoded
		}
		setClause += fmt.Sprintf(", u.%s = $%s", field, field)
		params[field] = value
	}

	query := fmt.Sprintf(`
		MATCH (u:User {id: $id})
		SET %s
		RETURN u`, setClause)

	records, err := s.store.ExecuteWrite(ctx, query, params)
	if err != nil {
		if errors.Is(err, ports.ErrConstraintViolation) {
			return nil, apperrors.NewConflictError("username already taken").WithCause(err)
		}
		return nil, apperrors.NewDatabaseError("update user", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFoundError("user")
	}

	s.cache.Delete(ctx, cachekey.User(userID))

	return s.assembleUserColumn(records[0], "u")
}

// DeleteUser removes the user and, through the store-level cascade, every
// incident relationship, then clears the affected cache entries.
func (s *GraphService) DeleteUser(ctx context.Context, userID string) error {
	query := `
		MATCH (u:User {id: $id})
		DETACH DELETE u
		RETURN count(u) AS deleted`

	records, err := s.store.ExecuteWrite(ctx, query, map[string]any{"id": userID})
	if err != nil {
		return apperrors.NewDatabaseError("delete user", err)
	}
	if len(records) == 0 || asCount(records[0]["deleted"]) == 0 {
		return apperrors.NewNotFoundError("user")
	}

	s.cache.Delete(ctx, cachekey.User(userID))
	s.cache.DeletePattern(ctx, cachekey.RelationshipsPattern(userID))
	return nil
}

// CreateRelationship creates a directed edge between two existing users. A
// bidirectional request creates two independent edges with distinct ids and
// a shared timestamp; they are not one entity and are deleted independently.
func (s *GraphService) CreateRelationship(ctx context.Context, in CreateRelationshipInput) (*model.Relationship, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	properties, err := in.Properties.Encode()
	if err != nil {
		return nil, apperrors.NewValidationError("properties are not serializable").WithCause(err)
	}

	weight := 1.0
	if in.Weight != nil {
		weight = *in.Weight
	}

	relID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	query := `
		MATCH (a:User {id: $from_id}), (b:User {id: $to_id})
		CREATE (a)-[r:RELATES_TO {
			id: $id,
			type: $type,
			weight: $weight,
			properties: $properties,
			created_at: $created_at,
			updated_at: $updated_at
		}]->(b)`

	params := map[string]any{
		"id":         relID,
		"from_id":    in.FromUserID,
		"to_id":      in.ToUserID,
		"type":       string(in.Type),
		"weight":     weight,
		"properties": properties,
		"created_at": now,
		"updated_at": now,
	}

	if in.Bidirectional {
		query += `
		CREATE (b)-[r2:RELATES_TO {
			id: $id2,
			type: $type,
			weight: $weight,
			properties: $properties,
			created_at: $created_at,
			updated_at: $updated_at
		}]->(a)`
		params["id2"] = uuid.NewString()
	}

	query += `
		RETURN a, b, r`

	records, err := s.store.ExecuteWrite(ctx, query, params)
	if err != nil {
		return nil, apperrors.NewDatabaseError("create relationship", err)
	}
	if len(records) == 0 {
		// The MATCH found nothing: at least one endpoint does not exist.
		return nil, apperrors.NewNotFoundError("user")
	}

	s.cache.DeletePattern(ctx, cachekey.RelationshipsPattern(in.FromUserID))
	s.cache.DeletePattern(ctx, cachekey.RelationshipsPattern(in.ToUserID))

	relProps, _ := records[0]["r"].(map[string]any)
	fromProps, _ := records[0]["a"].(map[string]any)
	toProps, _ := records[0]["b"].(map[string]any)
	rel, err := assembler.Relationship(relProps, fromProps, toProps)
	if err != nil {
		return nil, apperrors.NewInternalError("assemble relationship", err)
	}
	return rel, nil
}

// GetUserRelationships lists a user's relationships, optionally filtered by
// type, most recent first. Results are cached for a short TTL under
// user:<id>:relationships:<type|all>.
func (s *GraphService) GetUserRelationships(ctx context.Context, userID string, relType model.RelationshipType) ([]*model.Relationship, error) {
	if relType != "" && !relType.Valid() {
		return nil, apperrors.NewValidationError("unknown relationship type")
	}

	key := cachekey.Relationships(userID, string(relType))
	if raw, ok := s.cache.Get(ctx, key); ok {
		var rels []*model.Relationship
		if err := json.Unmarshal([]byte(raw), &rels); err == nil {
			return rels, nil
		}
		s.cache.Delete(ctx, key)
	}

	query := `
		MATCH (u:User {id: $id})-[r:RELATES_TO]-(other:User)`
	params := map[string]any{"id": userID}
	if relType != "" {
		query += `
		WHERE r.type = $rel_type`
		params["rel_type"] = string(relType)
	}
	query += `
		RETURN r, u, other,
		       CASE WHEN startNode(r) = u THEN 'outgoing' ELSE 'incoming' END AS direction
		ORDER BY r.created_at DESC`

	records, err := s.store.ExecuteRead(ctx, query, params)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get user relationships", err)
	}

	relationships := make([]*model.Relationship, 0, len(records))
	for _, rec := range records {
		relProps, _ := rec["r"].(map[string]any)
		userProps, _ := rec["u"].(map[string]any)
		otherProps, _ := rec["other"].(map[string]any)

		fromProps, toProps := userProps, otherProps
		if rec["direction"] == "incoming" {
			fromProps, toProps = otherProps, userProps
		}

		rel, err := assembler.Relationship(relProps, fromProps, toProps)
		if err != nil {
			return nil, apperrors.NewInternalError("assemble relationship", err)
		}
		relationships = append(relationships, rel)
	}

	s.cacheJSON(ctx, key, relationships, s.opts.RelationshipCacheTTL)
	return relationships, nil
}

// DeleteRelationship removes one directed edge and invalidates the
// relationship-list caches of both endpoints. Deleting one half of a
// bidirectional pair leaves the other half in place.
func (s *GraphService) DeleteRelationship(ctx context.Context, relID string) error {
	query := `
		MATCH (a:User)-[r:RELATES_TO {id: $id}]->(b:User)
		DELETE r
		RETURN a.id AS from_id, b.id AS to_id`

	records, err := s.store.ExecuteWrite(ctx, query, map[string]any{"id": relID})
	if err != nil {
		return apperrors.NewDatabaseError("delete relationship", err)
	}
	if len(records) == 0 {
		return apperrors.NewNotFoundError("relationship")
	}

	fromID, _ := records[0]["from_id"].(string)
	toID, _ := records[0]["to_id"].(string)
	s.cache.DeletePattern(ctx, cachekey.RelationshipsPattern(fromID))
	s.cache.DeletePattern(ctx, cachekey.RelationshipsPattern(toID))
	return nil
}

// RecordInteraction stores an immutable interaction event between two users.
// The processed flag is written false once for downstream consumers and
// never flipped by this layer.
func (s *GraphService) RecordInteraction(ctx context.Context, in RecordInteractionInput) (*model.Interaction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	metadata, err := in.Metadata.Encode()
	if err != nil {
		return nil, apperrors.NewValidationError("metadata is not serializable").WithCause(err)
	}

	query := `
		MATCH (from:User {id: $from_id}), (to:User {id: $to_id})
		CREATE (i:Interaction {
			id: $id,
			type: $type,
			from_user_id: $from_id,
			to_user_id: $to_id,
			entity_id: $entity_id,
			entity_type: $entity_type,
			content: $content,
			metadata: $metadata,
			timestamp: $timestamp,
			processed: false
		})
		CREATE (from)-[:INITIATED]->(i)-[:TARGETED]->(to)
		RETURN i`

	records, err := s.store.ExecuteWrite(ctx, query, map[string]any{
		"id":          uuid.NewString(),
		"type":        string(in.Type),
		"from_id":     in.FromUserID,
		"to_id":       in.ToUserID,
		"entity_id":   in.EntityID,
		"entity_type": in.EntityType,
		"content":     in.Content,
		"metadata":    metadata,
		"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("record interaction", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFoundError("user")
	}

	props, _ := records[0]["i"].(map[string]any)
	interaction, err := assembler.Interaction(props)
	if err != nil {
		return nil, apperrors.NewInternalError("assemble interaction", err)
	}
	return interaction, nil
}

// GetUserInteractions lists interactions the user initiated or received,
// optionally filtered by type, most recent first, bounded by limit.
func (s *GraphService) GetUserInteractions(ctx context.Context, userID string, interactionType model.InteractionType, limit int) ([]*model.Interaction, error) {
	if interactionType != "" && !interactionType.Valid() {
		return nil, apperrors.NewValidationError("unknown interaction type")
	}
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	query := `
		MATCH (u:User {id: $id})-[:INITIATED|TARGETED]-(i:Interaction)`
	params := map[string]any{"id": userID, "limit": limit}
	if interactionType != "" {
		query += `
		WHERE i.type = $type`
		params["type"] = string(interactionType)
	}
	query += `
		RETURN i
		ORDER BY i.timestamp DESC
		LIMIT $limit`

	records, err := s.store.ExecuteRead(ctx, query, params)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get user interactions", err)
	}

	interactions := make([]*model.Interaction, 0, len(records))
	for _, rec := range records {
		props, _ := rec["i"].(map[string]any)
		interaction, err := assembler.Interaction(props)
		if err != nil {
			return nil, apperrors.NewInternalError("assemble interaction", err)
		}
		interactions = append(interactions, interaction)
	}
	return interactions, nil
}

// cacheJSON serializes v and populates the cache. Serialization failures are
// logged and skipped; caching is never worth failing an operation.
func (s *GraphService) cacheJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("cache serialization failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.cache.Set(ctx, key, string(raw), ttl)
}

func (s *GraphService) assembleUserColumn(rec ports.Record, column string) (*model.User, error) {
	props, ok := rec[column].(map[string]any)
	if !ok {
		return nil, apperrors.NewInternalError("assemble user", fmt.Errorf("unexpected record shape"))
	}
	user, err := assembler.User(props)
	if err != nil {
		return nil, apperrors.NewInternalError("assemble user", err)
	}
	return user, nil
}

func toPropertyMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asCount(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
