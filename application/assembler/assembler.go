// Package assembler converts raw graph records (property bags with
// JSON-encoded metadata) into typed domain entities.
package assembler

import (
	"fmt"
	"time"

	"socialgraph/domain/model"
)

// User builds a User from a node property bag. Missing optional fields fall
// back to defaults; unknown extra fields are preserved in Metadata.
func User(props map[string]any) (*model.User, error) {
	id := asString(props["id"])
	if id == "" {
		return nil, fmt.Errorf("user record has no id")
	}

	metadata, err := model.DecodeProperties(asString(props["metadata"]))
	if err != nil {
		return nil, fmt.Errorf("decode user metadata: %w", err)
	}

	user := &model.User{
		ID:        id,
		Username:  asString(props["username"]),
		Email:     asString(props["email"]),
		Name:      asString(props["name"]),
		Bio:       asString(props["bio"]),
		AvatarURL: asString(props["avatar_url"]),
		Location:  asString(props["location"]),
		Tags:      asStringSlice(props["tags"]),
		Metadata:  metadata,
		CreatedAt: asTime(props["created_at"]),
		UpdatedAt: asTime(props["updated_at"]),
	}

	for key, value := range props {
		if _, known := knownUserProps[key]; !known {
			user.Metadata[key] = value
		}
	}
	return user, nil
}

// UserWithDegree builds a User and fills the derived NodeDegree from an
// accompanying count column.
func UserWithDegree(props map[string]any, degree any) (*model.User, error) {
	user, err := User(props)
	if err != nil {
		return nil, err
	}
	user.NodeDegree = int(asInt64(degree))
	return user, nil
}

// Relationship builds a directed Relationship from an edge property bag and
// the two endpoint bags, already oriented from→to.
func Relationship(relProps, fromProps, toProps map[string]any) (*model.Relationship, error) {
	id := asString(relProps["id"])
	if id == "" {
		return nil, fmt.Errorf("relationship record has no id")
	}

	from, err := User(fromProps)
	if err != nil {
		return nil, fmt.Errorf("relationship %s from endpoint: %w", id, err)
	}
	to, err := User(toProps)
	if err != nil {
		return nil, fmt.Errorf("relationship %s to endpoint: %w", id, err)
	}

	properties, err := model.DecodeProperties(asString(relProps["properties"]))
	if err != nil {
		return nil, fmt.Errorf("decode relationship %s properties: %w", id, err)
	}

	weight := 1.0
	if v, ok := relProps["weight"]; ok {
		weight = asFloat(v)
	}

	return &model.Relationship{
		ID:         id,
		Type:       model.RelationshipType(asString(relProps["type"])),
		FromUser:   from,
		ToUser:     to,
		Weight:     weight,
		Properties: properties,
		CreatedAt:  asTime(relProps["created_at"]),
		UpdatedAt:  asTime(relProps["updated_at"]),
	}, nil
}

// Interaction builds an Interaction from a node property bag.
func Interaction(props map[string]any) (*model.Interaction, error) {
	id := asString(props["id"])
	if id == "" {
		return nil, fmt.Errorf("interaction record has no id")
	}

	metadata, err := model.DecodeProperties(asString(props["metadata"]))
	if err != nil {
		return nil, fmt.Errorf("decode interaction metadata: %w", err)
	}

	return &model.Interaction{
		ID:         id,
		Type:       model.InteractionType(asString(props["type"])),
		FromUserID: asString(props["from_user_id"]),
		ToUserID:   asString(props["to_user_id"]),
		EntityID:   asString(props["entity_id"]),
		EntityType: asString(props["entity_type"]),
		Content:    asString(props["content"]),
		Metadata:   metadata,
		Timestamp:  asTime(props["timestamp"]),
		Processed:  asBool(props["processed"]),
	}, nil
}

var knownUserProps = map[string]struct{}{
	"id": {}, "username": {}, "email": {}, "name": {}, "bio": {},
	"avatar_url": {}, "location": {}, "tags": {}, "metadata": {},
	"created_at": {}, "updated_at": {},
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt64(v any) int64 {
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

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func asStringSlice(v any) []string {
	switch items := v.(type) {
	case []string:
		return items
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
