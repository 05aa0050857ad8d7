package services

import (
	"socialgraph/domain/model"
	apperrors "socialgraph/pkg/errors"
)

// CreateUserInput carries the fields for a new user node.
type CreateUserInput struct {
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	Name      string           `json:"name"`
	Bio       string           `json:"bio"`
	AvatarURL string           `json:"avatar_url"`
	Location  string           `json:"location"`
	Tags      []string         `json:"tags"`
	Metadata  model.Properties `json:"metadata"`
}

// Validate checks the input before any store call.
func (in CreateUserInput) Validate() error {
	if len(in.Username) < 3 || len(in.Username) > 50 {
		return apperrors.NewValidationError("username must be between 3 and 50 characters")
	}
	return nil
}

// CreateRelationshipInput carries the fields for a new directed edge.
// Bidirectional requests two independent edges sharing one timestamp. A nil
// Weight defaults to 1; an explicit zero is stored as zero.
type CreateRelationshipInput struct {
	FromUserID    string                 `json:"from_user_id"`
	ToUserID      string                 `json:"to_user_id"`
	Type          model.RelationshipType `json:"type"`
	Weight        *float64               `json:"weight"`
	Properties    model.Properties       `json:"properties"`
	Bidirectional bool                   `json:"bidirectional"`
}

// Validate checks the input before any store call.
func (in CreateRelationshipInput) Validate() error {
	if in.FromUserID == "" || in.ToUserID == "" {
		return apperrors.NewValidationError("from_user_id and to_user_id are required")
	}
	if in.FromUserID == in.ToUserID {
		return apperrors.NewValidationError("a relationship cannot point at its own source")
	}
	if !in.Type.Valid() {
		return apperrors.NewValidationError("unknown relationship type")
	}
	return nil
}

// RecordInteractionInput carries the fields for a new interaction event.
type RecordInteractionInput struct {
	FromUserID string                `json:"from_user_id"`
	ToUserID   string                `json:"to_user_id"`
	Type       model.InteractionType `json:"type"`
	EntityID   string                `json:"entity_id"`
	EntityType string                `json:"entity_type"`
	Content    string                `json:"content"`
	Metadata   model.Properties      `json:"metadata"`
}

// Validate checks the input before any store call.
func (in RecordInteractionInput) Validate() error {
	if in.FromUserID == "" || in.ToUserID == "" {
		return apperrors.NewValidationError("from_user_id and to_user_id are required")
	}
	if !in.Type.Valid() {
		return apperrors.NewValidationError("unknown interaction type")
	}
	return nil
}

// BulkRelationshipInput is one edge in a bulk creation batch.
type BulkRelationshipInput struct {
	FromUserID string                 `json:"from_user_id"`
	ToUserID   string                 `json:"to_user_id"`
	Type       model.RelationshipType `json:"type"`
	Weight     *float64               `json:"weight"`
	Properties model.Properties       `json:"properties"`
}
