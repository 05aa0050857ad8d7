package model

import "time"

// InteractionType is the closed set of interaction event types.
type InteractionType string

const (
	InteractionMessage   InteractionType = "MESSAGE"
	InteractionComment   InteractionType = "COMMENT"
	InteractionReaction  InteractionType = "REACTION"
	InteractionShare     InteractionType = "SHARE"
	InteractionView      InteractionType = "VIEW"
	InteractionClick     InteractionType = "CLICK"
	InteractionMention   InteractionType = "MENTION"
	InteractionTag       InteractionType = "TAG"
	InteractionInvite    InteractionType = "INVITE"
	InteractionRecommend InteractionType = "RECOMMEND"
)

var interactionTypes = map[InteractionType]struct{}{
	InteractionMessage: {}, InteractionComment: {}, InteractionReaction: {},
	InteractionShare: {}, InteractionView: {}, InteractionClick: {},
	InteractionMention: {}, InteractionTag: {}, InteractionInvite: {},
	InteractionRecommend: {},
}

// Valid reports whether t is a member of the closed enumeration.
func (t InteractionType) Valid() bool {
	_, ok := interactionTypes[t]
	return ok
}

// Interaction is a directed, timestamped event between two users. It is
// immutable after creation. Processed is written false at creation for
// downstream consumers and never flipped by this service.
type Interaction struct {
	ID         string          `json:"id"`
	Type       InteractionType `json:"type"`
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	EntityID   string          `json:"entity_id,omitempty"`
	EntityType string          `json:"entity_type,omitempty"`
	Content    string          `json:"content,omitempty"`
	Metadata   Properties      `json:"metadata"`
	Timestamp  time.Time       `json:"timestamp"`
	Processed  bool            `json:"processed"`
}
