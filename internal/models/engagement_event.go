package models

import "time"

type EngagementEventType string

const (
	EngagementLikeAdded      EngagementEventType = "like.added"
	EngagementLikeRemoved    EngagementEventType = "like.removed"
	EngagementCommentCreated EngagementEventType = "comment.created"
	EngagementCommentUpdated EngagementEventType = "comment.updated"
	EngagementCommentDeleted EngagementEventType = "comment.deleted"
	EngagementEventDeleted   EngagementEventType = "event.deleted"
)

// EngagementEvent is published to Kafka and streamed to SSE subscribers of an event.
type EngagementEvent struct {
	Type       EngagementEventType `json:"type"`
	EventID    string              `json:"event_id"`
	UserID     string              `json:"user_id"`
	ResourceID string              `json:"resource_id,omitempty"`
	Text       string              `json:"text,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

func NewEngagementEvent(t EngagementEventType, eventID, userID, resourceID string) EngagementEvent {
	return EngagementEvent{
		Type:       t,
		EventID:    eventID,
		UserID:     userID,
		ResourceID: resourceID,
		OccurredAt: time.Now().UTC(),
	}
}
