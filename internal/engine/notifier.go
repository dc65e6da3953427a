package engine

import (
	"context"
	"log"
	"time"
)

// EventKind names the lifecycle events handed to the notification
// dispatcher.
type EventKind string

const (
	EventAssignmentMade EventKind = "AssignmentMade"
	EventRemarkAdded    EventKind = "RemarkAdded"
	EventStatusChanged  EventKind = "StatusChanged"
)

// Notification is the payload handed to the dispatcher when a
// transition completes.  It carries enough for downstream consumers to
// email or alert interested parties without querying the primary
// database.
type Notification struct {
	Kind        EventKind `json:"kind"`
	EntityType  string    `json:"entity_type"` // "request" or "booking"
	EntityID    uint64    `json:"entity_id"`
	Status      string    `json:"status"`
	RecipientID uint64    `json:"recipient_id"`
	ActorID     uint64    `json:"actor_id"`
	Message     string    `json:"message"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Notifier is the external notification dispatcher collaborator.
// Delivery is fire-and-forget from the engine's point of view.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// dispatch hands a notification to the configured notifier.  Failures
// must never roll back the transition that triggered them, so errors
// are logged and swallowed here.
func dispatch(ctx context.Context, notifier Notifier, n Notification) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, n); err != nil {
		log.Printf("engine: notify %s for %s %d failed: %v", n.Kind, n.EntityType, n.EntityID, err)
	}
}
