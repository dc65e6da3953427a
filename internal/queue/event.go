// Package queue defines message payloads exchanged over the message
// broker and the background consumer that drains them.
package queue

// EventsQueueName is the durable queue carrying lifecycle events for
// requests and bookings.  The publisher and the consumer both declare
// it, so either side can start first.
const EventsQueueName = "facility.events"

// LifecycleEvent is published whenever a request or booking completes
// a transition that someone should hear about: an assignment, a new
// admin remark, a completion or a booking confirmation.  It carries
// enough for downstream consumers to log or notify without querying
// the primary database.
type LifecycleEvent struct {
	Kind        string `json:"kind"`        // AssignmentMade | RemarkAdded | StatusChanged
	EntityType  string `json:"entity_type"` // "request" or "booking"
	EntityID    uint64 `json:"entity_id"`
	Status      string `json:"status"`
	RecipientID uint64 `json:"recipient_id"`
	ActorID     uint64 `json:"actor_id"`
	Message     string `json:"message"`
	OccurredAt  string `json:"occurred_at"` // RFC3339, UTC
}
