package events

import "time"

// DomainEvent is a fact recorded by an aggregate during a state change.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder collects domain events until the application layer drains
// them into the outbox. Embed it into aggregates.
type EventRecorder struct {
	pending []DomainEvent
}

// Record appends an event to the pending list.
func (r *EventRecorder) Record(event DomainEvent) {
	r.pending = append(r.pending, event)
}

// PendingEvents returns recorded events in order.
func (r *EventRecorder) PendingEvents() []DomainEvent {
	return r.pending
}

// ClearEvents drops recorded events after they have been persisted.
func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}
