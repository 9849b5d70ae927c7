package outbox

import (
	"context"
	"encoding/json"
	"time"

	"campnest/internal/domain/shared/events"
)

// EventRecord is the serialized form of a domain event staged for delivery.
type EventRecord struct {
	ID         string
	Name       string
	Aggregate  string
	Payload    []byte
	Headers    map[string]string
	OccurredAt time.Time
}

// Outbox stages event records inside the current unit of work. Flush hands
// staged records to the durable store once the transaction commits.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

// EventEncoder turns a domain event into an outbox payload.
type EventEncoder interface {
	Encode(event events.DomainEvent) ([]byte, error)
}

// JSONEventEncoder marshals the event struct as-is.
type JSONEventEncoder struct{}

func (JSONEventEncoder) Encode(event events.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// RecordDomainEvents stages every pending event from an aggregate.
func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, pending []events.DomainEvent) error {
	if box == nil || len(pending) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, event := range pending {
		payload, err := encoder.Encode(event)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, EventRecord{
			Name:       event.EventName(),
			Aggregate:  event.AggregateID(),
			Payload:    payload,
			OccurredAt: event.OccurredAt(),
		}); err != nil {
			return err
		}
	}
	return nil
}

// Drain stages an aggregate's pending events and clears them.
func Drain(ctx context.Context, box Outbox, encoder EventEncoder, recorder *events.EventRecorder) error {
	pending := recorder.PendingEvents()
	recorder.ClearEvents()
	return RecordDomainEvents(ctx, box, encoder, pending)
}
