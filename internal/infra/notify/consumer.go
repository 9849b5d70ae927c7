// Package notify consumes booking lifecycle events off the broker and fans
// them out as notifications. Delivery channels (email, push) sit behind the
// Notifier interface; the default implementation just logs.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"

	kafkabroker "campnest/internal/infra/broker/kafka"
)

type Notifier interface {
	Notify(ctx context.Context, kind string, aggregateID string, data map[string]any) error
}

// LogNotifier is the default sink until a real delivery channel is wired.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, kind string, aggregateID string, data map[string]any) error {
	n.Logger.Info("notification", "kind", kind, "aggregate_id", aggregateID, "code", data["Code"])
	return nil
}

type cloudEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// EventHandler decodes CloudEvents envelopes and forwards the booking
// lifecycle ones to the notifier. Unknown or malformed events are logged
// and acknowledged; replaying them would never succeed.
type EventHandler struct {
	Notifier Notifier
	Logger   *slog.Logger
}

func (h EventHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		h.Logger.Warn("notify: dropping malformed event", "topic", msg.Topic, "error", err)
		return nil
	}
	switch evt.Type {
	case "booking.requested.v1", "booking.confirmed.v1", "booking.cancelled.v1", "booking.completed.v1", "booking.payment_updated.v1":
		return h.Notifier.Notify(ctx, evt.Type, string(msg.Key), evt.Data)
	default:
		return nil
	}
}

var _ kafkabroker.MessageHandler = EventHandler{}
