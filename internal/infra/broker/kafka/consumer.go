package kafka

import (
	"context"

	"github.com/IBM/sarama"
)

// MessageHandler processes one record from the booking event stream.
// Returning an error leaves the offset unmarked so the record is seen again.
type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// Consumer runs a consumer group over the booking event topics. It rejoins
// the group after rebalances until the context is cancelled.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler) (*Consumer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	return &Consumer{group: group, handler: handler}, nil
}

func (c *Consumer) Run(ctx context.Context, topics []string) error {
	runner := groupRunner{handler: c.handler}
	for {
		// Consume returns on every rebalance; loop to rejoin.
		if err := c.group.Consume(ctx, topics, runner); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type groupRunner struct {
	handler MessageHandler
}

func (r groupRunner) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (r groupRunner) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (r groupRunner) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if err := r.handler.Handle(sess.Context(), msg); err != nil {
			// Unmarked on purpose: the record redelivers on the next session.
			continue
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
