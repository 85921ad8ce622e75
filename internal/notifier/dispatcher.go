package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const Topic = "order-events"

// Dispatcher publishes order lifecycle events. Dispatch is best-effort from
// the committer's point of view: callers run it off the request path and log
// failures instead of propagating them.
type Dispatcher interface {
	Dispatch(ctx context.Context, event OrderEvent) error
	Close() error
}

type kafkaDispatcher struct {
	writer *kafka.Writer
}

func NewKafkaDispatcher(brokers ...string) Dispatcher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &kafkaDispatcher{writer: w}
}

func (d *kafkaDispatcher) Dispatch(ctx context.Context, event OrderEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID), // order_id for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	return d.writer.WriteMessages(ctx, msg)
}

func (d *kafkaDispatcher) Close() error {
	return d.writer.Close()
}
