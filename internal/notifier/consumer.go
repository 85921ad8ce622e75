package notifier

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Consumer reads order events and fans them out to the customer and operator
// channels. Each channel attempt is independent; a failure on one never
// suppresses the other, and nothing here reaches the checkout response.
type Consumer struct {
	reader        *kafka.Reader
	mailer        Mailer
	renderer      Renderer
	operatorEmail string
	log           *logrus.Logger
}

func NewConsumer(mailer Mailer, renderer Renderer, operatorEmail string, log *logrus.Logger, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    Topic,
		GroupID:  "storefront-notifier",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{
		reader:        reader,
		mailer:        mailer,
		renderer:      renderer,
		operatorEmail: operatorEmail,
		log:           log,
	}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.Errorf("error closing kafka reader: %v", err)
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.log.Errorf("error reading message: %v", err)
		return
	}

	c.HandleEvent(ctx, m.Value)
}

// HandleEvent dispatches one raw event payload to both channels.
func (c *Consumer) HandleEvent(ctx context.Context, raw []byte) {
	var event OrderEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		c.log.Errorf("error parsing order event: %v", err)
		return
	}

	if event.Type != EventFulfillmentPartial {
		c.notify(ctx, event, event.Buyer.Email, "customer")
	}

	// Operator copy for new orders and fulfillment failures only.
	if event.Type == EventOrderCreated || event.Type == EventFulfillmentPartial {
		c.notify(ctx, event, c.operatorEmail, "operator")
	}
}

func (c *Consumer) notify(ctx context.Context, event OrderEvent, to, channel string) {
	msg, err := c.renderer.Render(event)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"order_id": event.OrderID,
			"event":    event.Type,
			"channel":  channel,
		}).Errorf("failed to render notification: %v", err)
		return
	}

	msg.To = to
	if err := c.mailer.Send(ctx, msg); err != nil {
		c.log.WithFields(logrus.Fields{
			"order_id": event.OrderID,
			"event":    event.Type,
			"channel":  channel,
		}).Errorf("failed to send notification: %v", err)
	}
}
