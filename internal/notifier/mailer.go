package notifier

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Message is a rendered, ready-to-send notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers one message. Delivery transport is an external
// collaborator; the consumer never retries synchronously.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Renderer turns an order event into a renderable message body. Template
// internals belong to the collaborator; the consumer only fills in the
// recipient.
type Renderer interface {
	Render(event OrderEvent) (Message, error)
}

// LogMailer writes messages to the log instead of delivering them. Default
// wiring until a real provider is configured.
type LogMailer struct {
	Log *logrus.Logger
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.Log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("mail dispatched")
	return nil
}
