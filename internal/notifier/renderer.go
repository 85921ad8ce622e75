package notifier

import (
	"fmt"
	"strings"
	"text/template"
)

var messageTemplate = template.Must(template.New("order").Parse(
	`Order {{.OrderID}} for {{.Buyer.Name}} ({{.Buyer.Email}})

Items:
{{range .Items}}  {{.Quantity}} x {{.Name}} @ {{printf "%.2f" .UnitPrice}}
{{end}}
Items total: {{printf "%.2f" .ItemsPrice}}
Shipping:    {{printf "%.2f" .ShippingPrice}}
Total:       {{printf "%.2f" .TotalPrice}}
{{if .FailedLines}}
Lines needing manual fulfillment review:
{{range .FailedLines}}  {{.}}
{{end}}{{end}}`))

var subjects = map[Event]string{
	EventOrderCreated:       "Your order %s is confirmed",
	EventOrderShipped:       "Your order %s has shipped",
	EventOrderDelivered:     "Your order %s was delivered",
	EventOrderCancelled:     "Your order %s was cancelled",
	EventFulfillmentPartial: "Stock adjustment failed for order %s",
}

// TextRenderer is the default plain-text renderer.
type TextRenderer struct{}

func (TextRenderer) Render(event OrderEvent) (Message, error) {
	subject, ok := subjects[event.Type]
	if !ok {
		return Message{}, fmt.Errorf("no template for event type %q", event.Type)
	}

	var body strings.Builder
	if err := messageTemplate.Execute(&body, event); err != nil {
		return Message{}, fmt.Errorf("failed to render message: %w", err)
	}

	return Message{
		Subject: fmt.Sprintf(subject, event.OrderID),
		Body:    body.String(),
	}, nil
}
