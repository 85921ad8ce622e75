package notifier

import (
	"time"

	"github.com/marketbay/storefront/internal/domain"
)

type Event string

const (
	EventOrderCreated       Event = "order.created"
	EventOrderShipped       Event = "order.shipped"
	EventOrderDelivered     Event = "order.delivered"
	EventOrderCancelled     Event = "order.cancelled"
	EventFulfillmentPartial Event = "fulfillment.partial"
)

// OrderEvent is the record published for every order lifecycle change.
// FailedLines is set only for fulfillment.partial events.
type OrderEvent struct {
	ID            string             `json:"id"`
	Type          Event              `json:"type"`
	OrderID       string             `json:"order_id"`
	Buyer         domain.Buyer       `json:"buyer"`
	Items         []domain.OrderLine `json:"items"`
	ItemsPrice    float64            `json:"items_price"`
	ShippingPrice float64            `json:"shipping_price"`
	TotalPrice    float64            `json:"total_price"`
	OccurredAt    time.Time          `json:"occurred_at"`
	FailedLines   []string           `json:"failed_lines,omitempty"`
}

// NewOrderEvent snapshots an order into an event payload.
func NewOrderEvent(eventType Event, order *domain.Order) OrderEvent {
	return OrderEvent{
		Type:          eventType,
		OrderID:       order.ID,
		Buyer:         order.Buyer,
		Items:         order.Items,
		ItemsPrice:    order.ItemsPrice,
		ShippingPrice: order.ShippingPrice,
		TotalPrice:    order.TotalPrice,
		OccurredAt:    time.Now(),
	}
}
