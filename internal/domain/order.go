package domain

import "time"

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// Final reports whether the status admits no further transitions.
func (s OrderStatus) Final() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

type Buyer struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Guest bool   `bson:"guest" json:"guest"`
}

type ShippingInfo struct {
	Name       string `bson:"name" json:"name"`
	Email      string `bson:"email" json:"email"`
	Phone      string `bson:"phone" json:"phone"`
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postal_code" json:"postal_code"`
	Country    string `bson:"country" json:"country"`
}

type OrderLine struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Name      string  `bson:"name" json:"name"`
	Category  string  `bson:"category" json:"category"`
	UnitPrice float64 `bson:"unit_price" json:"unit_price"`
	Quantity  int     `bson:"quantity" json:"quantity"`
}

type PaymentInfo struct {
	PaymentID      string    `bson:"payment_id" json:"payment_id"`
	GatewayOrderID string    `bson:"gateway_order_id" json:"gateway_order_id"`
	Signature      string    `bson:"signature" json:"-"`
	Status         string    `bson:"status" json:"status"`
	Method         string    `bson:"method" json:"method"`
	PaidAt         time.Time `bson:"paid_at" json:"paid_at"`
}

// Order is the durable record produced by a successful checkout commit.
// Immutable after creation except for Status and DeliveredAt.
type Order struct {
	ID            string       `bson:"_id" json:"order_id"`
	Buyer         Buyer        `bson:"buyer" json:"buyer"`
	ShippingInfo  ShippingInfo `bson:"shipping_info" json:"shipping_info"`
	Items         []OrderLine  `bson:"items" json:"items"`
	ItemsPrice    float64      `bson:"items_price" json:"items_price"`
	ShippingPrice float64      `bson:"shipping_price" json:"shipping_price"`
	TotalPrice    float64      `bson:"total_price" json:"total_price"`
	PaymentInfo   PaymentInfo  `bson:"payment_info" json:"payment_info"`
	Status        OrderStatus  `bson:"status" json:"status"`
	CreatedAt     time.Time    `bson:"created_at" json:"created_at"`
	DeliveredAt   *time.Time   `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
}
