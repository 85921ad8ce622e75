package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marketbay/storefront/internal/domain"
	"github.com/marketbay/storefront/internal/notifier"
	"github.com/marketbay/storefront/internal/repository"
)

// OrderService answers buyer queries and applies admin status transitions.
type OrderService struct {
	orders     repository.OrderRepository
	dispatcher notifier.Dispatcher
	log        *logrus.Logger
}

func NewOrderService(orders repository.OrderRepository, dispatcher notifier.Dispatcher, log *logrus.Logger) *OrderService {
	return &OrderService{
		orders:     orders,
		dispatcher: dispatcher,
		log:        log,
	}
}

// GetOrderForBuyer loads an order and enforces that it belongs to the
// requesting identity.
func (s *OrderService) GetOrderForBuyer(ctx context.Context, orderID, buyerEmail string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Buyer.Email != buyerEmail {
		return nil, ErrNotOwner
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, buyerEmail string) ([]domain.Order, error) {
	return s.orders.ListOrdersByEmail(ctx, buyerEmail)
}

// UpdateStatus applies an admin-driven transition. Transitions are monotonic:
// an order in Delivered or Cancelled rejects any further change. The check
// here is a fast path only; the repository write carries the real guard.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status.Final() {
		return nil, ErrOrderFinalized
	}

	var deliveredAt *time.Time
	if status == domain.OrderStatusDelivered {
		now := time.Now()
		deliveredAt = &now
	}

	if err := s.orders.UpdateStatus(ctx, orderID, status, deliveredAt); err != nil {
		if errors.Is(err, repository.ErrOrderFinalized) {
			return nil, ErrOrderFinalized
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	order.Status = status
	order.DeliveredAt = deliveredAt

	if event, ok := statusEvents[status]; ok {
		go s.queueStatusNotification(event, order)
	}

	return order, nil
}

var statusEvents = map[domain.OrderStatus]notifier.Event{
	domain.OrderStatusShipped:   notifier.EventOrderShipped,
	domain.OrderStatusDelivered: notifier.EventOrderDelivered,
	domain.OrderStatusCancelled: notifier.EventOrderCancelled,
}

func (s *OrderService) queueStatusNotification(event notifier.Event, order *domain.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if err := s.dispatcher.Dispatch(ctx, notifier.NewOrderEvent(event, order)); err != nil {
		s.log.WithFields(logrus.Fields{
			"order_id": order.ID,
			"event":    event,
		}).Errorf("failed to queue notification: %v", err)
	}
}
