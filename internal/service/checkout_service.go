package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marketbay/storefront/internal/cache"
	"github.com/marketbay/storefront/internal/domain"
	"github.com/marketbay/storefront/internal/notifier"
	"github.com/marketbay/storefront/internal/payment"
	"github.com/marketbay/storefront/internal/repository"
	"github.com/marketbay/storefront/internal/sequence"
)

const orderSequence = "order"

// sideEffectTimeout bounds the detached post-commit work so a stuck broker
// or cache cannot leak goroutines forever.
const sideEffectTimeout = 10 * time.Second

type CheckoutRequest struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
	PaymentMethod    string

	Buyer         domain.Buyer
	ShippingInfo  domain.ShippingInfo
	Items         []domain.OrderLine
	ItemsPrice    float64
	ShippingPrice float64
	TotalPrice    float64
}

type CheckoutResult struct {
	OrderID   string  `json:"orderId"`
	PaymentID string  `json:"paymentId"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
}

// CheckoutService turns a verified payment claim into a durable order.
// Once the order document is written the commit stands: stock adjustment is
// best-effort, and notification/cache work runs detached from the caller.
type CheckoutService struct {
	orders      repository.OrderRepository
	products    repository.ProductRepository
	allocator   sequence.Allocator
	verifier    *payment.Verifier
	dispatcher  notifier.Dispatcher
	invalidator cache.Invalidator
	orderPrefix string
	log         *logrus.Logger
}

func NewCheckoutService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	allocator sequence.Allocator,
	verifier *payment.Verifier,
	dispatcher notifier.Dispatcher,
	invalidator cache.Invalidator,
	orderPrefix string,
	log *logrus.Logger,
) *CheckoutService {
	return &CheckoutService{
		orders:      orders,
		products:    products,
		allocator:   allocator,
		verifier:    verifier,
		dispatcher:  dispatcher,
		invalidator: invalidator,
		orderPrefix: orderPrefix,
		log:         log,
	}
}

// Commit runs the checkout pipeline:
// verify proof -> allocate id -> persist -> decrement stock (best-effort)
// -> queue notifications and cache invalidation (detached).
// Errors before persistence abort with no side effects. Errors at or after
// persistence are absorbed; the caller is told the order succeeded.
func (s *CheckoutService) Commit(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error) {
	if !s.verifier.Verify(req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		s.log.WithFields(logrus.Fields{
			"gateway_order_id": req.GatewayOrderID,
			"buyer":            req.Buyer.Email,
		}).Warn("payment signature mismatch, possible forged payment claim")
		return nil, ErrPaymentVerification
	}

	seq, err := s.allocator.Next(ctx, orderSequence)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate order number: %w", err)
	}
	orderID := fmt.Sprintf("%s-%04d", s.orderPrefix, seq)

	order := &domain.Order{
		ID:            orderID,
		Buyer:         req.Buyer,
		ShippingInfo:  req.ShippingInfo,
		Items:         req.Items,
		ItemsPrice:    req.ItemsPrice,
		ShippingPrice: req.ShippingPrice,
		TotalPrice:    req.TotalPrice,
		PaymentInfo: domain.PaymentInfo{
			PaymentID:      req.GatewayPaymentID,
			GatewayOrderID: req.GatewayOrderID,
			Signature:      req.Signature,
			Status:         "captured",
			Method:         req.PaymentMethod,
			PaidAt:         time.Now(),
		},
		Status:    domain.OrderStatusProcessing,
		CreatedAt: time.Now(),
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		// The allocated number is burned; uniqueness beats gaplessness.
		return nil, fmt.Errorf("failed to persist order %s: %w", orderID, err)
	}

	// The order is committed from here on. Nothing below may fail it.
	s.adjustStock(ctx, order)

	go s.queueCreatedNotification(order)
	go s.queueCacheInvalidation(order)

	return &CheckoutResult{
		OrderID:   order.ID,
		PaymentID: order.PaymentInfo.PaymentID,
		Amount:    order.ItemsPrice + order.ShippingPrice,
		Status:    "confirmed",
	}, nil
}

// adjustStock decrements stock per line. Lines fail independently; failures
// are reported for manual reconciliation, never rolled back.
func (s *CheckoutService) adjustStock(ctx context.Context, order *domain.Order) {
	var failed []string
	for _, line := range order.Items {
		if err := s.products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			failed = append(failed, line.ProductID)
			s.log.WithFields(logrus.Fields{
				"order_id":   order.ID,
				"product_id": line.ProductID,
				"quantity":   line.Quantity,
			}).Errorf("partial fulfillment: stock decrement failed: %v", err)
		}
	}

	if len(failed) > 0 {
		event := notifier.NewOrderEvent(notifier.EventFulfillmentPartial, order)
		event.FailedLines = failed
		go s.queueEvent(event)
	}
}

func (s *CheckoutService) queueCreatedNotification(order *domain.Order) {
	s.queueEvent(notifier.NewOrderEvent(notifier.EventOrderCreated, order))
}

func (s *CheckoutService) queueEvent(event notifier.OrderEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if err := s.dispatcher.Dispatch(ctx, event); err != nil {
		s.log.WithFields(logrus.Fields{
			"order_id": event.OrderID,
			"event":    event.Type,
		}).Errorf("failed to queue notification: %v", err)
	}
}

func (s *CheckoutService) queueCacheInvalidation(order *domain.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if err := s.invalidator.Invalidate(ctx, TagsForOrder(order)); err != nil {
		s.log.WithField("order_id", order.ID).Errorf("failed to invalidate cache: %v", err)
	}
}

// TagsForOrder derives the catalog views a commit makes stale: every line's
// category, the global products view and the home page.
func TagsForOrder(order *domain.Order) []string {
	tags := make([]string, 0, len(order.Items)+2)
	for _, line := range order.Items {
		if line.Category != "" {
			tags = append(tags, line.Category)
		}
	}
	return append(tags, "products", "/")
}
