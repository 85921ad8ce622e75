package repository

import (
	"context"
	"errors"
	"time"

	"github.com/marketbay/storefront/internal/domain"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrDuplicateOrder    = errors.New("order already exists")
	ErrOrderFinalized    = errors.New("order already finalized")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]domain.Order, error)

	// UpdateStatus applies a status transition. The write itself enforces
	// finality: an order already in Delivered or Cancelled is left intact
	// and ErrOrderFinalized is returned.
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, deliveredAt *time.Time) error
}

type ProductRepository interface {
	// GetStock returns stock records for the products that exist.
	// Unknown ids are simply absent from the result.
	GetStock(ctx context.Context, productIDs []string) ([]domain.StockRecord, error)

	// DecrementStock atomically decrements stock by qty, guarded by
	// stock >= qty. Returns ErrInsufficientStock when the guard fails
	// or the product does not exist.
	DecrementStock(ctx context.Context, productID string, qty int) error
}
