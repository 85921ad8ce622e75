package service

import (
	"context"
	"sync"
	"time"

	"github.com/marketbay/storefront/internal/domain"
	"github.com/marketbay/storefront/internal/notifier"
	"github.com/marketbay/storefront/internal/repository"
)

type mockOrderRepo struct {
	m         sync.RWMutex
	orders    map[string]*domain.Order
	createErr error
	updateErr error
	afterGet  func() // runs after a read returns, to interleave writes
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[string]*domain.Order)}
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.orders[order.ID]; exists {
		return repository.ErrDuplicateOrder
	}
	clone := *order
	m.orders[order.ID] = &clone
	return nil
}

func (m *mockOrderRepo) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	m.m.RLock()
	order, ok := m.orders[orderID]
	var clone domain.Order
	if ok {
		clone = *order
	}
	m.m.RUnlock()
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	if m.afterGet != nil {
		m.afterGet()
	}
	return &clone, nil
}

func (m *mockOrderRepo) ListOrdersByEmail(_ context.Context, email string) ([]domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	var out []domain.Order
	for _, order := range m.orders {
		if order.Buyer.Email == email {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, orderID string, status domain.OrderStatus, deliveredAt *time.Time) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	order, ok := m.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if order.Status.Final() {
		return repository.ErrOrderFinalized
	}
	order.Status = status
	order.DeliveredAt = deliveredAt
	return nil
}

func (m *mockOrderRepo) setStatus(orderID string, status domain.OrderStatus) {
	m.m.Lock()
	defer m.m.Unlock()
	m.orders[orderID].Status = status
}

func (m *mockOrderRepo) count() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return len(m.orders)
}

type mockProductRepo struct {
	m       sync.RWMutex
	stocks  map[string]int
	failIDs map[string]error // per-product decrement failures
}

func newMockProductRepo(stocks map[string]int) *mockProductRepo {
	return &mockProductRepo{
		stocks:  stocks,
		failIDs: make(map[string]error),
	}
}

func (m *mockProductRepo) GetStock(_ context.Context, productIDs []string) ([]domain.StockRecord, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	var out []domain.StockRecord
	for _, id := range productIDs {
		if stock, ok := m.stocks[id]; ok {
			out = append(out, domain.StockRecord{ProductID: id, Stock: stock})
		}
	}
	return out, nil
}

func (m *mockProductRepo) DecrementStock(_ context.Context, productID string, qty int) error {
	m.m.Lock()
	defer m.m.Unlock()
	if err, ok := m.failIDs[productID]; ok {
		return err
	}
	stock, ok := m.stocks[productID]
	if !ok || stock < qty {
		return repository.ErrInsufficientStock
	}
	m.stocks[productID] = stock - qty
	return nil
}

func (m *mockProductRepo) stockOf(productID string) int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.stocks[productID]
}

type mockDispatcher struct {
	m      sync.RWMutex
	events []notifier.OrderEvent
	err    error
}

func (m *mockDispatcher) Dispatch(_ context.Context, event notifier.OrderEvent) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockDispatcher) Close() error { return nil }

func (m *mockDispatcher) eventsOfType(t notifier.Event) []notifier.OrderEvent {
	m.m.RLock()
	defer m.m.RUnlock()
	var out []notifier.OrderEvent
	for _, e := range m.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type mockInvalidator struct {
	m    sync.RWMutex
	tags []string
	err  error
}

func (m *mockInvalidator) Invalidate(_ context.Context, tags []string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.tags = append(m.tags, tags...)
	return nil
}

func (m *mockInvalidator) invalidated() []string {
	m.m.RLock()
	defer m.m.RUnlock()
	return append([]string(nil), m.tags...)
}
