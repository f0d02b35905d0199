package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/order"
)

// OrderRepository keeps orders in process memory. Identifiers start at 1 and
// increase monotonically.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[int64]*domain.Order
	nextID int64
}

var _ domain.Repository = (*OrderRepository)(nil)

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[int64]*domain.Order),
		nextID: 1,
	}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	_ = ctx
	if order == nil {
		return fmt.Errorf("order repository: order is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = r.nextID
	r.nextID++
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	_ = ctx
	if !status.Valid() {
		return fmt.Errorf("order repository: %w", domain.ErrInvalidStatus)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if err := domain.CheckTransition(order.Status, status); err != nil {
		return fmt.Errorf("order repository: %s -> %s: %w", order.Status, status, err)
	}
	order.Status = status
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return order.Clone(), nil
}
