package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/nextstep/gift/internal/domain/orders"
	"github.com/nextstep/gift/internal/domain/page"
)

// OrderRepository is an in-memory implementation of orders.Repository.
type OrderRepository struct {
	mu     sync.RWMutex
	seq    sequence
	orders map[int64]orders.Order
}

// NewOrderRepository returns an initialized in-memory repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[int64]orders.Order),
	}
}

func (r *OrderRepository) FindByID(_ context.Context, id int64) (orders.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	return o, nil
}

// ListByMember returns the member's orders, newest first.
func (r *OrderRepository) ListByMember(_ context.Context, memberID int64, req page.Request) (page.Page[orders.Order], error) {
	r.mu.RLock()
	list := make([]orders.Order, 0)
	for _, o := range r.orders {
		if o.MemberID == memberID {
			list = append(list, o)
		}
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return page.Slice(list, req), nil
}

func (r *OrderRepository) Save(_ context.Context, order orders.Order) (orders.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == 0 {
		order.ID = r.seq.next()
	}
	r.orders[order.ID] = order
	return order, nil
}
