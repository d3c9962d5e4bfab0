package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nextstep/gift/internal/domain/page"
	"github.com/nextstep/gift/internal/domain/wishes"
)

// WishRepository is an in-memory implementation of wishes.Repository.
type WishRepository struct {
	mu     sync.RWMutex
	seq    sequence
	wishes map[int64]wishes.Wish
}

// NewWishRepository returns an initialized in-memory repository.
func NewWishRepository() *WishRepository {
	return &WishRepository{
		wishes: make(map[int64]wishes.Wish),
	}
}

func (r *WishRepository) FindByID(_ context.Context, id int64) (wishes.Wish, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.wishes[id]
	if !ok {
		return wishes.Wish{}, wishes.ErrNotFound
	}
	return w, nil
}

func (r *WishRepository) FindByMemberAndProduct(_ context.Context, memberID, productID int64) (wishes.Wish, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, w := range r.wishes {
		if w.MemberID == memberID && w.ProductID == productID {
			return w, nil
		}
	}
	return wishes.Wish{}, wishes.ErrNotFound
}

func (r *WishRepository) ListByMember(_ context.Context, memberID int64, req page.Request) (page.Page[wishes.Wish], error) {
	r.mu.RLock()
	list := make([]wishes.Wish, 0)
	for _, w := range r.wishes {
		if w.MemberID == memberID {
			list = append(list, w)
		}
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return page.Slice(list, req), nil
}

func (r *WishRepository) Save(_ context.Context, wish wishes.Wish) (wishes.Wish, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range r.wishes {
		if w.ID != wish.ID && w.MemberID == wish.MemberID && w.ProductID == wish.ProductID {
			return w, false, nil
		}
	}

	created := wish.ID == 0
	if created {
		wish.ID = r.seq.next()
		wish.CreatedAt = time.Now().UTC()
	}
	r.wishes[wish.ID] = wish
	return wish, created, nil
}

func (r *WishRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.wishes, id)
	return nil
}

func (r *WishRepository) deleteByProduct(productID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, w := range r.wishes {
		if w.ProductID == productID {
			delete(r.wishes, id)
		}
	}
}
