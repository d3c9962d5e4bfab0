package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nextstep/gift/internal/domain/options"
)

// OptionRepository is an in-memory implementation of options.Repository.
type OptionRepository struct {
	mu      sync.RWMutex
	seq     sequence
	options map[int64]options.Option
}

// NewOptionRepository returns an initialized in-memory repository.
func NewOptionRepository() *OptionRepository {
	return &OptionRepository{
		options: make(map[int64]options.Option),
	}
}

func (r *OptionRepository) FindByID(_ context.Context, id int64) (options.Option, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.options[id]
	if !ok {
		return options.Option{}, options.ErrNotFound
	}
	return o, nil
}

func (r *OptionRepository) ListByProduct(_ context.Context, productID int64) ([]options.Option, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]options.Option, 0)
	for _, o := range r.options {
		if o.ProductID == productID {
			list = append(list, o)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *OptionRepository) ExistsByProductAndName(_ context.Context, productID int64, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.options {
		if o.ProductID == productID && o.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *OptionRepository) Save(_ context.Context, option options.Option) (options.Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.options {
		if o.ID != option.ID && o.ProductID == option.ProductID && o.Name == option.Name {
			return options.Option{}, options.ErrDuplicateName
		}
	}

	now := time.Now().UTC()
	if option.ID == 0 {
		option.ID = r.seq.next()
		option.CreatedAt = now
	} else {
		existing, ok := r.options[option.ID]
		if !ok {
			return options.Option{}, options.ErrNotFound
		}
		option.CreatedAt = existing.CreatedAt
	}
	option.UpdatedAt = now

	r.options[option.ID] = option
	return option, nil
}

func (r *OptionRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.options, id)
	return nil
}

func (r *OptionRepository) SubtractQuantity(_ context.Context, id, quantity int64) (options.Option, error) {
	return r.mutate(id, func(o *options.Option) error { return o.SubtractQuantity(quantity) })
}

func (r *OptionRepository) AddQuantity(_ context.Context, id, quantity int64) (options.Option, error) {
	return r.mutate(id, func(o *options.Option) error {
		o.Quantity += quantity
		return nil
	})
}

func (r *OptionRepository) mutate(id int64, fn func(*options.Option) error) (options.Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.options[id]
	if !ok {
		return options.Option{}, options.ErrNotFound
	}
	if err := fn(&o); err != nil {
		return options.Option{}, err
	}
	o.UpdatedAt = time.Now().UTC()
	r.options[id] = o
	return o, nil
}

func (r *OptionRepository) deleteByProduct(productID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, o := range r.options {
		if o.ProductID == productID {
			delete(r.options, id)
		}
	}
}
