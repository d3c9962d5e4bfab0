package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nextstep/gift/internal/domain/categories"
)

// categoryReferrer reports whether rows still point at a category.
type categoryReferrer interface {
	referencesCategory(categoryID int64) bool
}

// CategoryRepository is an in-memory implementation of categories.Repository.
type CategoryRepository struct {
	mu         sync.RWMutex
	seq        sequence
	categories map[int64]categories.Category
	referrers  []categoryReferrer
}

// NewCategoryRepository returns an initialized in-memory repository. Delete
// fails with categories.ErrInUse while any referrer still uses the category.
func NewCategoryRepository(referrers ...categoryReferrer) *CategoryRepository {
	return &CategoryRepository{
		categories: make(map[int64]categories.Category),
		referrers:  referrers,
	}
}

func (r *CategoryRepository) FindByID(_ context.Context, id int64) (categories.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return categories.Category{}, categories.ErrNotFound
	}
	return c, nil
}

func (r *CategoryRepository) List(_ context.Context) ([]categories.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]categories.Category, 0, len(r.categories))
	for _, c := range r.categories {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *CategoryRepository) Save(_ context.Context, category categories.Category) (categories.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if category.ID == 0 {
		category.ID = r.seq.next()
		category.CreatedAt = now
	} else {
		existing, ok := r.categories[category.ID]
		if !ok {
			return categories.Category{}, categories.ErrNotFound
		}
		category.CreatedAt = existing.CreatedAt
	}
	category.UpdatedAt = now

	r.categories[category.ID] = category
	return category, nil
}

func (r *CategoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ref := range r.referrers {
		if ref.referencesCategory(id) {
			return categories.ErrInUse
		}
	}
	delete(r.categories, id)
	return nil
}
