package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nextstep/gift/internal/domain/page"
	"github.com/nextstep/gift/internal/domain/products"
)

// productDependent is implemented by repositories holding rows that must go
// away together with their product.
type productDependent interface {
	deleteByProduct(productID int64)
}

// ProductRepository is an in-memory implementation of products.Repository.
type ProductRepository struct {
	mu         sync.RWMutex
	seq        sequence
	products   map[int64]products.Product
	dependents []productDependent
}

// NewProductRepository returns an initialized in-memory repository. Option
// and wish repositories passed here are cleaned up on Delete.
func NewProductRepository(dependents ...productDependent) *ProductRepository {
	return &ProductRepository{
		products:   make(map[int64]products.Product),
		dependents: dependents,
	}
}

func (r *ProductRepository) FindByID(_ context.Context, id int64) (products.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return products.Product{}, products.ErrNotFound
	}
	return p, nil
}

func (r *ProductRepository) List(_ context.Context, req page.Request) (page.Page[products.Product], error) {
	r.mu.RLock()
	list := make([]products.Product, 0, len(r.products))
	for _, p := range r.products {
		list = append(list, p)
	}
	r.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		for _, o := range req.Sort {
			c := compareProducts(list[i], list[j], o.Property)
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return list[i].ID < list[j].ID
	})

	return page.Slice(list, req), nil
}

func compareProducts(a, b products.Product, property string) int {
	switch property {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "price":
		return compareInt64(a.Price, b.Price)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return compareInt64(a.ID, b.ID)
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (r *ProductRepository) Save(_ context.Context, product products.Product) (products.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if product.ID == 0 {
		product.ID = r.seq.next()
		product.CreatedAt = now
	} else {
		existing, ok := r.products[product.ID]
		if !ok {
			return products.Product{}, products.ErrNotFound
		}
		product.CreatedAt = existing.CreatedAt
	}
	product.UpdatedAt = now

	r.products[product.ID] = product
	return product, nil
}

func (r *ProductRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	delete(r.products, id)
	r.mu.Unlock()

	for _, d := range r.dependents {
		d.deleteByProduct(id)
	}
	return nil
}

func (r *ProductRepository) referencesCategory(categoryID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.CategoryID == categoryID {
			return true
		}
	}
	return false
}
