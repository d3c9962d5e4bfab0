package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nextstep/gift/internal/domain/categories"
	"github.com/nextstep/gift/internal/domain/page"
	"github.com/nextstep/gift/internal/domain/validation"
)

var (
	ErrNotImplemented = errors.New("products repository: not implemented")
	ErrNotFound       = errors.New("product not found")
)

const (
	NameLabel     = "Product name"
	NameMaxLength = 15

	// MaxPrice keeps price*quantity of any order inside an int64.
	MaxPrice = 2_147_483_647
)

// SortColumns maps the sortable properties exposed to clients to columns.
var SortColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"price":     "price",
	"createdAt": "created_at",
}

// Product is a purchasable item. Stock lives on its options.
type Product struct {
	ID         int64
	Name       string
	Price      int64
	ImageURL   string
	CategoryID int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository abstracts product persistence. Delete also removes the
// product's options and wishes.
type Repository interface {
	FindByID(ctx context.Context, id int64) (Product, error)
	List(ctx context.Context, req page.Request) (page.Page[Product], error)
	Save(ctx context.Context, product Product) (Product, error)
	Delete(ctx context.Context, id int64) error
}

// NullRepository returns ErrNotImplemented for all operations.
type NullRepository struct{}

func (NullRepository) FindByID(context.Context, int64) (Product, error) {
	return Product{}, ErrNotImplemented
}

func (NullRepository) List(context.Context, page.Request) (page.Page[Product], error) {
	return page.Page[Product]{}, ErrNotImplemented
}

func (NullRepository) Save(context.Context, Product) (Product, error) {
	return Product{}, ErrNotImplemented
}

func (NullRepository) Delete(context.Context, int64) error {
	return ErrNotImplemented
}

// CategoryFinder resolves the category a product is filed under.
type CategoryFinder interface {
	Get(ctx context.Context, id int64) (categories.Category, error)
}

// Service provides business logic around products.
type Service interface {
	List(ctx context.Context, req page.Request) (page.Page[Product], error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, input Input) (Product, error)
	Update(ctx context.Context, id int64, input Input) (Product, error)
	Delete(ctx context.Context, id int64) error
}

// Input carries the editable fields of a product.
type Input struct {
	Name       string
	Price      int64
	ImageURL   string
	CategoryID int64
}

func (in Input) validate() error {
	msgs := validation.Name(in.Name, NameLabel, NameMaxLength, true)
	if in.Price <= 0 {
		msgs = append(msgs, "Product price must be greater than zero.")
	}
	if in.Price > MaxPrice {
		msgs = append(msgs, fmt.Sprintf("Product price must be at most %d.", MaxPrice))
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		msgs = append(msgs, "Product image URL is required.")
	}
	if in.CategoryID <= 0 {
		msgs = append(msgs, "Category id is required.")
	}
	if len(msgs) > 0 {
		return validation.New(msgs...)
	}
	return nil
}

// NewService builds a product service.
func NewService(repo Repository, categories CategoryFinder) Service {
	return &service{repo: repo, categories: categories}
}

type service struct {
	repo       Repository
	categories CategoryFinder
}

func (s *service) List(ctx context.Context, req page.Request) (page.Page[Product], error) {
	return s.repo.List(ctx, req)
}

func (s *service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Create(ctx context.Context, input Input) (Product, error) {
	if err := input.validate(); err != nil {
		return Product{}, err
	}
	if _, err := s.categories.Get(ctx, input.CategoryID); err != nil {
		return Product{}, err
	}

	return s.repo.Save(ctx, Product{
		Name:       input.Name,
		Price:      input.Price,
		ImageURL:   strings.TrimSpace(input.ImageURL),
		CategoryID: input.CategoryID,
	})
}

func (s *service) Update(ctx context.Context, id int64, input Input) (Product, error) {
	if err := input.validate(); err != nil {
		return Product{}, err
	}
	if _, err := s.categories.Get(ctx, input.CategoryID); err != nil {
		return Product{}, err
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Product{}, err
	}

	product.Name = input.Name
	product.Price = input.Price
	product.ImageURL = strings.TrimSpace(input.ImageURL)
	product.CategoryID = input.CategoryID

	return s.repo.Save(ctx, product)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
