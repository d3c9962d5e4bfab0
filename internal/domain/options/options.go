package options

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nextstep/gift/internal/domain/products"
	"github.com/nextstep/gift/internal/domain/validation"
)

var (
	ErrNotImplemented    = errors.New("options repository: not implemented")
	ErrNotFound          = errors.New("option not found")
	ErrDuplicateName     = errors.New("option name already exists")
	ErrLastOption        = errors.New("cannot delete the last option of a product")
	ErrInsufficientStock = errors.New("insufficient stock")
)

const (
	NameLabel     = "Option name"
	NameMaxLength = 50

	MinQuantity = 1
	MaxQuantity = 99_999_999
)

// Option is a purchasable variant of a product and owns its stock. Every
// product keeps at least one option.
type Option struct {
	ID        int64
	ProductID int64
	Name      string
	Quantity  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubtractQuantity removes stock, refusing to go below zero.
func (o *Option) SubtractQuantity(quantity int64) error {
	if quantity <= 0 {
		return validation.New("Quantity must be greater than zero.")
	}
	if quantity > o.Quantity {
		return ErrInsufficientStock
	}
	o.Quantity -= quantity
	return nil
}

// Repository abstracts option persistence. SubtractQuantity and
// AddQuantity must be atomic with respect to concurrent callers.
type Repository interface {
	FindByID(ctx context.Context, id int64) (Option, error)
	ListByProduct(ctx context.Context, productID int64) ([]Option, error)
	ExistsByProductAndName(ctx context.Context, productID int64, name string) (bool, error)
	Save(ctx context.Context, option Option) (Option, error)
	Delete(ctx context.Context, id int64) error
	SubtractQuantity(ctx context.Context, id, quantity int64) (Option, error)
	AddQuantity(ctx context.Context, id, quantity int64) (Option, error)
}

// NullRepository returns ErrNotImplemented for all operations.
type NullRepository struct{}

func (NullRepository) FindByID(context.Context, int64) (Option, error) {
	return Option{}, ErrNotImplemented
}

func (NullRepository) ListByProduct(context.Context, int64) ([]Option, error) {
	return nil, ErrNotImplemented
}

func (NullRepository) ExistsByProductAndName(context.Context, int64, string) (bool, error) {
	return false, ErrNotImplemented
}

func (NullRepository) Save(context.Context, Option) (Option, error) {
	return Option{}, ErrNotImplemented
}

func (NullRepository) Delete(context.Context, int64) error {
	return ErrNotImplemented
}

func (NullRepository) SubtractQuantity(context.Context, int64, int64) (Option, error) {
	return Option{}, ErrNotImplemented
}

func (NullRepository) AddQuantity(context.Context, int64, int64) (Option, error) {
	return Option{}, ErrNotImplemented
}

// ProductFinder resolves the product an option belongs to.
type ProductFinder interface {
	Get(ctx context.Context, id int64) (products.Product, error)
}

// Service provides business logic around product options.
type Service interface {
	ListByProduct(ctx context.Context, productID int64) ([]Option, error)
	Get(ctx context.Context, id int64) (Option, error)
	Create(ctx context.Context, productID int64, input Input) (Option, error)
	Delete(ctx context.Context, productID, optionID int64) error
	SubtractQuantity(ctx context.Context, id, quantity int64) (Option, error)
	AddQuantity(ctx context.Context, id, quantity int64) (Option, error)
}

// Input carries the fields of a new option.
type Input struct {
	Name     string
	Quantity int64
}

func (in Input) validate() error {
	msgs := validation.Name(in.Name, NameLabel, NameMaxLength, false)
	if in.Quantity < MinQuantity || in.Quantity > MaxQuantity {
		msgs = append(msgs, fmt.Sprintf("Option quantity must be between %d and %d.", MinQuantity, MaxQuantity))
	}
	if len(msgs) > 0 {
		return validation.New(msgs...)
	}
	return nil
}

// NewService builds an option service.
func NewService(repo Repository, products ProductFinder) Service {
	return &service{repo: repo, products: products}
}

type service struct {
	repo     Repository
	products ProductFinder
}

func (s *service) ListByProduct(ctx context.Context, productID int64) ([]Option, error) {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}
	return s.repo.ListByProduct(ctx, productID)
}

func (s *service) Get(ctx context.Context, id int64) (Option, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Create(ctx context.Context, productID int64, input Input) (Option, error) {
	if err := input.validate(); err != nil {
		return Option{}, err
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		return Option{}, err
	}

	exists, err := s.repo.ExistsByProductAndName(ctx, productID, input.Name)
	if err != nil {
		return Option{}, err
	}
	if exists {
		return Option{}, ErrDuplicateName
	}

	return s.repo.Save(ctx, Option{
		ProductID: productID,
		Name:      input.Name,
		Quantity:  input.Quantity,
	})
}

func (s *service) Delete(ctx context.Context, productID, optionID int64) error {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return err
	}

	existing, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return err
	}
	if len(existing) <= 1 {
		return ErrLastOption
	}

	option, err := s.repo.FindByID(ctx, optionID)
	if err != nil {
		return err
	}
	if option.ProductID != productID {
		return ErrNotFound
	}

	return s.repo.Delete(ctx, optionID)
}

func (s *service) SubtractQuantity(ctx context.Context, id, quantity int64) (Option, error) {
	if quantity <= 0 {
		return Option{}, validation.New("Quantity must be greater than zero.")
	}
	return s.repo.SubtractQuantity(ctx, id, quantity)
}

func (s *service) AddQuantity(ctx context.Context, id, quantity int64) (Option, error) {
	if quantity <= 0 {
		return Option{}, validation.New("Quantity must be greater than zero.")
	}
	return s.repo.AddQuantity(ctx, id, quantity)
}
