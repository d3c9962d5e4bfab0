package wishes

import (
	"context"
	"errors"
	"time"

	"github.com/nextstep/gift/internal/domain/page"
	"github.com/nextstep/gift/internal/domain/products"
)

var (
	ErrNotImplemented = errors.New("wishes repository: not implemented")
	ErrNotFound       = errors.New("wish not found")
	ErrForbidden      = errors.New("cannot delete another member's wish")
)

// Wish marks a product a member wants to receive.
type Wish struct {
	ID        int64
	MemberID  int64
	ProductID int64
	CreatedAt time.Time
}

// Detail pairs a wish with the product it points at.
type Detail struct {
	Wish    Wish
	Product products.Product
}

// Repository abstracts wish persistence.
type Repository interface {
	FindByID(ctx context.Context, id int64) (Wish, error)
	FindByMemberAndProduct(ctx context.Context, memberID, productID int64) (Wish, error)
	ListByMember(ctx context.Context, memberID int64, req page.Request) (page.Page[Wish], error)
	// Save inserts a wish unless the member already wishes the product, in
	// which case the stored entry comes back with created=false.
	Save(ctx context.Context, wish Wish) (saved Wish, created bool, err error)
	Delete(ctx context.Context, id int64) error
}

// NullRepository returns ErrNotImplemented for all operations.
type NullRepository struct{}

func (NullRepository) FindByID(context.Context, int64) (Wish, error) {
	return Wish{}, ErrNotImplemented
}

func (NullRepository) FindByMemberAndProduct(context.Context, int64, int64) (Wish, error) {
	return Wish{}, ErrNotImplemented
}

func (NullRepository) ListByMember(context.Context, int64, page.Request) (page.Page[Wish], error) {
	return page.Page[Wish]{}, ErrNotImplemented
}

func (NullRepository) Save(context.Context, Wish) (Wish, bool, error) {
	return Wish{}, false, ErrNotImplemented
}

func (NullRepository) Delete(context.Context, int64) error {
	return ErrNotImplemented
}

// ProductFinder resolves wished products.
type ProductFinder interface {
	Get(ctx context.Context, id int64) (products.Product, error)
}

// Service manages a member's wish list.
type Service interface {
	List(ctx context.Context, memberID int64, req page.Request) (page.Page[Detail], error)
	// Add is idempotent: when the product is already wished the existing
	// entry is returned with created=false.
	Add(ctx context.Context, memberID, productID int64) (detail Detail, created bool, err error)
	Remove(ctx context.Context, memberID, wishID int64) error
}

// NewService builds a wish service.
func NewService(repo Repository, products ProductFinder) Service {
	return &service{repo: repo, products: products}
}

type service struct {
	repo     Repository
	products ProductFinder
}

func (s *service) List(ctx context.Context, memberID int64, req page.Request) (page.Page[Detail], error) {
	wishPage, err := s.repo.ListByMember(ctx, memberID, req)
	if err != nil {
		return page.Page[Detail]{}, err
	}

	details := make([]Detail, 0, len(wishPage.Content))
	for _, w := range wishPage.Content {
		product, err := s.products.Get(ctx, w.ProductID)
		if err != nil {
			return page.Page[Detail]{}, err
		}
		details = append(details, Detail{Wish: w, Product: product})
	}

	return page.Page[Detail]{
		Content:       details,
		TotalElements: wishPage.TotalElements,
		TotalPages:    wishPage.TotalPages,
		Number:        wishPage.Number,
		Size:          wishPage.Size,
		First:         wishPage.First,
		Last:          wishPage.Last,
	}, nil
}

func (s *service) Add(ctx context.Context, memberID, productID int64) (Detail, bool, error) {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return Detail{}, false, err
	}

	existing, err := s.repo.FindByMemberAndProduct(ctx, memberID, productID)
	if err == nil {
		return Detail{Wish: existing, Product: product}, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Detail{}, false, err
	}

	saved, created, err := s.repo.Save(ctx, Wish{MemberID: memberID, ProductID: productID})
	if err != nil {
		return Detail{}, false, err
	}
	return Detail{Wish: saved, Product: product}, created, nil
}

func (s *service) Remove(ctx context.Context, memberID, wishID int64) error {
	wish, err := s.repo.FindByID(ctx, wishID)
	if err != nil {
		return err
	}
	if wish.MemberID != memberID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, wishID)
}
