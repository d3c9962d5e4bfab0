package categories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nextstep/gift/internal/domain/validation"
)

// Domain-level errors for categories.
var (
	ErrNotImplemented = errors.New("categories repository: not implemented")
	ErrNotFound       = errors.New("category not found")
	ErrInUse          = errors.New("category still has products")
)

// Category groups products on the storefront.
type Category struct {
	ID          int64
	Name        string
	Color       string
	ImageURL    string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository abstracts persistence for categories.
type Repository interface {
	FindByID(ctx context.Context, id int64) (Category, error)
	List(ctx context.Context) ([]Category, error)
	Save(ctx context.Context, category Category) (Category, error)
	Delete(ctx context.Context, id int64) error
}

// NullRepository stub implementation returning ErrNotImplemented.
type NullRepository struct{}

func (NullRepository) FindByID(context.Context, int64) (Category, error) {
	return Category{}, ErrNotImplemented
}

func (NullRepository) List(context.Context) ([]Category, error) {
	return nil, ErrNotImplemented
}

func (NullRepository) Save(context.Context, Category) (Category, error) {
	return Category{}, ErrNotImplemented
}

func (NullRepository) Delete(context.Context, int64) error {
	return ErrNotImplemented
}

// Service exposes business operations over categories.
type Service interface {
	List(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, input Input) (Category, error)
	Update(ctx context.Context, id int64, input Input) (Category, error)
	Delete(ctx context.Context, id int64) error
}

// Input carries the editable fields of a category.
type Input struct {
	Name        string
	Color       string
	ImageURL    string
	Description string
}

func (in Input) normalize() Input {
	return Input{
		Name:        strings.TrimSpace(in.Name),
		Color:       strings.TrimSpace(in.Color),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Description: strings.TrimSpace(in.Description),
	}
}

func (in Input) validate() error {
	var msgs []string
	if in.Name == "" {
		msgs = append(msgs, "Category name is required.")
	}
	if in.Color == "" {
		msgs = append(msgs, "Category color is required.")
	}
	if in.ImageURL == "" {
		msgs = append(msgs, "Category image URL is required.")
	}
	if len(msgs) > 0 {
		return validation.New(msgs...)
	}
	return nil
}

// NewService builds a category service with the given repository.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

type service struct {
	repo Repository
}

func (s *service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (Category, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Create(ctx context.Context, input Input) (Category, error) {
	input = input.normalize()
	if err := input.validate(); err != nil {
		return Category{}, err
	}
	return s.repo.Save(ctx, Category{
		Name:        input.Name,
		Color:       input.Color,
		ImageURL:    input.ImageURL,
		Description: input.Description,
	})
}

func (s *service) Update(ctx context.Context, id int64, input Input) (Category, error) {
	input = input.normalize()
	if err := input.validate(); err != nil {
		return Category{}, err
	}

	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Category{}, err
	}

	category.Name = input.Name
	category.Color = input.Color
	category.ImageURL = input.ImageURL
	category.Description = input.Description

	return s.repo.Save(ctx, category)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
