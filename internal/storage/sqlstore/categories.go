package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/nextstep/gift/internal/domain/categories"
)

var categoryColumns = []string{"id", "name", "color", "image_url", "description", "created_at", "updated_at"}

type categoryRow struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Color       string    `db:"color"`
	ImageURL    string    `db:"image_url"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r categoryRow) toDomain() categories.Category {
	return categories.Category{
		ID:          r.ID,
		Name:        r.Name,
		Color:       r.Color,
		ImageURL:    r.ImageURL,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// CategoryRepository persists categories.
type CategoryRepository struct {
	base
}

// NewCategoryRepository constructs a SQL-backed category repository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{base: newBase(db)}
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (categories.Category, error) {
	var row categoryRow
	err := get(ctx, r.db, &row, r.sb.Select(categoryColumns...).From("categories").Where(sq.Eq{"id": id}))
	if errors.Is(err, sql.ErrNoRows) {
		return categories.Category{}, categories.ErrNotFound
	}
	if err != nil {
		return categories.Category{}, fmt.Errorf("select category: %w", err)
	}
	return row.toDomain(), nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]categories.Category, error) {
	var rows []categoryRow
	if err := selectAll(ctx, r.db, &rows, r.sb.Select(categoryColumns...).From("categories").OrderBy("id")); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]categories.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *CategoryRepository) Save(ctx context.Context, category categories.Category) (categories.Category, error) {
	ts := now()
	if category.ID == 0 {
		id, err := insertID(ctx, r.db, r.sb.Insert("categories").
			Columns("name", "color", "image_url", "description", "created_at", "updated_at").
			Values(category.Name, category.Color, category.ImageURL, category.Description, ts, ts))
		if err != nil {
			return categories.Category{}, fmt.Errorf("insert category: %w", err)
		}
		category.ID = id
		category.CreatedAt = ts
		category.UpdatedAt = ts
		return category, nil
	}

	res, err := exec(ctx, r.db, r.sb.Update("categories").
		Set("name", category.Name).
		Set("color", category.Color).
		Set("image_url", category.ImageURL).
		Set("description", category.Description).
		Set("updated_at", ts).
		Where(sq.Eq{"id": category.ID}))
	if err != nil {
		return categories.Category{}, fmt.Errorf("update category: %w", err)
	}
	if n, err := rowsAffected(res); err != nil {
		return categories.Category{}, err
	} else if n == 0 {
		return categories.Category{}, categories.ErrNotFound
	}
	return r.FindByID(ctx, category.ID)
}

// Delete refuses to remove a category that still files products.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	n, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("products").Where(sq.Eq{"category_id": id}))
	if err != nil {
		return fmt.Errorf("count category products: %w", err)
	}
	if n > 0 {
		return categories.ErrInUse
	}

	if _, err := exec(ctx, r.db, r.sb.Delete("categories").Where(sq.Eq{"id": id})); err != nil {
		if isForeignKeyViolation(err) {
			return categories.ErrInUse
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
