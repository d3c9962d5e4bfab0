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
	"github.com/nextstep/gift/internal/domain/page"
	"github.com/nextstep/gift/internal/domain/products"
)

var productColumns = []string{"id", "name", "price", "image_url", "category_id", "created_at", "updated_at"}

type productRow struct {
	ID         int64     `db:"id"`
	Name       string    `db:"name"`
	Price      int64     `db:"price"`
	ImageURL   string    `db:"image_url"`
	CategoryID int64     `db:"category_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r productRow) toDomain() products.Product {
	return products.Product{
		ID:         r.ID,
		Name:       r.Name,
		Price:      r.Price,
		ImageURL:   r.ImageURL,
		CategoryID: r.CategoryID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// ProductRepository persists products.
type ProductRepository struct {
	base
}

// NewProductRepository constructs a SQL-backed product repository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{base: newBase(db)}
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (products.Product, error) {
	var row productRow
	err := get(ctx, r.db, &row, r.sb.Select(productColumns...).From("products").Where(sq.Eq{"id": id}))
	if errors.Is(err, sql.ErrNoRows) {
		return products.Product{}, products.ErrNotFound
	}
	if err != nil {
		return products.Product{}, fmt.Errorf("select product: %w", err)
	}
	return row.toDomain(), nil
}

func (r *ProductRepository) List(ctx context.Context, req page.Request) (page.Page[products.Product], error) {
	req = page.Of(req.Number, req.Size, req.Sort...)
	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("products"))
	if err != nil {
		return page.Page[products.Product]{}, fmt.Errorf("count products: %w", err)
	}

	query := r.sb.Select(productColumns...).From("products").
		OrderBy(orderBy(req.Sort, products.SortColumns)...).
		Limit(uint64(req.Size)).
		Offset(uint64(req.Offset()))

	var rows []productRow
	if err := selectAll(ctx, r.db, &rows, query); err != nil {
		return page.Page[products.Product]{}, fmt.Errorf("list products: %w", err)
	}

	content := make([]products.Product, 0, len(rows))
	for _, row := range rows {
		content = append(content, row.toDomain())
	}
	return page.New(content, req, total), nil
}

func (r *ProductRepository) Save(ctx context.Context, product products.Product) (products.Product, error) {
	ts := now()
	if product.ID == 0 {
		id, err := insertID(ctx, r.db, r.sb.Insert("products").
			Columns("name", "price", "image_url", "category_id", "created_at", "updated_at").
			Values(product.Name, product.Price, product.ImageURL, product.CategoryID, ts, ts))
		if err != nil {
			if isForeignKeyViolation(err) {
				return products.Product{}, categories.ErrNotFound
			}
			return products.Product{}, fmt.Errorf("insert product: %w", err)
		}
		product.ID = id
		product.CreatedAt = ts
		product.UpdatedAt = ts
		return product, nil
	}

	res, err := exec(ctx, r.db, r.sb.Update("products").
		Set("name", product.Name).
		Set("price", product.Price).
		Set("image_url", product.ImageURL).
		Set("category_id", product.CategoryID).
		Set("updated_at", ts).
		Where(sq.Eq{"id": product.ID}))
	if err != nil {
		if isForeignKeyViolation(err) {
			return products.Product{}, categories.ErrNotFound
		}
		return products.Product{}, fmt.Errorf("update product: %w", err)
	}
	if n, err := rowsAffected(res); err != nil {
		return products.Product{}, err
	} else if n == 0 {
		return products.Product{}, products.ErrNotFound
	}
	return r.FindByID(ctx, product.ID)
}

// Delete removes the product together with its wishes and options.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer rollback(tx)

	for _, table := range []string{"wishes", "options"} {
		if _, err := exec(ctx, tx, r.sb.Delete(table).Where(sq.Eq{"product_id": id})); err != nil {
			return fmt.Errorf("delete product %s: %w", table, err)
		}
	}
	if _, err := exec(ctx, tx, r.sb.Delete("products").Where(sq.Eq{"id": id})); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	return tx.Commit()
}

// orderBy translates page sort orders into ORDER BY clauses, always ending
// with the primary key so pages are stable.
func orderBy(sort []page.Order, columns map[string]string) []string {
	clauses := make([]string, 0, len(sort)+1)
	for _, o := range sort {
		col, ok := columns[o.Property]
		if !ok {
			continue
		}
		if o.Desc {
			clauses = append(clauses, col+" DESC")
		} else {
			clauses = append(clauses, col+" ASC")
		}
	}
	return append(clauses, "id ASC")
}
