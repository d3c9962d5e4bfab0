package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/nextstep/gift/internal/domain/options"
	"github.com/nextstep/gift/internal/domain/products"
)

var optionColumns = []string{"id", "product_id", "name", "quantity", "created_at", "updated_at"}

type optionRow struct {
	ID        int64     `db:"id"`
	ProductID int64     `db:"product_id"`
	Name      string    `db:"name"`
	Quantity  int64     `db:"quantity"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r optionRow) toDomain() options.Option {
	return options.Option{
		ID:        r.ID,
		ProductID: r.ProductID,
		Name:      r.Name,
		Quantity:  r.Quantity,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// OptionRepository persists product options and their stock.
type OptionRepository struct {
	base
}

// NewOptionRepository constructs a SQL-backed option repository.
func NewOptionRepository(db *sqlx.DB) *OptionRepository {
	return &OptionRepository{base: newBase(db)}
}

func (r *OptionRepository) FindByID(ctx context.Context, id int64) (options.Option, error) {
	var row optionRow
	err := get(ctx, r.db, &row, r.sb.Select(optionColumns...).From("options").Where(sq.Eq{"id": id}))
	if errors.Is(err, sql.ErrNoRows) {
		return options.Option{}, options.ErrNotFound
	}
	if err != nil {
		return options.Option{}, fmt.Errorf("select option: %w", err)
	}
	return row.toDomain(), nil
}

func (r *OptionRepository) ListByProduct(ctx context.Context, productID int64) ([]options.Option, error) {
	var rows []optionRow
	query := r.sb.Select(optionColumns...).From("options").Where(sq.Eq{"product_id": productID}).OrderBy("id")
	if err := selectAll(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	out := make([]options.Option, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *OptionRepository) ExistsByProductAndName(ctx context.Context, productID int64, name string) (bool, error) {
	n, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("options").
		Where(sq.Eq{"product_id": productID, "name": name}))
	if err != nil {
		return false, fmt.Errorf("count options: %w", err)
	}
	return n > 0, nil
}

func (r *OptionRepository) Save(ctx context.Context, option options.Option) (options.Option, error) {
	ts := now()
	if option.ID == 0 {
		id, err := insertID(ctx, r.db, r.sb.Insert("options").
			Columns("product_id", "name", "quantity", "created_at", "updated_at").
			Values(option.ProductID, option.Name, option.Quantity, ts, ts))
		if err != nil {
			return options.Option{}, mapOptionWriteError("insert option", err)
		}
		option.ID = id
		option.CreatedAt = ts
		option.UpdatedAt = ts
		return option, nil
	}

	res, err := exec(ctx, r.db, r.sb.Update("options").
		Set("name", option.Name).
		Set("quantity", option.Quantity).
		Set("updated_at", ts).
		Where(sq.Eq{"id": option.ID}))
	if err != nil {
		return options.Option{}, mapOptionWriteError("update option", err)
	}
	if n, err := rowsAffected(res); err != nil {
		return options.Option{}, err
	} else if n == 0 {
		return options.Option{}, options.ErrNotFound
	}
	return r.FindByID(ctx, option.ID)
}

func mapOptionWriteError(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return options.ErrDuplicateName
	case isForeignKeyViolation(err):
		return products.ErrNotFound
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (r *OptionRepository) Delete(ctx context.Context, id int64) error {
	if _, err := exec(ctx, r.db, r.sb.Delete("options").Where(sq.Eq{"id": id})); err != nil {
		return fmt.Errorf("delete option: %w", err)
	}
	return nil
}

// SubtractQuantity takes stock in one conditional UPDATE, so two orders
// racing for the last unit cannot both succeed.
func (r *OptionRepository) SubtractQuantity(ctx context.Context, id, quantity int64) (options.Option, error) {
	res, err := exec(ctx, r.db, r.sb.Update("options").
		Set("quantity", sq.Expr("quantity - ?", quantity)).
		Set("updated_at", now()).
		Where(sq.Eq{"id": id}).
		Where(sq.GtOrEq{"quantity": quantity}))
	if err != nil {
		return options.Option{}, fmt.Errorf("subtract quantity: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return options.Option{}, err
	}
	if n == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return options.Option{}, err
		}
		return options.Option{}, options.ErrInsufficientStock
	}
	return r.FindByID(ctx, id)
}

func (r *OptionRepository) AddQuantity(ctx context.Context, id, quantity int64) (options.Option, error) {
	res, err := exec(ctx, r.db, r.sb.Update("options").
		Set("quantity", sq.Expr("quantity + ?", quantity)).
		Set("updated_at", now()).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return options.Option{}, fmt.Errorf("add quantity: %w", err)
	}
	if n, err := rowsAffected(res); err != nil {
		return options.Option{}, err
	} else if n == 0 {
		return options.Option{}, options.ErrNotFound
	}
	return r.FindByID(ctx, id)
}
