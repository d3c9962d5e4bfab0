package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/nextstep/gift/internal/domain/orders"
	"github.com/nextstep/gift/internal/domain/page"
)

var orderColumns = []string{"id", "option_id", "member_id", "quantity", "message", "order_date_time"}

type orderRow struct {
	ID            int64     `db:"id"`
	OptionID      int64     `db:"option_id"`
	MemberID      int64     `db:"member_id"`
	Quantity      int64     `db:"quantity"`
	Message       string    `db:"message"`
	OrderDateTime time.Time `db:"order_date_time"`
}

func (r orderRow) toDomain() orders.Order {
	return orders.Order{
		ID:        r.ID,
		OptionID:  r.OptionID,
		MemberID:  r.MemberID,
		Quantity:  r.Quantity,
		Message:   r.Message,
		OrderedAt: r.OrderDateTime,
	}
}

// OrderRepository persists orders.
type OrderRepository struct {
	base
}

// NewOrderRepository constructs a SQL-backed order repository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{base: newBase(db)}
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (orders.Order, error) {
	var row orderRow
	err := get(ctx, r.db, &row, r.sb.Select(orderColumns...).From("orders").Where(sq.Eq{"id": id}))
	if errors.Is(err, sql.ErrNoRows) {
		return orders.Order{}, orders.ErrNotFound
	}
	if err != nil {
		return orders.Order{}, fmt.Errorf("select order: %w", err)
	}
	return row.toDomain(), nil
}

// ListByMember returns the member's orders, newest first.
func (r *OrderRepository) ListByMember(ctx context.Context, memberID int64, req page.Request) (page.Page[orders.Order], error) {
	req = page.Of(req.Number, req.Size, req.Sort...)
	where := sq.Eq{"member_id": memberID}
	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("orders").Where(where))
	if err != nil {
		return page.Page[orders.Order]{}, fmt.Errorf("count orders: %w", err)
	}

	var rows []orderRow
	query := r.sb.Select(orderColumns...).From("orders").Where(where).
		OrderBy("id DESC").
		Limit(uint64(req.Size)).
		Offset(uint64(req.Offset()))
	if err := selectAll(ctx, r.db, &rows, query); err != nil {
		return page.Page[orders.Order]{}, fmt.Errorf("list orders: %w", err)
	}

	content := make([]orders.Order, 0, len(rows))
	for _, row := range rows {
		content = append(content, row.toDomain())
	}
	return page.New(content, req, total), nil
}

func (r *OrderRepository) Save(ctx context.Context, order orders.Order) (orders.Order, error) {
	if order.ID != 0 {
		return order, nil
	}

	orderedAt := order.OrderedAt.UTC().Truncate(time.Microsecond)
	id, err := insertID(ctx, r.db, r.sb.Insert("orders").
		Columns("option_id", "member_id", "quantity", "message", "order_date_time").
		Values(order.OptionID, order.MemberID, order.Quantity, order.Message, orderedAt))
	if err != nil {
		return orders.Order{}, fmt.Errorf("insert order: %w", err)
	}
	order.ID = id
	order.OrderedAt = orderedAt
	return order, nil
}
