package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/nextstep/gift/internal/domain/page"
	"github.com/nextstep/gift/internal/domain/wishes"
)

var wishColumns = []string{"id", "member_id", "product_id", "created_at"}

type wishRow struct {
	ID        int64     `db:"id"`
	MemberID  int64     `db:"member_id"`
	ProductID int64     `db:"product_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r wishRow) toDomain() wishes.Wish {
	return wishes.Wish{ID: r.ID, MemberID: r.MemberID, ProductID: r.ProductID, CreatedAt: r.CreatedAt}
}

// WishRepository persists wish list entries.
type WishRepository struct {
	base
}

// NewWishRepository constructs a SQL-backed wish repository.
func NewWishRepository(db *sqlx.DB) *WishRepository {
	return &WishRepository{base: newBase(db)}
}

func (r *WishRepository) FindByID(ctx context.Context, id int64) (wishes.Wish, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *WishRepository) FindByMemberAndProduct(ctx context.Context, memberID, productID int64) (wishes.Wish, error) {
	return r.findOne(ctx, sq.Eq{"member_id": memberID, "product_id": productID})
}

func (r *WishRepository) findOne(ctx context.Context, where sq.Eq) (wishes.Wish, error) {
	var row wishRow
	err := get(ctx, r.db, &row, r.sb.Select(wishColumns...).From("wishes").Where(where))
	if errors.Is(err, sql.ErrNoRows) {
		return wishes.Wish{}, wishes.ErrNotFound
	}
	if err != nil {
		return wishes.Wish{}, fmt.Errorf("select wish: %w", err)
	}
	return row.toDomain(), nil
}

func (r *WishRepository) ListByMember(ctx context.Context, memberID int64, req page.Request) (page.Page[wishes.Wish], error) {
	req = page.Of(req.Number, req.Size, req.Sort...)
	where := sq.Eq{"member_id": memberID}
	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("wishes").Where(where))
	if err != nil {
		return page.Page[wishes.Wish]{}, fmt.Errorf("count wishes: %w", err)
	}

	var rows []wishRow
	query := r.sb.Select(wishColumns...).From("wishes").Where(where).
		OrderBy("id ASC").
		Limit(uint64(req.Size)).
		Offset(uint64(req.Offset()))
	if err := selectAll(ctx, r.db, &rows, query); err != nil {
		return page.Page[wishes.Wish]{}, fmt.Errorf("list wishes: %w", err)
	}

	content := make([]wishes.Wish, 0, len(rows))
	for _, row := range rows {
		content = append(content, row.toDomain())
	}
	return page.New(content, req, total), nil
}

// Save inserts a new wish. Losing a race against an identical insert returns
// the row that won with created=false.
func (r *WishRepository) Save(ctx context.Context, wish wishes.Wish) (wishes.Wish, bool, error) {
	if wish.ID != 0 {
		return wish, false, nil
	}

	ts := now()
	id, err := insertID(ctx, r.db, r.sb.Insert("wishes").
		Columns("member_id", "product_id", "created_at").
		Values(wish.MemberID, wish.ProductID, ts))
	if err != nil {
		if isUniqueViolation(err) {
			existing, ferr := r.FindByMemberAndProduct(ctx, wish.MemberID, wish.ProductID)
			return existing, false, ferr
		}
		return wishes.Wish{}, false, fmt.Errorf("insert wish: %w", err)
	}
	wish.ID = id
	wish.CreatedAt = ts
	return wish, true, nil
}

func (r *WishRepository) Delete(ctx context.Context, id int64) error {
	if _, err := exec(ctx, r.db, r.sb.Delete("wishes").Where(sq.Eq{"id": id})); err != nil {
		return fmt.Errorf("delete wish: %w", err)
	}
	return nil
}
