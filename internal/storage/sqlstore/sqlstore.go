// Package sqlstore implements the domain repositories on top of sqlx. Queries
// are built with squirrel using '?' placeholders so the same code runs on
// MySQL and SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/nextstep/gift/internal/domain"
)

const (
	mysqlDuplicateEntry      = 1062
	mysqlRowIsReferenced     = 1451
	mysqlNoReferencedRow     = 1452
	mysqlRowIsReferencedFull = 1217
)

// NewDomainOptions returns repositories for every aggregate backed by db.
func NewDomainOptions(db *sqlx.DB) domain.Options {
	return domain.Options{
		MemberRepo:   NewMemberRepository(db),
		CategoryRepo: NewCategoryRepository(db),
		ProductRepo:  NewProductRepository(db),
		OptionRepo:   NewOptionRepository(db),
		WishRepo:     NewWishRepository(db),
		OrderRepo:    NewOrderRepository(db),
	}
}

type base struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func newBase(db *sqlx.DB) base {
	return base{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Question)}
}

func get(ctx context.Context, q sqlx.QueryerContext, dest any, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return sqlx.GetContext(ctx, q, dest, query, args...)
}

func selectAll(ctx context.Context, q sqlx.QueryerContext, dest any, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return sqlx.SelectContext(ctx, q, dest, query, args...)
}

func exec(ctx context.Context, e sqlx.ExecerContext, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return e.ExecContext(ctx, query, args...)
}

func insertID(ctx context.Context, e sqlx.ExecerContext, b sq.Sqlizer) (int64, error) {
	res, err := exec(ctx, e, b)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func count(ctx context.Context, q sqlx.QueryerContext, b sq.SelectBuilder) (int64, error) {
	var n int64
	if err := get(ctx, q, &n, b); err != nil {
		return 0, err
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlRowIsReferenced, mysqlNoReferencedRow, mysqlRowIsReferencedFull:
			return true
		}
		return false
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func rollback(tx *sqlx.Tx) {
	_ = tx.Rollback()
}
