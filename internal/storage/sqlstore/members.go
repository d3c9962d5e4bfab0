package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/nextstep/gift/internal/domain/members"
)

var memberColumns = []string{"id", "email", "password_hash", "point", "kakao_access_token", "created_at", "updated_at"}

type memberRow struct {
	ID               int64     `db:"id"`
	Email            string    `db:"email"`
	PasswordHash     string    `db:"password_hash"`
	Point            int64     `db:"point"`
	KakaoAccessToken string    `db:"kakao_access_token"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (r memberRow) toDomain() members.Member {
	return members.Member{
		ID:               r.ID,
		Email:            r.Email,
		PasswordHash:     r.PasswordHash,
		Point:            r.Point,
		KakaoAccessToken: r.KakaoAccessToken,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// MemberRepository persists members.
type MemberRepository struct {
	base
}

// NewMemberRepository constructs a SQL-backed member repository.
func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{base: newBase(db)}
}

func (r *MemberRepository) FindByID(ctx context.Context, id int64) (members.Member, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *MemberRepository) FindByEmail(ctx context.Context, email string) (members.Member, error) {
	return r.findOne(ctx, sq.Eq{"email": email})
}

func (r *MemberRepository) findOne(ctx context.Context, where sq.Eq) (members.Member, error) {
	var row memberRow
	err := get(ctx, r.db, &row, r.sb.Select(memberColumns...).From("members").Where(where))
	if errors.Is(err, sql.ErrNoRows) {
		return members.Member{}, members.ErrNotFound
	}
	if err != nil {
		return members.Member{}, fmt.Errorf("select member: %w", err)
	}
	return row.toDomain(), nil
}

func (r *MemberRepository) List(ctx context.Context) ([]members.Member, error) {
	var rows []memberRow
	if err := selectAll(ctx, r.db, &rows, r.sb.Select(memberColumns...).From("members").OrderBy("id")); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	out := make([]members.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MemberRepository) Save(ctx context.Context, member members.Member) (members.Member, error) {
	ts := now()
	if member.ID == 0 {
		id, err := insertID(ctx, r.db, r.sb.Insert("members").
			Columns("email", "password_hash", "point", "kakao_access_token", "created_at", "updated_at").
			Values(member.Email, member.PasswordHash, member.Point, member.KakaoAccessToken, ts, ts))
		if err != nil {
			if isUniqueViolation(err) {
				return members.Member{}, members.ErrEmailExists
			}
			return members.Member{}, fmt.Errorf("insert member: %w", err)
		}
		member.ID = id
		member.CreatedAt = ts
		member.UpdatedAt = ts
		return member, nil
	}

	res, err := exec(ctx, r.db, r.sb.Update("members").
		Set("email", member.Email).
		Set("password_hash", member.PasswordHash).
		Set("kakao_access_token", member.KakaoAccessToken).
		Set("updated_at", ts).
		Where(sq.Eq{"id": member.ID}))
	if err != nil {
		if isUniqueViolation(err) {
			return members.Member{}, members.ErrEmailExists
		}
		return members.Member{}, fmt.Errorf("update member: %w", err)
	}
	if n, err := rowsAffected(res); err != nil {
		return members.Member{}, err
	} else if n == 0 {
		return members.Member{}, members.ErrNotFound
	}
	// point is only moved by ChargePoint/DeductPoint
	return r.FindByID(ctx, member.ID)
}

func (r *MemberRepository) Delete(ctx context.Context, id int64) error {
	if _, err := exec(ctx, r.db, r.sb.Delete("members").Where(sq.Eq{"id": id})); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

// ChargePoint adds in a single conditional UPDATE that refuses to push the
// balance past math.MaxInt64.
func (r *MemberRepository) ChargePoint(ctx context.Context, id, amount int64) (members.Member, error) {
	if amount <= 0 {
		var m members.Member
		return members.Member{}, m.ChargePoint(amount)
	}
	res, err := exec(ctx, r.db, r.sb.Update("members").
		Set("point", sq.Expr("point + ?", amount)).
		Set("updated_at", now()).
		Where(sq.Eq{"id": id}).
		Where(sq.LtOrEq{"point": int64(math.MaxInt64) - amount}))
	if err != nil {
		return members.Member{}, fmt.Errorf("charge point: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return members.Member{}, err
	}
	if n == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return members.Member{}, err
		}
		return members.Member{}, members.ErrPointOverflow
	}
	return r.FindByID(ctx, id)
}

// DeductPoint subtracts in a single conditional UPDATE so concurrent orders
// can never drive the balance negative.
func (r *MemberRepository) DeductPoint(ctx context.Context, id, amount int64) (members.Member, error) {
	res, err := exec(ctx, r.db, r.sb.Update("members").
		Set("point", sq.Expr("point - ?", amount)).
		Set("updated_at", now()).
		Where(sq.Eq{"id": id}).
		Where(sq.GtOrEq{"point": amount}))
	if err != nil {
		return members.Member{}, fmt.Errorf("deduct point: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return members.Member{}, err
	}
	if n == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return members.Member{}, err
		}
		return members.Member{}, members.ErrInsufficientPoints
	}
	return r.FindByID(ctx, id)
}
