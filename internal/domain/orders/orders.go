package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nextstep/gift/internal/domain/members"
	"github.com/nextstep/gift/internal/domain/options"
	"github.com/nextstep/gift/internal/domain/page"
	"github.com/nextstep/gift/internal/domain/products"
	"github.com/nextstep/gift/internal/domain/validation"
)

var (
	ErrNotImplemented = errors.New("orders repository: not implemented")
	ErrNotFound       = errors.New("order not found")
)

// MessageMaxLength bounds the gift message attached to an order.
const MessageMaxLength = 255

// Order records one gift purchase of an option.
type Order struct {
	ID        int64
	OptionID  int64
	MemberID  int64
	Quantity  int64
	Message   string
	OrderedAt time.Time
}

// Repository abstracts order persistence.
type Repository interface {
	FindByID(ctx context.Context, id int64) (Order, error)
	ListByMember(ctx context.Context, memberID int64, req page.Request) (page.Page[Order], error)
	Save(ctx context.Context, order Order) (Order, error)
}

// NullRepository returns ErrNotImplemented for all operations.
type NullRepository struct{}

func (NullRepository) FindByID(context.Context, int64) (Order, error) {
	return Order{}, ErrNotImplemented
}

func (NullRepository) ListByMember(context.Context, int64, page.Request) (page.Page[Order], error) {
	return page.Page[Order]{}, ErrNotImplemented
}

func (NullRepository) Save(context.Context, Order) (Order, error) {
	return Order{}, ErrNotImplemented
}

// StockKeeper moves option stock.
type StockKeeper interface {
	SubtractQuantity(ctx context.Context, id, quantity int64) (options.Option, error)
	AddQuantity(ctx context.Context, id, quantity int64) (options.Option, error)
}

// PointKeeper moves member point balances.
type PointKeeper interface {
	DeductPoint(ctx context.Context, id, amount int64) (members.Member, error)
	ChargePoint(ctx context.Context, id, amount int64) (members.Member, error)
}

// ProductFinder resolves the product behind an option.
type ProductFinder interface {
	Get(ctx context.Context, id int64) (products.Product, error)
}

// Placement describes a successfully placed order.
type Placement struct {
	Member  members.Member
	Order   Order
	Option  options.Option
	Product products.Product
	// Total is the point amount deducted for the order.
	Total int64
}

// Total multiplies a unit price by a quantity, rejecting products that do
// not fit in an int64 point balance.
func Total(price, quantity int64) (int64, error) {
	if price < 0 || quantity < 0 {
		return 0, validation.New("Price and quantity must not be negative.")
	}
	if price > 0 && quantity > math.MaxInt64/price {
		return 0, validation.New("Order total is too large.")
	}
	return price * quantity, nil
}

// Notifier is told about placed orders. Implementations must not block the
// order flow on failure.
type Notifier interface {
	OrderPlaced(ctx context.Context, placement Placement)
}

// NoopNotifier ignores every placement.
type NoopNotifier struct{}

func (NoopNotifier) OrderPlaced(context.Context, Placement) {}

// PlaceInput describes a gift purchase.
type PlaceInput struct {
	OptionID int64
	Quantity int64
	Message  string
}

func (in PlaceInput) validate() error {
	var msgs []string
	if in.OptionID <= 0 {
		msgs = append(msgs, "Option id is required.")
	}
	if in.Quantity <= 0 {
		msgs = append(msgs, "Quantity must be greater than zero.")
	}
	if len([]rune(in.Message)) > MessageMaxLength {
		msgs = append(msgs, fmt.Sprintf("Message must be at most %d characters.", MessageMaxLength))
	}
	if len(msgs) > 0 {
		return validation.New(msgs...)
	}
	return nil
}

// Service places and lists orders.
type Service interface {
	Place(ctx context.Context, memberID int64, input PlaceInput) (Order, error)
	ListByMember(ctx context.Context, memberID int64, req page.Request) (page.Page[Order], error)
}

// Options wires the collaborators of the order service.
type Options struct {
	Repo     Repository
	Stock    StockKeeper
	Points   PointKeeper
	Products ProductFinder
	Notifier Notifier
	Now      func() time.Time
}

// NewService builds an order service.
func NewService(opts Options) Service {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     opts.Repo,
		stock:    opts.Stock,
		points:   opts.Points,
		products: opts.Products,
		notifier: notifier,
		now:      now,
	}
}

type service struct {
	repo     Repository
	stock    StockKeeper
	points   PointKeeper
	products ProductFinder
	notifier Notifier
	now      func() time.Time
}

// Place subtracts stock, then deducts points, then stores the order. A
// failing step undoes the earlier ones.
func (s *service) Place(ctx context.Context, memberID int64, input PlaceInput) (Order, error) {
	input.Message = strings.TrimSpace(input.Message)
	if err := input.validate(); err != nil {
		return Order{}, err
	}

	option, err := s.stock.SubtractQuantity(ctx, input.OptionID, input.Quantity)
	if err != nil {
		return Order{}, err
	}

	product, err := s.products.Get(ctx, option.ProductID)
	if err != nil {
		return Order{}, s.restoreStock(ctx, option.ID, input.Quantity, err)
	}

	price, err := Total(product.Price, input.Quantity)
	if err != nil {
		return Order{}, s.restoreStock(ctx, option.ID, input.Quantity, err)
	}
	member, err := s.points.DeductPoint(ctx, memberID, price)
	if err != nil {
		return Order{}, s.restoreStock(ctx, option.ID, input.Quantity, err)
	}

	saved, err := s.repo.Save(ctx, Order{
		OptionID:  option.ID,
		MemberID:  memberID,
		Quantity:  input.Quantity,
		Message:   input.Message,
		OrderedAt: s.now().UTC(),
	})
	if err != nil {
		if _, rerr := s.points.ChargePoint(ctx, memberID, price); rerr != nil {
			err = errors.Join(err, fmt.Errorf("refund points: %w", rerr))
		}
		return Order{}, s.restoreStock(ctx, option.ID, input.Quantity, err)
	}

	s.notifier.OrderPlaced(ctx, Placement{
		Member:  member,
		Order:   saved,
		Option:  option,
		Product: product,
		Total:   price,
	})

	return saved, nil
}

func (s *service) ListByMember(ctx context.Context, memberID int64, req page.Request) (page.Page[Order], error) {
	return s.repo.ListByMember(ctx, memberID, req)
}

func (s *service) restoreStock(ctx context.Context, optionID, quantity int64, cause error) error {
	if _, err := s.stock.AddQuantity(ctx, optionID, quantity); err != nil {
		return errors.Join(cause, fmt.Errorf("restore stock: %w", err))
	}
	return cause
}
