package orders_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/nextstep/gift/internal/domain"
	"github.com/nextstep/gift/internal/domain/categories"
	"github.com/nextstep/gift/internal/domain/members"
	"github.com/nextstep/gift/internal/domain/options"
	"github.com/nextstep/gift/internal/domain/orders"
	"github.com/nextstep/gift/internal/domain/page"
	"github.com/nextstep/gift/internal/domain/products"
	"github.com/nextstep/gift/internal/domain/validation"
	"github.com/nextstep/gift/internal/storage/memory"
)

type recordingNotifier struct {
	mu         sync.Mutex
	placements []orders.Placement
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, p orders.Placement) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placements = append(n.placements, p)
}

type failingOrderRepository struct {
	orders.NullRepository
}

func (failingOrderRepository) Save(context.Context, orders.Order) (orders.Order, error) {
	return orders.Order{}, errors.New("disk full")
}

type fixture struct {
	c        domain.Container
	member   members.Member
	option   options.Option
	notifier *recordingNotifier
}

func setup(t *testing.T, opts domain.Options) fixture {
	t.Helper()
	ctx := context.Background()

	notifier := &recordingNotifier{}
	opts.Notifier = notifier
	c := domain.New(opts)

	category, err := c.Categories.Create(ctx, categories.Input{Name: "교환권", Color: "#fff", ImageURL: "https://example.com/c.png"})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product, err := c.Products.Create(ctx, products.Input{Name: "Americano", Price: 4500, ImageURL: "https://example.com/p.png", CategoryID: category.ID})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	option, err := c.Options.Create(ctx, product.ID, options.Input{Name: "Tall", Quantity: 10})
	if err != nil {
		t.Fatalf("create option failed: %v", err)
	}
	member, err := c.Members.Create(ctx, "sender@test.com", "pw")
	if err != nil {
		t.Fatalf("create member failed: %v", err)
	}
	if member, err = c.Members.ChargePoint(ctx, member.ID, 10000); err != nil {
		t.Fatalf("charge failed: %v", err)
	}

	return fixture{c: c, member: member, option: option, notifier: notifier}
}

func TestPlaceSubtractsStockAndPoints(t *testing.T) {
	ctx := context.Background()
	f := setup(t, memory.NewDomainOptions())

	order, err := f.c.Orders.Place(ctx, f.member.ID, orders.PlaceInput{OptionID: f.option.ID, Quantity: 2, Message: "  happy birthday "})
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}
	if order.ID == 0 || order.Message != "happy birthday" || order.OrderedAt.IsZero() {
		t.Fatalf("unexpected order: %+v", order)
	}

	opt, _ := f.c.Options.Get(ctx, f.option.ID)
	if opt.Quantity != 8 {
		t.Fatalf("expected 8 left in stock, got %d", opt.Quantity)
	}
	m, _ := f.c.Members.Get(ctx, f.member.ID)
	if m.Point != 1000 {
		t.Fatalf("expected 1000 points left, got %d", m.Point)
	}

	if len(f.notifier.placements) != 1 {
		t.Fatalf("expected one notification, got %d", len(f.notifier.placements))
	}
	if p := f.notifier.placements[0]; p.Product.Name != "Americano" || p.Order.ID != order.ID || p.Total != 9000 {
		t.Fatalf("unexpected placement: %+v", p)
	}

	list, err := f.c.Orders.ListByMember(ctx, f.member.ID, page.Of(0, 10))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list.Content) != 1 {
		t.Fatalf("expected 1 order, got %d", len(list.Content))
	}
}

func TestPlaceRestoresStockWhenPointsRunShort(t *testing.T) {
	ctx := context.Background()
	f := setup(t, memory.NewDomainOptions())

	_, err := f.c.Orders.Place(ctx, f.member.ID, orders.PlaceInput{OptionID: f.option.ID, Quantity: 3})
	if !errors.Is(err, members.ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}

	opt, _ := f.c.Options.Get(ctx, f.option.ID)
	if opt.Quantity != 10 {
		t.Fatalf("expected stock restored to 10, got %d", opt.Quantity)
	}
	if len(f.notifier.placements) != 0 {
		t.Fatalf("expected no notification")
	}
}

func TestPlaceRejectsTotalBeyondInt64(t *testing.T) {
	ctx := context.Background()
	opts := memory.NewDomainOptions()
	f := setup(t, opts)

	// a stored row priced past the create-time bound
	product, err := f.c.Products.Get(ctx, f.option.ProductID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	product.Price = math.MaxInt64 / 2
	if _, err := opts.ProductRepo.Save(ctx, product); err != nil {
		t.Fatalf("save product failed: %v", err)
	}

	_, err = f.c.Orders.Place(ctx, f.member.ID, orders.PlaceInput{OptionID: f.option.ID, Quantity: 3})
	if !validation.IsError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	opt, _ := f.c.Options.Get(ctx, f.option.ID)
	if opt.Quantity != 10 {
		t.Fatalf("expected stock restored to 10, got %d", opt.Quantity)
	}
	m, _ := f.c.Members.Get(ctx, f.member.ID)
	if m.Point != 10000 {
		t.Fatalf("expected points untouched, got %d", m.Point)
	}
	if len(f.notifier.placements) != 0 {
		t.Fatalf("expected no notification")
	}
}

func TestTotal(t *testing.T) {
	if total, err := orders.Total(4500, 2); err != nil || total != 9000 {
		t.Fatalf("expected 9000, got %d (%v)", total, err)
	}
	if _, err := orders.Total(math.MaxInt64/2, 3); !validation.IsError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if total, err := orders.Total(0, math.MaxInt64); err != nil || total != 0 {
		t.Fatalf("expected 0, got %d (%v)", total, err)
	}
}

func TestPlaceRejectsInsufficientStockAndUnknownOption(t *testing.T) {
	ctx := context.Background()
	f := setup(t, memory.NewDomainOptions())

	if _, err := f.c.Orders.Place(ctx, f.member.ID, orders.PlaceInput{OptionID: f.option.ID, Quantity: 11}); !errors.Is(err, options.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if _, err := f.c.Orders.Place(ctx, f.member.ID, orders.PlaceInput{OptionID: 99, Quantity: 1}); !errors.Is(err, options.ErrNotFound) {
		t.Fatalf("expected options.ErrNotFound, got %v", err)
	}
	if _, err := f.c.Orders.Place(ctx, f.member.ID, orders.PlaceInput{OptionID: f.option.ID}); !validation.IsError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	m, _ := f.c.Members.Get(ctx, f.member.ID)
	if m.Point != 10000 {
		t.Fatalf("points must be untouched, got %d", m.Point)
	}
}

func TestPlaceUndoesEverythingWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	opts := memory.NewDomainOptions()
	opts.OrderRepo = failingOrderRepository{}
	f := setup(t, opts)

	if _, err := f.c.Orders.Place(ctx, f.member.ID, orders.PlaceInput{OptionID: f.option.ID, Quantity: 1}); err == nil {
		t.Fatalf("expected save failure")
	}

	opt, _ := f.c.Options.Get(ctx, f.option.ID)
	if opt.Quantity != 10 {
		t.Fatalf("expected stock restored, got %d", opt.Quantity)
	}
	m, _ := f.c.Members.Get(ctx, f.member.ID)
	if m.Point != 10000 {
		t.Fatalf("expected points refunded, got %d", m.Point)
	}
}

func TestPlaceUsesInjectedClock(t *testing.T) {
	ctx := context.Background()
	opts := memory.NewDomainOptions()
	f := setup(t, opts)

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := orders.NewService(orders.Options{
		Repo:     opts.OrderRepo,
		Stock:    f.c.Options,
		Points:   f.c.Members,
		Products: f.c.Products,
		Now:      func() time.Time { return fixed },
	})

	order, err := svc.Place(ctx, f.member.ID, orders.PlaceInput{OptionID: f.option.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}
	if !order.OrderedAt.Equal(fixed) {
		t.Fatalf("expected %v, got %v", fixed, order.OrderedAt)
	}
}
