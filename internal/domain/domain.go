package domain

import (
	"github.com/nextstep/gift/internal/domain/categories"
	"github.com/nextstep/gift/internal/domain/members"
	"github.com/nextstep/gift/internal/domain/options"
	"github.com/nextstep/gift/internal/domain/orders"
	"github.com/nextstep/gift/internal/domain/products"
	"github.com/nextstep/gift/internal/domain/wishes"
)

// Container wires domain services together.
type Container struct {
	Members    members.Service
	Categories categories.Service
	Products   products.Service
	Options    options.Service
	Wishes     wishes.Service
	Orders     orders.Service
}

// Options configures the domain container.
type Options struct {
	MemberRepo   members.Repository
	CategoryRepo categories.Repository
	ProductRepo  products.Repository
	OptionRepo   options.Repository
	WishRepo     wishes.Repository
	OrderRepo    orders.Repository

	Notifier orders.Notifier
}

// New constructs a domain container with provided repositories.
func New(opts Options) Container {
	memberRepo := opts.MemberRepo
	if memberRepo == nil {
		memberRepo = members.NullRepository{}
	}

	categoryRepo := opts.CategoryRepo
	if categoryRepo == nil {
		categoryRepo = categories.NullRepository{}
	}

	productRepo := opts.ProductRepo
	if productRepo == nil {
		productRepo = products.NullRepository{}
	}

	optionRepo := opts.OptionRepo
	if optionRepo == nil {
		optionRepo = options.NullRepository{}
	}

	wishRepo := opts.WishRepo
	if wishRepo == nil {
		wishRepo = wishes.NullRepository{}
	}

	orderRepo := opts.OrderRepo
	if orderRepo == nil {
		orderRepo = orders.NullRepository{}
	}

	memberSvc := members.NewService(memberRepo)
	categorySvc := categories.NewService(categoryRepo)
	productSvc := products.NewService(productRepo, categorySvc)
	optionSvc := options.NewService(optionRepo, productSvc)

	return Container{
		Members:    memberSvc,
		Categories: categorySvc,
		Products:   productSvc,
		Options:    optionSvc,
		Wishes:     wishes.NewService(wishRepo, productSvc),
		Orders: orders.NewService(orders.Options{
			Repo:     orderRepo,
			Stock:    optionSvc,
			Points:   memberSvc,
			Products: productSvc,
			Notifier: opts.Notifier,
		}),
	}
}
