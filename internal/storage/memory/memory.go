// Package memory provides map-backed repositories for development and tests.
package memory

import "github.com/nextstep/gift/internal/domain"

// NewDomainOptions returns a full set of in-memory repositories with product
// deletes cascading to options and wishes, and category deletes refused while
// products remain.
func NewDomainOptions() domain.Options {
	optionRepo := NewOptionRepository()
	wishRepo := NewWishRepository()
	productRepo := NewProductRepository(optionRepo, wishRepo)

	return domain.Options{
		MemberRepo:   NewMemberRepository(),
		CategoryRepo: NewCategoryRepository(productRepo),
		ProductRepo:  productRepo,
		OptionRepo:   optionRepo,
		WishRepo:     wishRepo,
		OrderRepo:    NewOrderRepository(),
	}
}
