// Package httpapi exposes the gift shop JSON API under /api.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nextstep/gift/internal/auth"
	"github.com/nextstep/gift/internal/domain"
)

// Deps are the collaborators of the API handlers.
type Deps struct {
	Logger   *slog.Logger
	Domain   domain.Container
	Auth     *auth.Service
	Resolver *auth.Resolver

	// Kakao enables the Kakao login endpoints when set.
	Kakao KakaoLogin
	// RateLimit wraps every API route when set.
	RateLimit func(http.Handler) http.Handler
}

type api struct {
	logger   *slog.Logger
	domain   domain.Container
	auth     *auth.Service
	resolver *auth.Resolver
	kakao    KakaoLogin
}

// Register attaches API routes to the provided router.
func Register(r chi.Router, deps Deps) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &api{
		logger:   logger,
		domain:   deps.Domain,
		auth:     deps.Auth,
		resolver: deps.Resolver,
		kakao:    deps.Kakao,
	}

	r.Route("/api", func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit)
		}

		r.Post("/members/register", a.register)
		r.Post("/members/login", a.login)

		if a.kakao != nil {
			r.Get("/auth/kakao/login", a.kakaoLogin)
			r.Get("/auth/kakao/callback", a.kakaoCallback)
		}

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", a.listCategories)
			r.Post("/", a.createCategory)
			r.Put("/{id}", a.updateCategory)
			r.Delete("/{id}", a.deleteCategory)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", a.listProducts)
			r.Post("/", a.createProduct)
			r.Get("/{id}", a.getProduct)
			r.Put("/{id}", a.updateProduct)
			r.Delete("/{id}", a.deleteProduct)

			r.Route("/{productId}/options", func(r chi.Router) {
				r.Get("/", a.listOptions)
				r.Post("/", a.createOption)
				r.Delete("/{optionId}", a.deleteOption)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(a.resolver.Middleware)

			r.Get("/wishes", a.listWishes)
			r.Post("/wishes", a.addWish)
			r.Delete("/wishes/{id}", a.removeWish)

			r.Get("/orders", a.listOrders)
			r.Post("/orders", a.placeOrder)
		})
	})
}
