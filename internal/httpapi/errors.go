package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nextstep/gift/internal/auth"
	"github.com/nextstep/gift/internal/domain/categories"
	"github.com/nextstep/gift/internal/domain/members"
	"github.com/nextstep/gift/internal/domain/options"
	"github.com/nextstep/gift/internal/domain/orders"
	"github.com/nextstep/gift/internal/domain/products"
	"github.com/nextstep/gift/internal/domain/validation"
	"github.com/nextstep/gift/internal/domain/wishes"
)

type errorMapping struct {
	target  error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{members.ErrEmailExists, http.StatusBadRequest, "Email is already registered."},
	{members.ErrInvalidCredentials, http.StatusBadRequest, "Invalid email or password."},
	{members.ErrInsufficientPoints, http.StatusBadRequest, "Insufficient points."},
	{options.ErrDuplicateName, http.StatusBadRequest, "Option name already exists."},
	{options.ErrLastOption, http.StatusBadRequest, "Cannot delete the last option of a product."},
	{options.ErrInsufficientStock, http.StatusBadRequest, "Insufficient stock."},
	{categories.ErrInUse, http.StatusBadRequest, "Category still has products."},

	{members.ErrNotFound, http.StatusNotFound, "Member not found."},
	{categories.ErrNotFound, http.StatusNotFound, "Category not found."},
	{products.ErrNotFound, http.StatusNotFound, "Product not found."},
	{options.ErrNotFound, http.StatusNotFound, "Option not found."},
	{wishes.ErrNotFound, http.StatusNotFound, "Wish not found."},
	{orders.ErrNotFound, http.StatusNotFound, "Order not found."},
}

// writeError translates domain errors into responses. Unknown errors are
// logged and answered with 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		respondError(w, http.StatusBadRequest, verr.Error())
		return
	}

	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		w.WriteHeader(http.StatusUnauthorized)
		return
	case errors.Is(err, wishes.ErrForbidden):
		w.WriteHeader(http.StatusForbidden)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			respondError(w, m.status, m.message)
			return
		}
	}

	logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	respondError(w, http.StatusInternalServerError, "Internal server error.")
}
