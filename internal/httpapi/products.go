package httpapi

import (
	"net/http"

	"github.com/nextstep/gift/internal/domain/page"
	"github.com/nextstep/gift/internal/domain/products"
)

// Name rules are enforced by the product service so that the admin pages
// report the same messages.
type productRequest struct {
	Name       string `json:"name"`
	Price      int64  `json:"price" validate:"gt=0,lte=2147483647"`
	ImageURL   string `json:"imageUrl" validate:"required"`
	CategoryID int64  `json:"categoryId" validate:"required"`
}

func (req productRequest) input() products.Input {
	return products.Input{
		Name:       req.Name,
		Price:      req.Price,
		ImageURL:   req.ImageURL,
		CategoryID: req.CategoryID,
	}
}

type productResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	ImageURL   string `json:"imageUrl"`
	CategoryID int64  `json:"categoryId"`
}

func newProductResponse(p products.Product) productResponse {
	return productResponse{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		ImageURL:   p.ImageURL,
		CategoryID: p.CategoryID,
	}
}

func (a *api) listProducts(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r, products.SortColumns)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	result, err := a.domain.Products.List(r.Context(), req)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, page.Map(result, newProductResponse))
}

func (a *api) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	product, err := a.domain.Products.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newProductResponse(product))
}

func (a *api) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	created, err := a.domain.Products.Create(r.Context(), req.input())
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, newProductResponse(created))
}

func (a *api) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	updated, err := a.domain.Products.Update(r.Context(), id, req.input())
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newProductResponse(updated))
}

func (a *api) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	if err := a.domain.Products.Delete(r.Context(), id); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
