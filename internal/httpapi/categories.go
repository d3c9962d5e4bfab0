package httpapi

import (
	"net/http"

	"github.com/nextstep/gift/internal/domain/categories"
)

type categoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Color       string `json:"color" validate:"required"`
	ImageURL    string `json:"imageUrl" validate:"required"`
	Description string `json:"description"`
}

func (req categoryRequest) input() categories.Input {
	return categories.Input{
		Name:        req.Name,
		Color:       req.Color,
		ImageURL:    req.ImageURL,
		Description: req.Description,
	}
}

type categoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description"`
}

func newCategoryResponse(c categories.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Color:       c.Color,
		ImageURL:    c.ImageURL,
		Description: c.Description,
	}
}

func (a *api) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := a.domain.Categories.List(r.Context())
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	out := make([]categoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, newCategoryResponse(c))
	}
	respondJSON(w, http.StatusOK, out)
}

func (a *api) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	created, err := a.domain.Categories.Create(r.Context(), req.input())
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, newCategoryResponse(created))
}

func (a *api) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	updated, err := a.domain.Categories.Update(r.Context(), id, req.input())
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newCategoryResponse(updated))
}

func (a *api) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	if err := a.domain.Categories.Delete(r.Context(), id); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
