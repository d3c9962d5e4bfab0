package httpapi

import (
	"fmt"
	"net/http"

	"github.com/nextstep/gift/internal/auth"
	"github.com/nextstep/gift/internal/domain/page"
	"github.com/nextstep/gift/internal/domain/wishes"
)

type wishRequest struct {
	ProductID int64 `json:"productId" validate:"required"`
}

type wishResponse struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	ImageURL  string `json:"imageUrl"`
}

func newWishResponse(d wishes.Detail) wishResponse {
	return wishResponse{
		ID:        d.Wish.ID,
		ProductID: d.Wish.ProductID,
		Name:      d.Product.Name,
		Price:     d.Product.Price,
		ImageURL:  d.Product.ImageURL,
	}
}

func (a *api) listWishes(w http.ResponseWriter, r *http.Request) {
	member, _ := auth.MemberFromContext(r.Context())
	req, err := pageRequest(r, nil)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	result, err := a.domain.Wishes.List(r.Context(), member.ID, req)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, page.Map(result, newWishResponse))
}

func (a *api) addWish(w http.ResponseWriter, r *http.Request) {
	member, _ := auth.MemberFromContext(r.Context())
	var req wishRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	detail, created, err := a.domain.Wishes.Add(r.Context(), member.ID, req.ProductID)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	if !created {
		respondJSON(w, http.StatusOK, newWishResponse(detail))
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/wishes/%d", detail.Wish.ID))
	respondJSON(w, http.StatusCreated, newWishResponse(detail))
}

func (a *api) removeWish(w http.ResponseWriter, r *http.Request) {
	member, _ := auth.MemberFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	if err := a.domain.Wishes.Remove(r.Context(), member.ID, id); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
