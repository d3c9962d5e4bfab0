package httpapi

import (
	"fmt"
	"net/http"

	"github.com/nextstep/gift/internal/domain/options"
)

type optionRequest struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

type optionResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

func newOptionResponse(o options.Option) optionResponse {
	return optionResponse{ID: o.ID, Name: o.Name, Quantity: o.Quantity}
}

func (a *api) listOptions(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	list, err := a.domain.Options.ListByProduct(r.Context(), productID)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	out := make([]optionResponse, 0, len(list))
	for _, o := range list {
		out = append(out, newOptionResponse(o))
	}
	respondJSON(w, http.StatusOK, out)
}

func (a *api) createOption(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	var req optionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	created, err := a.domain.Options.Create(r.Context(), productID, options.Input{
		Name:     req.Name,
		Quantity: req.Quantity,
	})
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/products/%d/options/%d", productID, created.ID))
	respondJSON(w, http.StatusCreated, newOptionResponse(created))
}

func (a *api) deleteOption(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	optionID, err := pathID(r, "optionId")
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	if err := a.domain.Options.Delete(r.Context(), productID, optionID); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
