package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nextstep/gift/internal/auth"
	"github.com/nextstep/gift/internal/domain/orders"
	"github.com/nextstep/gift/internal/domain/page"
)

type orderRequest struct {
	OptionID int64  `json:"optionId" validate:"required"`
	Quantity int64  `json:"quantity" validate:"gte=1"`
	Message  string `json:"message"`
}

type orderResponse struct {
	ID            int64     `json:"id"`
	OptionID      int64     `json:"optionId"`
	Quantity      int64     `json:"quantity"`
	Message       string    `json:"message,omitempty"`
	OrderDateTime time.Time `json:"orderDateTime"`
}

func newOrderResponse(o orders.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		OptionID:      o.OptionID,
		Quantity:      o.Quantity,
		Message:       o.Message,
		OrderDateTime: o.OrderedAt,
	}
}

func (a *api) listOrders(w http.ResponseWriter, r *http.Request) {
	member, _ := auth.MemberFromContext(r.Context())
	req, err := pageRequest(r, nil)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	result, err := a.domain.Orders.ListByMember(r.Context(), member.ID, req)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, page.Map(result, newOrderResponse))
}

func (a *api) placeOrder(w http.ResponseWriter, r *http.Request) {
	member, _ := auth.MemberFromContext(r.Context())
	var req orderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	order, err := a.domain.Orders.Place(r.Context(), member.ID, orders.PlaceInput{
		OptionID: req.OptionID,
		Quantity: req.Quantity,
		Message:  req.Message,
	})
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	a.logger.Info("order placed", "order_id", order.ID, "member_id", member.ID, "option_id", order.OptionID)
	w.Header().Set("Location", fmt.Sprintf("/api/orders/%d", order.ID))
	respondJSON(w, http.StatusCreated, newOrderResponse(order))
}
