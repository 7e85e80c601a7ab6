package handlers

import (
	"delivery-dispatch-service/internal/api/dto"
	"delivery-dispatch-service/internal/domain"
	"net/http"
	"strings"
)

type OrderHandler struct {
	Orders  OrderLister
	Updater OrderStatusUpdater
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter *domain.OrderStatus
	if s := strings.TrimSpace(r.URL.Query().Get("status")); s != "" {
		status, err := domain.ParseOrderStatus(s)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "status must be one of pending, en_route, delivered")
			return
		}
		filter = &status
	}

	orders, err := h.Orders.ListOrders(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, "list orders", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ListOrdersResponse{Orders: dto.NewOrderResponses(orders)})
}

// UpdateStatus is the only write path for order status. Delivering the last
// open order of a route frees its driver.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		writeError(w, r, http.StatusBadRequest, "status is required")
		return
	}

	update, err := h.Updater.UpdateStatus(r.Context(), id, strings.TrimSpace(req.Status))
	if err != nil {
		writeServiceError(w, r, "update order status", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.UpdateOrderStatusResponse{
		Order:          dto.NewOrderResponse(update.Order),
		DriverReleased: update.DriverReleased,
	})
}
