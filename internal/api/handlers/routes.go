package handlers

import (
	"delivery-dispatch-service/internal/api/dto"
	"delivery-dispatch-service/internal/domain"
	"fmt"
	"net/http"
)

type RouteHandler struct {
	Assigner RouteAssigner
}

// Assign sequences the given orders into the driver's active route, or a new one.
func (h *RouteHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req dto.AssignRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.DriverID <= 0 {
		writeError(w, r, http.StatusBadRequest, "driver_id is required")
		return
	}
	if len(req.OrderIDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "order_ids must not be empty")
		return
	}
	if len(req.OrderIDs) > domain.MaxOrdersPerAssignment {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("order_ids accepts at most %d ids", domain.MaxOrdersPerAssignment))
		return
	}

	summary, err := h.Assigner.AssignRoute(r.Context(), req.DriverID, req.OrderIDs)
	if err != nil {
		writeServiceError(w, r, "assign route", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.AssignRouteResponse{
		RouteID:  summary.RouteID,
		Message:  summary.Message,
		Merged:   summary.Merged,
		OrderIDs: summary.OrderIDs,
	})
}
