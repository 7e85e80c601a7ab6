package handlers

import (
	"delivery-dispatch-service/internal/api/dto"
	"net/http"
)

type DriverHandler struct {
	Drivers DriverViews
}

func (h *DriverHandler) CurrentRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.Drivers.CurrentRoute(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "current route", err)
		return
	}

	res := dto.DriverRouteResponse{
		RouteID: view.RouteID,
		Message: view.Message,
	}
	if len(view.Orders) > 0 {
		res.Driver = dto.NewDriverResponse(view.Driver)
		res.Origin = &dto.CoordinatesResponse{Lat: view.Origin.Lat, Lon: view.Origin.Lon}
		res.Orders = dto.NewOrderResponses(view.Orders)
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *DriverHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	orders, err := h.Drivers.DeliveryHistory(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "delivery history", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.HistoryResponse{Orders: dto.NewOrderResponses(orders)})
}

func (h *DriverHandler) ReportIncident(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.IncidentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	inc, err := h.Drivers.ReportIncident(r.Context(), id, req.Kind, req.Description)
	if err != nil {
		writeServiceError(w, r, "report incident", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.IncidentResponse{
		ID:          inc.ID,
		DriverID:    inc.DriverID,
		Kind:        inc.Kind,
		Description: inc.Description,
		ReportedAt:  inc.ReportedAt,
	})
}
