package dto

import (
	"delivery-dispatch-service/internal/domain"
	"time"
)

type DriverResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	VehiclePlate string `json:"vehicle_plate"`
	Status       string `json:"status"`
}

func NewDriverResponse(d *domain.Driver) *DriverResponse {
	return &DriverResponse{
		ID:           d.ID,
		Name:         d.Name,
		Phone:        d.Phone,
		VehiclePlate: d.VehiclePlate,
		Status:       string(d.Status),
	}
}

type HistoryResponse struct {
	Orders []OrderResponse `json:"orders"`
}

type IncidentRequest struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

type IncidentResponse struct {
	ID          int64     `json:"id"`
	DriverID    int64     `json:"driver_id"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	ReportedAt  time.Time `json:"reported_at"`
}
