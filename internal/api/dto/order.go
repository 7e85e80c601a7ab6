package dto

import (
	"delivery-dispatch-service/internal/domain"
	"time"
)

type OrderResponse struct {
	ID            int64      `json:"id"`
	Status        string     `json:"status"`
	Lat           *float64   `json:"lat"`
	Lon           *float64   `json:"lon"`
	Address       string     `json:"address"`
	RouteID       *int64     `json:"route_id"`
	CreatedAt     time.Time  `json:"created_at"`
	DeliveredAt   *time.Time `json:"delivered_at"`
	CustomerName  string     `json:"customer_name,omitempty"`
	CustomerPhone string     `json:"customer_phone,omitempty"`
}

type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type UpdateOrderStatusResponse struct {
	Order          OrderResponse `json:"order"`
	DriverReleased bool          `json:"driver_released"`
}

func NewOrderResponse(o *domain.Order) OrderResponse {
	res := OrderResponse{
		ID:          o.ID,
		Status:      string(o.Status),
		Address:     o.Address,
		RouteID:     o.RouteID,
		CreatedAt:   o.CreatedAt,
		DeliveredAt: o.DeliveredAt,
	}
	if o.Location != nil {
		lat, lon := o.Location.Lat, o.Location.Lon
		res.Lat, res.Lon = &lat, &lon
	}
	if o.Customer != nil {
		res.CustomerName = o.Customer.Name
		res.CustomerPhone = o.Customer.Phone
		if res.Address == "" {
			res.Address = o.Customer.Address
		}
	}
	return res
}

func NewOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrderResponse(o))
	}
	return out
}
