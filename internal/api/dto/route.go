package dto

type AssignRouteRequest struct {
	DriverID int64   `json:"driver_id"`
	OrderIDs []int64 `json:"order_ids"`
}

type AssignRouteResponse struct {
	RouteID  int64   `json:"route_id"`
	Message  string  `json:"message"`
	Merged   bool    `json:"merged"`
	OrderIDs []int64 `json:"order_ids"`
}

type CoordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DriverRouteResponse carries either a message (nothing to deliver) or the
// remaining orders of the driver's latest route.
type DriverRouteResponse struct {
	RouteID *int64               `json:"route_id,omitempty"`
	Message string               `json:"message,omitempty"`
	Driver  *DriverResponse      `json:"driver,omitempty"`
	Origin  *CoordinatesResponse `json:"origin,omitempty"`
	Orders  []OrderResponse      `json:"orders,omitempty"`
}
