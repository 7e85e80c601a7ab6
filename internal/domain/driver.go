package domain

type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverEnRoute   DriverStatus = "en_route"
)

// Represents a delivery driver.
// Status is only changed by route assignment (en_route) and by route
// completion (available).
type Driver struct {
	ID           int64
	Name         string
	License      string
	Phone        string
	VehiclePlate string
	Status       DriverStatus
}
