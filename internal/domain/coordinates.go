package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates (latitude, longitude) in degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// DistanceTo returns the straight-line distance in raw degrees.
// It is not a geodesic distance; for short urban hops the ordering it
// produces matches meters closely enough.
func (c Coordinates) DistanceTo(o Coordinates) float64 {
	return math.Hypot(c.Lat-o.Lat, c.Lon-o.Lon)
}

func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// String renders the point as "(lat, lon)".
func (c Coordinates) String() string {
	return fmt.Sprintf("(%v, %v)", c.Lat, c.Lon)
}
