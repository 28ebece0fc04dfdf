// Package geo holds the coordinate primitives shared by every entity in
// the pipeline: validated lat/lon pairs, great-circle distances and the
// planar polygon helpers used for administrative zones.
package geo

import (
	"fmt"
	"math"
)

const earthRadiusMeters = 6371000

// Coordinates is an immutable lat/lon pair in degrees (WGS84).
type Coordinates struct {
	Lat float64
	Lon float64
}

// NewCoordinates validates bounds and returns the pair.
func NewCoordinates(lat, lon float64) (Coordinates, error) {
	if lat < -90 || lat > 90 {
		return Coordinates{}, fmt.Errorf("latitude must be between -90 and 90, got %v", lat)
	}
	if lon < -180 || lon > 180 {
		return Coordinates{}, fmt.Errorf("longitude must be between -180 and 180, got %v", lon)
	}
	return Coordinates{Lat: lat, Lon: lon}, nil
}

// DistanceTo returns the great-circle distance to other in meters (Haversine).
func (c Coordinates) DistanceTo(other Coordinates) float64 {
	phi1 := c.Lat * math.Pi / 180
	phi2 := other.Lat * math.Pi / 180
	deltaPhi := (other.Lat - c.Lat) * math.Pi / 180
	deltaLambda := (other.Lon - c.Lon) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	ch := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * ch
}

// LineLength sums consecutive-point distances along coords in meters.
func LineLength(coords []Coordinates) float64 {
	var total float64
	for i := 1; i < len(coords); i++ {
		total += coords[i-1].DistanceTo(coords[i])
	}
	return total
}
