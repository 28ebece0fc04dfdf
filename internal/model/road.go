// Package model defines the domain entities the pipeline extracts from OSM
// and persists: roads, routing segments, points of interest and
// administrative zones, plus the speed-penalty value object.
package model

import (
	"errors"

	"github.com/ny-randriantsarafara/chorographer/internal/geo"
)

// ErrTooFewPoints is returned when a geometry has fewer points than the
// entity requires.
var ErrTooFewPoints = errors.New("geometry has too few points")

// Road is an OSM way carrying a highway tag.
type Road struct {
	ID         int64
	Geometry   []geo.Coordinates
	Type       RoadType
	Surface    Surface
	Smoothness Smoothness
	Name       string
	Lanes      int
	Oneway     bool
	MaxSpeed   int // km/h, 0 when untagged
	Tags       map[string]string
}

// NewRoad validates the geometry and applies defaults for untagged fields.
func NewRoad(id int64, geometry []geo.Coordinates, roadType RoadType) (Road, error) {
	if len(geometry) < 2 {
		return Road{}, ErrTooFewPoints
	}
	return Road{
		ID:         id,
		Geometry:   geometry,
		Type:       roadType,
		Surface:    SurfaceUnknown,
		Smoothness: SmoothnessUnknown,
		Lanes:      2,
	}, nil
}

// Length is the total road length in meters.
func (r Road) Length() float64 {
	return geo.LineLength(r.Geometry)
}

// Start is the first coordinate of the road.
func (r Road) Start() geo.Coordinates {
	return r.Geometry[0]
}

// End is the last coordinate of the road.
func (r Road) End() geo.Coordinates {
	return r.Geometry[len(r.Geometry)-1]
}

// DefaultSpeedKmh is the classification-based default speed.
func (r Road) DefaultSpeedKmh() int {
	if speed, ok := defaultSpeeds[r.Type]; ok {
		return speed
	}
	return 40
}

// EffectiveSpeedKmh is the tagged max speed when present, else the default.
func (r Road) EffectiveSpeedKmh() int {
	if r.MaxSpeed > 0 {
		return r.MaxSpeed
	}
	return r.DefaultSpeedKmh()
}

// Penalty is the speed penalty derived from surface and smoothness,
// outside the rainy season.
func (r Road) Penalty() RoadPenalty {
	return PenaltyForRoad(r.Surface, r.Smoothness, false)
}

// PenalizedSpeedKmh is the effective speed after applying the penalty.
func (r Road) PenalizedSpeedKmh() float64 {
	return r.Penalty().ApplyToSpeed(float64(r.EffectiveSpeedKmh()))
}
