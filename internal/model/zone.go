package model

import (
	"github.com/ny-randriantsarafara/chorographer/internal/geo"
)

// Zone is an administrative boundary polygon. ParentID is resolved later by
// the store's spatial engine (see repository.ComputeZoneHierarchy), never
// by the pipeline itself.
type Zone struct {
	ID         int64
	Geometry   []geo.Coordinates // outer ring
	Type       ZoneType
	Level      int // 0=country .. 4=fokontany
	Name       string
	ParentID   int64 // 0 until hierarchy computation assigns one
	ISOCode    string
	Population int
	Tags       map[string]string
}

// NewZone validates that the ring can form a polygon.
func NewZone(id int64, ring []geo.Coordinates, zoneType ZoneType, level int, name string) (Zone, error) {
	if len(ring) < 3 {
		return Zone{}, ErrTooFewPoints
	}
	return Zone{ID: id, Geometry: ring, Type: zoneType, Level: level, Name: name}, nil
}

// ContainsPoint reports whether p lies inside the zone boundary.
func (z Zone) ContainsPoint(p geo.Coordinates) bool {
	return geo.ContainsPoint(z.Geometry, p)
}

// Area is the approximate zone area in square meters. The equirectangular
// approximation is intentional: it matches the store's precomputed column
// and is accurate enough at commune scale.
func (z Zone) Area() float64 {
	return geo.PolygonArea(z.Geometry)
}

// Centroid is the planar centroid of the boundary ring.
func (z Zone) Centroid() geo.Coordinates {
	return geo.PolygonCentroid(z.Geometry)
}
