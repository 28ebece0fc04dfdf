package model

import (
	"math"

	"github.com/ny-randriantsarafara/chorographer/internal/geo"
)

// Segment is a directed piece of a road between two breakpoints, the edge
// unit of the routing graph. Its ID is content-derived and stable across
// re-runs; the reverse direction carries the negated ID.
type Segment struct {
	ID        int64
	RoadID    int64
	Start     geo.Coordinates
	End       geo.Coordinates
	Length    float64 // meters
	Penalty   RoadPenalty
	Oneway    bool
	BaseSpeed int // km/h
}

// EffectiveSpeedKmh is the base speed after applying penalties.
func (s Segment) EffectiveSpeedKmh() float64 {
	return s.Penalty.ApplyToSpeed(float64(s.BaseSpeed))
}

// TravelTimeSeconds is the time to traverse the segment. Infinite when the
// effective speed is zero (e.g. impassable smoothness).
func (s Segment) TravelTimeSeconds() float64 {
	speedMS := s.EffectiveSpeedKmh() * 1000 / 3600
	if speedMS <= 0 {
		return math.Inf(1)
	}
	return s.Length / speedMS
}

// Cost is the routing cost used by pathfinding (travel time in seconds).
func (s Segment) Cost() float64 {
	return s.TravelTimeSeconds()
}

// Reverse returns the twin segment for traversal in the opposite direction
// on bidirectional roads.
func (s Segment) Reverse() Segment {
	return Segment{
		ID:        -s.ID,
		RoadID:    s.RoadID,
		Start:     s.End,
		End:       s.Start,
		Length:    s.Length,
		Penalty:   s.Penalty,
		Oneway:    s.Oneway,
		BaseSpeed: s.BaseSpeed,
	}
}
