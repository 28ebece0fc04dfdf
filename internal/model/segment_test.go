package model

import (
	"math"
	"testing"

	"github.com/ny-randriantsarafara/chorographer/internal/geo"
)

func testSegment() Segment {
	return Segment{
		ID:        123456789,
		RoadID:    42,
		Start:     geo.Coordinates{Lat: -18.90, Lon: 47.50},
		End:       geo.Coordinates{Lat: -18.91, Lon: 47.51},
		Length:    1000,
		Penalty:   RoadPenalty{SurfaceFactor: 1, SmoothnessFactor: 1, RainySeasonFactor: 1},
		BaseSpeed: 60,
	}
}

func TestSegment_TravelTime(t *testing.T) {
	s := testSegment()
	// 1000 m at 60 km/h is 60 s.
	if got := s.TravelTimeSeconds(); math.Abs(got-60) > 1e-9 {
		t.Errorf("travel time = %v, want 60", got)
	}
	if s.Cost() != s.TravelTimeSeconds() {
		t.Error("Cost should equal travel time")
	}
}

func TestSegment_TravelTime_PenaltyApplied(t *testing.T) {
	s := testSegment()
	s.Penalty = RoadPenalty{SurfaceFactor: 0.5, SmoothnessFactor: 1, RainySeasonFactor: 1}
	// Effective speed 30 km/h, so 120 s.
	if got := s.TravelTimeSeconds(); math.Abs(got-120) > 1e-9 {
		t.Errorf("penalized travel time = %v, want 120", got)
	}
}

func TestSegment_TravelTime_ImpassableIsInfinite(t *testing.T) {
	s := testSegment()
	s.Penalty.SmoothnessFactor = 0
	if got := s.TravelTimeSeconds(); !math.IsInf(got, 1) {
		t.Errorf("impassable travel time = %v, want +Inf", got)
	}

	s = testSegment()
	s.BaseSpeed = 0
	if got := s.TravelTimeSeconds(); !math.IsInf(got, 1) {
		t.Errorf("zero base speed travel time = %v, want +Inf", got)
	}
}

func TestSegment_Reverse(t *testing.T) {
	s := testSegment()
	r := s.Reverse()

	if r.ID != -s.ID {
		t.Errorf("reverse ID = %d, want %d", r.ID, -s.ID)
	}
	if r.Start != s.End || r.End != s.Start {
		t.Error("reverse should swap endpoints")
	}
	if r.Length != s.Length || r.BaseSpeed != s.BaseSpeed || r.Penalty != s.Penalty {
		t.Error("reverse should preserve length, speed and penalty")
	}
	if rr := r.Reverse(); rr.ID != s.ID || rr.Start != s.Start {
		t.Error("double reverse should restore the original segment")
	}
}
