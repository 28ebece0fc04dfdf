package model

import (
	"math"
	"testing"
)

func TestNewRoadPenalty_Valid(t *testing.T) {
	p, err := NewRoadPenalty(0.7, 0.5, 1.0)
	if err != nil {
		t.Fatalf("NewRoadPenalty returned error for valid factors: %v", err)
	}
	if p.SurfaceFactor != 0.7 || p.SmoothnessFactor != 0.5 || p.RainySeasonFactor != 1.0 {
		t.Errorf("NewRoadPenalty = %+v", p)
	}
}

func TestNewRoadPenalty_RejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name                       string
		surface, smoothness, rainy float64
	}{
		{"surface negative", -0.1, 1, 1},
		{"surface above one", 1.1, 1, 1},
		{"smoothness negative", 1, -0.5, 1},
		{"rainy above one", 1, 1, 2},
	}
	for _, tc := range cases {
		if _, err := NewRoadPenalty(tc.surface, tc.smoothness, tc.rainy); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestNewRoadPenalty_ZeroIsAllowed(t *testing.T) {
	p, err := NewRoadPenalty(1, 0, 1)
	if err != nil {
		t.Fatalf("impassable factor should be allowed: %v", err)
	}
	if p.EffectiveMultiplier() != 0 {
		t.Errorf("multiplier = %v, want 0", p.EffectiveMultiplier())
	}
}

func TestPenaltyForRoad_Tables(t *testing.T) {
	cases := []struct {
		surface        Surface
		smoothness     Smoothness
		wantSurface    float64
		wantSmoothness float64
	}{
		{SurfaceAsphalt, SmoothnessExcellent, 1.0, 1.0},
		{SurfaceGravel, SmoothnessGood, 0.7, 0.9},
		{SurfaceDirt, SmoothnessBad, 0.4, 0.5},
		{SurfaceSand, SmoothnessHorrible, 0.3, 0.2},
		{SurfaceUnknown, SmoothnessUnknown, 0.6, 0.7},
	}
	for _, tc := range cases {
		p := PenaltyForRoad(tc.surface, tc.smoothness, false)
		if p.SurfaceFactor != tc.wantSurface {
			t.Errorf("%s: surface factor = %v, want %v", tc.surface, p.SurfaceFactor, tc.wantSurface)
		}
		if p.SmoothnessFactor != tc.wantSmoothness {
			t.Errorf("%s: smoothness factor = %v, want %v", tc.smoothness, p.SmoothnessFactor, tc.wantSmoothness)
		}
		if p.RainySeasonFactor != 1.0 {
			t.Errorf("dry season factor = %v, want 1.0", p.RainySeasonFactor)
		}
	}
}

func TestPenaltyForRoad_UnrecognizedValuesFallBack(t *testing.T) {
	p := PenaltyForRoad(Surface("cobblestone"), Smoothness("rough"), false)
	if p.SurfaceFactor != 0.6 {
		t.Errorf("unrecognized surface factor = %v, want 0.6", p.SurfaceFactor)
	}
	if p.SmoothnessFactor != 0.7 {
		t.Errorf("unrecognized smoothness factor = %v, want 0.7", p.SmoothnessFactor)
	}
}

func TestPenaltyForRoad_RainySeason(t *testing.T) {
	unpaved := PenaltyForRoad(SurfaceDirt, SmoothnessGood, true)
	if unpaved.RainySeasonFactor != 0.6 {
		t.Errorf("rainy unpaved factor = %v, want 0.6", unpaved.RainySeasonFactor)
	}

	paved := PenaltyForRoad(SurfaceAsphalt, SmoothnessGood, true)
	if paved.RainySeasonFactor != 1.0 {
		t.Errorf("rainy paved factor = %v, want 1.0", paved.RainySeasonFactor)
	}
}

func TestPenaltyForRoad_MultiplierAlwaysInRange(t *testing.T) {
	surfaces := []Surface{
		SurfaceAsphalt, SurfacePaved, SurfaceConcrete, SurfaceGravel,
		SurfaceDirt, SurfaceSand, SurfaceUnpaved, SurfaceGround, SurfaceUnknown,
	}
	smoothnesses := []Smoothness{
		SmoothnessExcellent, SmoothnessGood, SmoothnessIntermediate,
		SmoothnessBad, SmoothnessVeryBad, SmoothnessHorrible,
		SmoothnessImpassable, SmoothnessUnknown,
	}

	for _, surface := range surfaces {
		for _, smoothness := range smoothnesses {
			for _, rainy := range []bool{false, true} {
				p := PenaltyForRoad(surface, smoothness, rainy)
				m := p.EffectiveMultiplier()
				if m < 0 || m > 1 {
					t.Errorf("%s/%s/rainy=%v: multiplier = %v, want within [0,1]", surface, smoothness, rainy, m)
				}
				if v := p.ApplyToSpeed(80); v < 0 || v > 80 {
					t.Errorf("%s/%s/rainy=%v: speed = %v, want within [0,80]", surface, smoothness, rainy, v)
				}
			}
		}
	}
}

func TestApplyToSpeed(t *testing.T) {
	p := RoadPenalty{SurfaceFactor: 0.5, SmoothnessFactor: 0.5, RainySeasonFactor: 1.0}
	if got := p.ApplyToSpeed(80); math.Abs(got-20) > 1e-9 {
		t.Errorf("ApplyToSpeed(80) = %v, want 20", got)
	}
}
