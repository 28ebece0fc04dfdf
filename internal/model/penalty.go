package model

import "fmt"

// Penalty factors by surface material.
var surfaceFactors = map[Surface]float64{
	SurfaceAsphalt:  1.0,
	SurfacePaved:    1.0,
	SurfaceConcrete: 1.0,
	SurfaceGravel:   0.7,
	SurfaceDirt:     0.4,
	SurfaceSand:     0.3,
	SurfaceUnpaved:  0.5,
	SurfaceGround:   0.4,
	SurfaceUnknown:  0.6,
}

// Penalty factors by surface condition.
var smoothnessFactors = map[Smoothness]float64{
	SmoothnessExcellent:    1.0,
	SmoothnessGood:         0.9,
	SmoothnessIntermediate: 0.7,
	SmoothnessBad:          0.5,
	SmoothnessVeryBad:      0.3,
	SmoothnessHorrible:     0.2,
	SmoothnessImpassable:   0.0,
	SmoothnessUnknown:      0.7,
}

// Rainy season factor for unpaved roads (Nov-Apr in Madagascar).
const rainySeasonUnpavedFactor = 0.6

// RoadPenalty combines multiplicative speed-reduction factors.
//
// Effective speed = base speed x surface factor x smoothness factor x rainy season factor.
type RoadPenalty struct {
	SurfaceFactor     float64
	SmoothnessFactor  float64
	RainySeasonFactor float64
}

// NewRoadPenalty validates that every factor lies in [0, 1].
func NewRoadPenalty(surface, smoothness, rainySeason float64) (RoadPenalty, error) {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"surface_factor", surface},
		{"smoothness_factor", smoothness},
		{"rainy_season_factor", rainySeason},
	} {
		if f.value < 0 || f.value > 1 {
			return RoadPenalty{}, fmt.Errorf("%s must be between 0.0 and 1.0, got %v", f.name, f.value)
		}
	}
	return RoadPenalty{
		SurfaceFactor:     surface,
		SmoothnessFactor:  smoothness,
		RainySeasonFactor: rainySeason,
	}, nil
}

// PenaltyForRoad derives the penalty from road attributes via the lookup
// tables. Unknown values fall back to the conservative defaults the tables
// carry for them.
func PenaltyForRoad(surface Surface, smoothness Smoothness, rainySeason bool) RoadPenalty {
	sf, ok := surfaceFactors[surface]
	if !ok {
		sf = 0.6
	}
	mf, ok := smoothnessFactors[smoothness]
	if !ok {
		mf = 0.7
	}

	rf := 1.0
	if rainySeason && !surface.IsPaved() {
		rf = rainySeasonUnpavedFactor
	}

	return RoadPenalty{SurfaceFactor: sf, SmoothnessFactor: mf, RainySeasonFactor: rf}
}

// EffectiveMultiplier is the combined speed multiplier.
func (p RoadPenalty) EffectiveMultiplier() float64 {
	return p.SurfaceFactor * p.SmoothnessFactor * p.RainySeasonFactor
}

// ApplyToSpeed applies the penalty to a base speed in km/h.
func (p RoadPenalty) ApplyToSpeed(baseSpeed float64) float64 {
	return baseSpeed * p.EffectiveMultiplier()
}
