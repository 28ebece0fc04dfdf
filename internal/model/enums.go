package model

// RoadType is the normalized OSM highway classification.
type RoadType string

const (
	RoadMotorway     RoadType = "motorway"
	RoadTrunk        RoadType = "trunk"
	RoadPrimary      RoadType = "primary"
	RoadSecondary    RoadType = "secondary"
	RoadTertiary     RoadType = "tertiary"
	RoadResidential  RoadType = "residential"
	RoadUnclassified RoadType = "unclassified"
	RoadTrack        RoadType = "track"
	RoadPath         RoadType = "path"
)

// Surface is the road surface material.
type Surface string

const (
	SurfaceAsphalt  Surface = "asphalt"
	SurfacePaved    Surface = "paved"
	SurfaceConcrete Surface = "concrete"
	SurfaceGravel   Surface = "gravel"
	SurfaceDirt     Surface = "dirt"
	SurfaceSand     Surface = "sand"
	SurfaceUnpaved  Surface = "unpaved"
	SurfaceGround   Surface = "ground"
	SurfaceUnknown  Surface = "unknown"
)

// IsPaved reports whether the surface keeps its speed in the rainy season.
func (s Surface) IsPaved() bool {
	switch s {
	case SurfaceAsphalt, SurfacePaved, SurfaceConcrete:
		return true
	}
	return false
}

// Smoothness is the road surface condition.
type Smoothness string

const (
	SmoothnessExcellent    Smoothness = "excellent"
	SmoothnessGood         Smoothness = "good"
	SmoothnessIntermediate Smoothness = "intermediate"
	SmoothnessBad          Smoothness = "bad"
	SmoothnessVeryBad      Smoothness = "very_bad"
	SmoothnessHorrible     Smoothness = "horrible"
	SmoothnessImpassable   Smoothness = "impassable"
	SmoothnessUnknown      Smoothness = "unknown"
)

// POICategory is the high-level point-of-interest classification.
type POICategory string

const (
	POITransport  POICategory = "transport"
	POIFood       POICategory = "food"
	POILodging    POICategory = "lodging"
	POIServices   POICategory = "services"
	POIHealth     POICategory = "health"
	POIShopping   POICategory = "shopping"
	POIEducation  POICategory = "education"
	POIGovernment POICategory = "government"
	POIUnknown    POICategory = "unknown"
)

// ZoneType names an administrative level in the Madagascar hierarchy.
type ZoneType string

const (
	ZoneCountry   ZoneType = "country"
	ZoneRegion    ZoneType = "region"
	ZoneDistrict  ZoneType = "district"
	ZoneCommune   ZoneType = "commune"
	ZoneFokontany ZoneType = "fokontany"
)

// defaultSpeeds maps road classification to default speed in km/h.
var defaultSpeeds = map[RoadType]int{
	RoadMotorway:     110,
	RoadTrunk:        90,
	RoadPrimary:      80,
	RoadSecondary:    60,
	RoadTertiary:     50,
	RoadResidential:  30,
	RoadUnclassified: 40,
	RoadTrack:        20,
	RoadPath:         10,
}
