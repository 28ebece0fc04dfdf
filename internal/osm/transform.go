package osm

import (
	"strconv"
	"strings"

	"github.com/ny-randriantsarafara/chorographer/internal/model"
)

// Highway values treated as roads.
var roadHighwayTypes = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"residential":    true,
	"living_street":  true,
	"unclassified":   true,
	"track":          true,
	"path":           true,
	"footway":        true,
	"cycleway":       true,
}

var roadTypeByHighway = map[string]model.RoadType{
	"motorway":       model.RoadMotorway,
	"motorway_link":  model.RoadMotorway,
	"trunk":          model.RoadTrunk,
	"trunk_link":     model.RoadTrunk,
	"primary":        model.RoadPrimary,
	"primary_link":   model.RoadPrimary,
	"secondary":      model.RoadSecondary,
	"secondary_link": model.RoadSecondary,
	"tertiary":       model.RoadTertiary,
	"tertiary_link":  model.RoadTertiary,
	"residential":    model.RoadResidential,
	"living_street":  model.RoadResidential,
	"unclassified":   model.RoadUnclassified,
	"track":          model.RoadTrack,
	"path":           model.RoadPath,
	"footway":        model.RoadPath,
	"cycleway":       model.RoadPath,
}

func parseRoadType(highway string) model.RoadType {
	if t, ok := roadTypeByHighway[highway]; ok {
		return t
	}
	return model.RoadUnclassified
}

var surfaceByTag = map[string]model.Surface{
	"asphalt":         model.SurfaceAsphalt,
	"paved":           model.SurfacePaved,
	"concrete":        model.SurfaceConcrete,
	"concrete:plates": model.SurfaceConcrete,
	"concrete:lanes":  model.SurfaceConcrete,
	"gravel":          model.SurfaceGravel,
	"fine_gravel":     model.SurfaceGravel,
	"compacted":       model.SurfaceGravel,
	"dirt":            model.SurfaceDirt,
	"earth":           model.SurfaceDirt,
	"mud":             model.SurfaceDirt,
	"sand":            model.SurfaceSand,
	"unpaved":         model.SurfaceUnpaved,
	"ground":          model.SurfaceGround,
	"grass":           model.SurfaceGround,
}

func parseSurface(surface string) model.Surface {
	if s, ok := surfaceByTag[strings.ToLower(surface)]; ok {
		return s
	}
	return model.SurfaceUnknown
}

var smoothnessByTag = map[string]model.Smoothness{
	"excellent":     model.SmoothnessExcellent,
	"good":          model.SmoothnessGood,
	"intermediate":  model.SmoothnessIntermediate,
	"bad":           model.SmoothnessBad,
	"very_bad":      model.SmoothnessVeryBad,
	"horrible":      model.SmoothnessHorrible,
	"very_horrible": model.SmoothnessHorrible,
	"impassable":    model.SmoothnessImpassable,
}

func parseSmoothness(smoothness string) model.Smoothness {
	if s, ok := smoothnessByTag[strings.ToLower(smoothness)]; ok {
		return s
	}
	return model.SmoothnessUnknown
}

func parseOneway(tags map[string]string) bool {
	switch tags["oneway"] {
	case "yes", "true", "1", "-1":
		return true
	}
	return false
}

func parseLanes(tags map[string]string) int {
	if lanes, err := strconv.Atoi(tags["lanes"]); err == nil && lanes > 0 {
		return lanes
	}
	return 2
}

// parseMaxSpeed handles plain numbers and "XX km/h" style values.
func parseMaxSpeed(tags map[string]string) int {
	raw := tags["maxspeed"]
	if raw == "" {
		return 0
	}
	raw = strings.TrimSpace(strings.NewReplacer(" km/h", "", "km/h", "", " mph", "").Replace(raw))
	speed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return speed
}

// categorizePOI maps amenity/shop/tourism tags to a category pair.
func categorizePOI(tags map[string]string) (model.POICategory, string) {
	amenity := tags["amenity"]
	shop := tags["shop"]
	tourism := tags["tourism"]

	switch amenity {
	case "fuel", "parking", "bus_station", "taxi", "car_rental", "ferry_terminal":
		return model.POITransport, amenity
	case "restaurant", "cafe", "fast_food", "bar", "food_court", "pub":
		return model.POIFood, amenity
	case "hotel", "guest_house", "motel", "hostel":
		return model.POILodging, amenity
	case "hospital", "pharmacy", "clinic", "doctors", "dentist":
		return model.POIHealth, amenity
	case "bank", "atm", "post_office", "bureau_de_change", "money_transfer":
		return model.POIServices, amenity
	case "police", "embassy", "townhall", "courthouse":
		return model.POIGovernment, amenity
	case "school", "university", "college", "library", "kindergarten":
		return model.POIEducation, amenity
	}

	switch tourism {
	case "hotel", "guest_house", "motel", "hostel", "camp_site":
		return model.POILodging, tourism
	}

	if shop != "" {
		return model.POIShopping, shop
	}

	sub := amenity
	if sub == "" {
		sub = shop
	}
	if sub == "" {
		sub = tourism
	}
	if sub == "" {
		sub = "unknown"
	}
	return model.POIUnknown, sub
}

// zoneTypeByAdminLevel maps OSM admin_level to zone type and hierarchy level.
var zoneTypeByAdminLevel = map[string]struct {
	zoneType model.ZoneType
	level    int
}{
	"2":  {model.ZoneCountry, 0},
	"4":  {model.ZoneRegion, 1},
	"6":  {model.ZoneDistrict, 2},
	"8":  {model.ZoneCommune, 3},
	"10": {model.ZoneFokontany, 4},
}

func parseZoneType(adminLevel string) (model.ZoneType, int, bool) {
	entry, ok := zoneTypeByAdminLevel[strings.TrimSpace(adminLevel)]
	if !ok {
		return "", 0, false
	}
	return entry.zoneType, entry.level, true
}

func addressFromTags(tags map[string]string) model.Address {
	return model.Address{
		Street:      tags["addr:street"],
		Housenumber: tags["addr:housenumber"],
		City:        tags["addr:city"],
		Postcode:    tags["addr:postcode"],
	}
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := tags[key]; v != "" {
			return v
		}
	}
	return ""
}
