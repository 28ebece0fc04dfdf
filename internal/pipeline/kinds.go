package pipeline

import (
	"fmt"
	"strings"
)

// KindSet selects which entity kinds a pipeline run processes. The zero
// value means "all kinds".
type KindSet struct {
	Roads    bool
	POIs     bool
	Zones    bool
	Segments bool
}

// AllKinds selects every entity kind.
func AllKinds() KindSet {
	return KindSet{Roads: true, POIs: true, Zones: true, Segments: true}
}

// IsEmpty reports whether no kind is selected.
func (k KindSet) IsEmpty() bool {
	return k == KindSet{}
}

// ParseKinds parses a comma-separated list of entity kinds, e.g.
// "roads,pois". Blank input selects nothing (callers treat that as all).
func ParseKinds(raw string) (KindSet, error) {
	var kinds KindSet
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		switch name {
		case "":
		case "roads":
			kinds.Roads = true
		case "pois":
			kinds.POIs = true
		case "zones":
			kinds.Zones = true
		case "segments":
			kinds.Segments = true
		default:
			return KindSet{}, fmt.Errorf("invalid entity type %q, use one of: roads, pois, zones, segments", part)
		}
	}
	return kinds, nil
}
