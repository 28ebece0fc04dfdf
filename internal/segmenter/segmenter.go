// Package segmenter builds routing segments by splitting roads at shared
// coordinates (intersections). The output is the edge list of the routing
// graph; pathfinding itself lives elsewhere.
package segmenter

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/ny-randriantsarafara/chorographer/internal/geo"
	"github.com/ny-randriantsarafara/chorographer/internal/model"
)

type coordKey struct {
	lat, lon float64
}

// segmentID derives a stable 63-bit non-negative id from the road id and
// the segment endpoints, so re-running on unchanged input reproduces the
// same ids. Reversed segments negate the id instead of re-hashing.
func segmentID(roadID int64, start, end geo.Coordinates) int64 {
	payload := fmt.Sprintf("%d:%s:%s:%s:%s",
		roadID,
		strconv.FormatFloat(start.Lat, 'g', -1, 64),
		strconv.FormatFloat(start.Lon, 'g', -1, 64),
		strconv.FormatFloat(end.Lat, 'g', -1, 64),
		strconv.FormatFloat(end.Lon, 'g', -1, 64),
	)
	digest := sha1.Sum([]byte(payload))
	value := binary.BigEndian.Uint64(digest[:8])
	return int64(value & 0x7FFFFFFFFFFFFFFF)
}

// SplitRoads splits every road at its breakpoints and returns one directed
// segment per consecutive breakpoint pair. A breakpoint is a road's first
// or last point, or any coordinate that occurs more than once across the
// input (an intersection, or a revisit within the same road).
//
// Output order is not guaranteed. Roads that produce fewer than two
// breakpoints yield no segments.
func SplitRoads(roads []model.Road) []model.Segment {
	if len(roads) == 0 {
		return nil
	}

	coordCounts := make(map[coordKey]int)
	for _, road := range roads {
		for _, c := range road.Geometry {
			coordCounts[coordKey{c.Lat, c.Lon}]++
		}
	}

	var segments []model.Segment
	for _, road := range roads {
		var breakpoints []int
		last := len(road.Geometry) - 1
		for idx, c := range road.Geometry {
			if idx == 0 || idx == last || coordCounts[coordKey{c.Lat, c.Lon}] > 1 {
				breakpoints = append(breakpoints, idx)
			}
		}

		if len(breakpoints) < 2 {
			continue
		}

		penalty := model.PenaltyForRoad(road.Surface, road.Smoothness, false)
		baseSpeed := road.EffectiveSpeedKmh()

		for i := 0; i < len(breakpoints)-1; i++ {
			startIdx := breakpoints[i]
			endIdx := breakpoints[i+1]
			if endIdx-startIdx < 1 {
				continue
			}

			coords := road.Geometry[startIdx : endIdx+1]
			start := coords[0]
			end := coords[len(coords)-1]

			segments = append(segments, model.Segment{
				ID:        segmentID(road.ID, start, end),
				RoadID:    road.ID,
				Start:     start,
				End:       end,
				Length:    geo.LineLength(coords),
				Penalty:   penalty,
				Oneway:    road.Oneway,
				BaseSpeed: baseSpeed,
			})
		}
	}

	return segments
}
