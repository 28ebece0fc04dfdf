package repository

import (
	"strconv"
	"strings"

	"github.com/ny-randriantsarafara/chorographer/internal/geo"
)

// EWKT encoding for the store's spatial columns (SRID 4326 throughout).

func formatCoord(c geo.Coordinates) string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + " " + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

func wktPoint(c geo.Coordinates) string {
	return "SRID=4326;POINT(" + formatCoord(c) + ")"
}

func wktLineString(coords []geo.Coordinates) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = formatCoord(c)
	}
	return "SRID=4326;LINESTRING(" + strings.Join(parts, ", ") + ")"
}

// wktPolygon closes the ring when the source geometry left it open.
func wktPolygon(ring []geo.Coordinates) string {
	parts := make([]string, 0, len(ring)+1)
	for _, c := range ring {
		parts = append(parts, formatCoord(c))
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		parts = append(parts, formatCoord(ring[0]))
	}
	return "SRID=4326;POLYGON((" + strings.Join(parts, ", ") + "))"
}
