package geo

import "math"

// ContainsPoint reports whether p lies inside the polygon ring (ray casting).
// The ring does not need to be explicitly closed.
func ContainsPoint(ring []Coordinates, p Coordinates) bool {
	x, y := p.Lon, p.Lat
	inside := false

	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		xi, yi := ring[i].Lon, ring[i].Lat
		xj, yj := ring[j].Lon, ring[j].Lat

		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}

	return inside
}

// PolygonArea returns the approximate area of the ring in square meters
// using an equirectangular projection centered on the ring's mean latitude.
// Only valid for small extents; fine for communes and districts.
func PolygonArea(ring []Coordinates) float64 {
	if len(ring) < 3 {
		return 0
	}

	xs, ys := project(ring)

	var sum float64
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		sum += xs[j]*ys[i] - xs[i]*ys[j]
		j = i
	}
	return math.Abs(sum) / 2
}

// PolygonCentroid returns the planar centroid of the ring under the same
// equirectangular approximation as PolygonArea. Degenerate rings fall back
// to the vertex mean.
func PolygonCentroid(ring []Coordinates) Coordinates {
	if len(ring) == 0 {
		return Coordinates{}
	}

	xs, ys := project(ring)

	var area, cx, cy float64
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		cross := xs[j]*ys[i] - xs[i]*ys[j]
		area += cross
		cx += (xs[j] + xs[i]) * cross
		cy += (ys[j] + ys[i]) * cross
		j = i
	}

	if area == 0 {
		var lat, lon float64
		for _, c := range ring {
			lat += c.Lat
			lon += c.Lon
		}
		n := float64(len(ring))
		return Coordinates{Lat: lat / n, Lon: lon / n}
	}

	cx /= 3 * area
	cy /= 3 * area
	return unproject(cx, cy, midLat(ring))
}

func midLat(ring []Coordinates) float64 {
	minLat, maxLat := ring[0].Lat, ring[0].Lat
	for _, c := range ring[1:] {
		minLat = math.Min(minLat, c.Lat)
		maxLat = math.Max(maxLat, c.Lat)
	}
	return (minLat + maxLat) / 2
}

// project maps the ring onto a local planar frame in meters.
func project(ring []Coordinates) (xs, ys []float64) {
	lat0 := midLat(ring) * math.Pi / 180
	cosLat := math.Cos(lat0)

	xs = make([]float64, len(ring))
	ys = make([]float64, len(ring))
	for i, c := range ring {
		xs[i] = c.Lon * math.Pi / 180 * cosLat * earthRadiusMeters
		ys[i] = c.Lat * math.Pi / 180 * earthRadiusMeters
	}
	return xs, ys
}

func unproject(x, y, refLat float64) Coordinates {
	lat0 := refLat * math.Pi / 180
	cosLat := math.Cos(lat0)

	lat := y / earthRadiusMeters * 180 / math.Pi
	lon := x / (earthRadiusMeters * cosLat) * 180 / math.Pi
	return Coordinates{Lat: lat, Lon: lon}
}
