package repository

import (
	"testing"

	"github.com/ny-randriantsarafara/chorographer/internal/geo"
)

func TestWKTPoint(t *testing.T) {
	got := wktPoint(geo.Coordinates{Lat: -18.8792, Lon: 47.5079})
	want := "SRID=4326;POINT(47.5079 -18.8792)"
	if got != want {
		t.Errorf("wktPoint = %q, want %q", got, want)
	}
}

func TestWKTLineString(t *testing.T) {
	got := wktLineString([]geo.Coordinates{
		{Lat: -18.9, Lon: 47.5},
		{Lat: -18.91, Lon: 47.51},
	})
	want := "SRID=4326;LINESTRING(47.5 -18.9, 47.51 -18.91)"
	if got != want {
		t.Errorf("wktLineString = %q, want %q", got, want)
	}
}

func TestWKTPolygon_ClosesOpenRing(t *testing.T) {
	got := wktPolygon([]geo.Coordinates{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
		{Lat: 1, Lon: 1},
	})
	want := "SRID=4326;POLYGON((0 0, 1 0, 1 1, 0 0))"
	if got != want {
		t.Errorf("wktPolygon = %q, want %q", got, want)
	}
}

func TestWKTPolygon_KeepsClosedRing(t *testing.T) {
	ring := []geo.Coordinates{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
		{Lat: 1, Lon: 1},
		{Lat: 0, Lon: 0},
	}
	got := wktPolygon(ring)
	want := "SRID=4326;POLYGON((0 0, 1 0, 1 1, 0 0))"
	if got != want {
		t.Errorf("wktPolygon = %q, want %q", got, want)
	}
}

func TestNullHelpers(t *testing.T) {
	if tagsJSON(nil) != nil {
		t.Error("empty tags should encode as NULL")
	}
	if got := tagsJSON(map[string]string{"highway": "primary"}); got == nil || *got != `{"highway":"primary"}` {
		t.Errorf("tagsJSON = %v", got)
	}
	if nullString("") != nil || nullInt(0) != nil || nullInt64(0) != nil {
		t.Error("zero values should map to NULL")
	}
	if s := nullString("x"); s == nil || *s != "x" {
		t.Error("non-empty string should pass through")
	}
}
